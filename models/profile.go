package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleMember     UserRole = "member"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

type ProfileStatus string

const (
	StatusPending  ProfileStatus = "pending"
	StatusApproved ProfileStatus = "approved"
	StatusRejected ProfileStatus = "rejected"
)

// NormalizeStatus folds case and whitespace before matching against the known
// statuses: "Pending " and "pending" are the same thing as far as the access
// gate is concerned. Internal whitespace runs collapse to underscores.
func NormalizeStatus(raw string) ProfileStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), "_")
	return ProfileStatus(s)
}

type Profile struct {
	ID                 int           `json:"id"`
	FullName           string        `json:"full_name"`
	Email              string        `json:"email"`
	PasswordHash       string        `json:"-"`
	DateOfBirth        time.Time     `json:"date_of_birth"`
	HomeClub           string        `json:"home_club"`
	HandicapIndex      float64       `json:"handicap_index"`
	MembershipNumber   string        `json:"membership_number"`
	Status             ProfileStatus `json:"status"`
	Role               UserRole      `json:"role"`
	DisclaimerAccepted bool          `json:"disclaimer_accepted"`

	PasswordResetToken     *string    `json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
