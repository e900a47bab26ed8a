package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidStatus = errors.New("invalid profile status")
var ErrInvalidRole = errors.New("invalid profile role")

type CreateMemberInput struct {
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	HomeClub         string  `json:"home_club"`
	HandicapIndex    float64 `json:"handicap_index"`
	MembershipNumber string  `json:"membership_number"`
}

type AdminService interface {
	ListProfiles(ctx context.Context, status *models.ProfileStatus) ([]models.Profile, error)
	SetStatus(ctx context.Context, profileID int, rawStatus string) error
	SetRole(ctx context.Context, profileID int, rawRole string, callerRole models.UserRole) error
	CreateMember(ctx context.Context, input CreateMemberInput) (*models.Profile, error)
}

type adminService struct {
	profileRepo repositories.ProfileRepository
}

func NewAdminService(profileRepo repositories.ProfileRepository) AdminService {
	return &adminService{profileRepo: profileRepo}
}

func (s *adminService) ListProfiles(ctx context.Context, status *models.ProfileStatus) ([]models.Profile, error) {
	profiles, err := s.profileRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].PasswordHash = ""
	}
	return profiles, nil
}

func (s *adminService) SetStatus(ctx context.Context, profileID int, rawStatus string) error {
	status := models.NormalizeStatus(rawStatus)
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return ErrInvalidStatus
	}

	err := s.profileRepo.UpdateStatus(ctx, profileID, status)
	if errors.Is(err, repositories.ErrProfileNotFound) {
		return ErrProfileNotFound
	}
	return err
}

func (s *adminService) SetRole(ctx context.Context, profileID int, rawRole string, callerRole models.UserRole) error {
	role := models.UserRole(strings.ToLower(strings.TrimSpace(rawRole)))
	switch role {
	case models.RoleMember, models.RoleAdmin:
	case models.RoleSuperAdmin:
		// Only a super admin may mint another one.
		if callerRole != models.RoleSuperAdmin {
			return ErrForbiddenOperation
		}
	default:
		return ErrInvalidRole
	}

	err := s.profileRepo.UpdateRole(ctx, profileID, role)
	if errors.Is(err, repositories.ErrProfileNotFound) {
		return ErrProfileNotFound
	}
	return err
}

// CreateMember lets an admin register a member directly, skipping the public
// sign-up flow. The profile starts approved.
func (s *adminService) CreateMember(ctx context.Context, input CreateMemberInput) (*models.Profile, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(input.FullName) == "" {
		fields["full_name"] = "name is required"
	}
	if !emailPattern.MatchString(input.Email) {
		fields["email"] = "a valid email address is required"
	}
	if len(input.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	}
	if input.HandicapIndex < HandicapMin || input.HandicapIndex > HandicapMax {
		fields["handicap_index"] = fmt.Sprintf("handicap index must be between %d and %d", HandicapMin, HandicapMax)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		FullName:           strings.TrimSpace(input.FullName),
		Email:              strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:       string(hashedPassword),
		DateOfBirth:        time.Time{},
		HomeClub:           strings.TrimSpace(input.HomeClub),
		HandicapIndex:      input.HandicapIndex,
		MembershipNumber:   strings.TrimSpace(input.MembershipNumber),
		Status:             models.StatusApproved,
		Role:               models.RoleMember,
		DisclaimerAccepted: true,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrProfileEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	profile.PasswordHash = ""
	return profile, nil
}
