package services

import (
	"context"
	"errors"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
)

// AccessDecision is the gate's verdict for the current session.
type AccessDecision string

const (
	AccessApproved AccessDecision = "approved"
	AccessPending  AccessDecision = "pending"
	AccessRejected AccessDecision = "rejected"
)

// AccessGate decides whether an authenticated member may reach protected
// views based on their approval status.
type AccessGate interface {
	Check(ctx context.Context, profileID int) (AccessDecision, error)
}

type accessGate struct {
	profileRepo repositories.ProfileRepository
	// failOpen treats a missing profile row as approved so a brand-new
	// identity is not locked out of first-time setup.
	failOpen bool
}

func NewAccessGate(profileRepo repositories.ProfileRepository, failOpen bool) AccessGate {
	return &accessGate{profileRepo: profileRepo, failOpen: failOpen}
}

func (g *accessGate) Check(ctx context.Context, profileID int) (AccessDecision, error) {
	profile, err := g.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) && g.failOpen {
			return AccessApproved, nil
		}
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return AccessPending, nil
		}
		return "", err
	}
	return DecideAccess(string(profile.Status)), nil
}

// DecideAccess maps a raw status string onto a gate decision. Comparison is
// case- and whitespace-insensitive; anything unrecognized counts as pending.
func DecideAccess(rawStatus string) AccessDecision {
	switch models.NormalizeStatus(rawStatus) {
	case models.StatusApproved:
		return AccessApproved
	case models.StatusRejected:
		return AccessRejected
	default:
		return AccessPending
	}
}
