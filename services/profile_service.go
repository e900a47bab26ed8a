package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
)

type UpdateProfileInput struct {
	FullName         *string  `json:"full_name,omitempty"`
	HomeClub         *string  `json:"home_club,omitempty"`
	HandicapIndex    *float64 `json:"handicap_index,omitempty"`
	MembershipNumber *string  `json:"membership_number,omitempty"`
}

type ProfileService interface {
	GetProfile(ctx context.Context, id int) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.Profile, error)
}

type profileService struct {
	profileRepo repositories.ProfileRepository
}

func NewProfileService(profileRepo repositories.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) GetProfile(ctx context.Context, id int) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	profile.PasswordHash = ""
	return profile, nil
}

// UpdateProfile applies the caller's self-service edits. Status and role are
// admin-only and go through AdminService instead.
func (s *profileService) UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	fields := make(map[string]string)
	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			fields["full_name"] = "name must not be empty"
		} else {
			profile.FullName = strings.TrimSpace(*input.FullName)
		}
	}
	if input.HomeClub != nil {
		if strings.TrimSpace(*input.HomeClub) == "" {
			fields["home_club"] = "home club must not be empty"
		} else {
			profile.HomeClub = strings.TrimSpace(*input.HomeClub)
		}
	}
	if input.HandicapIndex != nil {
		if *input.HandicapIndex < HandicapMin || *input.HandicapIndex > HandicapMax {
			fields["handicap_index"] = fmt.Sprintf("handicap index must be between %d and %d", HandicapMin, HandicapMax)
		} else {
			profile.HandicapIndex = *input.HandicapIndex
		}
	}
	if input.MembershipNumber != nil {
		if strings.TrimSpace(*input.MembershipNumber) == "" {
			fields["membership_number"] = "membership number must not be empty"
		} else {
			profile.MembershipNumber = strings.TrimSpace(*input.MembershipNumber)
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrProfileEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	profile.PasswordHash = ""
	return profile, nil
}
