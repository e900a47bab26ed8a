package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
)

type SquadService interface {
	CreateSquad(ctx context.Context, creatorID int, name string) (*models.Squad, error)
	GetSquad(ctx context.Context, id int) (*models.Squad, error)
	ListSquads(ctx context.Context) ([]models.Squad, error)
	DeleteSquad(ctx context.Context, id int, callerID int, callerRole models.UserRole) error
	JoinSquad(ctx context.Context, squadID, profileID int) error
	LeaveSquad(ctx context.Context, squadID, profileID int) error
}

type squadService struct {
	squadRepo repositories.SquadRepository
}

func NewSquadService(squadRepo repositories.SquadRepository) SquadService {
	return &squadService{squadRepo: squadRepo}
}

func (s *squadService) CreateSquad(ctx context.Context, creatorID int, name string) (*models.Squad, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "squad name is required"}}
	}

	squad := &models.Squad{Name: name, CreatedBy: creatorID}
	if err := s.squadRepo.Create(ctx, squad); err != nil {
		// Name uniqueness is a store constraint, so duplicate squads cannot
		// reach clients in the first place.
		if errors.Is(err, repositories.ErrSquadNameConflict) {
			return nil, ErrSquadNameConflict
		}
		return nil, fmt.Errorf("failed to create squad: %w", err)
	}

	// The creator starts as a member.
	if err := s.squadRepo.AddMember(ctx, squad.ID, creatorID); err != nil && !errors.Is(err, repositories.ErrSquadMemberConflict) {
		return nil, fmt.Errorf("failed to add creator to squad: %w", err)
	}
	return squad, nil
}

func (s *squadService) GetSquad(ctx context.Context, id int) (*models.Squad, error) {
	squad, err := s.squadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSquadNotFound) {
			return nil, ErrSquadNotFound
		}
		return nil, err
	}
	members, err := s.squadRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load squad members: %w", err)
	}
	squad.Members = members
	return squad, nil
}

func (s *squadService) ListSquads(ctx context.Context) ([]models.Squad, error) {
	squads, err := s.squadRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range squads {
		members, err := s.squadRepo.ListMembers(ctx, squads[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load members for squad %d: %w", squads[i].ID, err)
		}
		squads[i].Members = members
	}
	return squads, nil
}

func (s *squadService) DeleteSquad(ctx context.Context, id int, callerID int, callerRole models.UserRole) error {
	squad, err := s.squadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSquadNotFound) {
			return ErrSquadNotFound
		}
		return err
	}

	isAdmin := callerRole == models.RoleAdmin || callerRole == models.RoleSuperAdmin
	if squad.CreatedBy != callerID && !isAdmin {
		return ErrForbiddenOperation
	}
	return s.squadRepo.Delete(ctx, id)
}

func (s *squadService) JoinSquad(ctx context.Context, squadID, profileID int) error {
	err := s.squadRepo.AddMember(ctx, squadID, profileID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrSquadMemberConflict):
		return ErrAlreadySquadMember
	case errors.Is(err, repositories.ErrSquadNotFound):
		return ErrSquadNotFound
	case errors.Is(err, repositories.ErrProfileNotFound):
		return ErrProfileNotFound
	default:
		return err
	}
}

func (s *squadService) LeaveSquad(ctx context.Context, squadID, profileID int) error {
	err := s.squadRepo.RemoveMember(ctx, squadID, profileID)
	if errors.Is(err, repositories.ErrSquadMemberNotFound) {
		return ErrNotFound
	}
	return err
}
