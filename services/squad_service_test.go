package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
)

type fakeSquadRepo struct {
	squads  map[int]*models.Squad
	members map[int]map[int]bool // squadID -> profileID set
	nextID  int
}

func newFakeSquadRepo() *fakeSquadRepo {
	return &fakeSquadRepo{
		squads:  make(map[int]*models.Squad),
		members: make(map[int]map[int]bool),
		nextID:  1,
	}
}

func (r *fakeSquadRepo) Create(ctx context.Context, squad *models.Squad) error {
	for _, existing := range r.squads {
		if existing.Name == squad.Name {
			return repositories.ErrSquadNameConflict
		}
	}
	squad.ID = r.nextID
	r.nextID++
	squad.CreatedAt = time.Now()
	copied := *squad
	r.squads[squad.ID] = &copied
	r.members[squad.ID] = make(map[int]bool)
	return nil
}

func (r *fakeSquadRepo) GetByID(ctx context.Context, id int) (*models.Squad, error) {
	if sq, ok := r.squads[id]; ok {
		copied := *sq
		return &copied, nil
	}
	return nil, repositories.ErrSquadNotFound
}

func (r *fakeSquadRepo) List(ctx context.Context) ([]models.Squad, error) {
	out := make([]models.Squad, 0, len(r.squads))
	for _, sq := range r.squads {
		out = append(out, *sq)
	}
	return out, nil
}

func (r *fakeSquadRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.squads[id]; !ok {
		return repositories.ErrSquadNotFound
	}
	delete(r.squads, id)
	delete(r.members, id)
	return nil
}

func (r *fakeSquadRepo) AddMember(ctx context.Context, squadID, profileID int) error {
	members, ok := r.members[squadID]
	if !ok {
		return repositories.ErrSquadNotFound
	}
	if members[profileID] {
		return repositories.ErrSquadMemberConflict
	}
	members[profileID] = true
	return nil
}

func (r *fakeSquadRepo) RemoveMember(ctx context.Context, squadID, profileID int) error {
	members, ok := r.members[squadID]
	if !ok || !members[profileID] {
		return repositories.ErrSquadMemberNotFound
	}
	delete(members, profileID)
	return nil
}

func (r *fakeSquadRepo) ListMembers(ctx context.Context, squadID int) ([]models.SquadMember, error) {
	out := make([]models.SquadMember, 0)
	for profileID := range r.members[squadID] {
		out = append(out, models.SquadMember{SquadID: squadID, ProfileID: profileID})
	}
	return out, nil
}

func TestCreateSquadCreatorJoins(t *testing.T) {
	repo := newFakeSquadRepo()
	svc := NewSquadService(repo)

	squad, err := svc.CreateSquad(context.Background(), 7, "  Saturday Swingers  ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if squad.Name != "Saturday Swingers" {
		t.Errorf("name should be trimmed, got %q", squad.Name)
	}
	if !repo.members[squad.ID][7] {
		t.Error("creator should be a member of the new squad")
	}
}

func TestCreateSquadNameConflict(t *testing.T) {
	repo := newFakeSquadRepo()
	svc := NewSquadService(repo)

	if _, err := svc.CreateSquad(context.Background(), 1, "Dawn Patrol"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateSquad(context.Background(), 2, "Dawn Patrol"); !errors.Is(err, ErrSquadNameConflict) {
		t.Errorf("expected ErrSquadNameConflict, got %v", err)
	}
}

func TestCreateSquadEmptyName(t *testing.T) {
	svc := NewSquadService(newFakeSquadRepo())
	var vErr *ValidationError
	if _, err := svc.CreateSquad(context.Background(), 1, "   "); !errors.As(err, &vErr) {
		t.Errorf("expected a validation error for a blank name, got %v", err)
	}
}

func TestJoinAndLeaveSquad(t *testing.T) {
	repo := newFakeSquadRepo()
	svc := NewSquadService(repo)

	squad, err := svc.CreateSquad(context.Background(), 1, "Dawn Patrol")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.JoinSquad(context.Background(), squad.ID, 2); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := svc.JoinSquad(context.Background(), squad.ID, 2); !errors.Is(err, ErrAlreadySquadMember) {
		t.Errorf("double join should yield ErrAlreadySquadMember, got %v", err)
	}
	if err := svc.JoinSquad(context.Background(), 999, 2); !errors.Is(err, ErrSquadNotFound) {
		t.Errorf("joining a missing squad should yield ErrSquadNotFound, got %v", err)
	}

	if err := svc.LeaveSquad(context.Background(), squad.ID, 2); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if err := svc.LeaveSquad(context.Background(), squad.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("leaving twice should yield ErrNotFound, got %v", err)
	}
}

func TestDeleteSquadOwnership(t *testing.T) {
	repo := newFakeSquadRepo()
	svc := NewSquadService(repo)

	squad, err := svc.CreateSquad(context.Background(), 1, "Dawn Patrol")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteSquad(context.Background(), squad.ID, 2, models.RoleMember); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("non-creator member must not delete, got %v", err)
	}
	if err := svc.DeleteSquad(context.Background(), squad.ID, 2, models.RoleAdmin); err != nil {
		t.Errorf("admin delete should succeed, got %v", err)
	}
	if err := svc.DeleteSquad(context.Background(), squad.ID, 1, models.RoleMember); !errors.Is(err, ErrSquadNotFound) {
		t.Errorf("deleting a deleted squad should yield ErrSquadNotFound, got %v", err)
	}
}

func TestGetSquadWithMembers(t *testing.T) {
	repo := newFakeSquadRepo()
	svc := NewSquadService(repo)

	squad, err := svc.CreateSquad(context.Background(), 1, "Dawn Patrol")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.JoinSquad(context.Background(), squad.ID, 2); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	got, err := svc.GetSquad(context.Background(), squad.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(got.Members))
	}

	if _, err := svc.GetSquad(context.Background(), 999); !errors.Is(err, ErrSquadNotFound) {
		t.Errorf("expected ErrSquadNotFound, got %v", err)
	}
}
