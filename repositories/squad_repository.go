package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/lib/pq"
)

var (
	ErrSquadNotFound       = errors.New("squad not found")
	ErrSquadNameConflict   = errors.New("squad name conflict")
	ErrSquadMemberConflict = errors.New("profile is already a member of this squad")
	ErrSquadMemberNotFound = errors.New("squad membership not found")
)

type SquadRepository interface {
	Create(ctx context.Context, squad *models.Squad) error
	GetByID(ctx context.Context, id int) (*models.Squad, error)
	List(ctx context.Context) ([]models.Squad, error)
	Delete(ctx context.Context, id int) error
	AddMember(ctx context.Context, squadID, profileID int) error
	RemoveMember(ctx context.Context, squadID, profileID int) error
	ListMembers(ctx context.Context, squadID int) ([]models.SquadMember, error)
}

type postgresSquadRepository struct {
	db *sql.DB
}

func NewPostgresSquadRepository(db *sql.DB) SquadRepository {
	return &postgresSquadRepository{db: db}
}

func (r *postgresSquadRepository) Create(ctx context.Context, squad *models.Squad) error {
	query := `
		INSERT INTO squads (name, created_by)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, squad.Name, squad.CreatedBy).
		Scan(&squad.ID, &squad.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			if pqErr.Constraint == "squads_name_key" {
				return ErrSquadNameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresSquadRepository) GetByID(ctx context.Context, id int) (*models.Squad, error) {
	squad := &models.Squad{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at FROM squads WHERE id = $1`, id).
		Scan(&squad.ID, &squad.Name, &squad.CreatedBy, &squad.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSquadNotFound
		}
		return nil, err
	}
	return squad, nil
}

func (r *postgresSquadRepository) List(ctx context.Context) ([]models.Squad, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_by, created_at FROM squads ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	squads := make([]models.Squad, 0)
	for rows.Next() {
		var s models.Squad
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		squads = append(squads, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return squads, nil
}

func (r *postgresSquadRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM squads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSquadNotFound)
}

func (r *postgresSquadRepository) AddMember(ctx context.Context, squadID, profileID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO squad_members (squad_id, profile_id) VALUES ($1, $2)`,
		squadID, profileID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				return ErrSquadMemberConflict
			case pqForeignKeyViolation:
				if pqErr.Constraint == "squad_members_squad_id_fkey" {
					return ErrSquadNotFound
				}
				return ErrProfileNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresSquadRepository) RemoveMember(ctx context.Context, squadID, profileID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM squad_members WHERE squad_id = $1 AND profile_id = $2`,
		squadID, profileID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSquadMemberNotFound)
}

func (r *postgresSquadRepository) ListMembers(ctx context.Context, squadID int) ([]models.SquadMember, error) {
	query := `
		SELECT sm.squad_id, sm.profile_id, p.full_name, sm.joined_at
		FROM squad_members sm
		JOIN profiles p ON sm.profile_id = p.id
		WHERE sm.squad_id = $1
		ORDER BY sm.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, squadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.SquadMember, 0)
	for rows.Next() {
		var m models.SquadMember
		if err := rows.Scan(&m.SquadID, &m.ProfileID, &m.FullName, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
