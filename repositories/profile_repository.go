package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/lib/pq"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileEmailConflict = errors.New("profile email conflict")
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id int) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByPasswordResetToken(ctx context.Context, token string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateStatus(ctx context.Context, id int, status models.ProfileStatus) error
	UpdateRole(ctx context.Context, id int, role models.UserRole) error
	SetPasswordResetToken(ctx context.Context, id int, token string, expiresAt time.Time) error
	List(ctx context.Context, status *models.ProfileStatus) ([]models.Profile, error)
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

const profileColumns = `
	id, full_name, email, password_hash, date_of_birth, home_club,
	handicap_index, membership_number, status, role, disclaimer_accepted,
	password_reset_token, password_reset_expires_at, created_at`

func (r *postgresProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (
			full_name, email, password_hash, date_of_birth, home_club,
			handicap_index, membership_number, status, role, disclaimer_accepted
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.FullName,
		profile.Email,
		profile.PasswordHash,
		profile.DateOfBirth,
		profile.HomeClub,
		profile.HandicapIndex,
		profile.MembershipNumber,
		profile.Status,
		profile.Role,
		profile.DisclaimerAccepted,
	).Scan(&profile.ID, &profile.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			if pqErr.Constraint == "profiles_email_key" {
				return ErrProfileEmailConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanProfile(ctx, query, id)
}

func (r *postgresProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.scanProfile(ctx, query, email)
}

func (r *postgresProfileRepository) GetByPasswordResetToken(ctx context.Context, token string) (*models.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM profiles WHERE password_reset_token = $1`
	return r.scanProfile(ctx, query, token)
}

func (r *postgresProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles SET
			full_name = $1,
			email = $2,
			password_hash = $3,
			date_of_birth = $4,
			home_club = $5,
			handicap_index = $6,
			membership_number = $7,
			disclaimer_accepted = $8,
			password_reset_token = $9,
			password_reset_expires_at = $10
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		profile.FullName,
		profile.Email,
		profile.PasswordHash,
		profile.DateOfBirth,
		profile.HomeClub,
		profile.HandicapIndex,
		profile.MembershipNumber,
		profile.DisclaimerAccepted,
		profile.PasswordResetToken,
		profile.PasswordResetExpiresAt,
		profile.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			if pqErr.Constraint == "profiles_email_key" {
				return ErrProfileEmailConflict
			}
		}
		return err
	}

	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) UpdateStatus(ctx context.Context, id int, status models.ProfileStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) SetPasswordResetToken(ctx context.Context, id int, token string, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET password_reset_token = $1, password_reset_expires_at = $2 WHERE id = $3`,
		token, expiresAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) List(ctx context.Context, status *models.ProfileStatus) ([]models.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM profiles`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		var p models.Profile
		if err := scanProfileRow(rows, &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfileRow(row rowScanner, p *models.Profile) error {
	return row.Scan(
		&p.ID,
		&p.FullName,
		&p.Email,
		&p.PasswordHash,
		&p.DateOfBirth,
		&p.HomeClub,
		&p.HandicapIndex,
		&p.MembershipNumber,
		&p.Status,
		&p.Role,
		&p.DisclaimerAccepted,
		&p.PasswordResetToken,
		&p.PasswordResetExpiresAt,
		&p.CreatedAt,
	)
}

func (r *postgresProfileRepository) scanProfile(ctx context.Context, query string, args ...interface{}) (*models.Profile, error) {
	profile := &models.Profile{}
	err := scanProfileRow(r.db.QueryRowContext(ctx, query, args...), profile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return profile, nil
}
