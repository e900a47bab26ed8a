package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/lib/pq"
)

var (
	ErrRoundNotFound       = errors.New("round not found")
	ErrRoundCourseInvalid  = errors.New("round references an unknown course")
	ErrRoundProfileInvalid = errors.New("round references an unknown profile")
)

type RoundRepository interface {
	Create(ctx context.Context, round *models.Round) error
	CreateScores(ctx context.Context, roundID int, scores []models.RoundScore) error
	GetByID(ctx context.Context, id int) (*models.Round, error)
	ListScores(ctx context.Context, roundID int) ([]models.RoundScore, error)
	ListByProfile(ctx context.Context, profileID int) ([]models.Round, error)
	Delete(ctx context.Context, id int) error

	CountByProfile(ctx context.Context, profileID int) (int, error)
	CountCoursesByProfile(ctx context.Context, profileID int) (int, error)
	BestScoreToPar(ctx context.Context, profileID int) (*int, error)
	AvgScoreToPar(ctx context.Context, profileID int) (*float64, error)
	LastPlayedOn(ctx context.Context, profileID int) (*models.Round, error)
	Leaderboard(ctx context.Context, minRounds, limit int) ([]models.LeaderboardEntry, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (
			profile_id, course_id, played_on, weather, temperature, wind_speed,
			total_strokes, total_par, score_to_par, holes_played
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		round.ProfileID,
		round.CourseID,
		round.PlayedOn,
		round.Weather,
		round.Temperature,
		round.WindSpeed,
		round.TotalStrokes,
		round.TotalPar,
		round.ScoreToPar,
		round.HolesPlayed,
	).Scan(&round.ID, &round.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqForeignKeyViolation {
			switch pqErr.Constraint {
			case "rounds_course_id_fkey":
				return ErrRoundCourseInvalid
			case "rounds_profile_id_fkey":
				return ErrRoundProfileInvalid
			}
		}
		return err
	}
	return nil
}

// CreateScores bulk-inserts the per-hole rows for a freshly created round.
// round_scores cascade on round deletion at the schema level.
func (r *postgresRoundRepository) CreateScores(ctx context.Context, roundID int, scores []models.RoundScore) error {
	if len(scores) == 0 {
		return nil
	}

	query := `INSERT INTO round_scores (round_id, hole_number, par, distance, strokes) VALUES `
	args := make([]interface{}, 0, len(scores)*5)
	for i, s := range scores {
		if i > 0 {
			query += ", "
		}
		base := i * 5
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, roundID, s.HoleNumber, s.Par, s.Distance, s.Strokes)
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.Round, error) {
	query := `
		SELECT
			r.id, r.profile_id, r.course_id, c.name, r.played_on, r.weather,
			r.temperature, r.wind_speed, r.total_strokes, r.total_par,
			r.score_to_par, r.holes_played, r.created_at
		FROM rounds r
		JOIN courses c ON r.course_id = c.id
		WHERE r.id = $1`

	round := &models.Round{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&round.ID,
		&round.ProfileID,
		&round.CourseID,
		&round.CourseName,
		&round.PlayedOn,
		&round.Weather,
		&round.Temperature,
		&round.WindSpeed,
		&round.TotalStrokes,
		&round.TotalPar,
		&round.ScoreToPar,
		&round.HolesPlayed,
		&round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

func (r *postgresRoundRepository) ListScores(ctx context.Context, roundID int) ([]models.RoundScore, error) {
	query := `
		SELECT id, round_id, hole_number, par, distance, strokes
		FROM round_scores
		WHERE round_id = $1
		ORDER BY hole_number ASC`

	rows, err := r.db.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]models.RoundScore, 0, 18)
	for rows.Next() {
		var s models.RoundScore
		if err := rows.Scan(&s.ID, &s.RoundID, &s.HoleNumber, &s.Par, &s.Distance, &s.Strokes); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *postgresRoundRepository) ListByProfile(ctx context.Context, profileID int) ([]models.Round, error) {
	query := `
		SELECT
			r.id, r.profile_id, r.course_id, c.name, r.played_on, r.weather,
			r.temperature, r.wind_speed, r.total_strokes, r.total_par,
			r.score_to_par, r.holes_played, r.created_at
		FROM rounds r
		JOIN courses c ON r.course_id = c.id
		WHERE r.profile_id = $1
		ORDER BY r.played_on DESC, r.id DESC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		err := rows.Scan(
			&round.ID,
			&round.ProfileID,
			&round.CourseID,
			&round.CourseName,
			&round.PlayedOn,
			&round.Weather,
			&round.Temperature,
			&round.WindSpeed,
			&round.TotalStrokes,
			&round.TotalPar,
			&round.ScoreToPar,
			&round.HolesPlayed,
			&round.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *postgresRoundRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rounds WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) CountByProfile(ctx context.Context, profileID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rounds WHERE profile_id = $1`, profileID).Scan(&count)
	return count, err
}

func (r *postgresRoundRepository) CountCoursesByProfile(ctx context.Context, profileID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT course_id) FROM rounds WHERE profile_id = $1`, profileID).Scan(&count)
	return count, err
}

func (r *postgresRoundRepository) BestScoreToPar(ctx context.Context, profileID int) (*int, error) {
	var best sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MIN(score_to_par) FROM rounds WHERE profile_id = $1`, profileID).Scan(&best)
	if err != nil {
		return nil, err
	}
	if !best.Valid {
		return nil, nil
	}
	v := int(best.Int64)
	return &v, nil
}

func (r *postgresRoundRepository) AvgScoreToPar(ctx context.Context, profileID int) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(score_to_par) FROM rounds WHERE profile_id = $1`, profileID).Scan(&avg)
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *postgresRoundRepository) LastPlayedOn(ctx context.Context, profileID int) (*models.Round, error) {
	query := `
		SELECT
			r.id, r.profile_id, r.course_id, c.name, r.played_on, r.weather,
			r.temperature, r.wind_speed, r.total_strokes, r.total_par,
			r.score_to_par, r.holes_played, r.created_at
		FROM rounds r
		JOIN courses c ON r.course_id = c.id
		WHERE r.profile_id = $1
		ORDER BY r.played_on DESC, r.id DESC
		LIMIT 1`

	round := &models.Round{}
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&round.ID,
		&round.ProfileID,
		&round.CourseID,
		&round.CourseName,
		&round.PlayedOn,
		&round.Weather,
		&round.Temperature,
		&round.WindSpeed,
		&round.TotalStrokes,
		&round.TotalPar,
		&round.ScoreToPar,
		&round.HolesPlayed,
		&round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

// Leaderboard ranks approved members by average score to par. Members with
// fewer than minRounds saved rounds are excluded.
func (r *postgresRoundRepository) Leaderboard(ctx context.Context, minRounds, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT
			p.id, p.full_name, p.handicap_index,
			COUNT(r.id) AS rounds_played,
			AVG(r.score_to_par) AS avg_score_to_par
		FROM profiles p
		JOIN rounds r ON r.profile_id = p.id
		WHERE p.status = 'approved'
		GROUP BY p.id, p.full_name, p.handicap_index
		HAVING COUNT(r.id) >= $1
		ORDER BY avg_score_to_par ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, minRounds, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ProfileID, &e.FullName, &e.HandicapIndex, &e.RoundsPlayed, &e.AvgScoreToPar); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
