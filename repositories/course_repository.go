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
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNameConflict = errors.New("course name conflict")
)

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	CreateHoles(ctx context.Context, courseID int, holes []models.CourseHole) error
	GetByID(ctx context.Context, id int) (*models.Course, error)
	GetByName(ctx context.Context, name string) (*models.Course, error)
	ListHoles(ctx context.Context, courseID int) ([]models.CourseHole, error)
	List(ctx context.Context) ([]models.Course, error)
}

type postgresCourseRepository struct {
	db *sql.DB
}

func NewPostgresCourseRepository(db *sql.DB) CourseRepository {
	return &postgresCourseRepository{db: db}
}

func (r *postgresCourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (name, location, course_rating, slope_rating, tee_color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		course.Name,
		course.Location,
		course.CourseRating,
		course.SlopeRating,
		course.TeeColor,
	).Scan(&course.ID, &course.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			if pqErr.Constraint == "courses_name_key" {
				return ErrCourseNameConflict
			}
		}
		return err
	}
	return nil
}

// CreateHoles bulk-inserts the full hole set for a course. One multi-row
// insert keeps this a single round trip.
func (r *postgresCourseRepository) CreateHoles(ctx context.Context, courseID int, holes []models.CourseHole) error {
	if len(holes) == 0 {
		return nil
	}

	query := `INSERT INTO course_holes (course_id, hole_number, par, stroke_index, distance) VALUES `
	args := make([]interface{}, 0, len(holes)*5)
	for i, h := range holes {
		if i > 0 {
			query += ", "
		}
		base := i * 5
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, courseID, h.HoleNumber, h.Par, h.StrokeIndex, h.Distance)
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *postgresCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `
		SELECT id, name, location, course_rating, slope_rating, tee_color, created_at
		FROM courses
		WHERE id = $1`
	return r.scanCourse(ctx, query, id)
}

// GetByName resolves a course by exact name match. Round saves use this as
// the lookup key before falling back to a lazy create.
func (r *postgresCourseRepository) GetByName(ctx context.Context, name string) (*models.Course, error) {
	query := `
		SELECT id, name, location, course_rating, slope_rating, tee_color, created_at
		FROM courses
		WHERE name = $1`
	return r.scanCourse(ctx, query, name)
}

func (r *postgresCourseRepository) ListHoles(ctx context.Context, courseID int) ([]models.CourseHole, error) {
	query := `
		SELECT id, course_id, hole_number, par, stroke_index, distance
		FROM course_holes
		WHERE course_id = $1
		ORDER BY hole_number ASC`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holes := make([]models.CourseHole, 0, 18)
	for rows.Next() {
		var h models.CourseHole
		if err := rows.Scan(&h.ID, &h.CourseID, &h.HoleNumber, &h.Par, &h.StrokeIndex, &h.Distance); err != nil {
			return nil, err
		}
		holes = append(holes, h)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return holes, nil
}

func (r *postgresCourseRepository) List(ctx context.Context) ([]models.Course, error) {
	query := `
		SELECT id, name, location, course_rating, slope_rating, tee_color, created_at
		FROM courses
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.CourseRating, &c.SlopeRating, &c.TeeColor, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *postgresCourseRepository) scanCourse(ctx context.Context, query string, args ...interface{}) (*models.Course, error) {
	course := &models.Course{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&course.ID,
		&course.Name,
		&course.Location,
		&course.CourseRating,
		&course.SlopeRating,
		&course.TeeColor,
		&course.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}
