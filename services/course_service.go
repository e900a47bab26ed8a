package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
)

type CourseHoleInput struct {
	HoleNumber  int `json:"hole_number"`
	Par         int `json:"par"`
	StrokeIndex int `json:"stroke_index"`
	Distance    int `json:"distance"`
}

type CreateCourseInput struct {
	Name         string            `json:"name"`
	Location     *string           `json:"location,omitempty"`
	CourseRating *float64          `json:"course_rating,omitempty"`
	SlopeRating  *int              `json:"slope_rating,omitempty"`
	TeeColor     *string           `json:"tee_color,omitempty"`
	Holes        []CourseHoleInput `json:"holes"`
}

type CourseService interface {
	CreateCourse(ctx context.Context, input CreateCourseInput) (*models.Course, error)
	GetCourse(ctx context.Context, id int) (*models.Course, error)
	GetCourseByName(ctx context.Context, name string) (*models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

type courseService struct {
	courseRepo repositories.CourseRepository
}

func NewCourseService(courseRepo repositories.CourseRepository) CourseService {
	return &courseService{courseRepo: courseRepo}
}

// ValidateCourseHoles checks a full 18-hole layout: hole numbers 1..18 in
// order, positive pars, and stroke indices forming a permutation of 1..18.
func ValidateCourseHoles(holes []CourseHoleInput) *ValidationError {
	fields := make(map[string]string)

	if len(holes) != 18 {
		fields["holes"] = "a course layout needs exactly 18 holes"
		return &ValidationError{Fields: fields}
	}

	seenIndex := make(map[int]bool, 18)
	for i, h := range holes {
		key := fmt.Sprintf("holes[%d]", i)
		if h.HoleNumber != i+1 {
			fields[key] = fmt.Sprintf("expected hole number %d, got %d", i+1, h.HoleNumber)
		}
		if h.Par < 3 || h.Par > 6 {
			fields[key] = fmt.Sprintf("par %d is out of range", h.Par)
		}
		if h.StrokeIndex < 1 || h.StrokeIndex > 18 {
			fields[key] = fmt.Sprintf("stroke index %d is out of range", h.StrokeIndex)
		} else if seenIndex[h.StrokeIndex] {
			fields[key] = fmt.Sprintf("stroke index %d is duplicated", h.StrokeIndex)
		}
		seenIndex[h.StrokeIndex] = true
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *courseService) CreateCourse(ctx context.Context, input CreateCourseInput) (*models.Course, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "course name is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if vErr := ValidateCourseHoles(input.Holes); vErr != nil {
		return nil, vErr
	}

	course := &models.Course{
		Name:         strings.TrimSpace(input.Name),
		Location:     input.Location,
		CourseRating: input.CourseRating,
		SlopeRating:  input.SlopeRating,
		TeeColor:     input.TeeColor,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrCourseNameConflict) {
			return nil, ErrCourseNameConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrCourseCreationFailed, err)
	}

	holes := make([]models.CourseHole, 0, len(input.Holes))
	for _, h := range input.Holes {
		holes = append(holes, models.CourseHole{
			CourseID:    course.ID,
			HoleNumber:  h.HoleNumber,
			Par:         h.Par,
			StrokeIndex: h.StrokeIndex,
			Distance:    h.Distance,
		})
	}
	if err := s.courseRepo.CreateHoles(ctx, course.ID, holes); err != nil {
		return nil, fmt.Errorf("failed to create course holes: %w", err)
	}
	course.Holes = holes
	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	holes, err := s.courseRepo.ListHoles(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load holes for course %d: %w", id, err)
	}
	course.Holes = holes
	return course, nil
}

func (s *courseService) GetCourseByName(ctx context.Context, name string) (*models.Course, error) {
	course, err := s.courseRepo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.courseRepo.List(ctx)
}
