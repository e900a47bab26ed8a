package models

import "time"

type Course struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Location     *string   `json:"location,omitempty"`
	CourseRating *float64  `json:"course_rating,omitempty"`
	SlopeRating  *int      `json:"slope_rating,omitempty"`
	TeeColor     *string   `json:"tee_color,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Holes []CourseHole `json:"holes,omitempty"`
}

// CourseHole rows are written in bulk when a course is created and never
// mutated afterwards. Stroke indices form a permutation of 1..18 per course.
type CourseHole struct {
	ID          int `json:"id"`
	CourseID    int `json:"course_id"`
	HoleNumber  int `json:"hole_number"`
	Par         int `json:"par"`
	StrokeIndex int `json:"stroke_index"`
	Distance    int `json:"distance"`
}
