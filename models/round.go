package models

import "time"

type Round struct {
	ID           int       `json:"id"`
	ProfileID    int       `json:"profile_id"`
	CourseID     int       `json:"course_id"`
	CourseName   string    `json:"course_name,omitempty"`
	PlayedOn     time.Time `json:"played_on"`
	Weather      string    `json:"weather,omitempty"`
	Temperature  *float64  `json:"temperature,omitempty"`
	WindSpeed    *float64  `json:"wind_speed,omitempty"`
	TotalStrokes int       `json:"total_strokes"`
	TotalPar     int       `json:"total_par"`
	ScoreToPar   int       `json:"score_to_par"`
	HolesPlayed  int       `json:"holes_played"`
	CreatedAt    time.Time `json:"created_at"`

	Scores []RoundScore `json:"scores,omitempty"`
}

// RoundScore holds one hole of a saved round. Strokes is nil when the hole
// was not played.
type RoundScore struct {
	ID         int  `json:"id"`
	RoundID    int  `json:"round_id"`
	HoleNumber int  `json:"hole_number"`
	Par        int  `json:"par"`
	Distance   int  `json:"distance"`
	Strokes    *int `json:"strokes"`
}
