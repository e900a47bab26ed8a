package models

import "time"

type DashboardSummary struct {
	RoundsPlayed   int        `json:"rounds_played"`
	AvgScoreToPar  *float64   `json:"avg_score_to_par,omitempty"`
	BestScoreToPar *int       `json:"best_score_to_par,omitempty"`
	LastPlayedOn   *time.Time `json:"last_played_on,omitempty"`
	CoursesPlayed  int        `json:"courses_played"`
}

type LeaderboardEntry struct {
	ProfileID     int     `json:"profile_id"`
	FullName      string  `json:"full_name"`
	HandicapIndex float64 `json:"handicap_index"`
	RoundsPlayed  int     `json:"rounds_played"`
	AvgScoreToPar float64 `json:"avg_score_to_par"`
}
