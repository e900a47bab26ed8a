// Package weather wraps the external historical weather lookup used to
// enrich saved rounds. Every failure is reported as an error and the caller
// is expected to carry on without the data.
package weather

import (
	"context"
	"time"
)

// Observation is the enrichment result for one date and location.
type Observation struct {
	Category    string   // e.g. "Sunny", "Rainy"
	Temperature *float64 // max temperature, °C
	WindSpeed   *float64 // max wind speed, km/h
}

// Client looks up the historical weather for a calendar date at a free-form
// location string.
type Client interface {
	Lookup(ctx context.Context, date time.Time, location string) (*Observation, error)
}
