package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairwaylabs/clubtrack/cache"
	"github.com/fairwaylabs/clubtrack/live"
	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
	"github.com/fairwaylabs/clubtrack/weather"
)

// DefaultWeatherCategory is what the round entry form starts on. A caller
// still sitting on it has not chosen anything, so a successful weather lookup
// may overwrite it.
const DefaultWeatherCategory = "Sunny"

const leaderboardCacheKey = "leaderboard"

// DashboardCacheKey returns the view-cache key for one member's dashboard.
func DashboardCacheKey(profileID int) string {
	return fmt.Sprintf("dashboard:%d", profileID)
}

// HoleEntry is one hole of the round entry form. Strokes is nil when the
// hole was not played.
type HoleEntry struct {
	Par      int  `json:"par"`
	Distance int  `json:"distance"`
	Strokes  *int `json:"strokes"`
}

type SaveRoundInput struct {
	CourseName   string      `json:"course_name"`
	Date         string      `json:"date"` // YYYY-MM-DD
	Weather      string      `json:"weather,omitempty"`
	CourseRating *float64    `json:"course_rating,omitempty"`
	SlopeRating  *int        `json:"slope_rating,omitempty"`
	TeeColor     *string     `json:"tee_color,omitempty"`
	Location     *string     `json:"location,omitempty"`
	Holes        []HoleEntry `json:"holes"`
	HolesPlayed  int         `json:"holes_played"` // 9 or 18
}

type SaveRoundResult struct {
	RoundID int `json:"round_id"`
}

// RoundEventBroadcaster is the slice of the live hub the round workflow
// needs.
type RoundEventBroadcaster interface {
	Broadcast(room string, msg live.Message)
}

type RoundService interface {
	SaveRound(ctx context.Context, profileID int, input SaveRoundInput) (*SaveRoundResult, error)
	GetRound(ctx context.Context, roundID int) (*models.Round, error)
	ListRounds(ctx context.Context, profileID int) ([]models.Round, error)
	DeleteRound(ctx context.Context, roundID int, callerID int, callerRole models.UserRole) error
}

type roundService struct {
	courseRepo    repositories.CourseRepository
	roundRepo     repositories.RoundRepository
	weatherClient weather.Client
	viewCache     cache.ViewCache
	hub           RoundEventBroadcaster
	logger        *slog.Logger
}

func NewRoundService(
	courseRepo repositories.CourseRepository,
	roundRepo repositories.RoundRepository,
	weatherClient weather.Client,
	viewCache cache.ViewCache,
	hub RoundEventBroadcaster,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		courseRepo:    courseRepo,
		roundRepo:     roundRepo,
		weatherClient: weatherClient,
		viewCache:     viewCache,
		hub:           hub,
		logger:        logger,
	}
}

// ActiveHoles slices the entry list down to the holes that count for this
// round. Entries past holesPlayed never affect totals and are not persisted.
func ActiveHoles(holes []HoleEntry, holesPlayed int) []HoleEntry {
	if holesPlayed < len(holes) {
		return holes[:holesPlayed]
	}
	return holes
}

// ComputeTotals sums strokes and par over the active hole subset. A nil
// strokes value counts as zero.
func ComputeTotals(holes []HoleEntry, holesPlayed int) (totalStrokes, totalPar int) {
	for _, h := range ActiveHoles(holes, holesPlayed) {
		if h.Strokes != nil {
			totalStrokes += *h.Strokes
		}
		totalPar += h.Par
	}
	return totalStrokes, totalPar
}

func validateSaveRoundInput(input SaveRoundInput) (time.Time, *ValidationError) {
	fields := make(map[string]string)

	if strings.TrimSpace(input.CourseName) == "" {
		fields["course_name"] = "course name is required"
	}

	var playedOn time.Time
	if input.Date == "" {
		fields["date"] = "date is required"
	} else {
		var err error
		playedOn, err = time.Parse("2006-01-02", input.Date)
		if err != nil {
			fields["date"] = "date must be YYYY-MM-DD"
		}
	}

	if input.HolesPlayed != 9 && input.HolesPlayed != 18 {
		fields["holes_played"] = "round length must be 9 or 18 holes"
	}
	if len(input.Holes) == 0 {
		fields["holes"] = "at least one hole entry is required"
	} else if len(input.Holes) > 18 {
		fields["holes"] = "at most 18 hole entries are allowed"
	}

	if len(fields) > 0 {
		return time.Time{}, &ValidationError{Fields: fields}
	}
	return playedOn, nil
}

func (s *roundService) SaveRound(ctx context.Context, profileID int, input SaveRoundInput) (*SaveRoundResult, error) {
	if profileID <= 0 {
		return nil, ErrUnauthenticated
	}

	playedOn, vErr := validateSaveRoundInput(input)
	if vErr != nil {
		return nil, vErr
	}

	course, err := s.resolveCourse(ctx, input)
	if err != nil {
		return nil, err
	}

	weatherCategory, temperature, windSpeed := s.enrichWeather(ctx, course, playedOn, input.Weather)

	totalStrokes, totalPar := ComputeTotals(input.Holes, input.HolesPlayed)

	round := &models.Round{
		ProfileID:    profileID,
		CourseID:     course.ID,
		PlayedOn:     playedOn,
		Weather:      weatherCategory,
		Temperature:  temperature,
		WindSpeed:    windSpeed,
		TotalStrokes: totalStrokes,
		TotalPar:     totalPar,
		ScoreToPar:   totalStrokes - totalPar,
		HolesPlayed:  input.HolesPlayed,
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoundCreationFailed, err)
	}

	active := ActiveHoles(input.Holes, input.HolesPlayed)
	scores := make([]models.RoundScore, 0, len(active))
	for i, h := range active {
		scores = append(scores, models.RoundScore{
			HoleNumber: i + 1,
			Par:        h.Par,
			Distance:   h.Distance,
			Strokes:    h.Strokes,
		})
	}
	if err := s.roundRepo.CreateScores(ctx, round.ID, scores); err != nil {
		// The round row stays behind; the caller surfaces this so the user
		// can retry or delete the orphan.
		return nil, fmt.Errorf("%w: %v", ErrScoreInsertFailed, err)
	}

	s.viewCache.Invalidate(DashboardCacheKey(profileID), leaderboardCacheKey)

	if s.hub != nil {
		s.hub.Broadcast(live.RoomClub, live.Message{
			Type: live.EventRoundSaved,
			Payload: map[string]interface{}{
				"round_id":     round.ID,
				"profile_id":   profileID,
				"course_name":  course.Name,
				"score_to_par": round.ScoreToPar,
			},
		})
	}

	return &SaveRoundResult{RoundID: round.ID}, nil
}

// resolveCourse looks the course up by exact name and creates it lazily on
// the first round that references it.
func (s *roundService) resolveCourse(ctx context.Context, input SaveRoundInput) (*models.Course, error) {
	name := strings.TrimSpace(input.CourseName)

	course, err := s.courseRepo.GetByName(ctx, name)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, repositories.ErrCourseNotFound) {
		return nil, fmt.Errorf("failed to look up course %q: %w", name, err)
	}

	course = &models.Course{
		Name:         name,
		Location:     input.Location,
		CourseRating: input.CourseRating,
		SlopeRating:  input.SlopeRating,
		TeeColor:     input.TeeColor,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrCourseNameConflict) {
			// Lost a create race; the row exists now.
			return s.courseRepo.GetByName(ctx, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrCourseCreationFailed, err)
	}
	return course, nil
}

// enrichWeather asks the weather service for the conditions on the day. The
// lookup is best-effort: any failure leaves the caller-supplied category and
// nil temperature/wind, and never aborts the save.
func (s *roundService) enrichWeather(ctx context.Context, course *models.Course, playedOn time.Time, supplied string) (string, *float64, *float64) {
	category := supplied
	if category == "" {
		category = DefaultWeatherCategory
	}

	if s.weatherClient == nil || course.Location == nil || *course.Location == "" || playedOn.IsZero() {
		return category, nil, nil
	}

	obs, err := s.weatherClient.Lookup(ctx, playedOn, *course.Location)
	if err != nil || obs == nil {
		if err != nil && s.logger != nil {
			s.logger.Warn("weather lookup failed, continuing without enrichment",
				slog.String("location", *course.Location),
				slog.Any("error", err))
		}
		return category, nil, nil
	}

	// A category the caller actually picked wins over the looked-up one.
	if obs.Category != "" && (supplied == "" || supplied == DefaultWeatherCategory) {
		category = obs.Category
	}
	return category, obs.Temperature, obs.WindSpeed
}

func (s *roundService) GetRound(ctx context.Context, roundID int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	scores, err := s.roundRepo.ListScores(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores for round %d: %w", roundID, err)
	}
	round.Scores = scores
	return round, nil
}

func (s *roundService) ListRounds(ctx context.Context, profileID int) ([]models.Round, error) {
	return s.roundRepo.ListByProfile(ctx, profileID)
}

func (s *roundService) DeleteRound(ctx context.Context, roundID int, callerID int, callerRole models.UserRole) error {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return err
	}

	isAdmin := callerRole == models.RoleAdmin || callerRole == models.RoleSuperAdmin
	if round.ProfileID != callerID && !isAdmin {
		return ErrForbiddenOperation
	}

	if err := s.roundRepo.Delete(ctx, roundID); err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return err
	}

	s.viewCache.Invalidate(DashboardCacheKey(round.ProfileID), leaderboardCacheKey)

	if s.hub != nil {
		s.hub.Broadcast(live.RoomClub, live.Message{
			Type: live.EventRoundDeleted,
			Payload: map[string]interface{}{
				"round_id":   roundID,
				"profile_id": round.ProfileID,
			},
		})
	}
	return nil
}
