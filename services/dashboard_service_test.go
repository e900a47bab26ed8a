package services

import (
	"context"
	"testing"
	"time"

	"github.com/fairwaylabs/clubtrack/cache"
	"github.com/fairwaylabs/clubtrack/models"
)

type countingRoundRepo struct {
	*fakeRoundRepo
	countCalls       int
	leaderboardCalls int
}

func (r *countingRoundRepo) CountByProfile(ctx context.Context, profileID int) (int, error) {
	r.countCalls++
	return r.fakeRoundRepo.CountByProfile(ctx, profileID)
}

func (r *countingRoundRepo) Leaderboard(ctx context.Context, minRounds, limit int) ([]models.LeaderboardEntry, error) {
	r.leaderboardCalls++
	return []models.LeaderboardEntry{
		{ProfileID: 1, FullName: "Jordan Spieth", RoundsPlayed: 5},
	}, nil
}

func seedRounds(repo *fakeRoundRepo, profileID int, scoresToPar ...int) {
	for i, stp := range scoresToPar {
		repo.Create(context.Background(), &models.Round{
			ProfileID:    profileID,
			CourseID:     i + 1,
			PlayedOn:     time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC),
			TotalStrokes: 72 + stp,
			TotalPar:     72,
			ScoreToPar:   stp,
			HolesPlayed:  18,
		})
	}
}

func TestGetSummaryAggregates(t *testing.T) {
	repo := &countingRoundRepo{fakeRoundRepo: newFakeRoundRepo()}
	seedRounds(repo.fakeRoundRepo, 7, 4, -2, 10)
	svc := NewDashboardService(repo, cache.NewMemoryCache())

	summary, err := svc.GetSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.RoundsPlayed != 3 {
		t.Errorf("expected 3 rounds played, got %d", summary.RoundsPlayed)
	}
	if summary.CoursesPlayed != 3 {
		t.Errorf("expected 3 courses played, got %d", summary.CoursesPlayed)
	}
	if summary.BestScoreToPar == nil || *summary.BestScoreToPar != -2 {
		t.Errorf("unexpected best score to par: %v", summary.BestScoreToPar)
	}
	if summary.AvgScoreToPar == nil || *summary.AvgScoreToPar != 4 {
		t.Errorf("unexpected average score to par: %v", summary.AvgScoreToPar)
	}
	if summary.LastPlayedOn == nil || summary.LastPlayedOn.Day() != 3 {
		t.Errorf("unexpected last played date: %v", summary.LastPlayedOn)
	}
}

func TestGetSummaryEmptyProfile(t *testing.T) {
	repo := &countingRoundRepo{fakeRoundRepo: newFakeRoundRepo()}
	svc := NewDashboardService(repo, cache.NewMemoryCache())

	summary, err := svc.GetSummary(context.Background(), 42)
	if err != nil {
		t.Fatalf("summary for a profile with no rounds failed: %v", err)
	}
	if summary.RoundsPlayed != 0 || summary.BestScoreToPar != nil || summary.AvgScoreToPar != nil || summary.LastPlayedOn != nil {
		t.Errorf("expected an empty summary, got %+v", summary)
	}
}

func TestGetSummaryIsCached(t *testing.T) {
	repo := &countingRoundRepo{fakeRoundRepo: newFakeRoundRepo()}
	seedRounds(repo.fakeRoundRepo, 7, 1)
	vc := cache.NewMemoryCache()
	svc := NewDashboardService(repo, vc)

	if _, err := svc.GetSummary(context.Background(), 7); err != nil {
		t.Fatalf("first summary failed: %v", err)
	}
	if _, err := svc.GetSummary(context.Background(), 7); err != nil {
		t.Fatalf("second summary failed: %v", err)
	}
	if repo.countCalls != 1 {
		t.Errorf("expected the second read to hit the cache, saw %d repo calls", repo.countCalls)
	}

	// Invalidation forces a fresh read, the way a round save does.
	vc.Invalidate(DashboardCacheKey(7))
	if _, err := svc.GetSummary(context.Background(), 7); err != nil {
		t.Fatalf("post-invalidation summary failed: %v", err)
	}
	if repo.countCalls != 2 {
		t.Errorf("expected a repo call after invalidation, saw %d", repo.countCalls)
	}
}

func TestGetLeaderboardIsCached(t *testing.T) {
	repo := &countingRoundRepo{fakeRoundRepo: newFakeRoundRepo()}
	svc := NewDashboardService(repo, cache.NewMemoryCache())

	first, err := svc.GetLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(first) != 1 || first[0].FullName != "Jordan Spieth" {
		t.Errorf("unexpected leaderboard: %+v", first)
	}

	if _, err := svc.GetLeaderboard(context.Background()); err != nil {
		t.Fatalf("second leaderboard failed: %v", err)
	}
	if repo.leaderboardCalls != 1 {
		t.Errorf("expected the second read to hit the cache, saw %d repo calls", repo.leaderboardCalls)
	}
}
