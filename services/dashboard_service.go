package services

import (
	"context"
	"errors"
	"time"

	"github.com/fairwaylabs/clubtrack/cache"
	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardCacheTTL   = 60 * time.Second
	leaderboardCacheTTL = 60 * time.Second

	// leaderboardMinRounds keeps one lucky nine-holer from topping the club.
	leaderboardMinRounds = 3
	leaderboardLimit     = 50
)

type DashboardService interface {
	GetSummary(ctx context.Context, profileID int) (*models.DashboardSummary, error)
	GetLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type dashboardService struct {
	roundRepo repositories.RoundRepository
	viewCache cache.ViewCache
}

func NewDashboardService(roundRepo repositories.RoundRepository, viewCache cache.ViewCache) DashboardService {
	return &dashboardService{
		roundRepo: roundRepo,
		viewCache: viewCache,
	}
}

func (s *dashboardService) GetSummary(ctx context.Context, profileID int) (*models.DashboardSummary, error) {
	key := DashboardCacheKey(profileID)
	if cached, ok := s.viewCache.Get(key); ok {
		if summary, ok := cached.(*models.DashboardSummary); ok {
			return summary, nil
		}
	}

	summary := &models.DashboardSummary{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.roundRepo.CountByProfile(gCtx, profileID)
		if err != nil {
			return err
		}
		summary.RoundsPlayed = count
		return nil
	})
	g.Go(func() error {
		count, err := s.roundRepo.CountCoursesByProfile(gCtx, profileID)
		if err != nil {
			return err
		}
		summary.CoursesPlayed = count
		return nil
	})
	g.Go(func() error {
		best, err := s.roundRepo.BestScoreToPar(gCtx, profileID)
		if err != nil {
			return err
		}
		summary.BestScoreToPar = best
		return nil
	})
	g.Go(func() error {
		avg, err := s.roundRepo.AvgScoreToPar(gCtx, profileID)
		if err != nil {
			return err
		}
		summary.AvgScoreToPar = avg
		return nil
	})
	g.Go(func() error {
		last, err := s.roundRepo.LastPlayedOn(gCtx, profileID)
		if err != nil {
			if errors.Is(err, repositories.ErrRoundNotFound) {
				return nil
			}
			return err
		}
		playedOn := last.PlayedOn
		summary.LastPlayedOn = &playedOn
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.viewCache.Set(key, summary, dashboardCacheTTL)
	return summary, nil
}

func (s *dashboardService) GetLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if cached, ok := s.viewCache.Get(leaderboardCacheKey); ok {
		if entries, ok := cached.([]models.LeaderboardEntry); ok {
			return entries, nil
		}
	}

	entries, err := s.roundRepo.Leaderboard(ctx, leaderboardMinRounds, leaderboardLimit)
	if err != nil {
		return nil, err
	}
	s.viewCache.Set(leaderboardCacheKey, entries, leaderboardCacheTTL)
	return entries, nil
}
