package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/quizdash/quiz-service/internal/cache"
	"github.com/quizdash/quiz-service/internal/repositories"
	"github.com/quizdash/quiz-service/internal/utils"
)

const (
	leaderboardCacheKey = "quiz:leaderboard"
	leaderboardCacheTTL = 60 * time.Second
)

type leaderboardService struct {
	repo   repositories.Repository
	cache  cache.Cache
	logger utils.Logger
}

func NewLeaderboardService(repo repositories.Repository, c cache.Cache, logger utils.Logger) LeaderboardService {
	return &leaderboardService{repo: repo, cache: c, logger: logger}
}

// Leaderboard returns the full standings, cache-aside with a short TTL. The
// cache is additionally invalidated whenever an attempt completes, so a
// stale read window only exists if the invalidation itself fails.
func (s *leaderboardService) Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error) {
	var cached []*LeaderboardEntry
	err := s.cache.Get(ctx, leaderboardCacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "leaderboard cache read failed", "error", err)
	}

	rows, err := s.repo.Attempts().Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	entries := rankRows(rows)

	if err := s.cache.Set(ctx, leaderboardCacheKey, entries, leaderboardCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "leaderboard cache write failed", "error", err)
	}
	return entries, nil
}

func (s *leaderboardService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, leaderboardCacheKey)
}

// rankRows applies the authoritative ordering: score descending, then total
// time ascending, then user id ascending. The user id tie-break makes the
// ordering total, so equal players always appear in the same order.
func rankRows(rows []*repositories.LeaderboardRow) []*LeaderboardEntry {
	sorted := make([]*repositories.LeaderboardRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalScore != sorted[j].TotalScore {
			return sorted[i].TotalScore > sorted[j].TotalScore
		}
		if sorted[i].TotalTime != sorted[j].TotalTime {
			return sorted[i].TotalTime < sorted[j].TotalTime
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	entries := make([]*LeaderboardEntry, 0, len(sorted))
	for i, row := range sorted {
		entries = append(entries, &LeaderboardEntry{
			Rank:        i + 1,
			UserID:      row.UserID,
			FullName:    row.FullName,
			Email:       row.Email,
			Mobile:      row.Mobile,
			TotalScore:  row.TotalScore,
			TotalTime:   row.TotalTime,
			GamesPlayed: row.GamesPlayed,
			LastPlayed:  row.LastPlayed,
		})
	}
	return entries
}
