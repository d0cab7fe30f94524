package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"uniscope/internal/gateway"
)

// Service fetches the catalog and leaderboard. A nil cache disables the
// offline snapshot.
type Service struct {
	gw     *gateway.Client
	cache  *Cache
	logger *zap.Logger
}

// NewService builds a Service.
func NewService(gw *gateway.Client, cache *Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gw: gw, cache: cache, logger: logger}
}

// Universities fetches the catalog. On success the snapshot cache is
// refreshed; on fetch failure the last snapshot is served instead, and only
// when both are empty does the error surface.
func (s *Service) Universities(ctx context.Context) ([]University, error) {
	raw, err := s.gw.Universities(ctx)
	if err != nil {
		if s.cache != nil {
			cached, fetchedAt, cacheErr := s.cache.Load()
			if cacheErr == nil && len(cached) > 0 {
				s.logger.Warn("catalog fetch failed, serving cached snapshot",
					zap.Error(err), zap.Time("fetched_at", fetchedAt))
				return cached, nil
			}
		}
		return nil, fmt.Errorf("failed to fetch universities: %w", err)
	}

	var list []University
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to decode universities: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Save(raw); err != nil {
			s.logger.Warn("failed to refresh catalog snapshot", zap.Error(err))
		}
	}
	return list, nil
}

// Leaderboard fetches the catalog and the ranking concurrently, then sorts
// universities by their average rating, highest first. Universities without
// a ranking entry rank as zero. Ties keep catalog order.
func (s *Service) Leaderboard(ctx context.Context) ([]University, error) {
	var list []University
	var ranking []gateway.RankingEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.Universities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ranking, err = s.gw.Ranking(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avgByID := make(map[int]float64, len(ranking))
	for _, entry := range ranking {
		avg, err := strconv.ParseFloat(entry.Avg, 64)
		if err != nil {
			s.logger.Warn("unparseable ranking average",
				zap.Int("university_id", entry.UniversityID),
				zap.String("avg", entry.Avg))
			continue
		}
		avgByID[entry.UniversityID] = avg
	}

	sorted := make([]University, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return avgByID[sorted[i].ID] > avgByID[sorted[j].ID]
	})
	return sorted, nil
}
