package services

import (
	"context"

	"football-analysis/store"
)

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)

type RankingService struct {
	Store store.StatsStore
}

func NewRankingService(st store.StatsStore) *RankingService {
	return &RankingService{Store: st}
}

// GetRanking returns the top limit users with 1-based positions. Non-positive limits are rejected
// and anything above MaxRankingLimit is clamped.
func (s *RankingService) GetRanking(ctx context.Context, limit int) ([]StatsView, error) {
	if limit <= 0 {
		return nil, invalid("limit", "must be a positive integer")
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}

	rows, err := s.Store.ListStats(ctx, limit)
	if err != nil {
		return nil, err
	}
	SortRanking(rows)

	out := make([]StatsView, 0, len(rows))
	for i := range rows {
		v := NewStatsView(&rows[i])
		v.Position = i + 1
		out = append(out, v)
	}
	return out, nil
}
