package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"football-analysis/models"
	"football-analysis/store"
	"football-analysis/utils"

	"github.com/rs/zerolog"
)

// StatsView is the public shape of a UserStats row, with accuracy derived at read time.
type StatsView struct {
	Position           int       `json:"position,omitempty"`
	UserName           string    `json:"user_name"`
	UserEmail          string    `json:"user_email"`
	TotalPredictions   int       `json:"total_predictions"`
	CorrectPredictions int       `json:"correct_predictions"`
	TotalPoints        int       `json:"total_points"`
	Accuracy           float64   `json:"accuracy"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewStatsView(s *models.UserStats) StatsView {
	return StatsView{
		UserName:           s.UserName,
		UserEmail:          s.UserEmail,
		TotalPredictions:   s.TotalPredictions,
		CorrectPredictions: s.CorrectPredictions,
		TotalPoints:        s.TotalPoints,
		Accuracy:           s.Accuracy(),
		UpdatedAt:          s.UpdatedAt,
	}
}

type StatsService struct {
	Store store.Store
	log   zerolog.Logger
}

func NewStatsService(st store.Store) *StatsService {
	return &StatsService{Store: st, log: utils.Component("stats")}
}

// recompute re-derives one user's row from all of their predictions using st, which is expected
// to be the caller's transaction.
func (s *StatsService) recompute(ctx context.Context, st store.Store, email, name string) (*models.UserStats, error) {
	stats, err := st.GetOrCreateStats(ctx, email, name)
	if err != nil {
		return nil, fmt.Errorf("ensure stats for %s: %w", email, err)
	}
	preds, err := st.FindPredictionsByUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load predictions for %s: %w", email, err)
	}

	t := TallyPredictions(preds)
	stats.TotalPredictions = t.Total
	stats.CorrectPredictions = t.Correct
	stats.TotalPoints = t.Points
	if err := st.SaveStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("save stats for %s: %w", email, err)
	}
	return stats, nil
}

// Recompute re-derives a single user's statistics in its own transaction.
func (s *StatsService) Recompute(ctx context.Context, email string) (*StatsView, error) {
	email = normalizeEmail(email)
	var out *models.UserStats
	err := s.Store.WithinTx(ctx, func(tx store.Store) error {
		existing, err := tx.GetStats(ctx, email)
		if err != nil {
			return lookupErr("user stats", err)
		}
		out, err = s.recompute(ctx, tx, email, existing.UserName)
		return err
	})
	if err != nil {
		return nil, err
	}
	v := NewStatsView(out)
	return &v, nil
}

// ReconcileAll re-derives every user's row. Each user is its own transaction so one failure does
// not roll back the rest; all failures are returned joined.
func (s *StatsService) ReconcileAll(ctx context.Context) (int, error) {
	rows, err := s.Store.ListStats(ctx, 0)
	if err != nil {
		return 0, err
	}

	var errs []error
	fixed := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		before := row
		err := s.Store.WithinTx(ctx, func(tx store.Store) error {
			after, err := s.recompute(ctx, tx, row.UserEmail, row.UserName)
			if err != nil {
				return err
			}
			if after.TotalPredictions != before.TotalPredictions ||
				after.CorrectPredictions != before.CorrectPredictions ||
				after.TotalPoints != before.TotalPoints {
				fixed++
				s.log.Warn().Str("user", row.UserEmail).
					Int("points_before", before.TotalPoints).Int("points_after", after.TotalPoints).
					Msg("stats drift corrected")
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	s.log.Info().Int("users", len(rows)).Int("corrected", fixed).Msg("stats reconciliation finished")
	return fixed, errors.Join(errs...)
}

func (s *StatsService) Get(ctx context.Context, email string) (*StatsView, error) {
	stats, err := s.Store.GetStats(ctx, normalizeEmail(email))
	if err != nil {
		return nil, lookupErr("user stats", err)
	}
	v := NewStatsView(stats)
	return &v, nil
}

// List returns every user's statistics in ranking order.
func (s *StatsService) List(ctx context.Context) ([]StatsView, error) {
	rows, err := s.Store.ListStats(ctx, 0)
	if err != nil {
		return nil, err
	}
	SortRanking(rows)
	out := make([]StatsView, 0, len(rows))
	for i := range rows {
		out = append(out, NewStatsView(&rows[i]))
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
