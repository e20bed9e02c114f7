package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"football-analysis/models"
	"football-analysis/store"
	"football-analysis/utils"

	"github.com/rs/zerolog"
)

type SubmitPredictionInput struct {
	UserName   string         `json:"user_name"`
	UserEmail  string         `json:"user_email"`
	MatchID    uint           `json:"match"`
	Outcome    models.Outcome `json:"prediction"`
	Confidence *int           `json:"confidence"`
}

type PredictionService struct {
	Store store.Store
	Stats *StatsService
	Now   func() time.Time
	log   zerolog.Logger
}

func NewPredictionService(st store.Store, stats *StatsService) *PredictionService {
	return &PredictionService{Store: st, Stats: stats, Now: time.Now, log: utils.Component("predictions")}
}

func (in *SubmitPredictionInput) normalize() error {
	in.UserName = strings.TrimSpace(in.UserName)
	in.UserEmail = normalizeEmail(in.UserEmail)
	in.Outcome = models.Outcome(strings.ToLower(strings.TrimSpace(string(in.Outcome))))

	if in.UserName == "" {
		return invalid("user_name", "is required")
	}
	if len([]rune(in.UserName)) > 200 {
		return invalid("user_name", "must be at most 200 characters")
	}
	if in.UserEmail == "" {
		return invalid("user_email", "is required")
	}
	if addr, err := mail.ParseAddress(in.UserEmail); err != nil || addr.Address != in.UserEmail {
		return invalid("user_email", "is not a valid email address")
	}
	if in.MatchID == 0 {
		return invalid("match", "is required")
	}
	if !in.Outcome.Valid() {
		return invalid("prediction", "must be one of home, draw, away")
	}
	if in.Confidence == nil {
		c := DefaultConfidence
		in.Confidence = &c
	}
	if *in.Confidence < MinConfidence || *in.Confidence > MaxConfidence {
		return invalid("confidence", "must be between %d and %d", MinConfidence, MaxConfidence)
	}
	return nil
}

// Submit records a prediction and counts it in the user's statistics in one transaction.
func (s *PredictionService) Submit(ctx context.Context, in SubmitPredictionInput) (*models.Prediction, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var pred *models.Prediction
	err := s.Store.WithinTx(ctx, func(tx store.Store) error {
		match, err := tx.GetMatch(ctx, in.MatchID)
		if err != nil {
			return lookupErr("match", err)
		}
		// a postponed match keeps its stale kickoff until rescheduled, so only scheduled ones are timed out
		kickedOff := match.Status == models.MatchStatusScheduled && !s.Now().Before(match.ScheduledAt)
		if !match.AcceptsPredictions() || kickedOff {
			return fmt.Errorf("match %d (%s): %w", match.ID, match.Status, ErrMatchClosed)
		}

		pred = &models.Prediction{
			UserName:   in.UserName,
			UserEmail:  in.UserEmail,
			MatchID:    match.ID,
			Outcome:    in.Outcome,
			Confidence: *in.Confidence,
		}
		if err := tx.CreatePrediction(ctx, pred); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrDuplicatePrediction
			}
			return err
		}
		if _, err := s.Stats.recompute(ctx, tx, in.UserEmail, in.UserName); err != nil {
			return err
		}
		pred.Match = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user", pred.UserEmail).Uint("match", pred.MatchID).
		Str("prediction", string(pred.Outcome)).Int("confidence", pred.Confidence).
		Msg("prediction submitted")
	return pred, nil
}

// ForUser lists one user's predictions, newest first, with match details.
func (s *PredictionService) ForUser(ctx context.Context, email string) ([]models.Prediction, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	return s.Store.FindPredictionsByUser(ctx, email)
}

func (s *PredictionService) ForMatch(ctx context.Context, matchID uint) ([]models.Prediction, error) {
	if _, err := s.Store.GetMatch(ctx, matchID); err != nil {
		return nil, lookupErr("match", err)
	}
	return s.Store.FindPredictionsByMatch(ctx, matchID)
}
