package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"football-analysis/footballapi"
	"football-analysis/models"
	"football-analysis/store"
	"football-analysis/utils"

	"github.com/rs/zerolog"
)

const UpcomingWindow = 7 * 24 * time.Hour

type MatchService struct {
	Store  store.Store
	Stats  *StatsService
	Source footballapi.FixtureSource
	Now    func() time.Time
	log    zerolog.Logger
}

func NewMatchService(st store.Store, stats *StatsService, source footballapi.FixtureSource) *MatchService {
	return &MatchService{Store: st, Stats: stats, Source: source, Now: time.Now, log: utils.Component("matches")}
}

type CreateMatchInput struct {
	ExternalID  *string            `json:"external_id"`
	HomeTeam    string             `json:"home_team"`
	AwayTeam    string             `json:"away_team"`
	Competition string             `json:"competition"`
	ScheduledAt time.Time          `json:"scheduled_at"`
	Status      models.MatchStatus `json:"status"`
}

type MatchResultInput struct {
	Status    models.MatchStatus `json:"status"`
	HomeScore *int               `json:"home_score"`
	AwayScore *int               `json:"away_score"`
}

// JudgeSummary describes one settlement pass over a match's predictions.
type JudgeSummary struct {
	MatchID      uint `json:"match_id"`
	Predictions  int  `json:"predictions"`
	Changed      int  `json:"changed"`
	Correct      int  `json:"correct"`
	UsersUpdated int  `json:"users_updated"`
}

type SweepResult struct {
	Matches int       `json:"matches"`
	Changed int       `json:"changed"`
	Cursor  time.Time `json:"cursor"`
}

type SyncResult struct {
	Source  string `json:"source"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Total   int    `json:"total"`
}

func (s *MatchService) List(ctx context.Context, f store.MatchFilter) ([]models.Match, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status", "unknown match status %q", f.Status)
	}
	return s.Store.ListMatches(ctx, f)
}

// Upcoming lists scheduled matches kicking off within the next seven days.
func (s *MatchService) Upcoming(ctx context.Context) ([]models.Match, error) {
	now := s.Now()
	to := now.Add(UpcomingWindow)
	return s.Store.ListMatches(ctx, store.MatchFilter{Status: models.MatchStatusScheduled, From: &now, To: &to})
}

func (s *MatchService) Get(ctx context.Context, id uint) (*models.Match, error) {
	m, err := s.Store.GetMatch(ctx, id)
	if err != nil {
		return nil, lookupErr("match", err)
	}
	return m, nil
}

func (s *MatchService) Create(ctx context.Context, in CreateMatchInput) (*models.Match, error) {
	m := &models.Match{
		HomeTeam:    utils.NormalizeName(in.HomeTeam),
		AwayTeam:    utils.NormalizeName(in.AwayTeam),
		Competition: strings.TrimSpace(in.Competition),
		ScheduledAt: in.ScheduledAt,
		Status:      in.Status,
	}
	if in.ExternalID != nil && strings.TrimSpace(*in.ExternalID) != "" {
		id := strings.TrimSpace(*in.ExternalID)
		m.ExternalID = &id
	}
	if m.Status == "" {
		m.Status = models.MatchStatusScheduled
	}
	if m.HomeTeam == "" {
		return nil, invalid("home_team", "is required")
	}
	if m.AwayTeam == "" {
		return nil, invalid("away_team", "is required")
	}
	if strings.EqualFold(m.HomeTeam, m.AwayTeam) {
		return nil, invalid("away_team", "must differ from home_team")
	}
	if m.ScheduledAt.IsZero() {
		return nil, invalid("scheduled_at", "is required")
	}
	if m.Status == models.MatchStatusFinished {
		return nil, invalid("status", "a match is created without a result; record it afterwards")
	}
	if !m.Status.Valid() {
		return nil, invalid("status", "unknown match status %q", m.Status)
	}

	if err := s.Store.CreateMatch(ctx, m); err != nil {
		return nil, conflictErr("match external_id", err)
	}
	return m, nil
}

func validateResult(in MatchResultInput) error {
	if !in.Status.Valid() {
		return invalid("status", "unknown match status %q", in.Status)
	}
	if (in.HomeScore == nil) != (in.AwayScore == nil) {
		return invalid("home_score", "home_score and away_score must be set together")
	}
	if in.HomeScore != nil && (*in.HomeScore < 0 || *in.AwayScore < 0) {
		return invalid("home_score", "scores cannot be negative")
	}
	if in.Status == models.MatchStatusFinished && in.HomeScore == nil {
		return invalid("home_score", "a finished match needs both scores")
	}
	return nil
}

// UpdateResult records status and score. When the match is or was settled, its predictions are
// re-judged and the affected users' statistics re-derived in the same transaction.
func (s *MatchService) UpdateResult(ctx context.Context, id uint, in MatchResultInput) (*models.Match, *JudgeSummary, error) {
	if err := validateResult(in); err != nil {
		return nil, nil, err
	}

	var (
		match   *models.Match
		summary *JudgeSummary
	)
	err := s.Store.WithinTx(ctx, func(tx store.Store) error {
		m, err := tx.GetMatch(ctx, id)
		if err != nil {
			return lookupErr("match", err)
		}
		wasSettled := m.IsSettled()

		m.Status = in.Status
		m.HomeScore, m.AwayScore = in.HomeScore, in.AwayScore
		if err := tx.SaveMatch(ctx, m); err != nil {
			return err
		}
		match = m

		if m.IsSettled() || wasSettled {
			sum, err := s.judge(ctx, tx, m)
			if err != nil {
				return err
			}
			summary = &sum
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	ev := s.log.Info().Uint("match", match.ID).Str("status", string(match.Status))
	if summary != nil {
		ev = ev.Int("judged", summary.Predictions).Int("changed", summary.Changed)
	}
	ev.Msg("match result recorded")
	return match, summary, nil
}

// judge applies the scoring rule to every prediction on m and re-derives stats for each user whose
// prediction changed. st must be the caller's transaction.
func (s *MatchService) judge(ctx context.Context, st store.Store, m *models.Match) (JudgeSummary, error) {
	sum := JudgeSummary{MatchID: m.ID}
	preds, err := st.FindPredictionsByMatch(ctx, m.ID)
	if err != nil {
		return sum, err
	}
	sum.Predictions = len(preds)

	touched := map[string]string{}
	for i := range preds {
		p := &preds[i]
		if JudgePrediction(m, p) {
			if err := st.SavePrediction(ctx, p); err != nil {
				return sum, fmt.Errorf("save prediction %d: %w", p.ID, err)
			}
			sum.Changed++
			touched[p.UserEmail] = p.UserName
		}
		if p.IsCorrect != nil && *p.IsCorrect {
			sum.Correct++
		}
	}

	for _, email := range slices.Sorted(maps.Keys(touched)) {
		if _, err := s.Stats.recompute(ctx, st, email, touched[email]); err != nil {
			return sum, err
		}
	}
	sum.UsersUpdated = len(touched)
	return sum, nil
}

// JudgeMatch scores a settled match. Re-running it on an already judged match changes nothing.
func (s *MatchService) JudgeMatch(ctx context.Context, id uint) (*JudgeSummary, error) {
	var sum JudgeSummary
	err := s.Store.WithinTx(ctx, func(tx store.Store) error {
		m, err := tx.GetMatch(ctx, id)
		if err != nil {
			return lookupErr("match", err)
		}
		if !m.IsSettled() {
			return fmt.Errorf("match %d (%s): %w", m.ID, m.Status, ErrMatchNotSettled)
		}
		sum, err = s.judge(ctx, tx, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// JudgeSettledMatches judges every match settled after since, one transaction per match, and
// returns the cursor to pass on the next call. A match that is no longer settled by the time it is
// judged is skipped.
func (s *MatchService) JudgeSettledMatches(ctx context.Context, since time.Time) (SweepResult, error) {
	res := SweepResult{Cursor: since}
	matches, err := s.Store.GetSettledMatchesSince(ctx, since)
	if err != nil {
		return res, err
	}

	for _, m := range matches {
		sum, err := s.JudgeMatch(ctx, m.ID)
		switch {
		case errors.Is(err, ErrMatchNotSettled), errors.Is(err, ErrNotFound):
		case err != nil:
			return res, fmt.Errorf("judge match %d: %w", m.ID, err)
		default:
			res.Matches++
			res.Changed += sum.Changed
		}
		if m.UpdatedAt.After(res.Cursor) {
			res.Cursor = m.UpdatedAt
		}
	}
	return res, nil
}

// Delete removes a match with its predictions and re-derives the statistics of everyone who had
// predicted it.
func (s *MatchService) Delete(ctx context.Context, id uint) error {
	return s.Store.WithinTx(ctx, func(tx store.Store) error {
		preds, err := tx.FindPredictionsByMatch(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteMatch(ctx, id); err != nil {
			return lookupErr("match", err)
		}
		users := map[string]string{}
		for _, p := range preds {
			users[p.UserEmail] = p.UserName
		}
		for _, email := range slices.Sorted(maps.Keys(users)) {
			if _, err := s.Stats.recompute(ctx, tx, email, users[email]); err != nil {
				return err
			}
		}
		s.log.Info().Uint("match", id).Int("predictions", len(preds)).Msg("match deleted")
		return nil
	})
}

// SyncFixtures pulls fixtures from the configured source and upserts them by external id.
// Finished matches in the catalog are never overwritten.
func (s *MatchService) SyncFixtures(ctx context.Context) (SyncResult, error) {
	res := SyncResult{Source: s.Source.Name()}
	fixtures, err := s.Source.FetchUpcoming(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch fixtures from %s: %w", res.Source, err)
	}
	res.Total = len(fixtures)

	for _, f := range fixtures {
		outcome, err := s.upsertFixture(ctx, f)
		if err != nil {
			return res, fmt.Errorf("sync fixture %s: %w", f.ExternalID, err)
		}
		switch outcome {
		case syncCreated:
			res.Created++
		case syncUpdated:
			res.Updated++
		default:
			res.Skipped++
		}
	}

	s.log.Info().Str("source", res.Source).Int("created", res.Created).Int("updated", res.Updated).
		Int("skipped", res.Skipped).Msg("fixtures synced")
	return res, nil
}

type syncOutcome int

const (
	syncSkipped syncOutcome = iota
	syncCreated
	syncUpdated
)

func (s *MatchService) upsertFixture(ctx context.Context, f footballapi.Fixture) (syncOutcome, error) {
	extID := strings.TrimSpace(f.ExternalID)
	home, away := utils.NormalizeName(f.HomeTeam), utils.NormalizeName(f.AwayTeam)
	if extID == "" || home == "" || away == "" || f.ScheduledAt.IsZero() {
		s.log.Warn().Str("external_id", extID).Msg("skipping incomplete fixture")
		return syncSkipped, nil
	}
	status := f.Status
	if !status.Valid() {
		status = models.MatchStatusScheduled
	}
	homeScore, awayScore := f.HomeScore, f.AwayScore
	if homeScore == nil || awayScore == nil {
		homeScore, awayScore = nil, nil
		if status == models.MatchStatusFinished {
			status = models.MatchStatusLive
		}
	}

	outcome := syncSkipped
	err := s.Store.WithinTx(ctx, func(tx store.Store) error {
		m, err := tx.GetMatchByExternalID(ctx, extID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			m = &models.Match{ExternalID: &extID}
			outcome = syncCreated
		case err != nil:
			return err
		case m.Status == models.MatchStatusFinished:
			return nil
		default:
			outcome = syncUpdated
		}

		m.HomeTeam, m.AwayTeam = home, away
		m.Competition = strings.TrimSpace(f.Competition)
		m.ScheduledAt = f.ScheduledAt
		m.Status = status
		m.HomeScore, m.AwayScore = homeScore, awayScore

		if outcome == syncCreated {
			err = tx.CreateMatch(ctx, m)
		} else {
			err = tx.SaveMatch(ctx, m)
		}
		if err != nil {
			return err
		}
		if m.IsSettled() {
			_, err = s.judge(ctx, tx, m)
		}
		return err
	})
	if err != nil {
		return syncSkipped, err
	}
	return outcome, nil
}
