package services

import (
	"context"
	"testing"
	"time"

	"football-analysis/footballapi"
	"football-analysis/models"
	"football-analysis/store/memstore"

	"github.com/stretchr/testify/require"
)

type stubSource struct {
	fixtures []footballapi.Fixture
	err      error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchUpcoming(context.Context) ([]footballapi.Fixture, error) {
	return s.fixtures, s.err
}

type testEnv struct {
	ctx     context.Context
	st      *memstore.Store
	source  *stubSource
	stats   *StatsService
	preds   *PredictionService
	matches *MatchService
	ranking *RankingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memstore.New()
	stats := NewStatsService(st)
	source := &stubSource{}
	return &testEnv{
		ctx:     context.Background(),
		st:      st,
		source:  source,
		stats:   stats,
		preds:   NewPredictionService(st, stats),
		matches: NewMatchService(st, stats, source),
		ranking: NewRankingService(st),
	}
}

// newMatch creates a scheduled match kicking off tomorrow.
func (e *testEnv) newMatch(t *testing.T, home, away string) *models.Match {
	t.Helper()
	m, err := e.matches.Create(e.ctx, CreateMatchInput{
		HomeTeam:    home,
		AwayTeam:    away,
		Competition: "Brasileirão Série A",
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) predict(t *testing.T, email string, matchID uint, outcome models.Outcome, confidence int) *models.Prediction {
	t.Helper()
	p, err := e.preds.Submit(e.ctx, SubmitPredictionInput{
		UserName:   "User " + email,
		UserEmail:  email,
		MatchID:    matchID,
		Outcome:    outcome,
		Confidence: &confidence,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) finish(t *testing.T, matchID uint, home, away int) *JudgeSummary {
	t.Helper()
	_, sum, err := e.matches.UpdateResult(e.ctx, matchID, MatchResultInput{
		Status:    models.MatchStatusFinished,
		HomeScore: &home,
		AwayScore: &away,
	})
	require.NoError(t, err)
	require.NotNil(t, sum)
	return sum
}

func (e *testEnv) statsOf(t *testing.T, email string) *models.UserStats {
	t.Helper()
	st, err := e.st.GetStats(e.ctx, email)
	require.NoError(t, err)
	return st
}

func intp(v int) *int { return &v }
