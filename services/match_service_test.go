package services

import (
	"errors"
	"testing"
	"time"

	"football-analysis/footballapi"
	"football-analysis/models"
	"football-analysis/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlamengoPalmeirasSettlement(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Flamengo", "Palmeiras")
	e.predict(t, "u1@x.com", m.ID, models.OutcomeHome, 4)
	e.predict(t, "u2@x.com", m.ID, models.OutcomeDraw, 5)

	sum := e.finish(t, m.ID, 2, 1)
	assert.Equal(t, JudgeSummary{MatchID: m.ID, Predictions: 2, Changed: 2, Correct: 1, UsersUpdated: 2}, *sum)

	preds, err := e.st.FindPredictionsByMatch(e.ctx, m.ID)
	require.NoError(t, err)
	byUser := map[string]models.Prediction{}
	for _, p := range preds {
		byUser[p.UserEmail] = p
	}
	require.NotNil(t, byUser["u1@x.com"].IsCorrect)
	assert.True(t, *byUser["u1@x.com"].IsCorrect)
	assert.Equal(t, 40, byUser["u1@x.com"].PointsEarned)
	require.NotNil(t, byUser["u2@x.com"].IsCorrect)
	assert.False(t, *byUser["u2@x.com"].IsCorrect)
	assert.Zero(t, byUser["u2@x.com"].PointsEarned)

	u1 := e.statsOf(t, "u1@x.com")
	assert.Equal(t, 40, u1.TotalPoints)
	assert.Equal(t, 1, u1.CorrectPredictions)
	assert.Equal(t, 1, u1.TotalPredictions)
	assert.Equal(t, 100.0, u1.Accuracy())

	u2 := e.statsOf(t, "u2@x.com")
	assert.Zero(t, u2.TotalPoints)
	assert.Zero(t, u2.CorrectPredictions)
	assert.Equal(t, 1, u2.TotalPredictions)
}

func TestJudgeMatchTwiceChangesNothing(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Flamengo", "Palmeiras")
	e.predict(t, "u1@x.com", m.ID, models.OutcomeHome, 4)
	e.finish(t, m.ID, 2, 1)

	sum, err := e.matches.JudgeMatch(e.ctx, m.ID)
	require.NoError(t, err)
	assert.Zero(t, sum.Changed)
	assert.Equal(t, 1, sum.Correct)

	u1 := e.statsOf(t, "u1@x.com")
	assert.Equal(t, 40, u1.TotalPoints)
	assert.Equal(t, 1, u1.CorrectPredictions)
}

func TestJudgeMatchRequiresSettledMatch(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Santos", "Fluminense")

	_, err := e.matches.JudgeMatch(e.ctx, m.ID)
	assert.ErrorIs(t, err, ErrMatchNotSettled)

	_, err = e.matches.JudgeMatch(e.ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateResultValidation(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Grêmio", "Internacional")

	cases := map[string]MatchResultInput{
		"finished without scores": {Status: models.MatchStatusFinished},
		"one score only":          {Status: models.MatchStatusLive, HomeScore: intp(1)},
		"negative score":          {Status: models.MatchStatusFinished, HomeScore: intp(-1), AwayScore: intp(0)},
		"unknown status":          {Status: "abandoned"},
	}
	for name, in := range cases {
		_, _, err := e.matches.UpdateResult(e.ctx, m.ID, in)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), name)
	}

	got, err := e.matches.Get(e.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, got.Status)
	assert.Nil(t, got.HomeScore)
}

func TestResultCorrectionRejudges(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Atlético Mineiro", "Cruzeiro")
	e.predict(t, "u1@x.com", m.ID, models.OutcomeHome, 4)
	e.predict(t, "u2@x.com", m.ID, models.OutcomeDraw, 5)
	e.finish(t, m.ID, 2, 1)

	sum := e.finish(t, m.ID, 1, 1)
	assert.Equal(t, 2, sum.Changed)
	assert.Zero(t, e.statsOf(t, "u1@x.com").TotalPoints)
	assert.Equal(t, 50, e.statsOf(t, "u2@x.com").TotalPoints)

	_, sum, err := e.matches.UpdateResult(e.ctx, m.ID, MatchResultInput{Status: models.MatchStatusLive})
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 2, sum.Changed)

	u2 := e.statsOf(t, "u2@x.com")
	assert.Zero(t, u2.TotalPoints)
	assert.Zero(t, u2.CorrectPredictions)
	assert.Equal(t, 1, u2.TotalPredictions)

	preds, err := e.st.FindPredictionsByMatch(e.ctx, m.ID)
	require.NoError(t, err)
	for _, p := range preds {
		assert.Nil(t, p.IsCorrect)
	}
}

func TestJudgeSettledMatchesSweep(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Botafogo", "Vasco")
	open := e.newMatch(t, "Santos", "Fluminense")
	e.predict(t, "u1@x.com", m.ID, models.OutcomeAway, 3)
	e.predict(t, "u1@x.com", open.ID, models.OutcomeAway, 3)

	// result written without going through UpdateResult, e.g. by a provider sync
	stored, err := e.st.GetMatch(e.ctx, m.ID)
	require.NoError(t, err)
	stored.Status = models.MatchStatusFinished
	stored.HomeScore, stored.AwayScore = intp(0), intp(2)
	require.NoError(t, e.st.SaveMatch(e.ctx, stored))
	stored, err = e.st.GetMatch(e.ctx, m.ID)
	require.NoError(t, err)

	res, err := e.matches.JudgeSettledMatches(e.ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, 1, res.Changed)
	assert.True(t, res.Cursor.Equal(stored.UpdatedAt))

	u1 := e.statsOf(t, "u1@x.com")
	assert.Equal(t, 30, u1.TotalPoints)
	assert.Equal(t, 2, u1.TotalPredictions)

	again, err := e.matches.JudgeSettledMatches(e.ctx, res.Cursor)
	require.NoError(t, err)
	assert.Zero(t, again.Matches)
	assert.True(t, again.Cursor.Equal(res.Cursor))

	full, err := e.matches.JudgeSettledMatches(e.ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, full.Matches)
	assert.Zero(t, full.Changed)
	assert.Equal(t, 30, e.statsOf(t, "u1@x.com").TotalPoints)
}

func TestDeleteMatchRederivesStats(t *testing.T) {
	e := newTestEnv(t)
	settled := e.newMatch(t, "Flamengo", "Palmeiras")
	other := e.newMatch(t, "Bahia", "Vitória")
	e.predict(t, "u1@x.com", settled.ID, models.OutcomeHome, 5)
	e.predict(t, "u1@x.com", other.ID, models.OutcomeHome, 1)
	e.finish(t, settled.ID, 3, 0)
	require.Equal(t, 50, e.statsOf(t, "u1@x.com").TotalPoints)

	require.NoError(t, e.matches.Delete(e.ctx, settled.ID))

	u1 := e.statsOf(t, "u1@x.com")
	assert.Equal(t, 1, u1.TotalPredictions)
	assert.Zero(t, u1.TotalPoints)
	assert.Zero(t, u1.CorrectPredictions)

	preds, err := e.st.FindPredictionsByMatch(e.ctx, settled.ID)
	require.NoError(t, err)
	assert.Empty(t, preds)

	assert.ErrorIs(t, e.matches.Delete(e.ctx, settled.ID), ErrNotFound)
}

func TestCreateMatchValidation(t *testing.T) {
	e := newTestEnv(t)
	kickoff := time.Now().Add(time.Hour)

	_, err := e.matches.Create(e.ctx, CreateMatchInput{HomeTeam: "Flamengo", AwayTeam: "flamengo", ScheduledAt: kickoff})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = e.matches.Create(e.ctx, CreateMatchInput{HomeTeam: "Flamengo", AwayTeam: "Palmeiras"})
	assert.ErrorAs(t, err, &verr)

	ext := "match_001"
	_, err = e.matches.Create(e.ctx, CreateMatchInput{ExternalID: &ext, HomeTeam: "Flamengo", AwayTeam: "Palmeiras", ScheduledAt: kickoff})
	require.NoError(t, err)
	_, err = e.matches.Create(e.ctx, CreateMatchInput{ExternalID: &ext, HomeTeam: "Santos", AwayTeam: "Palmeiras", ScheduledAt: kickoff})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpcoming(t *testing.T) {
	e := newTestEnv(t)
	now := time.Now()
	e.matches.Now = func() time.Time { return now }

	mk := func(home string, at time.Time) *models.Match {
		m, err := e.matches.Create(e.ctx, CreateMatchInput{HomeTeam: home, AwayTeam: "Palmeiras", ScheduledAt: at})
		require.NoError(t, err)
		return m
	}
	soon := mk("Flamengo", now.Add(48*time.Hour))
	sooner := mk("Santos", now.Add(2*time.Hour))
	mk("Bahia", now.Add(10*24*time.Hour))
	mk("Vasco", now.Add(-2*time.Hour))
	done := mk("Grêmio", now.Add(24*time.Hour))
	e.finish(t, done.ID, 1, 0)

	got, err := e.matches.Upcoming(e.ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sooner.ID, got[0].ID)
	assert.Equal(t, soon.ID, got[1].ID)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.matches.List(e.ctx, store.MatchFilter{Status: "paused"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSyncFixtures(t *testing.T) {
	e := newTestEnv(t)
	mock, err := footballapi.NewMockSource(time.Now).FetchUpcoming(e.ctx)
	require.NoError(t, err)
	e.source.fixtures = mock

	res, err := e.matches.SyncFixtures(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Source: "stub", Created: 10, Total: 10}, res)

	res, err = e.matches.SyncFixtures(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Source: "stub", Updated: 10, Total: 10}, res)

	first, err := e.st.GetMatchByExternalID(e.ctx, "match_001")
	require.NoError(t, err)
	assert.Equal(t, "Flamengo", first.HomeTeam)
	e.finish(t, first.ID, 2, 1)

	res, err = e.matches.SyncFixtures(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Source: "stub", Updated: 9, Skipped: 1, Total: 10}, res)

	first, err = e.st.GetMatchByExternalID(e.ctx, "match_001")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, first.Status)
	assert.Equal(t, 2, *first.HomeScore)
}

func TestSyncFixturesJudgesFinishedFixtures(t *testing.T) {
	e := newTestEnv(t)
	kickoff := time.Now().Add(time.Hour)
	e.source.fixtures = []footballapi.Fixture{{
		ExternalID: "9001", HomeTeam: "Grêmio", AwayTeam: "Internacional",
		Competition: "Serie A", ScheduledAt: kickoff, Status: models.MatchStatusScheduled,
	}}
	_, err := e.matches.SyncFixtures(e.ctx)
	require.NoError(t, err)

	m, err := e.st.GetMatchByExternalID(e.ctx, "9001")
	require.NoError(t, err)
	e.predict(t, "u1@x.com", m.ID, models.OutcomeDraw, 2)

	e.source.fixtures[0].Status = models.MatchStatusFinished
	e.source.fixtures[0].HomeScore, e.source.fixtures[0].AwayScore = intp(1), intp(1)
	res, err := e.matches.SyncFixtures(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 20, e.statsOf(t, "u1@x.com").TotalPoints)
}

func TestSyncFixturesSkipsIncompleteAndReportsSourceErrors(t *testing.T) {
	e := newTestEnv(t)
	e.source.fixtures = []footballapi.Fixture{{ExternalID: "", HomeTeam: "A", AwayTeam: "B", ScheduledAt: time.Now()}}
	res, err := e.matches.SyncFixtures(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)

	e.source.err = errors.New("quota exceeded")
	_, err = e.matches.SyncFixtures(e.ctx)
	assert.ErrorContains(t, err, "quota exceeded")
}
