package services

import (
	"errors"
	"testing"
	"time"

	"football-analysis/models"
	"football-analysis/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDefaultsConfidenceAndCountsStats(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Flamengo", "Palmeiras")

	p, err := e.preds.Submit(e.ctx, SubmitPredictionInput{
		UserName:  "Ana",
		UserEmail: "  Ana@Example.com ",
		MatchID:   m.ID,
		Outcome:   "HOME",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfidence, p.Confidence)
	assert.Equal(t, "ana@example.com", p.UserEmail)
	assert.Equal(t, models.OutcomeHome, p.Outcome)
	assert.Nil(t, p.IsCorrect)
	assert.Zero(t, p.PointsEarned)
	require.NotNil(t, p.Match)
	assert.Equal(t, "Flamengo", p.Match.HomeTeam)

	stats := e.statsOf(t, "ana@example.com")
	assert.Equal(t, "Ana", stats.UserName)
	assert.Equal(t, 1, stats.TotalPredictions)
	assert.Zero(t, stats.CorrectPredictions)
	assert.Zero(t, stats.TotalPoints)
}

func TestSubmitRejectsDuplicateAndCountsOnce(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Flamengo", "Palmeiras")
	e.predict(t, "x@x.com", m.ID, models.OutcomeHome, 3)

	_, err := e.preds.Submit(e.ctx, SubmitPredictionInput{
		UserName: "X", UserEmail: "x@x.com", MatchID: m.ID, Outcome: models.OutcomeAway,
	})
	assert.ErrorIs(t, err, ErrDuplicatePrediction)

	assert.Equal(t, 1, e.statsOf(t, "x@x.com").TotalPredictions)
	preds, err := e.st.FindPredictionsByMatch(e.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, models.OutcomeHome, preds[0].Outcome)
}

func TestSubmitValidation(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Grêmio", "Internacional")

	valid := func() SubmitPredictionInput {
		return SubmitPredictionInput{UserName: "Bia", UserEmail: "bia@x.com", MatchID: m.ID, Outcome: models.OutcomeDraw}
	}
	cases := []struct {
		name  string
		field string
		edit  func(*SubmitPredictionInput)
	}{
		{"confidence too low", "confidence", func(in *SubmitPredictionInput) { in.Confidence = intp(0) }},
		{"confidence too high", "confidence", func(in *SubmitPredictionInput) { in.Confidence = intp(6) }},
		{"unknown outcome", "prediction", func(in *SubmitPredictionInput) { in.Outcome = "win" }},
		{"missing name", "user_name", func(in *SubmitPredictionInput) { in.UserName = "  " }},
		{"missing email", "user_email", func(in *SubmitPredictionInput) { in.UserEmail = "" }},
		{"bad email", "user_email", func(in *SubmitPredictionInput) { in.UserEmail = "not-an-email" }},
		{"missing match", "match", func(in *SubmitPredictionInput) { in.MatchID = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid()
			tc.edit(&in)
			_, err := e.preds.Submit(e.ctx, in)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	_, err := e.st.GetStats(e.ctx, "bia@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitUnknownMatch(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.preds.Submit(e.ctx, SubmitPredictionInput{
		UserName: "C", UserEmail: "c@x.com", MatchID: 999, Outcome: models.OutcomeHome,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitClosedMatch(t *testing.T) {
	e := newTestEnv(t)

	live := e.newMatch(t, "Santos", "Fluminense")
	_, _, err := e.matches.UpdateResult(e.ctx, live.ID, MatchResultInput{Status: models.MatchStatusLive})
	require.NoError(t, err)

	kickedOff, err := e.matches.Create(e.ctx, CreateMatchInput{
		HomeTeam: "Bahia", AwayTeam: "Vitória", ScheduledAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	for _, id := range []uint{live.ID, kickedOff.ID} {
		_, err := e.preds.Submit(e.ctx, SubmitPredictionInput{
			UserName: "D", UserEmail: "d@x.com", MatchID: id, Outcome: models.OutcomeHome,
		})
		assert.ErrorIs(t, err, ErrMatchClosed)
	}
	_, err = e.st.GetStats(e.ctx, "d@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitAcceptsPostponedMatch(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Fortaleza", "Ceará")
	_, _, err := e.matches.UpdateResult(e.ctx, m.ID, MatchResultInput{Status: models.MatchStatusPostponed})
	require.NoError(t, err)

	e.predict(t, "e@x.com", m.ID, models.OutcomeAway, 2)
}

func TestSubmitAcceptsPostponedMatchPastOriginalKickoff(t *testing.T) {
	e := newTestEnv(t)
	m, err := e.matches.Create(e.ctx, CreateMatchInput{
		HomeTeam:    "Sport",
		AwayTeam:    "Náutico",
		ScheduledAt: time.Now().Add(-2 * time.Hour),
		Status:      models.MatchStatusPostponed,
	})
	require.NoError(t, err)

	p := e.predict(t, "f@x.com", m.ID, models.OutcomeDraw, 3)
	assert.Equal(t, m.ID, p.MatchID)
	assert.Equal(t, 1, e.statsOf(t, "f@x.com").TotalPredictions)
}

func TestForUserNewestFirst(t *testing.T) {
	e := newTestEnv(t)
	m1 := e.newMatch(t, "Botafogo", "Vasco")
	m2 := e.newMatch(t, "Bahia", "Vitória")
	e.predict(t, "f@x.com", m1.ID, models.OutcomeHome, 1)
	e.predict(t, "f@x.com", m2.ID, models.OutcomeDraw, 2)
	e.predict(t, "other@x.com", m2.ID, models.OutcomeDraw, 2)

	preds, err := e.preds.ForUser(e.ctx, "F@x.com")
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, m2.ID, preds[0].MatchID)
	assert.Equal(t, m1.ID, preds[1].MatchID)
	require.NotNil(t, preds[0].Match)
	assert.Equal(t, "Bahia", preds[0].Match.HomeTeam)

	_, err = e.preds.ForUser(e.ctx, " ")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestForMatch(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Botafogo", "Vasco")
	e.predict(t, "g@x.com", m.ID, models.OutcomeHome, 1)
	e.predict(t, "h@x.com", m.ID, models.OutcomeAway, 1)

	preds, err := e.preds.ForMatch(e.ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, preds, 2)

	_, err = e.preds.ForMatch(e.ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}
