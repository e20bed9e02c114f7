package services

import (
	"errors"
	"testing"

	"football-analysis/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStats(t *testing.T, e *testEnv, rows ...models.UserStats) {
	t.Helper()
	for i := range rows {
		require.NoError(t, e.st.SaveStats(e.ctx, &rows[i]))
	}
}

func TestGetRankingOrderAndPositions(t *testing.T) {
	e := newTestEnv(t)
	seedStats(t, e,
		models.UserStats{UserEmail: "a@x.com", UserName: "A", TotalPoints: 100, CorrectPredictions: 5, TotalPredictions: 10},
		models.UserStats{UserEmail: "b@x.com", UserName: "B", TotalPoints: 100, CorrectPredictions: 7, TotalPredictions: 10},
		models.UserStats{UserEmail: "c@x.com", UserName: "C", TotalPoints: 90, CorrectPredictions: 9, TotalPredictions: 9},
	)

	got, err := e.ranking.GetRanking(e.ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{got[0].UserName, got[1].UserName, got[2].UserName})
	for i, row := range got {
		assert.Equal(t, i+1, row.Position)
	}
	assert.Equal(t, 70.0, got[0].Accuracy)
	assert.Equal(t, 100.0, got[2].Accuracy)

	top, err := e.ranking.GetRanking(e.ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b@x.com", top[0].UserEmail)
	assert.Equal(t, "a@x.com", top[1].UserEmail)
}

func TestGetRankingLimits(t *testing.T) {
	e := newTestEnv(t)
	seedStats(t, e, models.UserStats{UserEmail: "a@x.com", UserName: "A"})

	for _, limit := range []int{0, -5} {
		_, err := e.ranking.GetRanking(e.ctx, limit)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "limit %d", limit)
		assert.Equal(t, "limit", verr.Field)
	}

	got, err := e.ranking.GetRanking(e.ctx, 10_000)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReconcileAllRepairsDrift(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Flamengo", "Palmeiras")
	e.predict(t, "u1@x.com", m.ID, models.OutcomeHome, 4)
	e.predict(t, "u2@x.com", m.ID, models.OutcomeAway, 1)
	e.finish(t, m.ID, 2, 1)

	drifted := e.statsOf(t, "u1@x.com")
	drifted.TotalPoints = 999
	drifted.TotalPredictions = 7
	require.NoError(t, e.st.SaveStats(e.ctx, drifted))

	fixed, err := e.stats.ReconcileAll(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	u1 := e.statsOf(t, "u1@x.com")
	assert.Equal(t, 40, u1.TotalPoints)
	assert.Equal(t, 1, u1.TotalPredictions)

	fixed, err = e.stats.ReconcileAll(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestStatsGetAndList(t *testing.T) {
	e := newTestEnv(t)
	m := e.newMatch(t, "Flamengo", "Palmeiras")
	e.predict(t, "u1@x.com", m.ID, models.OutcomeHome, 4)
	e.predict(t, "u2@x.com", m.ID, models.OutcomeDraw, 5)
	e.finish(t, m.ID, 2, 1)

	v, err := e.stats.Get(e.ctx, "U1@x.com")
	require.NoError(t, err)
	assert.Equal(t, 40, v.TotalPoints)
	assert.Equal(t, 100.0, v.Accuracy)
	assert.Zero(t, v.Position)

	_, err = e.stats.Get(e.ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := e.stats.List(e.ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "u1@x.com", all[0].UserEmail)

	rv, err := e.stats.Recompute(e.ctx, "u2@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, rv.TotalPredictions)

	_, err = e.stats.Recompute(e.ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
