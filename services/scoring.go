package services

import (
	"cmp"
	"slices"
	"strings"

	"football-analysis/models"
)

const (
	BasePoints        = 10
	MinConfidence     = 1
	MaxConfidence     = 5
	DefaultConfidence = 3
)

// DeriveOutcome maps a final score to home, draw or away.
func DeriveOutcome(homeScore, awayScore int) models.Outcome {
	switch {
	case homeScore > awayScore:
		return models.OutcomeHome
	case homeScore < awayScore:
		return models.OutcomeAway
	}
	return models.OutcomeDraw
}

// Score is the whole scoring rule: BasePoints times confidence for a correct pick, nothing otherwise.
func Score(actual, chosen models.Outcome, confidence int) (correct bool, points int) {
	if actual != chosen {
		return false, 0
	}
	return true, BasePoints * confidence
}

// JudgePrediction writes the verdict for m onto p and reports whether it changed anything.
// An unsettled match leaves p unjudged, which also undoes an earlier verdict after a result correction.
func JudgePrediction(m *models.Match, p *models.Prediction) bool {
	var isCorrect *bool
	points := 0
	if m.IsSettled() {
		correct, pts := Score(DeriveOutcome(*m.HomeScore, *m.AwayScore), p.Outcome, p.Confidence)
		isCorrect, points = &correct, pts
	}

	changed := p.PointsEarned != points || !sameVerdict(p.IsCorrect, isCorrect)
	p.IsCorrect = isCorrect
	p.PointsEarned = points
	return changed
}

func sameVerdict(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Tally is the aggregate of one user's predictions.
type Tally struct {
	Total   int
	Correct int
	Points  int
}

// TallyPredictions re-derives a user's totals from their full prediction set.
func TallyPredictions(preds []models.Prediction) Tally {
	t := Tally{Total: len(preds)}
	for _, p := range preds {
		if p.IsCorrect != nil && *p.IsCorrect {
			t.Correct++
		}
		t.Points += p.PointsEarned
	}
	return t
}

// SortRanking orders by points desc, then correct predictions desc, then email asc.
func SortRanking(rows []models.UserStats) {
	slices.SortFunc(rows, func(a, b models.UserStats) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.CorrectPredictions, a.CorrectPredictions); c != 0 {
			return c
		}
		return strings.Compare(a.UserEmail, b.UserEmail)
	})
}
