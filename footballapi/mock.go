package footballapi

import (
	"context"
	"time"

	"football-analysis/models"
)

const mockCompetition = "Brasileirão Série A"

type mockFixture struct {
	id         string
	home, away string
	dayOffset  int
	hour, min  int
}

var mockFixtures = []mockFixture{
	{"match_001", "Flamengo", "Palmeiras", 1, 19, 0},
	{"match_002", "São Paulo", "Corinthians", 1, 21, 0},
	{"match_003", "Grêmio", "Internacional", 2, 16, 0},
	{"match_004", "Atlético Mineiro", "Cruzeiro", 2, 18, 30},
	{"match_005", "Botafogo", "Vasco", 3, 20, 0},
	{"match_006", "Santos", "Fluminense", 3, 17, 0},
	{"match_007", "Athletico Paranaense", "Coritiba", 4, 19, 30},
	{"match_008", "Bahia", "Vitória", 4, 16, 30},
	{"match_009", "Fortaleza", "Ceará", 5, 18, 0},
	{"match_010", "Red Bull Bragantino", "Cuiabá", 5, 20, 30},
}

// MockSource serves a fixed round of fixtures scheduled relative to today.
type MockSource struct {
	now func() time.Time
}

func NewMockSource(now func() time.Time) *MockSource {
	if now == nil {
		now = time.Now
	}
	return &MockSource{now: now}
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchUpcoming(ctx context.Context) ([]Fixture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	y, mo, d := m.now().In(brasilia).Date()
	out := make([]Fixture, 0, len(mockFixtures))
	for _, f := range mockFixtures {
		out = append(out, Fixture{
			ExternalID:  f.id,
			HomeTeam:    f.home,
			AwayTeam:    f.away,
			Competition: mockCompetition,
			ScheduledAt: time.Date(y, mo, d+f.dayOffset, f.hour, f.min, 0, 0, brasilia),
			Status:      models.MatchStatusScheduled,
		})
	}
	return out, nil
}
