// Package footballapi pulls upcoming fixtures from api-football (v3) or, without an API key, from a
// built-in set of Brasileirão fixtures.
package footballapi

import (
	"context"
	"time"

	"football-analysis/config"
	"football-analysis/models"
	"football-analysis/utils"
)

// Fixture is one match as reported by a provider, before it is merged into the catalog.
type Fixture struct {
	ExternalID  string
	HomeTeam    string
	AwayTeam    string
	Competition string
	ScheduledAt time.Time
	Status      models.MatchStatus
	HomeScore   *int
	AwayScore   *int
}

type FixtureSource interface {
	FetchUpcoming(ctx context.Context) ([]Fixture, error)
	Name() string
}

// brasilia is the kickoff zone of the mock fixtures; Brazil has not observed DST since 2019.
var brasilia = time.FixedZone("BRT", -3*60*60)

// New picks the live client when an API key is configured and the mock source otherwise.
func New(cfg config.FootballAPIConfig) FixtureSource {
	if cfg.APIKey == "" {
		l := utils.Component("footballapi")
		l.Warn().Msg("FOOTBALL_API_KEY not set, using mock fixtures")
		return NewMockSource(time.Now)
	}
	return NewClient(cfg)
}
