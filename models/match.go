package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusFinished  MatchStatus = "finished"
	MatchStatusPostponed MatchStatus = "postponed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusLive, MatchStatusFinished, MatchStatusPostponed, MatchStatusCancelled:
		return true
	}
	return false
}

// Match is a fixture in the catalog. Scores stay nil until a result is recorded.
type Match struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	ExternalID  *string     `json:"external_id,omitempty" gorm:"size:100;uniqueIndex"` // id at the fixture provider
	HomeTeam    string      `json:"home_team" gorm:"size:200;not null"`
	AwayTeam    string      `json:"away_team" gorm:"size:200;not null"`
	Competition string      `json:"competition" gorm:"size:200;index"`
	ScheduledAt time.Time   `json:"scheduled_at" gorm:"not null;index"`
	Status      MatchStatus `json:"status" gorm:"type:varchar(20);not null;default:'scheduled';index"`
	HomeScore   *int        `json:"home_score"`
	AwayScore   *int        `json:"away_score"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;index"` // scoring sweep cursor
}

// IsSettled reports whether the match has a final result that predictions can be judged against.
func (m *Match) IsSettled() bool {
	return m.Status == MatchStatusFinished && m.HomeScore != nil && m.AwayScore != nil
}

// AcceptsPredictions is true while the match has not kicked off.
func (m *Match) AcceptsPredictions() bool {
	return m.Status == MatchStatusScheduled || m.Status == MatchStatusPostponed
}

func (m *Match) String() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}
