package models

import "time"

// Outcome is the 1X2 result of a match from the home side's perspective.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

func (o Outcome) Valid() bool {
	return o == OutcomeHome || o == OutcomeDraw || o == OutcomeAway
}

type Prediction struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserName  string `json:"user_name" gorm:"size:200;not null"`
	UserEmail string `json:"user_email" gorm:"size:254;not null;uniqueIndex:idx_prediction_user_match,priority:1;index"`
	MatchID   uint   `json:"match" gorm:"not null;uniqueIndex:idx_prediction_user_match,priority:2"`
	Match     *Match `json:"match_details,omitempty" gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`

	Outcome    Outcome `json:"prediction" gorm:"column:prediction;type:varchar(10);not null"`
	Confidence int     `json:"confidence" gorm:"not null;default:3;check:confidence >= 1 and confidence <= 5"`

	// nil until the match is judged
	IsCorrect    *bool `json:"is_correct"`
	PointsEarned int   `json:"points_earned" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (p *Prediction) Judged() bool {
	return p.IsCorrect != nil
}
