package models

import "strconv"

// UserStats is the per-user aggregate over Prediction rows. It is always re-derivable from them.
type UserStats struct {
	ID                 uint   `json:"id" gorm:"primaryKey"`
	UserName           string `json:"user_name" gorm:"size:200;not null"`
	UserEmail          string `json:"user_email" gorm:"size:254;not null;uniqueIndex"`
	TotalPredictions   int    `json:"total_predictions" gorm:"not null;default:0"`
	CorrectPredictions int    `json:"correct_predictions" gorm:"not null;default:0;index:idx_user_stats_ranking,priority:2,sort:desc"`
	TotalPoints        int    `json:"total_points" gorm:"not null;default:0;index:idx_user_stats_ranking,priority:1,sort:desc"`

	Timestamps
}

func (UserStats) TableName() string {
	return "user_stats"
}

// Accuracy is the share of correct predictions as a percentage with one decimal.
func (s *UserStats) Accuracy() float64 {
	return Accuracy(s.TotalPredictions, s.CorrectPredictions)
}

// Accuracy returns correct/total*100 rounded to one decimal, or 0 with no predictions. Rounding
// works on the exact binary value of the percentage (ties to even), so 23/80 (28.749999...) gives
// 28.7 rather than the 28.8 that scaling by ten first would produce.
func Accuracy(total, correct int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(correct) / float64(total) * 100
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', 1, 64), 64)
	return rounded
}
