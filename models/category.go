package models

import "time"

const (
	DefaultCategoryColor = "#6B7280"
	DefaultCategoryIcon  = "⚽"
)

type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;not null"`
	Slug        string `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description"`
	Color       string `json:"color" gorm:"size:7;default:'#6B7280'"` // hex
	Icon        string `json:"icon" gorm:"size:50;default:'⚽'"`

	Timestamps
}

type Tag struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Slug      string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
