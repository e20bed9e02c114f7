package models

type Team struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Name           string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Slug           string `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	ShortName      string `json:"short_name" gorm:"size:10"`
	LogoURL        string `json:"logo_url"`
	PrimaryColor   string `json:"primary_color" gorm:"size:7;default:'#000000'"`
	SecondaryColor string `json:"secondary_color" gorm:"size:7;default:'#FFFFFF'"`

	// accent-folded lowercase name used for search
	SearchName string `json:"-" gorm:"size:100;index"`

	Timestamps
}
