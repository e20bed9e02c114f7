package models

import (
	"fmt"
	"time"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

const DefaultReadTime = 5

type Post struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Title   string `json:"title" gorm:"size:200;not null"`
	Slug    string `json:"slug" gorm:"size:200;uniqueIndex;not null"`
	Excerpt string `json:"excerpt" gorm:"size:500"`
	Content string `json:"content" gorm:"type:text"`

	// 👤 Author comes from the gateway user context
	AuthorID   string `json:"author_id" gorm:"index;not null"`
	AuthorName string `json:"author_name"`

	CategoryID *uint     `json:"category_id,omitempty" gorm:"index"`
	Category   *Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Tags       []Tag     `json:"tags" gorm:"many2many:post_tags"`
	Comments   []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	FeaturedImageURL string `json:"featured_image_url"`

	// 🎛️ Publishing state
	Status      PostStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	PublishAt   *time.Time `json:"publish_at,omitempty"` // only used if scheduled
	PublishedAt *time.Time `json:"published_at" gorm:"index"`

	ReadTime        int    `json:"read_time" gorm:"default:5"` // minutes
	MetaDescription string `json:"meta_description" gorm:"size:160"`
	MetaKeywords    string `json:"meta_keywords" gorm:"size:255"`

	Views int64 `json:"views" gorm:"not null;default:0;index"`
	Likes int64 `json:"likes" gorm:"not null;default:0"`

	Timestamps
}

// MarkPublished moves the post to published, stamping PublishedAt only the first time.
func (p *Post) MarkPublished(now time.Time) {
	p.Status = PostStatusPublished
	p.PublishAt = nil
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}

func (p *Post) ReadingTimeDisplay() string {
	return fmt.Sprintf("%d min de leitura", p.ReadTime)
}

type Comment struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	PostID      uint   `json:"post_id" gorm:"index;not null"`
	AuthorName  string `json:"author_name" gorm:"size:100;not null"`
	AuthorEmail string `json:"-" gorm:"size:254;not null"`
	Content     string `json:"content" gorm:"type:text;not null"`
	IsApproved  bool   `json:"is_approved" gorm:"not null;default:false;index"`

	Timestamps
}
