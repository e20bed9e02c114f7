// Package store is the persistence boundary. Services depend on these interfaces only; the
// gorm implementation backs production and memstore backs tests and local runs.
package store

import (
	"context"
	"time"

	"football-analysis/models"
)

type MatchFilter struct {
	Status      models.MatchStatus
	Competition string
	From        *time.Time
	To          *time.Time
	Limit       int
}

type PostOrder int

const (
	OrderNewest  PostOrder = iota // published_at desc
	OrderPopular                  // views desc, likes desc
)

type PostFilter struct {
	Status       models.PostStatus
	CategorySlug string
	TagSlug      string
	Search       string
	AuthorID     string
	Order        PostOrder
	Offset       int
	Limit        int
}

type MatchStore interface {
	CreateMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id uint) (*models.Match, error)
	GetMatchByExternalID(ctx context.Context, externalID string) (*models.Match, error)
	ListMatches(ctx context.Context, f MatchFilter) ([]models.Match, error)
	// GetSettledMatchesSince returns finished matches with both scores whose row changed after since,
	// oldest change first.
	GetSettledMatchesSince(ctx context.Context, since time.Time) ([]models.Match, error)
	SaveMatch(ctx context.Context, m *models.Match) error
	DeleteMatch(ctx context.Context, id uint) error
}

type PredictionStore interface {
	// CreatePrediction fails with ErrDuplicate when the (user_email, match) pair already exists.
	CreatePrediction(ctx context.Context, p *models.Prediction) error
	SavePrediction(ctx context.Context, p *models.Prediction) error
	FindPredictionsByMatch(ctx context.Context, matchID uint) ([]models.Prediction, error)
	// FindPredictionsByUser returns newest first with Match populated.
	FindPredictionsByUser(ctx context.Context, email string) ([]models.Prediction, error)
}

type StatsStore interface {
	GetStats(ctx context.Context, email string) (*models.UserStats, error)
	// GetOrCreateStats returns the user's row, creating it if needed, and locks it for the rest of
	// the enclosing transaction.
	GetOrCreateStats(ctx context.Context, email, defaultName string) (*models.UserStats, error)
	SaveStats(ctx context.Context, s *models.UserStats) error
	// ListStats returns rows in ranking order; limit <= 0 means all.
	ListStats(ctx context.Context, limit int) ([]models.UserStats, error)
}

type ContentStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error

	ListTags(ctx context.Context) ([]models.Tag, error)
	FindTagsBySlug(ctx context.Context, slugs []string) ([]models.Tag, error)
	CreateTag(ctx context.Context, t *models.Tag) error

	CreatePost(ctx context.Context, p *models.Post) error
	// SavePost updates scalar columns and replaces the tag set.
	SavePost(ctx context.Context, p *models.Post) error
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	PostSlugExists(ctx context.Context, slug string) (bool, error)
	ListPosts(ctx context.Context, f PostFilter) ([]models.Post, int64, error)
	// IncrementPostCounter atomically adds one to views or likes and returns the new value.
	IncrementPostCounter(ctx context.Context, postID uint, counter string) (int64, error)
	DuePosts(ctx context.Context, now time.Time) ([]models.Post, error)

	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	SaveComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, postID uint, approvedOnly bool) ([]models.Comment, error)
}

type TeamStore interface {
	ListTeams(ctx context.Context, folded string) ([]models.Team, error)
	GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error)
	CreateTeam(ctx context.Context, t *models.Team) error
}

// Store is the full persistence surface. WithinTx runs fn against a transactional view; any error
// returned by fn rolls every write back.
type Store interface {
	MatchStore
	PredictionStore
	StatsStore
	ContentStore
	TeamStore

	WithinTx(ctx context.Context, fn func(Store) error) error
}

const (
	CounterViews = "views"
	CounterLikes = "likes"
)
