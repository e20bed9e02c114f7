package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"football-analysis/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Open connects to Postgres with gorm's SQL log routed through zerolog.
func Open(dsn string) (*gorm.DB, error) {
	zl := log.With().Str("component", "gorm").Logger()
	level := logger.Warn
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(&zl, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Match{},
		&models.Prediction{},
		&models.UserStats{},
		&models.Team{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
	)
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// ---------- matches ----------

func (s *GormStore) CreateMatch(ctx context.Context, m *models.Match) error {
	return translate(s.db(ctx).Create(m).Error)
}

func (s *GormStore) GetMatch(ctx context.Context, id uint) (*models.Match, error) {
	var m models.Match
	if err := s.db(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *GormStore) GetMatchByExternalID(ctx context.Context, externalID string) (*models.Match, error) {
	var m models.Match
	if err := s.db(ctx).Where("external_id = ?", externalID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *GormStore) ListMatches(ctx context.Context, f MatchFilter) ([]models.Match, error) {
	q := s.db(ctx).Model(&models.Match{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Competition != "" {
		q = q.Where("competition = ?", f.Competition)
	}
	if f.From != nil {
		q = q.Where("scheduled_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("scheduled_at <= ?", *f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Match
	err := q.Order("scheduled_at ASC").Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) GetSettledMatchesSince(ctx context.Context, since time.Time) ([]models.Match, error) {
	var out []models.Match
	err := s.db(ctx).
		Where("status = ? AND home_score IS NOT NULL AND away_score IS NOT NULL", models.MatchStatusFinished).
		Where("updated_at > ?", since).
		Order("updated_at ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) SaveMatch(ctx context.Context, m *models.Match) error {
	return translate(s.db(ctx).Save(m).Error)
}

func (s *GormStore) DeleteMatch(ctx context.Context, id uint) error {
	res := s.db(ctx).Delete(&models.Match{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- predictions ----------

func (s *GormStore) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	return translate(s.db(ctx).Omit(clause.Associations).Create(p).Error)
}

func (s *GormStore) SavePrediction(ctx context.Context, p *models.Prediction) error {
	return translate(s.db(ctx).Omit(clause.Associations).Save(p).Error)
}

func (s *GormStore) FindPredictionsByMatch(ctx context.Context, matchID uint) ([]models.Prediction, error) {
	var out []models.Prediction
	err := s.db(ctx).Where("match_id = ?", matchID).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) FindPredictionsByUser(ctx context.Context, email string) ([]models.Prediction, error) {
	var out []models.Prediction
	err := s.db(ctx).Preload("Match").
		Where("user_email = ?", email).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, translate(err)
}

// ---------- user stats ----------

func (s *GormStore) GetStats(ctx context.Context, email string) (*models.UserStats, error) {
	var st models.UserStats
	if err := s.db(ctx).Where("user_email = ?", email).First(&st).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

// GetOrCreateStats inserts with ON CONFLICT DO NOTHING so two first predictions by the same user
// race safely, then reads the winning row FOR UPDATE. The lock holds until the caller's
// transaction ends, so concurrent re-derivations for one user run one after the other and each
// sees the predictions committed before it.
func (s *GormStore) GetOrCreateStats(ctx context.Context, email, defaultName string) (*models.UserStats, error) {
	st := models.UserStats{UserEmail: email, UserName: defaultName}
	err := s.db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_email"}},
		DoNothing: true,
	}).Create(&st).Error
	if err != nil {
		return nil, translate(err)
	}

	var locked models.UserStats
	err = s.db(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_email = ?", email).
		First(&locked).Error
	if err != nil {
		return nil, translate(err)
	}
	return &locked, nil
}

func (s *GormStore) SaveStats(ctx context.Context, st *models.UserStats) error {
	return translate(s.db(ctx).Save(st).Error)
}

func (s *GormStore) ListStats(ctx context.Context, limit int) ([]models.UserStats, error) {
	q := s.db(ctx).Order("total_points DESC").Order("correct_predictions DESC").Order("user_email ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.UserStats
	err := q.Find(&out).Error
	return out, translate(err)
}

// ---------- categories & tags ----------

func (s *GormStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.db(ctx).Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.db(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, c *models.Category) error {
	return translate(s.db(ctx).Create(c).Error)
}

func (s *GormStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	err := s.db(ctx).Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) FindTagsBySlug(ctx context.Context, slugs []string) ([]models.Tag, error) {
	var out []models.Tag
	if len(slugs) == 0 {
		return out, nil
	}
	err := s.db(ctx).Where("slug IN ?", slugs).Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) CreateTag(ctx context.Context, t *models.Tag) error {
	return translate(s.db(ctx).Create(t).Error)
}

// ---------- posts ----------

func (s *GormStore) CreatePost(ctx context.Context, p *models.Post) error {
	return translate(s.db(ctx).Omit("Category", "Comments").Create(p).Error)
}

func (s *GormStore) SavePost(ctx context.Context, p *models.Post) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return translate(err)
		}
		return translate(tx.Model(p).Association("Tags").Replace(p.Tags))
	})
}

func (s *GormStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var p models.Post
	err := s.db(ctx).Preload("Category").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	}).Where("slug = ?", slug).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) PostSlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := s.db(ctx).Model(&models.Post{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, translate(err)
}

func (s *GormStore) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, int64, error) {
	q := s.db(ctx).Model(&models.Post{})
	if f.Status != "" {
		q = q.Where("posts.status = ?", f.Status)
	}
	if f.AuthorID != "" {
		q = q.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if f.TagSlug != "" {
		sub := s.DB.Table("post_tags").Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", f.TagSlug)
		q = q.Where("posts.id IN (?)", sub)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(posts.title) LIKE ? OR LOWER(posts.excerpt) LIKE ? OR LOWER(posts.content) LIKE ?)", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	switch f.Order {
	case OrderPopular:
		q = q.Order("posts.views DESC").Order("posts.likes DESC").Order("posts.id DESC")
	default:
		q = q.Order("posts.published_at DESC NULLS LAST").Order("posts.id DESC")
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []models.Post
	err := q.Select("posts.*").Preload("Category").Preload("Tags").Find(&out).Error
	return out, total, translate(err)
}

func (s *GormStore) IncrementPostCounter(ctx context.Context, postID uint, counter string) (int64, error) {
	if counter != CounterViews && counter != CounterLikes {
		return 0, fmt.Errorf("unknown post counter %q", counter)
	}
	var value int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn(counter, gorm.Expr(counter+" + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Post{}).Select(counter).Where("id = ?", postID).Scan(&value).Error
	})
	return value, translate(err)
}

func (s *GormStore) DuePosts(ctx context.Context, now time.Time) ([]models.Post, error) {
	var out []models.Post
	err := s.db(ctx).
		Where("status = ? AND publish_at IS NOT NULL AND publish_at <= ?", models.PostStatusScheduled, now).
		Order("publish_at ASC").
		Find(&out).Error
	return out, translate(err)
}

// ---------- comments ----------

func (s *GormStore) CreateComment(ctx context.Context, c *models.Comment) error {
	return translate(s.db(ctx).Create(c).Error)
}

func (s *GormStore) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.db(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) SaveComment(ctx context.Context, c *models.Comment) error {
	return translate(s.db(ctx).Save(c).Error)
}

func (s *GormStore) ListComments(ctx context.Context, postID uint, approvedOnly bool) ([]models.Comment, error) {
	q := s.db(ctx).Where("post_id = ?", postID)
	if approvedOnly {
		q = q.Where("is_approved = ?", true)
	}
	var out []models.Comment
	err := q.Order("created_at ASC").Order("id ASC").Find(&out).Error
	return out, translate(err)
}

// ---------- teams ----------

func (s *GormStore) ListTeams(ctx context.Context, folded string) ([]models.Team, error) {
	q := s.db(ctx).Order("name ASC")
	if folded != "" {
		q = q.Where("search_name LIKE ?", "%"+folded+"%")
	}
	var out []models.Team
	err := q.Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error) {
	var t models.Team
	if err := s.db(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *GormStore) CreateTeam(ctx context.Context, t *models.Team) error {
	return translate(s.db(ctx).Create(t).Error)
}

var _ Store = (*GormStore)(nil)
