package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"football-analysis/models"
	"football-analysis/store"
	"football-analysis/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	HighlightsLimit = 5
)

// Author is the user behind a write, taken from the gateway headers.
type Author struct {
	ID   string
	Name string
}

type PostInput struct {
	Title           string            `json:"title"`
	Excerpt         string            `json:"excerpt"`
	Content         string            `json:"content"`
	CategoryID      *uint             `json:"category_id"`
	Tags            []string          `json:"tags"` // slugs
	Status          models.PostStatus `json:"status"`
	PublishAt       *time.Time        `json:"publish_at"`
	ReadTime        *int              `json:"read_time"`
	MetaDescription string            `json:"meta_description"`
	MetaKeywords    string            `json:"meta_keywords"`
}

type PostQuery struct {
	Category string
	Tag      string
	Search   string
	Page     int
	Size     int
}

type PostPage struct {
	Items []models.Post `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

type PostService struct {
	Store store.Store
	Media utils.MediaStore
	Now   func() time.Time
	log   zerolog.Logger
}

func NewPostService(st store.Store, media utils.MediaStore) *PostService {
	return &PostService{Store: st, Media: media, Now: time.Now, log: utils.Component("posts")}
}

func maxLen(field, value string, n int) error {
	if len([]rune(value)) > n {
		return invalid(field, "must be at most %d characters", n)
	}
	return nil
}

func (s *PostService) validate(in *PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalid("title", "is required")
	}
	for _, check := range []error{
		maxLen("title", in.Title, 200),
		maxLen("excerpt", in.Excerpt, 500),
		maxLen("meta_description", in.MetaDescription, 160),
		maxLen("meta_keywords", in.MetaKeywords, 255),
	} {
		if check != nil {
			return check
		}
	}
	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}
	if !in.Status.Valid() {
		return invalid("status", "unknown post status %q", in.Status)
	}
	if in.Status == models.PostStatusScheduled && (in.PublishAt == nil || !in.PublishAt.After(s.Now())) {
		return invalid("publish_at", "a scheduled post needs a future publish_at")
	}
	if in.ReadTime != nil && *in.ReadTime < 1 {
		return invalid("read_time", "must be at least 1 minute")
	}
	return nil
}

// resolve loads the category and tags referenced by in.
func (s *PostService) resolve(ctx context.Context, st store.Store, in PostInput) (*models.Category, []models.Tag, error) {
	var cat *models.Category
	if in.CategoryID != nil {
		c, err := st.GetCategory(ctx, *in.CategoryID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, invalid("category_id", "category %d does not exist", *in.CategoryID)
		}
		if err != nil {
			return nil, nil, err
		}
		cat = c
	}

	slugs := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			slugs = append(slugs, t)
		}
	}
	tags, err := st.FindTagsBySlug(ctx, slugs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(uniq(slugs)) {
		return nil, nil, invalid("tags", "unknown tag in %v", slugs)
	}
	return cat, tags, nil
}

func uniq(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[s] = struct{}{}
	}
	return out
}

func (s *PostService) apply(p *models.Post, in PostInput, cat *models.Category, tags []models.Tag) {
	p.Title = in.Title
	p.Excerpt = in.Excerpt
	p.Content = in.Content
	p.CategoryID = in.CategoryID
	p.Category = cat
	p.Tags = tags
	p.MetaDescription = in.MetaDescription
	p.MetaKeywords = in.MetaKeywords
	if in.ReadTime != nil {
		p.ReadTime = *in.ReadTime
	} else if p.ReadTime == 0 {
		p.ReadTime = models.DefaultReadTime
	}

	switch in.Status {
	case models.PostStatusPublished:
		p.MarkPublished(s.Now())
	case models.PostStatusScheduled:
		p.Status = in.Status
		p.PublishAt = in.PublishAt
	default:
		p.Status = in.Status
		p.PublishAt = nil
	}
}

func (s *PostService) Create(ctx context.Context, author Author, in PostInput) (*models.Post, error) {
	if author.ID == "" {
		return nil, ErrForbidden
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	p := &models.Post{AuthorID: author.ID, AuthorName: author.Name}
	err := s.Store.WithinTx(ctx, func(tx store.Store) error {
		cat, tags, err := s.resolve(ctx, tx, in)
		if err != nil {
			return err
		}
		s.apply(p, in, cat, tags)
		p.Slug, err = utils.UniqueSlug(ctx, utils.Slugify(in.Title), tx.PostSlugExists)
		if err != nil {
			return err
		}
		return conflictErr("post slug", tx.CreatePost(ctx, p))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("slug", p.Slug).Str("author", author.ID).Str("status", string(p.Status)).Msg("post created")
	return p, nil
}

// Update rewrites a post. Only its author may change it; the slug stays stable.
func (s *PostService) Update(ctx context.Context, author Author, slug string, in PostInput) (*models.Post, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	var p *models.Post
	err := s.Store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		p, err = tx.GetPostBySlug(ctx, slug)
		if err != nil {
			return lookupErr("post", err)
		}
		if p.AuthorID != author.ID {
			return ErrForbidden
		}
		cat, tags, err := s.resolve(ctx, tx, in)
		if err != nil {
			return err
		}
		s.apply(p, in, cat, tags)
		return tx.SavePost(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List pages through published posts, newest first.
func (s *PostService) List(ctx context.Context, q PostQuery) (*PostPage, error) {
	page, size := q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}

	items, total, err := s.Store.ListPosts(ctx, store.PostFilter{
		Status:       models.PostStatusPublished,
		CategorySlug: q.Category,
		TagSlug:      q.Tag,
		Search:       q.Search,
		Order:        store.OrderNewest,
		Offset:       (page - 1) * size,
		Limit:        size,
	})
	if err != nil {
		return nil, err
	}
	return &PostPage{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *PostService) Popular(ctx context.Context) ([]models.Post, error) {
	items, _, err := s.Store.ListPosts(ctx, store.PostFilter{
		Status: models.PostStatusPublished, Order: store.OrderPopular, Limit: HighlightsLimit,
	})
	return items, err
}

func (s *PostService) Recent(ctx context.Context) ([]models.Post, error) {
	items, _, err := s.Store.ListPosts(ctx, store.PostFilter{
		Status: models.PostStatusPublished, Order: store.OrderNewest, Limit: HighlightsLimit,
	})
	return items, err
}

func (s *PostService) published(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.Store.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, lookupErr("post", err)
	}
	if p.Status != models.PostStatusPublished {
		return nil, fmt.Errorf("post: %w", ErrNotFound)
	}
	return p, nil
}

// View returns a published post and counts the view.
func (s *PostService) View(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.published(ctx, slug)
	if err != nil {
		return nil, err
	}
	views, err := s.Store.IncrementPostCounter(ctx, p.ID, store.CounterViews)
	if err != nil {
		return nil, err
	}
	p.Views = views
	return p, nil
}

func (s *PostService) Like(ctx context.Context, slug string) (int64, error) {
	p, err := s.published(ctx, slug)
	if err != nil {
		return 0, err
	}
	return s.Store.IncrementPostCounter(ctx, p.ID, store.CounterLikes)
}

// AttachImage uploads a featured image for the author's post and stores its URL.
func (s *PostService) AttachImage(ctx context.Context, author Author, slug, filename, contentType string, body io.Reader) (*models.Post, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid("image", "must be an image, got %q", contentType)
	}
	p, err := s.Store.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, lookupErr("post", err)
	}
	if p.AuthorID != author.ID {
		return nil, ErrForbidden
	}

	url, err := s.Media.Put(ctx, utils.MediaKey("posts", uuid.NewString(), filename), body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload featured image: %w", err)
	}
	p.FeaturedImageURL = url
	if err := s.Store.SavePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PublishDue publishes scheduled posts whose publish_at has passed.
func (s *PostService) PublishDue(ctx context.Context) (int, error) {
	due, err := s.Store.DuePosts(ctx, s.Now())
	if err != nil {
		return 0, err
	}
	published := 0
	var errs []error
	for i := range due {
		p := &due[i]
		p.MarkPublished(s.Now())
		if err := s.Store.SavePost(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("publish post %s: %w", p.Slug, err))
			continue
		}
		published++
		s.log.Info().Str("slug", p.Slug).Msg("auto-published post")
	}
	return published, errors.Join(errs...)
}
