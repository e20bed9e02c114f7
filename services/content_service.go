package services

import (
	"context"
	"net/mail"
	"regexp"
	"strings"

	"football-analysis/models"
	"football-analysis/store"
	"football-analysis/utils"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ContentService covers the small editorial tables: categories, tags and comments.
type ContentService struct {
	Store store.Store
}

func NewContentService(st store.Store) *ContentService {
	return &ContentService{Store: st}
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

func (s *ContentService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.Store.ListCategories(ctx)
}

func (s *ContentService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := maxLen("name", name, 100); err != nil {
		return nil, err
	}
	c := &models.Category{
		Name:        name,
		Slug:        utils.Slugify(name),
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
	}
	if c.Color == "" {
		c.Color = models.DefaultCategoryColor
	}
	if !hexColor.MatchString(c.Color) {
		return nil, invalid("color", "must be a hex color like #6B7280")
	}
	if c.Icon == "" {
		c.Icon = models.DefaultCategoryIcon
	}
	if err := s.Store.CreateCategory(ctx, c); err != nil {
		return nil, conflictErr("category", err)
	}
	return c, nil
}

func (s *ContentService) Tags(ctx context.Context) ([]models.Tag, error) {
	return s.Store.ListTags(ctx)
}

func (s *ContentService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := maxLen("name", name, 50); err != nil {
		return nil, err
	}
	t := &models.Tag{Name: name, Slug: utils.Slugify(name)}
	if err := s.Store.CreateTag(ctx, t); err != nil {
		return nil, conflictErr("tag", err)
	}
	return t, nil
}

type CommentInput struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
}

// AddComment stores a comment on a published post. Comments start unapproved.
func (s *ContentService) AddComment(ctx context.Context, postSlug string, in CommentInput) (*models.Comment, error) {
	name := strings.TrimSpace(in.AuthorName)
	email := normalizeEmail(in.AuthorEmail)
	content := strings.TrimSpace(in.Content)
	if name == "" {
		return nil, invalid("author_name", "is required")
	}
	if err := maxLen("author_name", name, 100); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("author_email", "is not a valid email address")
	}
	if content == "" {
		return nil, invalid("content", "is required")
	}

	post, err := s.Store.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, lookupErr("post", err)
	}
	if post.Status != models.PostStatusPublished {
		return nil, lookupErr("post", store.ErrNotFound)
	}

	c := &models.Comment{PostID: post.ID, AuthorName: name, AuthorEmail: email, Content: content}
	if err := s.Store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Comments lists the approved comments of a post, oldest first.
func (s *ContentService) Comments(ctx context.Context, postSlug string) ([]models.Comment, error) {
	post, err := s.Store.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, lookupErr("post", err)
	}
	return s.Store.ListComments(ctx, post.ID, true)
}

func (s *ContentService) ApproveComment(ctx context.Context, id uint) (*models.Comment, error) {
	c, err := s.Store.GetComment(ctx, id)
	if err != nil {
		return nil, lookupErr("comment", err)
	}
	if c.IsApproved {
		return c, nil
	}
	c.IsApproved = true
	if err := s.Store.SaveComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
