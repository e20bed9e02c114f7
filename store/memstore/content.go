package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"football-analysis/models"
	"football-analysis/store"
)

// ---------- categories & tags ----------

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Category{}
	for _, c := range s.d.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id uint) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.d.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.d.categories {
		if other.Slug == c.Slug {
			return store.ErrDuplicate
		}
	}
	if c.Color == "" {
		c.Color = models.DefaultCategoryColor
	}
	if c.Icon == "" {
		c.Icon = models.DefaultCategoryIcon
	}
	now := s.now()
	c.ID = s.id()
	c.CreatedAt, c.UpdatedAt = now, now
	s.d.categories[c.ID] = *c
	return nil
}

func (s *Store) ListTags(_ context.Context) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedTags(func(models.Tag) bool { return true }), nil
}

func (s *Store) FindTagsBySlug(_ context.Context, slugs []string) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedTags(func(t models.Tag) bool { return slices.Contains(slugs, t.Slug) }), nil
}

func (s *Store) sortedTags(keep func(models.Tag) bool) []models.Tag {
	out := []models.Tag{}
	for _, t := range s.d.tags {
		if keep(t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.Tag) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (s *Store) CreateTag(_ context.Context, t *models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.d.tags {
		if other.Name == t.Name || other.Slug == t.Slug {
			return store.ErrDuplicate
		}
	}
	t.ID = s.id()
	t.CreatedAt = s.now()
	s.d.tags[t.ID] = *t
	return nil
}

// ---------- posts ----------

func (s *Store) CreatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.d.posts {
		if other.Slug == p.Slug {
			return store.ErrDuplicate
		}
	}
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}
	now := s.now()
	p.ID = s.id()
	p.CreatedAt, p.UpdatedAt = now, now
	s.putPost(p)
	return nil
}

func (s *Store) SavePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.d.posts[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, other := range s.d.posts {
		if id != p.ID && other.Slug == p.Slug {
			return store.ErrDuplicate
		}
	}
	p.CreatedAt = prev.CreatedAt
	p.UpdatedAt = s.now()
	s.putPost(p)
	return nil
}

// putPost stores the scalar row and the join rows separately, like post_tags.
func (s *Store) putPost(p *models.Post) {
	row := *p
	row.Category = nil
	row.Tags = nil
	row.Comments = nil
	s.d.posts[p.ID] = row
	ids := make([]uint, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	s.d.postTags[p.ID] = ids
}

// hydrate fills Category and Tags the way gorm's Preload does.
func (s *Store) hydrate(p models.Post) models.Post {
	if p.CategoryID != nil {
		if c, ok := s.d.categories[*p.CategoryID]; ok {
			p.Category = &c
		}
	}
	ids := s.d.postTags[p.ID]
	p.Tags = s.sortedTags(func(t models.Tag) bool { return slices.Contains(ids, t.ID) })
	return p
}

func (s *Store) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.d.posts {
		if p.Slug == slug {
			h := s.hydrate(p)
			return &h, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) PostSlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.d.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListPosts(_ context.Context, f store.PostFilter) ([]models.Post, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := []models.Post{}
	for _, p := range s.d.posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.AuthorID != "" && p.AuthorID != f.AuthorID {
			continue
		}
		h := s.hydrate(p)
		if f.CategorySlug != "" && (h.Category == nil || h.Category.Slug != f.CategorySlug) {
			continue
		}
		if f.TagSlug != "" && !slices.ContainsFunc(h.Tags, func(t models.Tag) bool { return t.Slug == f.TagSlug }) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Excerpt), term) &&
			!strings.Contains(strings.ToLower(p.Content), term) {
			continue
		}
		out = append(out, h)
	}

	slices.SortFunc(out, func(a, b models.Post) int {
		if f.Order == store.OrderPopular {
			if a.Views != b.Views {
				return cmp.Compare(b.Views, a.Views)
			}
			if a.Likes != b.Likes {
				return cmp.Compare(b.Likes, a.Likes)
			}
		} else if c := comparePublished(a.PublishedAt, b.PublishedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := int64(len(out))
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Post{}, total, nil
		}
		out = out[f.Offset:]
	}
	return limit(out, f.Limit), total, nil
}

// comparePublished orders newest first with unpublished rows last.
func comparePublished(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(*a)
}

func (s *Store) IncrementPostCounter(_ context.Context, postID uint, counter string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.d.posts[postID]
	if !ok {
		return 0, store.ErrNotFound
	}
	var v int64
	switch counter {
	case store.CounterViews:
		p.Views++
		v = p.Views
	case store.CounterLikes:
		p.Likes++
		v = p.Likes
	default:
		return 0, fmt.Errorf("unknown post counter %q", counter)
	}
	s.d.posts[postID] = p
	return v, nil
}

func (s *Store) DuePosts(_ context.Context, now time.Time) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Post{}
	for _, p := range s.d.posts {
		if p.Status == models.PostStatusScheduled && p.PublishAt != nil && !p.PublishAt.After(now) {
			out = append(out, s.hydrate(p))
		}
	}
	slices.SortFunc(out, func(a, b models.Post) int { return a.PublishAt.Compare(*b.PublishAt) })
	return out, nil
}

// ---------- comments ----------

func (s *Store) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.posts[c.PostID]; !ok {
		return fmt.Errorf("comment references missing post %d", c.PostID)
	}
	now := s.now()
	c.ID = s.id()
	c.CreatedAt, c.UpdatedAt = now, now
	s.d.comments[c.ID] = *c
	return nil
}

func (s *Store) GetComment(_ context.Context, id uint) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.d.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) SaveComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.d.comments[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = s.now()
	s.d.comments[c.ID] = *c
	return nil
}

func (s *Store) ListComments(_ context.Context, postID uint, approvedOnly bool) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range s.d.comments {
		if c.PostID != postID || (approvedOnly && !c.IsApproved) {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

