// Package memstore is an in-process implementation of store.Store. It backs the test suite and
// STORAGE_DRIVER=memory runs; it enforces the same unique keys and cascades as the Postgres schema.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"football-analysis/models"
	"football-analysis/store"
)

type data struct {
	nextID      uint
	matches     map[uint]models.Match
	predictions map[uint]models.Prediction
	stats       map[string]models.UserStats
	categories  map[uint]models.Category
	tags        map[uint]models.Tag
	posts       map[uint]models.Post
	postTags    map[uint][]uint
	comments    map[uint]models.Comment
	teams       map[uint]models.Team
}

func newData() *data {
	return &data{
		matches:     map[uint]models.Match{},
		predictions: map[uint]models.Prediction{},
		stats:       map[string]models.UserStats{},
		categories:  map[uint]models.Category{},
		tags:        map[uint]models.Tag{},
		posts:       map[uint]models.Post{},
		postTags:    map[uint][]uint{},
		comments:    map[uint]models.Comment{},
		teams:       map[uint]models.Team{},
	}
}

func (d *data) clone() *data {
	c := &data{
		nextID:      d.nextID,
		matches:     maps.Clone(d.matches),
		predictions: maps.Clone(d.predictions),
		stats:       maps.Clone(d.stats),
		categories:  maps.Clone(d.categories),
		tags:        maps.Clone(d.tags),
		posts:       maps.Clone(d.posts),
		postTags:    make(map[uint][]uint, len(d.postTags)),
		comments:    maps.Clone(d.comments),
		teams:       maps.Clone(d.teams),
	}
	for k, v := range d.postTags {
		c.postTags[k] = slices.Clone(v)
	}
	return c
}

// Store keeps every table in maps guarded by one mutex. Transactions are serialized and roll back
// by restoring a snapshot.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	d    *data
	now  func() time.Time
}

func New() *Store {
	return &Store{d: newData(), now: time.Now}
}

// WithClock replaces the time source used for created/updated stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

type txStore struct {
	*Store
}

// WithinTx inside a transaction joins it.
func (t *txStore) WithinTx(_ context.Context, fn func(store.Store) error) error {
	return fn(t)
}

func (s *Store) WithinTx(_ context.Context, fn func(store.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.d.clone()
	s.mu.RUnlock()

	if err := fn(&txStore{Store: s}); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) id() uint {
	s.d.nextID++
	return s.d.nextID
}

// ---------- matches ----------

func (s *Store) CreateMatch(_ context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ExternalID != nil {
		for _, other := range s.d.matches {
			if other.ExternalID != nil && *other.ExternalID == *m.ExternalID {
				return store.ErrDuplicate
			}
		}
	}
	if m.Status == "" {
		m.Status = models.MatchStatusScheduled
	}
	now := s.now()
	m.ID = s.id()
	m.CreatedAt, m.UpdatedAt = now, now
	s.d.matches[m.ID] = *m
	return nil
}

func (s *Store) GetMatch(_ context.Context, id uint) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.d.matches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) GetMatchByExternalID(_ context.Context, externalID string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.d.matches {
		if m.ExternalID != nil && *m.ExternalID == externalID {
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListMatches(_ context.Context, f store.MatchFilter) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Match{}
	for _, m := range s.d.matches {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Competition != "" && m.Competition != f.Competition {
			continue
		}
		if f.From != nil && m.ScheduledAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.ScheduledAt.After(*f.To) {
			continue
		}
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b models.Match) int {
		if c := a.ScheduledAt.Compare(b.ScheduledAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return limit(out, f.Limit), nil
}

func (s *Store) GetSettledMatchesSince(_ context.Context, since time.Time) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Match{}
	for _, m := range s.d.matches {
		if m.IsSettled() && m.UpdatedAt.After(since) {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b models.Match) int {
		if c := a.UpdatedAt.Compare(b.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) SaveMatch(_ context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.d.matches[m.ID]
	if !ok {
		return store.ErrNotFound
	}
	if m.ExternalID != nil {
		for id, other := range s.d.matches {
			if id != m.ID && other.ExternalID != nil && *other.ExternalID == *m.ExternalID {
				return store.ErrDuplicate
			}
		}
	}
	m.CreatedAt = prev.CreatedAt
	m.UpdatedAt = s.now()
	s.d.matches[m.ID] = *m
	return nil
}

func (s *Store) DeleteMatch(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.matches[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.d.matches, id)
	for pid, p := range s.d.predictions {
		if p.MatchID == id {
			delete(s.d.predictions, pid)
		}
	}
	return nil
}

// ---------- predictions ----------

func (s *Store) CreatePrediction(_ context.Context, p *models.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.matches[p.MatchID]; !ok {
		return fmt.Errorf("prediction references missing match %d", p.MatchID)
	}
	for _, other := range s.d.predictions {
		if other.UserEmail == p.UserEmail && other.MatchID == p.MatchID {
			return store.ErrDuplicate
		}
	}
	p.ID = s.id()
	p.CreatedAt = s.now()
	row := *p
	row.Match = nil
	s.d.predictions[p.ID] = row
	return nil
}

func (s *Store) SavePrediction(_ context.Context, p *models.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.d.predictions[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	row := *p
	row.Match = nil
	row.CreatedAt = prev.CreatedAt
	s.d.predictions[p.ID] = row
	return nil
}

func (s *Store) FindPredictionsByMatch(_ context.Context, matchID uint) ([]models.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Prediction{}
	for _, p := range s.d.predictions {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Prediction) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) FindPredictionsByUser(_ context.Context, email string) ([]models.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Prediction{}
	for _, p := range s.d.predictions {
		if p.UserEmail != email {
			continue
		}
		if m, ok := s.d.matches[p.MatchID]; ok {
			p.Match = &m
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Prediction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// ---------- user stats ----------

func (s *Store) GetStats(_ context.Context, email string) (*models.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.d.stats[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &st, nil
}

func (s *Store) GetOrCreateStats(_ context.Context, email, defaultName string) (*models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.d.stats[email]; ok {
		return &st, nil
	}
	now := s.now()
	st := models.UserStats{
		ID:         s.id(),
		UserEmail:  email,
		UserName:   defaultName,
		Timestamps: models.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	s.d.stats[email] = st
	return &st, nil
}

func (s *Store) SaveStats(_ context.Context, st *models.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.d.stats[st.UserEmail]
	if !ok {
		st.ID = s.id()
		st.CreatedAt = s.now()
	} else {
		st.ID = prev.ID
		st.CreatedAt = prev.CreatedAt
	}
	st.UpdatedAt = s.now()
	s.d.stats[st.UserEmail] = *st
	return nil
}

func (s *Store) ListStats(_ context.Context, n int) ([]models.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Collect(maps.Values(s.d.stats))
	slices.SortFunc(out, func(a, b models.UserStats) int {
		if a.TotalPoints != b.TotalPoints {
			return b.TotalPoints - a.TotalPoints
		}
		if a.CorrectPredictions != b.CorrectPredictions {
			return b.CorrectPredictions - a.CorrectPredictions
		}
		return strings.Compare(a.UserEmail, b.UserEmail)
	})
	if out == nil {
		out = []models.UserStats{}
	}
	return limit(out, n), nil
}

// ---------- teams ----------

func (s *Store) ListTeams(_ context.Context, folded string) ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Team{}
	for _, t := range s.d.teams {
		if folded == "" || strings.Contains(t.SearchName, folded) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.Team) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetTeamBySlug(_ context.Context, slug string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.d.teams {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateTeam(_ context.Context, t *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.d.teams {
		if other.Name == t.Name || other.Slug == t.Slug {
			return store.ErrDuplicate
		}
	}
	now := s.now()
	t.ID = s.id()
	t.CreatedAt, t.UpdatedAt = now, now
	s.d.teams[t.ID] = *t
	return nil
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Store = (*txStore)(nil)
)
