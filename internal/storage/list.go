package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"rugby-scorekeeper/internal/models"
)

// blob хранит весь список матчей одним JSON-документом.
type blob interface {
	// read возвращает nil, если документа ещё нет.
	read(ctx context.Context) ([]byte, error)
	write(ctx context.Context, data []byte) error
	close() error
}

// ListStore хранит весь список целиком в файле или ключе redis.
// Последняя запись выигрывает.
type ListStore struct {
	mu  sync.Mutex
	b   blob
	now func() time.Time
}

func newListStore(b blob) *ListStore {
	return &ListStore{b: b, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ListStore) load(ctx context.Context) ([]models.Match, error) {
	data, err := s.b.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read matches: %w", err)
	}
	if len(data) == 0 {
		return []models.Match{}, nil
	}
	var out []models.Match
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return out, nil
}

func (s *ListStore) save(ctx context.Context, matches []models.Match) error {
	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}
	if err := s.b.write(ctx, data); err != nil {
		return fmt.Errorf("write matches: %w", err)
	}
	return nil
}

func index(matches []models.Match, id string) int {
	for i := range matches {
		if matches[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ListStore) List(ctx context.Context) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *ListStore) Get(ctx context.Context, id string) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx)
	if err != nil {
		return models.Match{}, err
	}
	i := index(all, id)
	if i < 0 {
		return models.Match{}, ErrNotFound
	}
	return all[i], nil
}

func (s *ListStore) Create(ctx context.Context, m models.Match) (models.Match, error) {
	m = stampNew(m, s.now())
	if err := validate(m); err != nil {
		return models.Match{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx)
	if err != nil {
		return models.Match{}, err
	}
	if index(all, m.ID) >= 0 {
		return models.Match{}, ErrAlreadyExists
	}
	if err := s.save(ctx, append(all, m)); err != nil {
		return models.Match{}, err
	}
	return m, nil
}

func (s *ListStore) Update(ctx context.Context, id string, patch json.RawMessage) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx)
	if err != nil {
		return models.Match{}, err
	}
	i := index(all, id)
	if i < 0 {
		return models.Match{}, ErrNotFound
	}
	updated, err := merge(all[i], patch, s.now())
	if err != nil {
		return models.Match{}, err
	}
	all[i] = updated
	if err := s.save(ctx, all); err != nil {
		return models.Match{}, err
	}
	return updated, nil
}

func (s *ListStore) Upsert(ctx context.Context, m models.Match) (models.Match, error) {
	if err := validate(m); err != nil {
		return models.Match{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx)
	if err != nil {
		return models.Match{}, err
	}
	if i := index(all, m.ID); i >= 0 {
		if m.CreatedAt == nil {
			m.CreatedAt = all[i].CreatedAt
		}
		m = stampUpdate(m, s.now())
		all[i] = m
	} else {
		m = stampNew(m, s.now())
		all = append(all, m)
	}
	if err := s.save(ctx, all); err != nil {
		return models.Match{}, err
	}
	return m, nil
}

func (s *ListStore) Delete(ctx context.Context, id string) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx)
	if err != nil {
		return models.Match{}, err
	}
	i := index(all, id)
	if i < 0 {
		return models.Match{}, ErrNotFound
	}
	removed := all[i]
	all = append(all[:i], all[i+1:]...)
	if err := s.save(ctx, all); err != nil {
		return models.Match{}, err
	}
	return removed, nil
}

func (s *ListStore) ImportBatch(ctx context.Context, matches []models.Match) (int, error) {
	if err := ValidateImport(matches); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if matches == nil {
		matches = []models.Match{}
	}
	if err := s.save(ctx, matches); err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (s *ListStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, []models.Match{})
}

func (s *ListStore) Close() error {
	return s.b.close()
}
