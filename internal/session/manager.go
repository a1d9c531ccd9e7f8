package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Repository: хранилище матчей, из которого открываются сессии.
type Repository interface {
	Saver
	Get(ctx context.Context, id string) (models.Match, error)
}

// Manager: реестр живых сессий.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store    Repository
	notifier Notifier
	log      *zap.SugaredLogger
	opts     Options
	now      func() time.Time
}

func NewManager(store Repository, notifier Notifier, log *zap.SugaredLogger, opts Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		notifier: notifier,
		log:      log,
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// Start создаёт новый матч, сразу сохраняет его и открывает сессию.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	a := match.New("", m.now())
	if _, err := m.store.Upsert(ctx, a.Snapshot()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s := m.register(a)
	m.log.Infow("Новый матч", "match", a.ID())
	return s, nil
}

// Open поднимает сохранённый матч. Открытый матч всегда стоит на паузе.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	if s, ok := m.Get(id); ok {
		return s, nil
	}
	stored, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", id, err)
	}
	a := match.Load(stored)
	a.Pause()
	s := m.register(a)
	m.log.Infow("Матч открыт", "match", id)
	return s, nil
}

func (m *Manager) register(a *match.Match) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[a.ID()]; ok {
		return s
	}
	s := newSession(a, m.store, m.notifier, m.log, m.opts)
	s.now = m.now
	m.sessions[a.ID()] = s
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List: открытые сессии по id.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return s.Close(ctx)
}

func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for id, s := range all {
		if err := s.Close(ctx); err != nil {
			m.log.Errorw("Ошибка закрытия матча", "match", id, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
