package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
)

var errNoMatch = errors.New("no match")

type memStore struct {
	mu      sync.Mutex
	matches map[string]models.Match
	fail    error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{matches: make(map[string]models.Match)}
}

func (s *memStore) Upsert(_ context.Context, m models.Match) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return models.Match{}, s.fail
	}
	s.saves++
	s.matches[m.ID] = m.Clone()
	return m, nil
}

func (s *memStore) Get(_ context.Context, id string) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return models.Match{}, errNoMatch
	}
	return m.Clone(), nil
}

func (s *memStore) stored(id string) (models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	return m, ok
}

type recorder struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recorder) has(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.got {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

func newTestManager(t *testing.T, store *memStore, rec *recorder) *Manager {
	t.Helper()
	m := NewManager(store, rec, zap.NewNop().Sugar(), Options{
		TickInterval:     time.Millisecond,
		AutosaveInterval: 5 * time.Millisecond,
	})
	t.Cleanup(func() { _ = m.CloseAll(context.Background()) })
	return m
}

func TestStartPersistsNewMatch(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &recorder{})

	s, err := m.Start(context.Background())
	require.NoError(t, err)

	stored, ok := store.stored(s.ID())
	require.True(t, ok)
	assert.True(t, stored.Paused)

	got, ok := m.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestResumeRunsClockAndPauseStopsIt(t *testing.T) {
	m := newTestManager(t, newMemStore(), &recorder{})
	s, err := m.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Resume())
	require.Eventually(t, func() bool {
		return s.Snapshot().TotalElapsed >= 5
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Pause())
	frozen := s.Snapshot().TotalElapsed
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, s.Snapshot().TotalElapsed)

	paused, err := s.TogglePause()
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestHalfEndAlarm(t *testing.T) {
	store := newMemStore()
	rec := &recorder{}
	m := newTestManager(t, store, rec)

	a := match.New("m-half", time.Now())
	snap := a.Snapshot()
	snap.TotalElapsed = 2395
	snap.HalfElapsed = 2395
	_, _ = store.Upsert(context.Background(), snap)

	s, err := m.Open(context.Background(), "m-half")
	require.NoError(t, err)
	require.NoError(t, s.Resume())

	require.Eventually(t, func() bool { return rec.has(KindHalfEnded) }, time.Second, time.Millisecond)
	assert.False(t, s.Snapshot().Finished)
}

func TestMatchEndStopsAndSaves(t *testing.T) {
	store := newMemStore()
	rec := &recorder{}
	m := newTestManager(t, store, rec)

	snap := match.New("m-end", time.Now()).Snapshot()
	snap.TotalElapsed = 4795
	snap.HalfElapsed = 2395
	snap.FirstHalf = false
	_, _ = store.Upsert(context.Background(), snap)

	s, err := m.Open(context.Background(), "m-end")
	require.NoError(t, err)
	require.NoError(t, s.Resume())

	require.Eventually(t, func() bool {
		stored, _ := store.stored("m-end")
		return stored.Finished
	}, time.Second, time.Millisecond)
	assert.True(t, rec.has(KindMatchEnded))

	got := s.Snapshot()
	assert.Equal(t, 4800, got.TotalElapsed)
	assert.True(t, got.Paused)
}

func TestFinishedMatchRejectsCommands(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &recorder{})
	s, err := m.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Finish(context.Background()))
	stored, _ := store.stored(s.ID())
	assert.True(t, stored.Finished)

	_, err = s.AddScore(match.BlueTeamID, models.ScoreTry, "")
	assert.ErrorIs(t, err, ErrMatchFinished)
	assert.ErrorIs(t, s.Resume(), ErrMatchFinished)
	assert.ErrorIs(t, s.Tick(), ErrMatchFinished)
	assert.ErrorIs(t, s.Finish(context.Background()), ErrMatchFinished)
}

func TestRuleRejectionPassesThrough(t *testing.T) {
	m := newTestManager(t, newMemStore(), &recorder{})
	s, err := m.Start(context.Background())
	require.NoError(t, err)

	_, err = s.AddScore(match.RedTeamID, models.ScoreConversion, "")
	assert.ErrorIs(t, err, match.ErrConversionNotAllowed)
	assert.False(t, s.Dirty())
}

func TestAutosave(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &recorder{})
	s, err := m.Start(context.Background())
	require.NoError(t, err)

	_, err = s.AddScore(match.BlueTeamID, models.ScoreTry, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stored, _ := store.stored(s.ID())
		return len(stored.Scores) == 1
	}, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return !s.Dirty() }, time.Second, time.Millisecond)
}

func TestSaveFailure(t *testing.T) {
	store := newMemStore()
	rec := &recorder{}
	m := newTestManager(t, store, rec)
	s, err := m.Start(context.Background())
	require.NoError(t, err)

	store.mu.Lock()
	store.fail = errors.New("disk full")
	store.mu.Unlock()

	require.NoError(t, s.RenameTeam(match.BlueTeamID, "Leicester"))
	err = s.Save(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.True(t, s.Dirty())
	assert.True(t, rec.has(KindSaveFailed))
}

func TestManualTick(t *testing.T) {
	m := newTestManager(t, newMemStore(), &recorder{})
	s, err := m.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Tick())
	assert.Equal(t, 0, s.Snapshot().TotalElapsed, "paused clock does not move")
}

func TestOpenUnknown(t *testing.T) {
	m := newTestManager(t, newMemStore(), &recorder{})
	_, err := m.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, errNoMatch)
	assert.ErrorIs(t, m.Close(context.Background(), "missing"), ErrSessionNotFound)
}

func TestCloseSavesAndForgets(t *testing.T) {
	store := newMemStore()
	rec := &recorder{}
	m := newTestManager(t, store, rec)
	s, err := m.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.RenamePlayer("team-red-starter-9", "Dupont"))

	require.NoError(t, m.Close(context.Background(), s.ID()))
	_, ok := m.Get(s.ID())
	assert.False(t, ok)
	assert.True(t, rec.has(KindClosed))

	stored, _ := store.stored(s.ID())
	assert.Equal(t, "Dupont", stored.Team(match.RedTeamID).Player("team-red-starter-9").Name)
	assert.ErrorIs(t, s.Pause(), ErrClosed)
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	var calls int
	f := Fanout{a, nil, b, NotifierFunc(func(Notification) { calls++ })}
	f.Notify(Notification{Kind: KindHalfEnded})

	assert.True(t, a.has(KindHalfEnded))
	assert.True(t, b.has(KindHalfEnded))
	assert.Equal(t, 1, calls)
	assert.True(t, Notification{Kind: KindHalfEnded}.Alarm())
	assert.False(t, Notification{Kind: KindTick}.Alarm())
}
