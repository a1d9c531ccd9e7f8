// Package session держит живые матчи: часы, паузу, автосохранение и уведомления.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"rugby-scorekeeper/internal/clock"
	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/scoring"
)

var (
	ErrMatchFinished = errors.New("match is finished")
	ErrPersistence   = errors.New("persistence failed")
	ErrClosed        = errors.New("session closed")
)

// Saver: то, что сессии нужно от хранилища.
type Saver interface {
	Upsert(ctx context.Context, m models.Match) (models.Match, error)
}

type Options struct {
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	SaveTimeout      time.Duration
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.AutosaveInterval <= 0 {
		o.AutosaveInterval = 30 * time.Second
	}
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = 10 * time.Second
	}
	return o
}

// Session: единственный писатель своего матча. Все команды и тики идут под mu.
type Session struct {
	mu       sync.Mutex
	match    *match.Match
	store    Saver
	notifier Notifier
	log      *zap.SugaredLogger
	opts     Options
	now      func() time.Time

	version int
	saved   int

	tickStop chan struct{}
	quit     chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

func newSession(m *match.Match, store Saver, notifier Notifier, log *zap.SugaredLogger, opts Options) *Session {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	s := &Session{
		match:    m,
		store:    store,
		notifier: notifier,
		log:      log.With("match", m.ID()),
		opts:     opts.withDefaults(),
		now:      time.Now,
		quit:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.autosaveLoop()
	return s
}

func (s *Session) ID() string { return s.match.ID() }

func (s *Session) Snapshot() models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Snapshot()
}

func (s *Session) Stats() match.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Stats()
}

// Dirty: есть изменения, которые ещё не сохранены.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.saved
}

func (s *Session) notification(kind Kind, msg string) Notification {
	snap := s.match.Snapshot()
	return Notification{
		Kind:    kind,
		MatchID: snap.ID,
		Minute:  s.match.Minute(),
		Message: msg,
		Match:   &snap,
		At:      s.now().UTC(),
	}
}

func (s *Session) emit(ns ...Notification) {
	for _, n := range ns {
		s.notifier.Notify(n)
	}
}

// mutate выполняет команду под блокировкой. Завершённый матч команд не принимает.
func (s *Session) mutate(msg string, fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.match.Finished() {
		s.mu.Unlock()
		return ErrMatchFinished
	}
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.version++
	n := s.notification(KindUpdate, msg)
	s.mu.Unlock()

	s.emit(n)
	return nil
}

// startTicker и stopTicker вызываются под mu.
func (s *Session) startTicker() {
	if s.tickStop != nil || s.closed {
		return
	}
	stop := make(chan struct{})
	s.tickStop = stop
	s.wg.Add(1)
	go s.tickLoop(stop)
}

func (s *Session) stopTicker() {
	if s.tickStop == nil {
		return
	}
	close(s.tickStop)
	s.tickStop = nil
}

func (s *Session) tickLoop(stop chan struct{}) {
	defer s.wg.Done()
	t := time.NewTicker(s.opts.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.tick(stop)
		}
	}
}

func (s *Session) tick(stop chan struct{}) {
	s.mu.Lock()
	// тикер уже остановлен, пока ждали блокировку
	if s.tickStop != stop {
		s.mu.Unlock()
		return
	}
	ns, ended := s.advance()
	s.mu.Unlock()

	s.emit(ns...)
	if ended {
		s.saveAsync()
	}
}

// advance: один тик под mu.
func (s *Session) advance() ([]Notification, bool) {
	res := s.match.Tick()
	if len(res.Events) == 0 && len(res.Expired) == 0 && s.match.Paused() {
		return nil, false
	}
	s.version++

	ns := []Notification{s.notification(KindTick, "")}
	for _, id := range res.Expired {
		ns = append(ns, s.notification(KindCardExpired, id))
	}
	var ended bool
	for _, ev := range res.Events {
		switch ev {
		case clock.HalfEnded:
			ns = append(ns, s.notification(KindHalfEnded, "first half ended"))
		case clock.MatchEnded:
			ns = append(ns, s.notification(KindMatchEnded, "match ended"))
			ended = true
		}
	}
	if s.match.Finished() {
		s.stopTicker()
	}
	return ns, ended
}

// Tick: ручной шаг часов, идентичный тику таймера.
func (s *Session) Tick() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.match.Finished() {
		s.mu.Unlock()
		return ErrMatchFinished
	}
	ns, ended := s.advance()
	s.mu.Unlock()

	s.emit(ns...)
	if ended {
		s.saveAsync()
	}
	return nil
}

func (s *Session) TogglePause() (paused bool, err error) {
	err = s.mutate("pause toggled", func() error {
		paused = s.match.TogglePause()
		s.syncTicker()
		return nil
	})
	return paused, err
}

func (s *Session) Pause() error {
	return s.mutate("paused", func() error {
		s.match.Pause()
		s.syncTicker()
		return nil
	})
}

func (s *Session) Resume() error {
	return s.mutate("resumed", func() error {
		s.match.Resume()
		s.syncTicker()
		return nil
	})
}

func (s *Session) syncTicker() {
	if s.match.Paused() || s.match.Finished() {
		s.stopTicker()
		return
	}
	s.startTicker()
}

func (s *Session) AddScore(teamID string, kind models.ScoreKind, playerID string) (ev models.ScoreEvent, err error) {
	err = s.mutate(fmt.Sprintf("score %s", kind), func() error {
		ev, err = s.match.AddScore(teamID, kind, playerID)
		return err
	})
	return ev, err
}

func (s *Session) EditScore(id string, p scoring.Patch) (ev models.ScoreEvent, err error) {
	err = s.mutate("score edited", func() error {
		ev, err = s.match.EditScore(id, p)
		return err
	})
	return ev, err
}

func (s *Session) DeleteScore(id string) error {
	return s.mutate("score deleted", func() error {
		return s.match.DeleteScore(id)
	})
}

func (s *Session) AddCard(playerID string, kind models.CardKind) (c models.Card, err error) {
	err = s.mutate(fmt.Sprintf("card %s", kind), func() error {
		c, err = s.match.AddCard(playerID, kind)
		return err
	})
	return c, err
}

func (s *Session) DeleteCard(id string) error {
	return s.mutate("card deleted", func() error {
		return s.match.DeleteCard(id)
	})
}

func (s *Session) Substitute(teamID, outID, inID string) (sub models.Substitution, err error) {
	err = s.mutate("substitution", func() error {
		sub, err = s.match.Substitute(teamID, outID, inID)
		return err
	})
	return sub, err
}

func (s *Session) RenameTeam(teamID, name string) error {
	return s.mutate("team renamed", func() error {
		return s.match.RenameTeam(teamID, name)
	})
}

func (s *Session) RenamePlayer(playerID, name string) error {
	return s.mutate("player renamed", func() error {
		return s.match.RenamePlayer(playerID, name)
	})
}

func (s *Session) AdvanceToSecondHalf() error {
	return s.mutate("second half", func() error {
		return s.match.AdvanceToSecondHalf()
	})
}

// Finish завершает матч досрочно и сразу сохраняет его.
func (s *Session) Finish(ctx context.Context) error {
	err := s.mutate("match finished", func() error {
		s.match.Finish()
		s.stopTicker()
		return nil
	})
	if err != nil {
		return err
	}
	return s.Save(ctx)
}

// Save сохраняет снимок. Сам вызов хранилища идёт вне блокировки.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	snap := s.match.Snapshot()
	version := s.version
	s.mu.Unlock()

	if _, err := s.store.Upsert(ctx, snap); err != nil {
		s.log.Errorw("Ошибка сохранения матча", "error", err)
		s.mu.Lock()
		n := s.notification(KindSaveFailed, err.Error())
		s.mu.Unlock()
		s.emit(n)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	if version > s.saved {
		s.saved = version
	}
	n := s.notification(KindSaved, "")
	s.mu.Unlock()
	s.emit(n)
	return nil
}

func (s *Session) saveAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
		defer cancel()
		_ = s.Save(ctx)
	}()
}

func (s *Session) autosaveLoop() {
	defer s.wg.Done()
	t := time.NewTicker(s.opts.AutosaveInterval)
	defer t.Stop()
	for {
		select {
		case <-s.quit:
			return
		case <-t.C:
			if !s.Dirty() {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
			if err := s.Save(ctx); err == nil {
				s.log.Debugw("Автосохранение выполнено")
			}
			cancel()
		}
	}
}

// Close останавливает часы и автосохранение и сохраняет матч напоследок.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.stopTicker()
	s.match.Pause()
	s.closed = true
	close(s.quit)
	dirty := s.version != s.saved
	s.mu.Unlock()

	s.wg.Wait()

	var err error
	if dirty {
		err = s.Save(ctx)
	}
	s.mu.Lock()
	n := s.notification(KindClosed, "")
	s.mu.Unlock()
	s.emit(n)
	return err
}
