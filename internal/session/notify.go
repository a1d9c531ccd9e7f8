package session

import (
	"time"

	"rugby-scorekeeper/internal/models"
)

type Kind string

const (
	// KindTick: ежесекундный снимок для живого табло.
	KindTick        Kind = "TICK"
	KindUpdate      Kind = "UPDATE"
	KindHalfEnded   Kind = "HALF_ENDED"
	KindMatchEnded  Kind = "MATCH_ENDED"
	KindCardExpired Kind = "CARD_EXPIRED"
	KindSaved       Kind = "SAVED"
	KindSaveFailed  Kind = "SAVE_FAILED"
	KindClosed      Kind = "CLOSED"
)

type Notification struct {
	Kind    Kind          `json:"kind"`
	MatchID string        `json:"matchId"`
	Minute  int           `json:"minute"`
	Message string        `json:"message,omitempty"`
	Match   *models.Match `json:"match,omitempty"`
	At      time.Time     `json:"at"`
}

// Alarm: уведомление, о котором стоит сообщить оператору отдельно.
func (n Notification) Alarm() bool {
	switch n.Kind {
	case KindHalfEnded, KindMatchEnded, KindCardExpired, KindSaveFailed:
		return true
	}
	return false
}

type Notifier interface {
	Notify(Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Fanout рассылает уведомление всем получателям по очереди.
type Fanout []Notifier

func (f Fanout) Notify(n Notification) {
	for _, to := range f {
		if to != nil {
			to.Notify(n)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
