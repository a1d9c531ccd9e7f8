package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rugby-scorekeeper/config"
	"rugby-scorekeeper/internal/logger"
	"rugby-scorekeeper/internal/match"
	mtH "rugby-scorekeeper/internal/matchHandlers"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/session"
	"rugby-scorekeeper/internal/storage"
)

const (
	adminChat = int64(1)
	guestChat = int64(2)
)

type fakeSender struct {
	mu        sync.Mutex
	texts     []string
	documents []string
	callbacks int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch c := c.(type) {
	case tgbotapi.MessageConfig:
		f.texts = append(f.texts, c.Text)
	case tgbotapi.DocumentConfig:
		if fb, ok := c.File.(tgbotapi.FileBytes); ok {
			f.documents = append(f.documents, fb.Name)
		}
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

type fakePDF struct{}

func (fakePDF) MatchPDF(context.Context, models.Match) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func (fakePDF) SummaryPDF(context.Context, models.Match) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "matches.json"))
	require.NoError(t, err)
	log := logger.Nop()
	sessions := session.NewManager(store, nil, log, session.Options{TickInterval: time.Hour, AutosaveInterval: time.Hour})
	t.Cleanup(func() { sessions.CloseAll(context.Background()) })

	sender := &fakeSender{}
	cfg := &config.Config{Admins: []int64{adminChat}}
	b := newBot(sender, cfg, sessions, mtH.New(store), fakePDF{}, log)
	b.Now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return b, sender
}

func say(b *Bot, chatID int64, text string) {
	b.handleMessage(&tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text})
}

func TestParseCommand(t *testing.T) {
	cmd, args := parseCommand("/Try@rugby_bot blue 10")
	assert.Equal(t, "/try", cmd)
	assert.Equal(t, []string{"blue", "10"}, args)

	cmd, _ = parseCommand("просто текст")
	assert.Empty(t, cmd)

	n, err := parseNumber("#7")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = parseNumber("0")
	assert.Error(t, err)
}

func TestStatusText(t *testing.T) {
	a := match.New("m1", time.Now())
	text := statusText(a.Snapshot(), a.Stats())
	assert.Contains(t, text, "Blue Team 0 - 0 Red Team")
	assert.Contains(t, text, "первый тайм")
	assert.Contains(t, text, "пауза")
	assert.Contains(t, text, "ID: m1")

	_, err := a.AddCard("team-blue-starter-7", models.CardYellow)
	require.NoError(t, err)
	text = statusText(a.Snapshot(), a.Stats())
	assert.Contains(t, text, "🟨 #7 Player 7 (Blue Team): осталось 11:00")
}

func TestAlarmText(t *testing.T) {
	a := match.New("m1", time.Now())
	c, err := a.AddCard("team-red-starter-9", models.CardYellow)
	require.NoError(t, err)
	snap := a.Snapshot()

	text := alarmText(session.Notification{Kind: session.KindCardExpired, Message: c.ID, Match: &snap})
	assert.Equal(t, "🟨 Удаление окончено: #9 Player 9 (Red Team)", text)

	text = alarmText(session.Notification{Kind: session.KindMatchEnded, Match: &snap})
	assert.Contains(t, text, "Blue Team 0 - 0 Red Team")

	assert.Empty(t, alarmText(session.Notification{Kind: session.KindTick}))
}

func TestGuestCannotMutate(t *testing.T) {
	b, sender := newTestBot(t)
	say(b, guestChat, "/new")
	assert.Contains(t, sender.last(), "нет прав")

	say(b, guestChat, "/status")
	assert.Contains(t, sender.last(), "Нет текущего матча")
}

func TestMatchFlow(t *testing.T) {
	b, sender := newTestBot(t)

	say(b, adminChat, "/new")
	require.Contains(t, sender.last(), "Новый матч создан")

	say(b, adminChat, "/try blue 10")
	assert.Contains(t, sender.last(), "Blue Team 5 - 0 Red Team")

	say(b, adminChat, "/conversion синие")
	assert.Contains(t, sender.last(), "Blue Team 7 - 0 Red Team")

	say(b, adminChat, "/conversion red")
	assert.Contains(t, sender.last(), "нет попытки для реализации")

	// без стороны бот спрашивает команду кнопками
	say(b, adminChat, "/try")
	assert.Contains(t, sender.last(), "какая команда")
	b.handleCallbackQuery(&tgbotapi.CallbackQuery{
		ID: "q1", Data: "score:RED",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: adminChat}},
	})
	assert.Contains(t, sender.last(), "Blue Team 7 - 5 Red Team")

	say(b, adminChat, "/yellow blue 7")
	assert.Contains(t, sender.last(), "Жёлтая карточка: #7 Player 7")
	say(b, adminChat, "/yellow blue 7")
	assert.Contains(t, sender.last(), "карточка не выдана")

	say(b, adminChat, "/sub blue 3 18")
	assert.Contains(t, sender.last(), "уходит #3 Player 3, выходит #18 Replacement 3")
	say(b, adminChat, "/sub blue 18 3")
	assert.Contains(t, sender.last(), "замена невозможна")

	say(b, adminChat, "/lineup blue")
	assert.Contains(t, sender.last(), "3. Player 3 (заменён)")

	say(b, adminChat, "/pdf")
	require.Len(t, sender.documents, 1)
	assert.True(t, strings.HasPrefix(sender.documents[0], "rugby-match-2026-03-14-"))

	say(b, adminChat, "/finish")
	assert.Contains(t, sender.last(), "Матч завершён")
	say(b, adminChat, "/try blue")
	assert.Contains(t, sender.last(), "матч уже завершён")

	say(b, adminChat, "/summary")
	assert.Contains(t, sender.last(), "Blue Team 7 - 5 Red Team")
}

func TestOpenFromListAndAlarm(t *testing.T) {
	b, sender := newTestBot(t)
	say(b, adminChat, "/new")
	s, ok := b.currentSession(adminChat)
	require.True(t, ok)
	require.NoError(t, b.Sessions.Close(context.Background(), s.ID()))

	say(b, adminChat, "/matches")
	assert.Contains(t, sender.last(), s.ID())

	b.handleCallbackQuery(&tgbotapi.CallbackQuery{
		ID: "q2", Data: "open:" + s.ID(),
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: adminChat}},
	})
	assert.Contains(t, sender.last(), "ID: "+s.ID())

	before := sender.count()
	b.Notify(session.Notification{Kind: session.KindHalfEnded, MatchID: s.ID(), Minute: 41})
	b.Notify(session.Notification{Kind: session.KindTick, MatchID: s.ID()})
	assert.Eventually(t, func() bool { return sender.count() == before+1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, sender.last(), "Первый тайм окончен (41')")
}
