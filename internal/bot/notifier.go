package bot

import (
	"rugby-scorekeeper/internal/session"
)

// Notify реализует session.Notifier: тревоги уходят в чаты, где матч текущий.
func (b *Bot) Notify(n session.Notification) {
	if !n.Alarm() {
		return
	}
	chats := b.chatsFor(n.MatchID)
	if len(chats) == 0 {
		return
	}
	text := alarmText(n)
	go func() {
		for _, chatID := range chats {
			b.sendMessage(chatID, text)
		}
	}()
}
