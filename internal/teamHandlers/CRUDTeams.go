package teamhandlers

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rugby-scorekeeper/internal/cards"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/roster"
)

var (
	ErrUnknownSide   = errors.New("команда: blue или red")
	ErrUnknownPlayer = errors.New("игрок с таким номером не найден")
)

type Handler struct{}

// ParseSide понимает blue/red и русские синие/красные.
func ParseSide(arg string) (models.Side, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "blue", "b", "синие", "синий":
		return models.SideBlue, nil
	case "red", "r", "красные", "красный":
		return models.SideRed, nil
	}
	return "", ErrUnknownSide
}

func (h *Handler) Team(m models.Match, side models.Side) (models.Team, error) {
	t := m.TeamBySide(side)
	if t == nil {
		return models.Team{}, ErrUnknownSide
	}
	return *t, nil
}

// PlayerByNumber ищет игрока по игровому номеру в заявке стороны.
func (h *Handler) PlayerByNumber(m models.Match, side models.Side, number int) (models.Player, error) {
	t, err := h.Team(m, side)
	if err != nil {
		return models.Player{}, err
	}
	p := t.PlayerByNumber(number)
	if p == nil {
		return models.Player{}, ErrUnknownPlayer
	}
	return *p, nil
}

// Lineup печатает состав стороны с заменами и действующими карточками.
func (h *Handler) Lineup(m models.Match, side models.Side) (string, error) {
	t, err := h.Team(m, side)
	if err != nil {
		return "", err
	}
	off := roster.SubstitutedOff(t, m.Substitutions)
	marks := make(map[string]string)
	for _, c := range cards.Active(m.Cards) {
		if c.Kind == models.CardRed {
			marks[c.PlayerID] = " 🟥"
		} else {
			marks[c.PlayerID] = " 🟨 " + cards.FormatRemaining(cards.Remaining(c, m.TotalElapsed))
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s), замен: %d/%d\n", t.Name, t.Side, t.Substitutions, roster.MaxSubstitutions)
	sb.WriteString("\nНа поле:\n")
	for _, p := range roster.Starters(t) {
		fmt.Fprintf(&sb, "%d. %s — %s%s\n", p.Number, p.Name, p.Position, marks[p.ID])
	}
	sb.WriteString("\nЗапасные:\n")
	for _, p := range roster.Bench(t) {
		note := ""
		if off[p.ID] {
			note = " (заменён)"
		}
		fmt.Fprintf(&sb, "%d. %s%s%s\n", p.Number, p.Name, note, marks[p.ID])
	}
	return sb.String(), nil
}

// Sender: то, чем отправляются сообщения (BotAPI или подмена в тестах).
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

func (h *Handler) SendLineup(bot Sender, chatID int64, m models.Match, side models.Side) error {
	text, err := h.Lineup(m, side)
	if err != nil {
		text = "❌ " + err.Error()
	}
	_, sendErr := bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return err
	}
	return sendErr
}
