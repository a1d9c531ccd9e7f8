// Package cards: жизненный цикл жёлтых и красных карточек.
package cards

import (
	"fmt"

	"rugby-scorekeeper/internal/clock"
	"rugby-scorekeeper/internal/models"
)

const YellowPenaltySeconds = 10 * 60

const (
	ReasonAlreadyRed          = "already has red"
	ReasonAlreadyActiveYellow = "already has active yellow"
)

// Verdict: результат проверки перед выдачей карточки.
type Verdict struct {
	Allowed bool
	Reason  string
}

// New создаёт активную карточку. Срок жёлтой считается от начала минуты,
// а не от секунды выдачи.
func New(id, playerID string, kind models.CardKind, elapsed int) models.Card {
	minute := clock.MinuteOf(elapsed)
	card := models.Card{
		ID:       id,
		PlayerID: playerID,
		Kind:     kind,
		Minute:   minute,
		Active:   true,
	}
	if kind == models.CardYellow {
		expiry := minute*60 + YellowPenaltySeconds
		card.Expiry = &expiry
	}
	return card
}

func CanIssue(playerID string, cards []models.Card) Verdict {
	var yellow bool
	for _, c := range cards {
		if c.PlayerID != playerID || !c.Active {
			continue
		}
		if c.Kind == models.CardRed {
			return Verdict{Reason: ReasonAlreadyRed}
		}
		if c.Kind == models.CardYellow {
			yellow = true
		}
	}
	if yellow {
		return Verdict{Reason: ReasonAlreadyActiveYellow}
	}
	return Verdict{Allowed: true}
}

// Expire гасит жёлтые карточки, срок которых наступил к total. Возвращает новый
// срез и id погашенных.
func Expire(cards []models.Card, total int) ([]models.Card, []string) {
	var expired []string
	out := make([]models.Card, len(cards))
	copy(out, cards)
	for i := range out {
		c := &out[i]
		if c.Kind != models.CardYellow || !c.Active || c.Expiry == nil {
			continue
		}
		if *c.Expiry <= total {
			c.Active = false
			expired = append(expired, c.ID)
		}
	}
	return out, expired
}

func Active(cards []models.Card) []models.Card {
	var out []models.Card
	for _, c := range cards {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

func ActiveYellows(cards []models.Card, total int) []models.Card {
	var out []models.Card
	for _, c := range cards {
		if c.Kind == models.CardYellow && c.Active && c.Expiry != nil && *c.Expiry > total {
			out = append(out, c)
		}
	}
	return out
}

// Remaining: секунды до окончания удаления; у красной всегда 0.
func Remaining(c models.Card, total int) int {
	if c.Kind == models.CardRed || c.Expiry == nil {
		return 0
	}
	return max(0, *c.Expiry-total)
}

func FormatRemaining(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func Delete(cards []models.Card, id string) ([]models.Card, bool) {
	for i, c := range cards {
		if c.ID == id {
			out := append([]models.Card(nil), cards[:i]...)
			return append(out, cards[i+1:]...), true
		}
	}
	return cards, false
}

type Summary struct {
	Yellow int `json:"yellow"`
	Red    int `json:"red"`
	Total  int `json:"total"`
}

// TeamSummary считает только действующие карточки игроков команды.
func TeamSummary(cards []models.Card, team models.Team) Summary {
	var s Summary
	for _, c := range cards {
		if !c.Active || team.Player(c.PlayerID) == nil {
			continue
		}
		switch c.Kind {
		case models.CardYellow:
			s.Yellow++
		case models.CardRed:
			s.Red++
		}
		s.Total++
	}
	return s
}
