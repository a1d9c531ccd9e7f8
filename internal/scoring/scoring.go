// Package scoring: очки, итог команды и окно реализации.
package scoring

import (
	"sort"

	"rugby-scorekeeper/internal/models"
)

const (
	TryPoints        = 5
	ConversionPoints = 2
	PenaltyPoints    = 3

	// ConversionWindow: минут после попытки, в которые её можно реализовать.
	ConversionWindow = 5
)

func PointsFor(kind models.ScoreKind) int {
	switch kind {
	case models.ScoreTry:
		return TryPoints
	case models.ScoreConversion:
		return ConversionPoints
	case models.ScorePenalty:
		return PenaltyPoints
	}
	return 0
}

func NewEvent(id, teamID string, kind models.ScoreKind, minute int, playerID string) models.ScoreEvent {
	return models.ScoreEvent{
		ID:       id,
		TeamID:   teamID,
		Kind:     kind,
		Minute:   minute,
		PlayerID: playerID,
		Points:   PointsFor(kind),
	}
}

// TeamTotal считается по видам событий, сохранённые Points не учитываются.
func TeamTotal(teamID string, events []models.ScoreEvent) int {
	total := 0
	for _, e := range events {
		if e.TeamID == teamID {
			total += PointsFor(e.Kind)
		}
	}
	return total
}

// CanConvert: есть попытка команды в [minute-5, minute], после которой
// (строго позже, не дальше 5 минут) ещё не было реализации.
func CanConvert(teamID string, events []models.ScoreEvent, minute int) bool {
	for _, try := range events {
		if try.TeamID != teamID || try.Kind != models.ScoreTry {
			continue
		}
		if d := minute - try.Minute; d < 0 || d > ConversionWindow {
			continue
		}
		if !converted(teamID, events, try.Minute) {
			return true
		}
	}
	return false
}

func converted(teamID string, events []models.ScoreEvent, tryMinute int) bool {
	for _, e := range events {
		if e.TeamID != teamID || e.Kind != models.ScoreConversion {
			continue
		}
		if e.Minute > tryMinute && e.Minute-tryMinute <= ConversionWindow {
			return true
		}
	}
	return false
}

type Summary struct {
	Tries       int `json:"tries"`
	Conversions int `json:"conversions"`
	Penalties   int `json:"penalties"`
	Total       int `json:"total"`
}

func Summarize(teamID string, events []models.ScoreEvent) Summary {
	var s Summary
	for _, e := range events {
		if e.TeamID != teamID {
			continue
		}
		switch e.Kind {
		case models.ScoreTry:
			s.Tries++
		case models.ScoreConversion:
			s.Conversions++
		case models.ScorePenalty:
			s.Penalties++
		}
		s.Total += PointsFor(e.Kind)
	}
	return s
}

// SortedByMinute: для отчётов; внутри минуты порядок записи сохраняется.
func SortedByMinute(events []models.ScoreEvent) []models.ScoreEvent {
	out := append([]models.ScoreEvent(nil), events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minute < out[j].Minute })
	return out
}

func Delete(events []models.ScoreEvent, id string) ([]models.ScoreEvent, bool) {
	for i, e := range events {
		if e.ID == id {
			out := append([]models.ScoreEvent(nil), events[:i]...)
			return append(out, events[i+1:]...), true
		}
	}
	return events, false
}

// Patch: редактируемые поля события. Очки не редактируются напрямую,
// они следуют из вида.
type Patch struct {
	Kind     *models.ScoreKind `json:"kind,omitempty"`
	Minute   *int              `json:"minute,omitempty"`
	PlayerID *string           `json:"playerId,omitempty"`
}

func Edit(events []models.ScoreEvent, id string, p Patch) ([]models.ScoreEvent, bool) {
	out := append([]models.ScoreEvent(nil), events...)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if p.Kind != nil {
			out[i].Kind = *p.Kind
			out[i].Points = PointsFor(*p.Kind)
		}
		if p.Minute != nil {
			out[i].Minute = *p.Minute
		}
		if p.PlayerID != nil {
			out[i].PlayerID = *p.PlayerID
		}
		return out, true
	}
	return events, false
}
