package models

import "time"

type Match struct {
	ID            string         `json:"id"`
	Date          time.Time      `json:"date"`
	Teams         []Team         `json:"teams"`
	Cards         []Card         `json:"cards"`
	Scores        []ScoreEvent   `json:"scores"`
	Substitutions []Substitution `json:"substitutions"`
	// TotalElapsed не сбрасывается между таймами, HalfElapsed: сбрасывается.
	TotalElapsed int  `json:"totalElapsed"`
	HalfElapsed  int  `json:"halfElapsed"`
	FirstHalf    bool `json:"firstHalf"`
	Paused       bool `json:"paused"`
	Finished     bool `json:"finished"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (m *Match) Team(teamID string) *Team {
	for i := range m.Teams {
		if m.Teams[i].ID == teamID {
			return &m.Teams[i]
		}
	}
	return nil
}

func (m *Match) TeamBySide(side Side) *Team {
	for i := range m.Teams {
		if m.Teams[i].Side == side {
			return &m.Teams[i]
		}
	}
	return nil
}

// TeamOf возвращает команду, в заявке которой есть игрок.
func (m *Match) TeamOf(playerID string) *Team {
	for i := range m.Teams {
		if m.Teams[i].Player(playerID) != nil {
			return &m.Teams[i]
		}
	}
	return nil
}

// Clone делает глубокую копию, чтобы снимок можно было сохранять вне блокировки.
func (m Match) Clone() Match {
	out := m
	out.Teams = make([]Team, len(m.Teams))
	for i, t := range m.Teams {
		t.Players = append([]Player(nil), t.Players...)
		for j := range t.Players {
			if mp := t.Players[j].MinutesPlayed; mp != nil {
				v := *mp
				t.Players[j].MinutesPlayed = &v
			}
		}
		out.Teams[i] = t
	}
	out.Cards = cloneSlice(m.Cards)
	for i := range out.Cards {
		if e := out.Cards[i].Expiry; e != nil {
			v := *e
			out.Cards[i].Expiry = &v
		}
	}
	out.Scores = cloneSlice(m.Scores)
	out.Substitutions = cloneSlice(m.Substitutions)
	if m.CreatedAt != nil {
		v := *m.CreatedAt
		out.CreatedAt = &v
	}
	if m.UpdatedAt != nil {
		v := *m.UpdatedAt
		out.UpdatedAt = &v
	}
	return out
}

// cloneSlice всегда возвращает не-nil срез: пустой журнал пишется как [].
func cloneSlice[T any](src []T) []T {
	out := make([]T, len(src))
	copy(out, src)
	return out
}
