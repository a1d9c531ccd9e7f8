// Package roster: заявка команды и правила замен.
package roster

import (
	"fmt"

	"rugby-scorekeeper/internal/models"
)

const (
	StarterCount     = 15
	BenchCount       = 10
	MaxSubstitutions = 5
)

const (
	ReasonCapExceeded        = "cap exceeded"
	ReasonOutgoingNotStarter = "outgoing not starter"
	ReasonIncomingNotBench   = "incoming not bench"
	ReasonPlayerNotFound     = "player not found"
	ReasonNoReentry          = "incoming already substituted off"
)

var positions = map[int]string{
	1:  "Loosehead Prop",
	2:  "Hooker",
	3:  "Tighthead Prop",
	4:  "Lock",
	5:  "Lock",
	6:  "Blindside Flanker",
	7:  "Openside Flanker",
	8:  "Number 8",
	9:  "Scrum-half",
	10: "Fly-half",
	11: "Wing",
	12: "Inside Centre",
	13: "Outside Centre",
	14: "Wing",
	15: "Fullback",
}

// PositionFor: позиция по номеру, после 15-го идут запасные.
func PositionFor(number int) string {
	if p, ok := positions[number]; ok {
		return p
	}
	return "Replacement"
}

// NewTeam заполняет заявку: 15 в основе (1–15) и 10 запасных (16–25).
func NewTeam(id, name string, side models.Side) models.Team {
	players := make([]models.Player, 0, StarterCount+BenchCount)
	for n := 1; n <= StarterCount; n++ {
		zero := 0
		players = append(players, models.Player{
			ID:            fmt.Sprintf("%s-starter-%d", id, n),
			Name:          fmt.Sprintf("Player %d", n),
			Number:        n,
			Position:      PositionFor(n),
			IsStarter:     true,
			MinutesPlayed: &zero,
		})
	}
	for n := StarterCount + 1; n <= StarterCount+BenchCount; n++ {
		players = append(players, models.Player{
			ID:       fmt.Sprintf("%s-bench-%d", id, n),
			Name:     fmt.Sprintf("Replacement %d", n-StarterCount),
			Number:   n,
			Position: PositionFor(n),
		})
	}
	return models.Team{ID: id, Name: name, Side: side, Players: players}
}

// Verdict: результат проверки замены.
type Verdict struct {
	Valid  bool
	Reason string
}

// Validate проверяет замену. Ушедший с поля игрок обратно не выходит:
// это проверяется по журналу замен, а не по флагу основы.
func Validate(team models.Team, outID, inID string, log []models.Substitution) Verdict {
	if team.Substitutions >= MaxSubstitutions {
		return Verdict{Reason: ReasonCapExceeded}
	}
	out, in := team.Player(outID), team.Player(inID)
	if out == nil || in == nil {
		return Verdict{Reason: ReasonPlayerNotFound}
	}
	if !out.IsStarter {
		return Verdict{Reason: ReasonOutgoingNotStarter}
	}
	if in.IsStarter {
		return Verdict{Reason: ReasonIncomingNotBench}
	}
	for _, s := range log {
		if s.TeamID == team.ID && s.PlayerOut == inID {
			return Verdict{Reason: ReasonNoReentry}
		}
	}
	return Verdict{Valid: true}
}

// Apply выполняет уже проверенную замену и возвращает новую команду.
func Apply(team models.Team, outID, inID string) models.Team {
	players := append([]models.Player(nil), team.Players...)
	for i := range players {
		switch players[i].ID {
		case outID:
			players[i].IsStarter = false
		case inID:
			zero := 0
			players[i].IsStarter = true
			players[i].MinutesPlayed = &zero
		}
	}
	team.Players = players
	team.Substitutions++
	return team
}

func Starters(team models.Team) []models.Player {
	var out []models.Player
	for _, p := range team.Players {
		if p.IsStarter {
			out = append(out, p)
		}
	}
	return out
}

func Bench(team models.Team) []models.Player {
	var out []models.Player
	for _, p := range team.Players {
		if !p.IsStarter {
			out = append(out, p)
		}
	}
	return out
}

// SubstitutedOff: игроки, ушедшие с поля по замене.
func SubstitutedOff(team models.Team, log []models.Substitution) map[string]bool {
	out := make(map[string]bool)
	for _, s := range log {
		if s.TeamID == team.ID {
			out[s.PlayerOut] = true
		}
	}
	return out
}

func Find(team models.Team, playerID string) (models.Player, bool) {
	if p := team.Player(playerID); p != nil {
		return *p, true
	}
	return models.Player{}, false
}

// FindAcross ищет игрока в обеих заявках матча.
func FindAcross(teams []models.Team, playerID string) (models.Player, models.Team, bool) {
	for _, t := range teams {
		if p, ok := Find(t, playerID); ok {
			return p, t, true
		}
	}
	return models.Player{}, models.Team{}, false
}
