// Package match: агрегат матча. Очки команд, фаза и активность карточек
// выводятся из журналов событий и прошедшего времени.
package match

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"rugby-scorekeeper/internal/cards"
	"rugby-scorekeeper/internal/clock"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/roster"
	"rugby-scorekeeper/internal/scoring"
)

const (
	BlueTeamID = "team-blue"
	RedTeamID  = "team-red"
)

type Match struct {
	m     models.Match
	newID func() string
}

// New создаёт матч на паузе в первом тайме с двумя заявками по умолчанию.
func New(id string, now time.Time) *Match {
	if id == "" {
		id = "match-" + uuid.NewString()
	}
	return &Match{
		m: models.Match{
			ID:   id,
			Date: now.UTC(),
			Teams: []models.Team{
				roster.NewTeam(BlueTeamID, "Blue Team", models.SideBlue),
				roster.NewTeam(RedTeamID, "Red Team", models.SideRed),
			},
			Cards:         []models.Card{},
			Scores:        []models.ScoreEvent{},
			Substitutions: []models.Substitution{},
			FirstHalf:     true,
			Paused:        true,
		},
		newID: uuid.NewString,
	}
}

// Load оборачивает сохранённый матч и заново выводит производные поля.
func Load(m models.Match) *Match {
	a := &Match{m: m.Clone(), newID: uuid.NewString}
	for i := range a.m.Scores {
		a.m.Scores[i].Points = scoring.PointsFor(a.m.Scores[i].Kind)
	}
	a.m.Cards, _ = cards.Expire(a.m.Cards, a.m.TotalElapsed)
	a.recompute()
	return a
}

func (a *Match) ID() string { return a.m.ID }

// Snapshot: независимая копия состояния.
func (a *Match) Snapshot() models.Match { return a.m.Clone() }

func (a *Match) recompute() {
	for i := range a.m.Teams {
		t := &a.m.Teams[i]
		t.Points = scoring.TeamTotal(t.ID, a.m.Scores)
		t.Substitutions = 0
		for _, s := range a.m.Substitutions {
			if s.TeamID == t.ID {
				t.Substitutions++
			}
		}
	}
}

func (a *Match) clockState() clock.State {
	return clock.State{
		Total:     a.m.TotalElapsed,
		Half:      a.m.HalfElapsed,
		FirstHalf: a.m.FirstHalf,
		Paused:    a.m.Paused,
		Finished:  a.m.Finished,
	}
}

func (a *Match) setClock(s clock.State) {
	a.m.TotalElapsed = s.Total
	a.m.HalfElapsed = s.Half
	a.m.FirstHalf = s.FirstHalf
	a.m.Paused = s.Paused
	// завершение не откатывается
	a.m.Finished = a.m.Finished || s.Finished
}

func (a *Match) Minute() int { return clock.MinuteOf(a.m.TotalElapsed) }

func (a *Match) Phase() clock.Phase {
	if a.m.Finished {
		return clock.Finished
	}
	return clock.PhaseOf(a.m.TotalElapsed)
}

func (a *Match) Status() clock.Status {
	if a.m.Finished {
		return clock.Status{Phase: clock.Finished, Progress: 100}
	}
	return clock.StatusOf(a.m.TotalElapsed)
}

func (a *Match) Finished() bool { return a.m.Finished }
func (a *Match) Paused() bool   { return a.m.Paused }

// FinishedEarly: завершён вручную раньше полного времени.
func (a *Match) FinishedEarly() bool {
	return a.m.Finished && a.m.TotalElapsed < clock.TotalSeconds
}

type TickResult struct {
	Events  []clock.Event
	Expired []string
}

// Tick продвигает часы на секунду, затем истекают карточки.
func (a *Match) Tick() TickResult {
	if a.m.Paused || a.m.Finished {
		return TickResult{}
	}
	s, events := clock.Advance(a.clockState())
	a.setClock(s)

	var expired []string
	a.m.Cards, expired = cards.Expire(a.m.Cards, a.m.TotalElapsed)
	return TickResult{Events: events, Expired: expired}
}

// TogglePause переключает паузу и возвращает новое значение; завершённый матч не трогается.
func (a *Match) TogglePause() bool {
	if a.m.Finished {
		return a.m.Paused
	}
	a.m.Paused = !a.m.Paused
	return a.m.Paused
}

func (a *Match) Pause() {
	a.m.Paused = true
}

func (a *Match) Resume() {
	if !a.m.Finished {
		a.m.Paused = false
	}
}

func (a *Match) AdvanceToSecondHalf() error {
	s, ok := clock.StartSecondHalf(a.clockState())
	if !ok {
		return ErrPhaseTransitionIgnored
	}
	a.setClock(s)
	return nil
}

func (a *Match) Finish() {
	a.setClock(clock.Finish(a.clockState()))
}

func (a *Match) AddScore(teamID string, kind models.ScoreKind, playerID string) (models.ScoreEvent, error) {
	if !kind.Valid() {
		return models.ScoreEvent{}, fmt.Errorf("score %q: %w", kind, ErrInvalidKind)
	}
	team := a.m.Team(teamID)
	if team == nil {
		return models.ScoreEvent{}, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if playerID != "" && team.Player(playerID) == nil {
		return models.ScoreEvent{}, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	minute := a.Minute()
	if kind == models.ScoreConversion && !scoring.CanConvert(teamID, a.m.Scores, minute) {
		return models.ScoreEvent{}, ErrConversionNotAllowed
	}

	ev := scoring.NewEvent(a.newID(), teamID, kind, minute, playerID)
	a.m.Scores = append(a.m.Scores, ev)
	a.recompute()
	return ev, nil
}

// CanConvert: подсказка для интерфейса, та же проверка, что в AddScore.
func (a *Match) CanConvert(teamID string) bool {
	return scoring.CanConvert(teamID, a.m.Scores, a.Minute())
}

func (a *Match) EditScore(id string, p scoring.Patch) (models.ScoreEvent, error) {
	if p.Kind != nil && !p.Kind.Valid() {
		return models.ScoreEvent{}, fmt.Errorf("score %q: %w", *p.Kind, ErrInvalidKind)
	}
	scores, ok := scoring.Edit(a.m.Scores, id, p)
	if !ok {
		return models.ScoreEvent{}, fmt.Errorf("score %s: %w", id, ErrNotFound)
	}
	a.m.Scores = scores
	a.recompute()
	for _, e := range a.m.Scores {
		if e.ID == id {
			return e, nil
		}
	}
	return models.ScoreEvent{}, fmt.Errorf("score %s: %w", id, ErrNotFound)
}

func (a *Match) DeleteScore(id string) error {
	scores, ok := scoring.Delete(a.m.Scores, id)
	if !ok {
		return fmt.Errorf("score %s: %w", id, ErrNotFound)
	}
	a.m.Scores = scores
	a.recompute()
	return nil
}

func (a *Match) AddCard(playerID string, kind models.CardKind) (models.Card, error) {
	if !kind.Valid() {
		return models.Card{}, fmt.Errorf("card %q: %w", kind, ErrInvalidKind)
	}
	if a.m.TeamOf(playerID) == nil {
		return models.Card{}, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	if v := cards.CanIssue(playerID, a.m.Cards); !v.Allowed {
		return models.Card{}, &CardRejectedError{Reason: v.Reason}
	}
	card := cards.New(a.newID(), playerID, kind, a.m.TotalElapsed)
	a.m.Cards = append(a.m.Cards, card)
	return card, nil
}

func (a *Match) DeleteCard(id string) error {
	list, ok := cards.Delete(a.m.Cards, id)
	if !ok {
		return fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	a.m.Cards = list
	return nil
}

func (a *Match) Substitute(teamID, outID, inID string) (models.Substitution, error) {
	team := a.m.Team(teamID)
	if team == nil {
		return models.Substitution{}, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if v := roster.Validate(*team, outID, inID, a.m.Substitutions); !v.Valid {
		return models.Substitution{}, &InvalidSubstitutionError{Reason: v.Reason}
	}
	*team = roster.Apply(*team, outID, inID)
	sub := models.Substitution{
		ID:        a.newID(),
		TeamID:    teamID,
		PlayerOut: outID,
		PlayerIn:  inID,
		Minute:    a.Minute(),
	}
	a.m.Substitutions = append(a.m.Substitutions, sub)
	a.recompute()
	return sub, nil
}

// RenameTeam и RenamePlayer: правка заявки до/во время матча.
func (a *Match) RenameTeam(teamID, name string) error {
	team := a.m.Team(teamID)
	if team == nil {
		return fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	team.Name = name
	return nil
}

func (a *Match) RenamePlayer(playerID, name string) error {
	team := a.m.TeamOf(playerID)
	if team == nil {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	team.Player(playerID).Name = name
	return nil
}

type TeamStats struct {
	TeamID string          `json:"teamId"`
	Name   string          `json:"name"`
	Side   models.Side     `json:"side"`
	Score  scoring.Summary `json:"score"`
	Cards  cards.Summary   `json:"cards"`
	// CanConvert: подсказка для кнопки реализации.
	CanConvert bool `json:"canConvert"`
}

type Stats struct {
	Minute int          `json:"minute"`
	Clock  clock.Status `json:"clock"`
	Teams  []TeamStats  `json:"teams"`
}

func (a *Match) Stats() Stats {
	st := Stats{Minute: a.Minute(), Clock: a.Status()}
	for _, t := range a.m.Teams {
		st.Teams = append(st.Teams, TeamStats{
			TeamID:     t.ID,
			Name:       t.Name,
			Side:       t.Side,
			Score:      scoring.Summarize(t.ID, a.m.Scores),
			Cards:      cards.TeamSummary(a.m.Cards, t),
			CanConvert: scoring.CanConvert(t.ID, a.m.Scores, a.Minute()),
		})
	}
	return st
}
