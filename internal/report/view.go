// Package report строит отчёты по матчу: текст, сводку, HTML и PDF.
package report

import (
	"fmt"
	"time"

	"rugby-scorekeeper/internal/cards"
	"rugby-scorekeeper/internal/clock"
	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/roster"
	"rugby-scorekeeper/internal/scoring"
)

type TeamView struct {
	Name  string
	Side  models.Side
	Score scoring.Summary
	// Cards считает действующие сейчас, Issued все выданные за матч.
	Cards    cards.Summary
	Issued   cards.Summary
	Subs     int
	Starters []models.Player
}

type ScoreRow struct {
	Minute int
	Team   string
	Kind   models.ScoreKind
	Player string
	Points int
}

type CardRow struct {
	Minute int
	Team   string
	Player string
	Kind   models.CardKind
	State  string
}

type SubRow struct {
	Minute int
	Team   string
	Out    string
	In     string
}

// View: всё, что нужно любому формату отчёта.
type View struct {
	ID            string
	Date          time.Time
	Status        string
	MatchTime     string
	FinishedEarly bool
	Teams         []TeamView
	Scores        []ScoreRow
	Cards         []CardRow
	Subs          []SubRow
}

func status(m models.Match) string {
	switch {
	case m.Finished:
		return "FINISHED"
	case m.Paused:
		return "PAUSED"
	}
	return "IN PLAY"
}

func playerLabel(teams []models.Team, id string) string {
	if id == "" {
		return "-"
	}
	p, _, ok := roster.FindAcross(teams, id)
	if !ok {
		return id
	}
	return fmt.Sprintf("#%d %s", p.Number, p.Name)
}

func teamName(m models.Match, id string) string {
	if t := m.Team(id); t != nil {
		return t.Name
	}
	return id
}

func issued(list []models.Card, t models.Team) cards.Summary {
	var s cards.Summary
	for _, c := range list {
		if t.Player(c.PlayerID) == nil {
			continue
		}
		if c.Kind == models.CardRed {
			s.Red++
		} else {
			s.Yellow++
		}
		s.Total++
	}
	return s
}

// Build пересчитывает производные поля и собирает представление матча.
func Build(stored models.Match) View {
	a := match.Load(stored)
	m := a.Snapshot()

	v := View{
		ID:            m.ID,
		Date:          m.Date,
		Status:        status(m),
		MatchTime:     clock.FormatMatchTime(m.TotalElapsed),
		FinishedEarly: a.FinishedEarly(),
	}
	for _, t := range m.Teams {
		v.Teams = append(v.Teams, TeamView{
			Name:     t.Name,
			Side:     t.Side,
			Score:    scoring.Summarize(t.ID, m.Scores),
			Cards:    cards.TeamSummary(m.Cards, t),
			Issued:   issued(m.Cards, t),
			Subs:     t.Substitutions,
			Starters: roster.Starters(t),
		})
	}
	for _, s := range scoring.SortedByMinute(m.Scores) {
		v.Scores = append(v.Scores, ScoreRow{
			Minute: s.Minute,
			Team:   teamName(m, s.TeamID),
			Kind:   s.Kind,
			Player: playerLabel(m.Teams, s.PlayerID),
			Points: s.Points,
		})
	}
	for _, c := range m.Cards {
		row := CardRow{
			Minute: c.Minute,
			Player: playerLabel(m.Teams, c.PlayerID),
			Kind:   c.Kind,
		}
		if t := m.TeamOf(c.PlayerID); t != nil {
			row.Team = t.Name
		}
		switch {
		case c.Kind == models.CardRed:
			row.State = "Sent off"
		case c.Active:
			row.State = "Active " + cards.FormatRemaining(cards.Remaining(c, m.TotalElapsed))
		default:
			row.State = "Expired"
		}
		v.Cards = append(v.Cards, row)
	}
	for _, s := range m.Substitutions {
		v.Subs = append(v.Subs, SubRow{
			Minute: s.Minute,
			Team:   teamName(m, s.TeamID),
			Out:    playerLabel(m.Teams, s.PlayerOut),
			In:     playerLabel(m.Teams, s.PlayerIn),
		})
	}
	return v
}

// Scoreline: «Blue 12 - 7 Red».
func (v View) Scoreline() string {
	if len(v.Teams) != 2 {
		return ""
	}
	a, b := v.Teams[0], v.Teams[1]
	return fmt.Sprintf("%s %d - %d %s", a.Name, a.Score.Total, b.Score.Total, b.Name)
}

func MatchFilename(m models.Match, now time.Time) string {
	id := m.ID
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return fmt.Sprintf("rugby-match-%s-%s.pdf", now.Format("2006-01-02"), id)
}

func SummaryFilename(now time.Time) string {
	return fmt.Sprintf("rugby-summary-%s.pdf", now.Format("2006-01-02"))
}
