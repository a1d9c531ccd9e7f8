package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"rugby-scorekeeper/internal/models"
)

func newTable(buf *bytes.Buffer) *tabwriter.Writer {
	return tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
}

func section(buf *bytes.Buffer, title string) {
	fmt.Fprintf(buf, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// Full: полный протокол матча.
func Full(m models.Match) string {
	v := Build(m)
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "RUGBY MATCH REPORT\n")
	fmt.Fprintf(&buf, "Date: %s\n", v.Date.Format("2006-01-02 15:04"))
	fmt.Fprintf(&buf, "Match: %s\n", v.ID)
	fmt.Fprintf(&buf, "Status: %s", v.Status)
	if v.FinishedEarly {
		fmt.Fprintf(&buf, " (finished early)")
	}
	fmt.Fprintf(&buf, "\nTime: %s\n", v.MatchTime)

	section(&buf, "Score")
	fmt.Fprintln(&buf, v.Scoreline())
	w := newTable(&buf)
	fmt.Fprintln(w, "Team\tTries\tConversions\tPenalties\tTotal")
	for _, t := range v.Teams {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", t.Name, t.Score.Tries, t.Score.Conversions, t.Score.Penalties, t.Score.Total)
	}
	w.Flush()

	section(&buf, "Scoring")
	if len(v.Scores) == 0 {
		fmt.Fprintln(&buf, "No points scored")
	} else {
		w = newTable(&buf)
		fmt.Fprintln(w, "Min\tTeam\tType\tPlayer\tPts")
		for _, s := range v.Scores {
			fmt.Fprintf(w, "%d'\t%s\t%s\t%s\t%d\n", s.Minute, s.Team, s.Kind, s.Player, s.Points)
		}
		w.Flush()
	}

	section(&buf, "Cards")
	if len(v.Cards) == 0 {
		fmt.Fprintln(&buf, "No cards")
	} else {
		w = newTable(&buf)
		fmt.Fprintln(w, "Min\tTeam\tPlayer\tCard\tState")
		for _, c := range v.Cards {
			fmt.Fprintf(w, "%d'\t%s\t%s\t%s\t%s\n", c.Minute, c.Team, c.Player, c.Kind, c.State)
		}
		w.Flush()
	}

	section(&buf, "Substitutions")
	if len(v.Subs) == 0 {
		fmt.Fprintln(&buf, "No substitutions")
	} else {
		w = newTable(&buf)
		fmt.Fprintln(w, "Min\tTeam\tOff\tOn")
		for _, s := range v.Subs {
			fmt.Fprintf(w, "%d'\t%s\t%s\t%s\n", s.Minute, s.Team, s.Out, s.In)
		}
		w.Flush()
	}

	for _, t := range v.Teams {
		section(&buf, "Lineup: "+t.Name)
		w = newTable(&buf)
		for _, p := range t.Starters {
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.Number, p.Name, p.Position)
		}
		w.Flush()
	}
	return buf.String()
}

// Summary: короткая сводка для чата и печати на одной странице.
func Summary(m models.Match) string {
	v := Build(m)
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", v.Scoreline())
	fmt.Fprintf(&buf, "%s, %s", v.Status, v.MatchTime)
	if v.FinishedEarly {
		fmt.Fprintf(&buf, " (finished early)")
	}
	fmt.Fprintln(&buf)

	w := newTable(&buf)
	fmt.Fprintln(w, "Team\tT\tC\tP\tSubs\tYC\tRC")
	for _, t := range v.Teams {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			t.Name, t.Score.Tries, t.Score.Conversions, t.Score.Penalties, t.Subs, t.Issued.Yellow, t.Issued.Red)
	}
	w.Flush()
	return buf.String()
}
