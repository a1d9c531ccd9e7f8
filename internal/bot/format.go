package bot

import (
	"fmt"
	"strconv"
	"strings"

	"rugby-scorekeeper/internal/cards"
	"rugby-scorekeeper/internal/clock"
	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/report"
	"rugby-scorekeeper/internal/session"
)

// parseCommand отделяет команду от аргументов и срезает @имя_бота.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, fields[1:]
}

func parseNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("неверный номер игрока: %s", arg)
	}
	return n, nil
}

var phaseNames = map[clock.Phase]string{
	clock.FirstHalf:  "первый тайм",
	clock.Halftime:   "перерыв",
	clock.SecondHalf: "второй тайм",
	clock.Finished:   "матч окончен",
}

func statusText(m models.Match, st match.Stats) string {
	var sb strings.Builder
	sb.WriteString(report.Build(m).Scoreline())
	sb.WriteString("\n")

	state := "идёт"
	if m.Finished {
		state = "завершён"
	} else if m.Paused {
		state = "пауза"
	}
	fmt.Fprintf(&sb, "⏱ %s (%s), %s\n", clock.FormatMatchTime(m.TotalElapsed), phaseNames[st.Clock.Phase], state)
	if !m.Finished {
		fmt.Fprintf(&sb, "До конца периода: %s\n", clock.FormatClock(st.Clock.Remaining))
	}
	if !m.FirstHalf && !m.Finished {
		fmt.Fprintf(&sb, "Тайм: %s\n", clock.FormatClock(m.HalfElapsed))
	}
	for _, t := range st.Teams {
		fmt.Fprintf(&sb, "%s: T%d C%d P%d, карточки: 🟨%d 🟥%d",
			t.Name, t.Score.Tries, t.Score.Conversions, t.Score.Penalties, t.Cards.Yellow, t.Cards.Red)
		if t.CanConvert {
			sb.WriteString(", можно реализовать")
		}
		sb.WriteString("\n")
	}
	for _, c := range cards.ActiveYellows(m.Cards, m.TotalElapsed) {
		if t := m.TeamOf(c.PlayerID); t != nil {
			if p := t.Player(c.PlayerID); p != nil {
				fmt.Fprintf(&sb, "🟨 #%d %s (%s): осталось %s\n", p.Number, p.Name, t.Name,
					cards.FormatRemaining(cards.Remaining(c, m.TotalElapsed)))
			}
		}
	}
	fmt.Fprintf(&sb, "ID: %s", m.ID)
	return sb.String()
}

func alarmText(n session.Notification) string {
	switch n.Kind {
	case session.KindHalfEnded:
		return fmt.Sprintf("⏱ Первый тайм окончен (%d'). Команда /half начнёт второй тайм.", n.Minute)
	case session.KindMatchEnded:
		score := ""
		if n.Match != nil {
			score = ": " + report.Build(*n.Match).Scoreline()
		}
		return "🏁 Матч окончен" + score
	case session.KindCardExpired:
		who := n.Message
		if n.Match != nil {
			for _, c := range n.Match.Cards {
				if c.ID != n.Message {
					continue
				}
				if t := n.Match.TeamOf(c.PlayerID); t != nil {
					if p := t.Player(c.PlayerID); p != nil {
						who = fmt.Sprintf("#%d %s (%s)", p.Number, p.Name, t.Name)
					}
				}
			}
		}
		return "🟨 Удаление окончено: " + who
	case session.KindSaveFailed:
		return "⚠️ Не удалось сохранить матч: " + n.Message
	}
	return ""
}

func matchLine(m models.Match) string {
	state := "в игре"
	if m.Finished {
		state = "завершён"
	}
	return fmt.Sprintf("%s — %s, %s (%s)", m.ID, report.Build(m).Scoreline(), clock.FormatMatchTime(m.TotalElapsed), state)
}

const helpText = `🏉 Протокол матча по регби

/new — новый матч
/matches — сохранённые матчи
/open <id> — открыть матч
/status — счёт и время
/pause — пауза / продолжить
/try, /conversion, /penalty [blue|red] [номер]
/yellow, /red <blue|red> <номер>
/sub <blue|red> <уходит> <выходит>
/lineup <blue|red>
/half — второй тайм
/finish — завершить матч
/save — сохранить
/report, /summary, /pdf — отчёты
/close — закрыть матч`
