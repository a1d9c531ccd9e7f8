package clock

type Event string

const (
	HalfEnded  Event = "HALF_ENDED"
	MatchEnded Event = "MATCH_ENDED"
)

// State: часть матча, которой владеют часы.
type State struct {
	Total     int
	Half      int
	FirstHalf bool
	Paused    bool
	Finished  bool
}

// Advance продвигает часы на одну секунду. Переход ко второму тайму не
// автоматический: при пересечении конца первого тайма отдаётся только HalfEnded.
func Advance(s State) (State, []Event) {
	if s.Paused || s.Finished {
		return s, nil
	}
	prev := s.Total
	s.Total++
	s.Half++

	var events []Event
	if prev < FirstHalfSeconds && s.Total >= FirstHalfSeconds {
		events = append(events, HalfEnded)
	}
	if s.Total >= TotalSeconds {
		s.Finished = true
		s.Paused = true
		events = append(events, MatchEnded)
	}
	return s, events
}

// StartSecondHalf сбрасывает счётчик тайма, общий счётчик не трогает.
func StartSecondHalf(s State) (State, bool) {
	if !s.FirstHalf || s.Total < FirstHalfSeconds {
		return s, false
	}
	s.FirstHalf = false
	s.Half = 0
	return s, true
}

func Finish(s State) State {
	s.Finished = true
	s.Paused = true
	return s
}
