// Package clock считает время матча: минуту, фазу и тики.
package clock

import "fmt"

const (
	FirstHalfSeconds = 40 * 60
	HalftimeSeconds  = 15 * 60
	TotalSeconds     = 80 * 60

	// второй тайм начинается после перерыва
	secondHalfStart = FirstHalfSeconds + HalftimeSeconds
	halfLength      = TotalSeconds - FirstHalfSeconds
)

type Phase string

const (
	FirstHalf  Phase = "FIRST_HALF"
	Halftime   Phase = "HALFTIME"
	SecondHalf Phase = "SECOND_HALF"
	Finished   Phase = "FINISHED"
)

// MinuteOf: минута матча, начиная с 1, по общему прошедшему времени.
func MinuteOf(elapsed int) int {
	return elapsed/60 + 1
}

func PhaseOf(elapsed int) Phase {
	switch {
	case elapsed < FirstHalfSeconds:
		return FirstHalf
	case elapsed < secondHalfStart:
		return Halftime
	case elapsed < TotalSeconds:
		return SecondHalf
	default:
		return Finished
	}
}

type Status struct {
	Phase     Phase   `json:"phase"`
	Remaining int     `json:"remaining"`
	Progress  float64 `json:"progress"`
}

func StatusOf(elapsed int) Status {
	switch PhaseOf(elapsed) {
	case FirstHalf:
		return Status{
			Phase:     FirstHalf,
			Remaining: RemainingFirstHalf(elapsed),
			Progress:  float64(elapsed) / FirstHalfSeconds * 100,
		}
	case Halftime:
		return Status{
			Phase:     Halftime,
			Remaining: HalftimeSeconds - (elapsed - FirstHalfSeconds),
			Progress:  100,
		}
	case SecondHalf:
		return Status{
			Phase:     SecondHalf,
			Remaining: RemainingSecondHalf(elapsed),
			Progress:  float64(elapsed-secondHalfStart) / halfLength * 100,
		}
	}
	return Status{Phase: Finished, Remaining: 0, Progress: 100}
}

func RemainingFirstHalf(elapsed int) int {
	if elapsed >= FirstHalfSeconds {
		return 0
	}
	return FirstHalfSeconds - elapsed
}

// RemainingSecondHalf отдаёт полный тайм, пока второй тайм не начался.
func RemainingSecondHalf(elapsed int) int {
	played := elapsed - secondHalfStart
	if played < 0 {
		return halfLength
	}
	if played >= halfLength {
		return 0
	}
	return halfLength - played
}

// FormatClock: "MM:SS".
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatMatchTime: `12' 05"`.
func FormatMatchTime(elapsed int) string {
	if elapsed < 0 {
		elapsed = 0
	}
	return fmt.Sprintf("%d' %02d\"", MinuteOf(elapsed), elapsed%60)
}
