package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinuteOf(t *testing.T) {
	cases := map[int]int{0: 1, 59: 1, 60: 2, 299: 5, 300: 6, 2400: 41, 3300: 56}
	for elapsed, want := range cases {
		assert.Equal(t, want, MinuteOf(elapsed), "elapsed=%d", elapsed)
	}
}

func TestPhaseBoundaries(t *testing.T) {
	cases := []struct {
		elapsed int
		want    Phase
	}{
		{0, FirstHalf},
		{FirstHalfSeconds - 1, FirstHalf},
		{FirstHalfSeconds, Halftime},
		{FirstHalfSeconds + HalftimeSeconds - 1, Halftime},
		{FirstHalfSeconds + HalftimeSeconds, SecondHalf},
		{TotalSeconds - 1, SecondHalf},
		{TotalSeconds, Finished},
		{TotalSeconds + 500, Finished},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PhaseOf(tc.elapsed), "elapsed=%d", tc.elapsed)
	}
}

func TestStatusOf(t *testing.T) {
	s := StatusOf(1200)
	assert.Equal(t, FirstHalf, s.Phase)
	assert.Equal(t, 1200, s.Remaining)
	assert.InDelta(t, 50, s.Progress, 0.001)

	s = StatusOf(FirstHalfSeconds + 100)
	assert.Equal(t, Halftime, s.Phase)
	assert.Equal(t, HalftimeSeconds-100, s.Remaining)
	assert.Equal(t, 100.0, s.Progress)

	s = StatusOf(FirstHalfSeconds + HalftimeSeconds + 600)
	assert.Equal(t, SecondHalf, s.Phase)
	assert.Equal(t, 1800, s.Remaining)
	assert.InDelta(t, 25, s.Progress, 0.001)

	s = StatusOf(TotalSeconds)
	assert.Equal(t, Status{Phase: Finished, Remaining: 0, Progress: 100}, s)
}

func TestRemainingSecondHalfBeforeStart(t *testing.T) {
	assert.Equal(t, 2400, RemainingSecondHalf(100))
	assert.Equal(t, 0, RemainingSecondHalf(TotalSeconds+60))
	assert.Equal(t, 0, RemainingFirstHalf(FirstHalfSeconds))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "40:00", FormatClock(2400))
	assert.Equal(t, "03:07", FormatClock(187))
	assert.Equal(t, "4' 07\"", FormatMatchTime(187))
	assert.Equal(t, "1' 00\"", FormatMatchTime(0))
}

func TestAdvanceCrossingHalf(t *testing.T) {
	s := State{Total: FirstHalfSeconds - 1, Half: FirstHalfSeconds - 1, FirstHalf: true}

	s, events := Advance(s)
	require.Equal(t, []Event{HalfEnded}, events)
	assert.Equal(t, FirstHalfSeconds, s.Total)
	assert.True(t, s.FirstHalf, "second half is started by the operator")
	assert.False(t, s.Finished)

	s, events = Advance(s)
	assert.Empty(t, events, "alarm fires only on the crossing tick")
	assert.Equal(t, FirstHalfSeconds+1, s.Half)
}

func TestAdvanceReachingTotal(t *testing.T) {
	s := State{Total: TotalSeconds - 1, Half: 2399}

	s, events := Advance(s)
	require.Equal(t, []Event{MatchEnded}, events)
	assert.True(t, s.Finished)
	assert.True(t, s.Paused)
	assert.Equal(t, TotalSeconds, s.Total)

	after, events := Advance(s)
	assert.Empty(t, events)
	assert.Equal(t, s, after)
}

func TestAdvancePaused(t *testing.T) {
	s := State{Total: 10, Half: 10, FirstHalf: true, Paused: true}
	after, events := Advance(s)
	assert.Empty(t, events)
	assert.Equal(t, s, after)
}

func TestStartSecondHalf(t *testing.T) {
	s := State{Total: FirstHalfSeconds - 5, Half: FirstHalfSeconds - 5, FirstHalf: true}
	_, ok := StartSecondHalf(s)
	assert.False(t, ok, "first half still running")

	s.Total, s.Half = FirstHalfSeconds+120, FirstHalfSeconds+120
	s, ok = StartSecondHalf(s)
	require.True(t, ok)
	assert.False(t, s.FirstHalf)
	assert.Equal(t, 0, s.Half)
	assert.Equal(t, FirstHalfSeconds+120, s.Total)

	again, ok := StartSecondHalf(s)
	assert.False(t, ok)
	assert.Equal(t, s, again)
}

func TestFinish(t *testing.T) {
	s := Finish(State{Total: 100})
	assert.True(t, s.Finished)
	assert.True(t, s.Paused)
	assert.Equal(t, 100, s.Total)
}
