package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rugby-scorekeeper/internal/models"
)

func ev(id, team string, kind models.ScoreKind, minute int) models.ScoreEvent {
	return NewEvent(id, team, kind, minute, "")
}

func TestPointsFor(t *testing.T) {
	assert.Equal(t, 5, PointsFor(models.ScoreTry))
	assert.Equal(t, 2, PointsFor(models.ScoreConversion))
	assert.Equal(t, 3, PointsFor(models.ScorePenalty))
	assert.Equal(t, 0, PointsFor("DROP"))
}

func TestTeamTotal(t *testing.T) {
	events := []models.ScoreEvent{
		ev("1", "A", models.ScoreTry, 10),
		ev("2", "A", models.ScoreConversion, 11),
		ev("3", "B", models.ScorePenalty, 15),
		ev("4", "A", models.ScorePenalty, 20),
	}
	assert.Equal(t, 10, TeamTotal("A", events))
	assert.Equal(t, 3, TeamTotal("B", events))
	assert.Equal(t, Summary{Tries: 1, Conversions: 1, Penalties: 1, Total: 10}, Summarize("A", events))
}

func TestCanConvertWindow(t *testing.T) {
	events := []models.ScoreEvent{ev("t", "A", models.ScoreTry, 10)}

	for minute := 10; minute <= 15; minute++ {
		assert.True(t, CanConvert("A", events, minute), "minute %d", minute)
	}
	assert.False(t, CanConvert("A", events, 16))
	assert.False(t, CanConvert("A", events, 9))
	assert.False(t, CanConvert("B", events, 12))
}

func TestCanConvertAlreadyConverted(t *testing.T) {
	events := []models.ScoreEvent{
		ev("t", "A", models.ScoreTry, 10),
		ev("c", "A", models.ScoreConversion, 11),
	}
	assert.False(t, CanConvert("A", events, 12))
}

func TestCanConvertSameMinuteConversionDoesNotCount(t *testing.T) {
	// реализация засчитывается попытке только если записана строго позже
	events := []models.ScoreEvent{
		ev("t", "A", models.ScoreTry, 10),
		ev("c", "A", models.ScoreConversion, 10),
	}
	assert.True(t, CanConvert("A", events, 10))
}

func TestCanConvertSecondTry(t *testing.T) {
	events := []models.ScoreEvent{
		ev("t1", "A", models.ScoreTry, 10),
		ev("c1", "A", models.ScoreConversion, 11),
		ev("t2", "A", models.ScoreTry, 13),
	}
	assert.True(t, CanConvert("A", events, 14))
}

func TestCanConvertOtherTeamConversionIgnored(t *testing.T) {
	events := []models.ScoreEvent{
		ev("t", "A", models.ScoreTry, 10),
		ev("c", "B", models.ScoreConversion, 11),
	}
	assert.True(t, CanConvert("A", events, 12))
}

func TestSortedByMinute(t *testing.T) {
	events := []models.ScoreEvent{
		ev("late", "A", models.ScoreTry, 30),
		ev("early", "B", models.ScorePenalty, 5),
		ev("late2", "B", models.ScorePenalty, 30),
	}
	sorted := SortedByMinute(events)
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"early", "late", "late2"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, "late", events[0].ID)
}

func TestEditRecomputesPoints(t *testing.T) {
	events := []models.ScoreEvent{ev("1", "A", models.ScoreTry, 10)}
	kind := models.ScorePenalty
	minute := 12

	out, ok := Edit(events, "1", Patch{Kind: &kind, Minute: &minute})
	require.True(t, ok)
	assert.Equal(t, 3, out[0].Points)
	assert.Equal(t, 12, out[0].Minute)
	assert.Equal(t, 5, events[0].Points)

	_, ok = Edit(events, "missing", Patch{})
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	events := []models.ScoreEvent{ev("1", "A", models.ScoreTry, 10), ev("2", "A", models.ScorePenalty, 11)}
	out, ok := Delete(events, "1")
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "2", out[0].ID)
}

func TestTotalsFollowKindNotStoredPoints(t *testing.T) {
	try := ev("1", "A", models.ScoreTry, 3)
	try.Points = 50
	events := []models.ScoreEvent{try, ev("2", "A", models.ScorePenalty, 7)}

	assert.Equal(t, 8, TeamTotal("A", events))
	assert.Equal(t, 8, Summarize("A", events).Total)
}
