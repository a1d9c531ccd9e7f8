package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rugby-scorekeeper/internal/models"
)

func TestNewYellowQuantisedToMinute(t *testing.T) {
	// минута 5: это 240..299 секунд
	for _, elapsed := range []int{240, 270, 299} {
		c := New("c1", "p1", models.CardYellow, elapsed)
		require.NotNil(t, c.Expiry)
		assert.Equal(t, 5, c.Minute)
		assert.Equal(t, 900, *c.Expiry, "elapsed=%d", elapsed)
		assert.True(t, c.Active)
	}
}

func TestNewRedHasNoExpiry(t *testing.T) {
	c := New("c1", "p1", models.CardRed, 1000)
	assert.Nil(t, c.Expiry)
	assert.True(t, c.Active)
}

func TestExpireAtBoundary(t *testing.T) {
	list := []models.Card{New("y", "p1", models.CardYellow, 250)}

	out, expired := Expire(list, 899)
	assert.Empty(t, expired)
	assert.True(t, out[0].Active)

	out, expired = Expire(out, 900)
	assert.Equal(t, []string{"y"}, expired)
	assert.False(t, out[0].Active)
	assert.True(t, list[0].Active, "input slice is not mutated")

	_, expired = Expire(out, 901)
	assert.Empty(t, expired, "a card expires exactly once")
}

func TestExpireNeverTouchesRed(t *testing.T) {
	list := []models.Card{New("r", "p1", models.CardRed, 0)}
	out, expired := Expire(list, 100000)
	assert.Empty(t, expired)
	assert.True(t, out[0].Active)
}

func TestCanIssue(t *testing.T) {
	yellow := New("y", "p1", models.CardYellow, 0)
	red := New("r", "p2", models.CardRed, 0)
	expiredYellow := New("old", "p3", models.CardYellow, 0)
	expiredYellow.Active = false

	list := []models.Card{yellow, red, expiredYellow}

	assert.Equal(t, Verdict{Reason: ReasonAlreadyActiveYellow}, CanIssue("p1", list))
	assert.Equal(t, Verdict{Reason: ReasonAlreadyRed}, CanIssue("p2", list))
	assert.True(t, CanIssue("p3", list).Allowed)
	assert.True(t, CanIssue("p4", list).Allowed)
}

func TestRemaining(t *testing.T) {
	y := New("y", "p1", models.CardYellow, 0) // expiry 660
	assert.Equal(t, 60, Remaining(y, 600))
	assert.Equal(t, 0, Remaining(y, 700))
	assert.Equal(t, 0, Remaining(New("r", "p1", models.CardRed, 0), 10))
	assert.Equal(t, "1:05", FormatRemaining(65))
}

func TestActiveYellows(t *testing.T) {
	list := []models.Card{
		New("a", "p1", models.CardYellow, 0),
		New("b", "p2", models.CardYellow, 1200),
		New("c", "p3", models.CardRed, 0),
	}
	got := ActiveYellows(list, 700)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
	assert.Len(t, Active(list), 3)
}

func TestDelete(t *testing.T) {
	list := []models.Card{New("a", "p1", models.CardYellow, 0), New("b", "p2", models.CardRed, 0)}
	out, ok := Delete(list, "a")
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)

	_, ok = Delete(list, "zzz")
	assert.False(t, ok)
}

func TestTeamSummary(t *testing.T) {
	team := models.Team{ID: "blue", Players: []models.Player{{ID: "b1"}, {ID: "b2"}}}
	inactive := New("x", "b2", models.CardYellow, 0)
	inactive.Active = false
	list := []models.Card{
		New("a", "b1", models.CardYellow, 0),
		New("b", "b2", models.CardRed, 0),
		inactive,
		New("c", "r1", models.CardRed, 0),
	}
	assert.Equal(t, Summary{Yellow: 1, Red: 1, Total: 2}, TeamSummary(list, team))
}
