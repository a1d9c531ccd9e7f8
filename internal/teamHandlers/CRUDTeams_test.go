package teamhandlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
)

func TestParseSide(t *testing.T) {
	for in, want := range map[string]models.Side{
		"blue": models.SideBlue, " RED ": models.SideRed, "синие": models.SideBlue, "r": models.SideRed,
	} {
		got, err := ParseSide(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseSide("green")
	assert.ErrorIs(t, err, ErrUnknownSide)
}

func TestPlayerByNumber(t *testing.T) {
	var h Handler
	m := match.New("m1", time.Now()).Snapshot()

	p, err := h.PlayerByNumber(m, models.SideRed, 10)
	require.NoError(t, err)
	assert.Equal(t, "team-red-starter-10", p.ID)

	_, err = h.PlayerByNumber(m, models.SideRed, 40)
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestLineup(t *testing.T) {
	var h Handler
	a := match.New("m1", time.Now())
	_, err := a.Substitute(match.BlueTeamID, "team-blue-starter-3", "team-blue-bench-18")
	require.NoError(t, err)
	_, err = a.AddCard("team-blue-starter-7", models.CardYellow)
	require.NoError(t, err)

	text, err := h.Lineup(a.Snapshot(), models.SideBlue)
	require.NoError(t, err)
	assert.Contains(t, text, "замен: 1/5")
	assert.Contains(t, text, "3. Player 3 (заменён)")
	assert.Contains(t, text, "18. Replacement 3 — Replacement")
	assert.Contains(t, text, "7. Player 7 — Openside Flanker 🟨 11:00")
}
