package matchhandlers

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/storage"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "matches.json"))
	require.NoError(t, err)
	h := New(store)
	h.Now = func() time.Time { return time.Date(2025, 5, 3, 14, 0, 0, 0, time.UTC) }
	return h
}

func TestCreateDefaultMatch(t *testing.T) {
	h := newHandler(t)
	m, err := h.CreateMatch(context.Background(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Len(t, m.Teams, 2)
	assert.True(t, m.Paused)

	got, err := h.GetMatchByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}

func TestNewMatchWritesEmptyLogs(t *testing.T) {
	h := newHandler(t)
	m, err := h.CreateMatch(context.Background(), nil)
	require.NoError(t, err)

	got, err := h.GetMatchByID(context.Background(), m.ID)
	require.NoError(t, err)
	for _, v := range []models.Match{m, got} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"cards":[]`)
		assert.Contains(t, string(raw), `"scores":[]`)
		assert.Contains(t, string(raw), `"substitutions":[]`)
	}
}

func TestCreateOverlaysBody(t *testing.T) {
	h := newHandler(t)
	m, err := h.CreateMatch(context.Background(), []byte(`{"id":"final","finished":true}`))
	require.NoError(t, err)
	assert.Equal(t, "final", m.ID)
	assert.True(t, m.Finished)
	assert.Len(t, m.Teams, 2)

	_, err = h.CreateMatch(context.Background(), []byte(`{"id":`))
	assert.ErrorIs(t, err, storage.ErrInvalidMatch)
}

func TestReadsRederivePoints(t *testing.T) {
	h := newHandler(t)
	m, err := h.CreateMatch(context.Background(), nil)
	require.NoError(t, err)

	_, err = h.UpdateMatch(context.Background(), m.ID, []byte(`{"scores":[
		{"id":"s1","teamId":"team-red","kind":"TRY","minute":3,"points":5},
		{"id":"s2","teamId":"team-red","kind":"PENALTY","minute":9,"points":3}
	]}`))
	require.NoError(t, err)

	got, err := h.GetMatchByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Team(match.RedTeamID).Points)
	assert.Equal(t, 0, got.Team(match.BlueTeamID).Points)
}

func TestStatistics(t *testing.T) {
	h := newHandler(t)

	a := match.New("a", h.Now())
	_, err := a.AddScore(match.BlueTeamID, models.ScoreTry, "")
	require.NoError(t, err)
	_, err = a.AddScore(match.BlueTeamID, models.ScoreConversion, "")
	require.NoError(t, err)
	_, err = a.AddCard("team-red-starter-3", models.CardYellow)
	require.NoError(t, err)
	a.Finish()

	b := match.New("b", h.Now())
	_, err = b.Substitute(match.RedTeamID, "team-red-starter-1", "team-red-bench-16")
	require.NoError(t, err)

	_, err = h.Store.ImportBatch(context.Background(), []models.Match{a.Snapshot(), b.Snapshot()})
	require.NoError(t, err)

	st, err := h.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Statistics{
		TotalMatches:       2,
		FinishedMatches:    1,
		InProgressMatches:  1,
		TotalPoints:        7,
		TotalTries:         1,
		TotalCards:         1,
		TotalSubstitutions: 1,
	}, st)
}

func TestExportImport(t *testing.T) {
	h := newHandler(t)
	_, err := h.CreateMatch(context.Background(), []byte(`{"id":"m1"}`))
	require.NoError(t, err)

	file, err := h.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rugby-matches-2025-05-03.json", file.Filename)
	require.Len(t, file.Data, 1)

	n, err := h.Import(context.Background(), []byte(`{"matches":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = h.Import(context.Background(), []byte(`{"matches":[{"id":"x","teams":[]}]}`))
	assert.ErrorIs(t, err, storage.ErrMalformedImport)
}

func TestDeleteMissing(t *testing.T) {
	h := newHandler(t)
	_, err := h.DeleteMatch(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
