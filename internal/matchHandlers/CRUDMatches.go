package matchhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/storage"
)

// Handler: операции над сохранёнными матчами. Производные поля (очки, число
// замен) пересчитываются при каждом чтении, хранилищу в этом не доверяем.
type Handler struct {
	Store storage.Store
	Now   func() time.Time
}

func New(store storage.Store) *Handler {
	return &Handler{Store: store, Now: time.Now}
}

func normalize(m models.Match) models.Match {
	return match.Load(m).Snapshot()
}

func (h *Handler) GetAllMatches(ctx context.Context) ([]models.Match, error) {
	all, err := h.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i] = normalize(all[i])
	}
	return all, nil
}

func (h *Handler) GetMatchByID(ctx context.Context, id string) (models.Match, error) {
	m, err := h.Store.Get(ctx, id)
	if err != nil {
		return models.Match{}, err
	}
	return normalize(m), nil
}

// CreateMatch создаёт матч по умолчанию и накладывает поверх присланные поля.
func (h *Handler) CreateMatch(ctx context.Context, body []byte) (models.Match, error) {
	m := match.New("", h.Now()).Snapshot()
	if len(body) > 0 {
		if err := json.Unmarshal(body, &m); err != nil {
			return models.Match{}, fmt.Errorf("%w: %v", storage.ErrInvalidMatch, err)
		}
	}
	created, err := h.Store.Create(ctx, normalize(m))
	if err != nil {
		return models.Match{}, err
	}
	return created, nil
}

func (h *Handler) UpdateMatch(ctx context.Context, id string, patch []byte) (models.Match, error) {
	updated, err := h.Store.Update(ctx, id, patch)
	if err != nil {
		return models.Match{}, err
	}
	return normalize(updated), nil
}

func (h *Handler) DeleteMatch(ctx context.Context, id string) (models.Match, error) {
	return h.Store.Delete(ctx, id)
}

// GetStatistics: сводка по всем сохранённым матчам.
func (h *Handler) GetStatistics(ctx context.Context) (models.Statistics, error) {
	all, err := h.GetAllMatches(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	return Aggregate(all), nil
}

func Aggregate(all []models.Match) models.Statistics {
	st := models.Statistics{TotalMatches: len(all)}
	for _, m := range all {
		if m.Finished {
			st.FinishedMatches++
		} else {
			st.InProgressMatches++
		}
		for _, t := range m.Teams {
			st.TotalPoints += t.Points
		}
		for _, s := range m.Scores {
			if s.Kind == models.ScoreTry {
				st.TotalTries++
			}
		}
		st.TotalCards += len(m.Cards)
		st.TotalSubstitutions += len(m.Substitutions)
	}
	return st
}

func (h *Handler) Export(ctx context.Context) (storage.ExportFile, error) {
	all, err := h.GetAllMatches(ctx)
	if err != nil {
		return storage.ExportFile{}, err
	}
	return storage.Export(all, h.Now()), nil
}

// Import заменяет все сохранённые матчи присланными.
func (h *Handler) Import(ctx context.Context, body []byte) (int, error) {
	matches, err := storage.DecodeImport(body)
	if err != nil {
		return 0, err
	}
	if err := storage.ValidateImport(matches); err != nil {
		return 0, err
	}
	for i := range matches {
		matches[i] = normalize(matches[i])
	}
	return h.Store.ImportBatch(ctx, matches)
}
