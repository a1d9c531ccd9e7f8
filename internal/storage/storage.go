// Package storage сохраняет матчи. Бэкенды: JSON-файл, postgres через gorm и redis.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rugby-scorekeeper/internal/models"
)

var (
	ErrNotFound        = errors.New("match not found")
	ErrAlreadyExists   = errors.New("match already exists")
	ErrInvalidMatch    = errors.New("invalid match")
	ErrInvalidPatch    = errors.New("patch must be a JSON object")
	ErrMalformedImport = errors.New("malformed import")
)

type Store interface {
	List(ctx context.Context) ([]models.Match, error)
	Get(ctx context.Context, id string) (models.Match, error)
	// Create присваивает id и время создания, если их нет.
	Create(ctx context.Context, m models.Match) (models.Match, error)
	// Update накладывает поля patch поверх сохранённого матча; id не меняется.
	Update(ctx context.Context, id string, patch json.RawMessage) (models.Match, error)
	Upsert(ctx context.Context, m models.Match) (models.Match, error)
	Delete(ctx context.Context, id string) (models.Match, error)
	// ImportBatch сначала проверяет все записи, потом заменяет ими всё хранилище.
	ImportBatch(ctx context.Context, matches []models.Match) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

func validate(m models.Match) error {
	if m.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidMatch)
	}
	if len(m.Teams) != 2 {
		return fmt.Errorf("%w: match %s has %d teams", ErrInvalidMatch, m.ID, len(m.Teams))
	}
	return nil
}

// ValidateImport проверяет каждую запись до того, как что-либо будет записано.
func ValidateImport(matches []models.Match) error {
	seen := make(map[string]bool, len(matches))
	for i, m := range matches {
		if err := validate(m); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrMalformedImport, i, err)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: entry %d: duplicate id %s", ErrMalformedImport, i, m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

func stampNew(m models.Match, now time.Time) models.Match {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt == nil {
		t := now
		m.CreatedAt = &t
	}
	t := now
	m.UpdatedAt = &t
	return m
}

func stampUpdate(m models.Match, now time.Time) models.Match {
	if m.CreatedAt == nil {
		t := now
		m.CreatedAt = &t
	}
	t := now
	m.UpdatedAt = &t
	return m
}

// merge: поверхностное слияние верхнего уровня, как при PUT в старом API.
func merge(current models.Match, patch json.RawMessage, now time.Time) (models.Match, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil || fields == nil {
		return models.Match{}, ErrInvalidPatch
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return models.Match{}, err
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(raw, &base); err != nil {
		return models.Match{}, err
	}
	for k, v := range fields {
		base[k] = v
	}
	base["id"], _ = json.Marshal(current.ID)

	raw, err = json.Marshal(base)
	if err != nil {
		return models.Match{}, err
	}
	var out models.Match
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.Match{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	out.CreatedAt = current.CreatedAt
	return stampUpdate(out, now), nil
}

// ExportFile: содержимое файла выгрузки.
type ExportFile struct {
	Data     []models.Match `json:"data"`
	Filename string         `json:"filename"`
}

func Export(matches []models.Match, now time.Time) ExportFile {
	if matches == nil {
		matches = []models.Match{}
	}
	return ExportFile{
		Data:     matches,
		Filename: fmt.Sprintf("rugby-matches-%s.json", now.UTC().Format("2006-01-02")),
	}
}

// ImportRequest: тело запроса импорта.
type ImportRequest struct {
	Matches []models.Match `json:"matches"`
}

// DecodeImport разбирает {"matches": [...]}; без массива возвращает ошибку.
func DecodeImport(body []byte) ([]models.Match, error) {
	var req struct {
		Matches *[]models.Match `json:"matches"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if req.Matches == nil {
		return nil, fmt.Errorf("%w: matches must be an array", ErrMalformedImport)
	}
	return *req.Matches, nil
}
