package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rugby-scorekeeper/internal/models"
)

// GormStore: матчи в postgres, по строке на матч, сам матч в JSONB.
type GormStore struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

func toRecord(m models.Match) (models.MatchRecord, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return models.MatchRecord{}, err
	}
	rec := models.MatchRecord{ID: m.ID, Finished: m.Finished, Payload: string(payload)}
	if m.CreatedAt != nil {
		rec.CreatedAt = *m.CreatedAt
	}
	if m.UpdatedAt != nil {
		rec.UpdatedAt = *m.UpdatedAt
	}
	return rec, nil
}

func fromRecord(rec models.MatchRecord) (models.Match, error) {
	var m models.Match
	if err := json.Unmarshal([]byte(rec.Payload), &m); err != nil {
		return models.Match{}, fmt.Errorf("decode match %s: %w", rec.ID, err)
	}
	return m, nil
}

func (s *GormStore) List(ctx context.Context) ([]models.Match, error) {
	var recs []models.MatchRecord
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]models.Match, 0, len(recs))
	for _, rec := range recs {
		m, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *GormStore) find(tx *gorm.DB, id string) (models.Match, error) {
	var rec models.MatchRecord
	err := tx.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Match{}, ErrNotFound
	} else if err != nil {
		return models.Match{}, err
	}
	return fromRecord(rec)
}

func (s *GormStore) Get(ctx context.Context, id string) (models.Match, error) {
	return s.find(s.DB.WithContext(ctx), id)
}

func (s *GormStore) Create(ctx context.Context, m models.Match) (models.Match, error) {
	m = stampNew(m, s.now())
	if err := validate(m); err != nil {
		return models.Match{}, err
	}
	rec, err := toRecord(m)
	if err != nil {
		return models.Match{}, err
	}
	var exists int64
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.MatchRecord{}).Where("id = ?", m.ID).Count(&exists).Error; err != nil {
		return models.Match{}, err
	}
	if exists > 0 {
		return models.Match{}, ErrAlreadyExists
	}
	if err := db.Create(&rec).Error; err != nil {
		return models.Match{}, err
	}
	return m, nil
}

func (s *GormStore) Update(ctx context.Context, id string, patch json.RawMessage) (models.Match, error) {
	var out models.Match
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		out, err = merge(current, patch, s.now())
		if err != nil {
			return err
		}
		rec, err := toRecord(out)
		if err != nil {
			return err
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		return models.Match{}, err
	}
	return out, nil
}

func (s *GormStore) Upsert(ctx context.Context, m models.Match) (models.Match, error) {
	if err := validate(m); err != nil {
		return models.Match{}, err
	}
	db := s.DB.WithContext(ctx)
	if m.CreatedAt == nil {
		if current, err := s.find(db, m.ID); err == nil {
			m.CreatedAt = current.CreatedAt
		}
	}
	m = stampUpdate(m, s.now())
	rec, err := toRecord(m)
	if err != nil {
		return models.Match{}, err
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"finished", "payload", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return models.Match{}, err
	}
	return m, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) (models.Match, error) {
	db := s.DB.WithContext(ctx)
	m, err := s.find(db, id)
	if err != nil {
		return models.Match{}, err
	}
	if err := db.Delete(&models.MatchRecord{}, "id = ?", id).Error; err != nil {
		return models.Match{}, err
	}
	return m, nil
}

func (s *GormStore) ImportBatch(ctx context.Context, matches []models.Match) (int, error) {
	if err := ValidateImport(matches); err != nil {
		return 0, err
	}
	now := s.now()
	recs := make([]models.MatchRecord, 0, len(matches))
	for _, m := range matches {
		rec, err := toRecord(stampUpdate(m, now))
		if err != nil {
			return 0, err
		}
		recs = append(recs, rec)
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.MatchRecord{}).Error; err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}
		return tx.CreateInBatches(recs, 100).Error
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	return s.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.MatchRecord{}).Error
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
