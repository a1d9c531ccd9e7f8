package models

import "time"

// MatchRecord: строка таблицы для postgres-хранилища; сам матч лежит в Payload как JSON.
type MatchRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Finished  bool   `gorm:"index"`
	Payload   string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MatchRecord) TableName() string {
	return "match_records"
}
