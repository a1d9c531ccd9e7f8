package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rugby-scorekeeper/config"
	"rugby-scorekeeper/internal/models"
)

// InitDatabase подключается к postgres и мигрирует таблицу матчей.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.Env != "development" {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	DB, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	if err := DB.AutoMigrate(&models.MatchRecord{}); err != nil {
		return nil, fmt.Errorf("ошибка миграции базы данных: %w", err)
	}
	return DB, nil
}
