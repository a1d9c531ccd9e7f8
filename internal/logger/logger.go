package logger

import (
	"go.uber.org/zap"
)

// New возвращает логгер: человекочитаемый в development, JSON в остальных окружениях.
func New(env string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if env == "development" || env == "" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Nop для тестов и компонентов без явного логгера.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
