package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rugby-scorekeeper/config"
	wsh "rugby-scorekeeper/internal/WSH"
	"rugby-scorekeeper/internal/bot"
	"rugby-scorekeeper/internal/broker"
	dbpkg "rugby-scorekeeper/internal/db"
	"rugby-scorekeeper/internal/logger"
	mtH "rugby-scorekeeper/internal/matchHandlers"
	"rugby-scorekeeper/internal/report"
	"rugby-scorekeeper/internal/session"
	"rugby-scorekeeper/internal/storage"
)

func main() {
	// Инициализация конфигурации
	cfg, err := config.InitConfig()
	if err != nil {
		log.Println("Ошибка инициализации конфигурации:", err)
		return
	}

	sugar, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Не удалось создать логгер: %v", err)
	}
	defer sugar.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg, sugar)
	if err != nil {
		sugar.Fatalw("Не удалось открыть хранилище", "driver", cfg.StorageDriver, "error", err)
	}
	defer store.Close()

	hub := wsh.NewHub(sugar)
	go hub.Run(ctx)

	notifiers := session.Fanout{hub}
	if cfg.AMQPURL != "" {
		pub, err := broker.Dial(cfg.AMQPURL, cfg.AMQPExchange, sugar)
		if err != nil {
			sugar.Errorw("RabbitMQ недоступен, события не публикуются", "error", err)
		} else {
			defer pub.Close()
			notifiers = append(notifiers, pub)
		}
	}

	// бот создаётся после менеджера, тревоги ему передаются через указатель
	var tgBot atomic.Pointer[bot.Bot]
	notifiers = append(notifiers, session.NotifierFunc(func(n session.Notification) {
		if b := tgBot.Load(); b != nil {
			b.Notify(n)
		}
	}))

	sessions := session.NewManager(store, notifiers, sugar, session.Options{
		TickInterval:     cfg.TickInterval,
		AutosaveInterval: cfg.AutosaveInterval,
	})
	matches := mtH.New(store)
	pdf := report.PDFRenderer{Timeout: cfg.PDFTimeout, ExecPath: cfg.ChromePath, Log: sugar}

	// Запуск веб-сервера
	server := wsh.NewServer(matches, sessions, hub, pdf, sugar)
	go func() {
		if err := server.StartWS(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("Веб-сервер остановлен с ошибкой", "error", err)
			stop()
		}
	}()

	// Создаем и запускаем бота
	if cfg.TgApiToken != "" {
		b, err := bot.NewBot(cfg, sessions, matches, pdf, sugar)
		if err != nil {
			sugar.Errorw("Не удалось инициализировать бота", "error", err)
		} else {
			tgBot.Store(b)
			go b.Run(ctx)
		}
	}

	<-ctx.Done()
	sugar.Info("Остановка сервиса")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := sessions.CloseAll(shutdownCtx); err != nil {
		sugar.Errorw("Не все матчи сохранены при остановке", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Ошибка остановки веб-сервера", "error", err)
	}
}

func openStore(cfg *config.Config, log *zap.SugaredLogger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "postgres":
		db, err := dbpkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		log.Infow("Хранилище: PostgreSQL", "host", cfg.Host, "db", cfg.DBName)
		return storage.NewGormStore(db), nil
	case "redis":
		log.Infow("Хранилище: Redis", "addr", cfg.RedisAddr, "key", cfg.RedisKey)
		return storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
	default:
		log.Infow("Хранилище: файл", "path", cfg.DataFile)
		return storage.NewFileStore(cfg.DataFile)
	}
}
