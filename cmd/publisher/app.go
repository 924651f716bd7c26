package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"content_publisher/internal/config"
	"content_publisher/internal/notify"
	"content_publisher/internal/service"
	"content_publisher/internal/storage/postgres"
	"content_publisher/internal/syndication"
	"content_publisher/internal/syndication/platform"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	queue  *notify.Queue

	contents    *postgres.ContentStore
	records     *postgres.SyndicationStore
	runs        *postgres.RunStore
	sender      *notify.SMTPSender
	publication *service.PublicationService
	workflow    *service.WorkflowService
	preview     *service.PreviewService
}

func newApp(configPath string) (*app, error) {
	logger := setupLogger("info")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		contents: postgres.NewContentStore(db),
		records:  postgres.NewSyndicationStore(db),
		runs:     postgres.NewRunStore(db),
		sender:   notify.NewSMTPSender(cfg.SMTP),
	}

	var notifier service.Notifier = notify.NewDirect(a.sender, logger)
	if cfg.RabbitMQ.Enabled {
		queue, err := a.openQueue()
		if err != nil {
			db.Close()
			return nil, err
		}
		notifier = queue
	}

	adapters := []syndication.Adapter{
		platform.NewFacebook(cfg.Platforms.Facebook, logger),
		platform.NewInstagram(cfg.Platforms.Instagram, logger),
		platform.NewLinkedIn(cfg.Platforms.LinkedIn, logger),
		platform.NewTwitter(cfg.Platforms.Twitter, logger),
	}
	fanout := syndication.NewFanout(
		adapters,
		a.records,
		postgres.NewTransactionManager(db),
		cfg.Publication.CallTimeout,
		logger,
	)
	logger.Info("syndication configured", "platforms", fanout.EnabledPlatforms())

	a.publication = service.NewPublicationService(a.contents, a.runs, fanout, notifier, cfg.Site, cfg.Publication, logger)
	a.workflow = service.NewWorkflowService(a.contents, a.sender, cfg.Server.BaseURL, cfg.Approval, logger)
	a.preview = service.NewPreviewService(a.contents, cfg.Server.BaseURL)

	return a, nil
}

func (a *app) openQueue() (*notify.Queue, error) {
	if a.queue != nil {
		return a.queue, nil
	}
	queue, err := notify.NewQueue(notify.Config{
		URL:        a.cfg.RabbitMQ.URL,
		Exchange:   a.cfg.RabbitMQ.Exchange,
		RoutingKey: a.cfg.RabbitMQ.RoutingKey,
		QueueName:  a.cfg.RabbitMQ.QueueName,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	a.queue = queue
	return queue, nil
}

func (a *app) Close() {
	if a.queue != nil {
		a.queue.Close()
	}
	a.db.Close()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
