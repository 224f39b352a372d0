package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"physiosite/api/internal/app"
	"physiosite/api/internal/botcheck"
	"physiosite/api/internal/config"
	"physiosite/api/internal/contact"
	"physiosite/api/internal/email"
	"physiosite/api/internal/instagram"
	"physiosite/api/internal/logging"
	"physiosite/api/internal/store"
	"physiosite/api/internal/wire"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	deps := app.Dependencies{Logger: logger}

	cache := wire.Cache(cfg, logger.Named("kv"))
	defer cache.Close()
	if wire.CacheConfigured(cfg) {
		deps.Cache = cache
	}

	translator, err := wire.Translator(ctx, cfg, cache, logger)
	if err != nil {
		logger.Fatal("translation setup failed", zap.Error(err))
	}
	deps.Translator = translator

	tokens := instagram.NewTokenHolder(cfg.InstagramToken)
	deps.Refresher = wire.Refresher(cfg, tokens, logger)
	deps.Feed = instagram.NewFeed(instagram.NewClient(cfg.InstagramGraphURL), tokens, cfg.InstagramCacheTTL)

	proxies, err := botcheck.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal("invalid TRUSTED_PROXIES", zap.Error(err))
	}
	deps.Proxies = proxies

	detectors := botcheck.Chain{botcheck.UserAgentDetector{}}
	if cfg.TurnstileSecretKey != "" {
		detectors = append(detectors, botcheck.NewTurnstileDetector(cfg.TurnstileSecretKey, proxies))
	}
	deps.Detector = detectors

	db, err := wire.Database(ctx, cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	var contactStore *store.PostgresStore
	if db != nil {
		defer db.Close()
		applied, err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir)
		if err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", zap.Strings("versions", applied))
		}
		contactStore = store.NewPostgresStore(db)
		deps.Database = contactStore
	}

	mailer := email.NewService(email.Config{
		Host:          cfg.SMTPHost,
		Port:          cfg.SMTPPort,
		Username:      cfg.SMTPUsername,
		Password:      cfg.SMTPPassword,
		From:          cfg.SMTPFrom,
		FromName:      cfg.SMTPFromName,
		MailgunDomain: cfg.MailgunDomain,
		MailgunAPIKey: cfg.MailgunAPIKey,
		MailgunAPIURL: cfg.MailgunAPIURL,
	})
	logger.Info("email transport", zap.String("transport", mailer.Transport()))

	contactLogger := contact.WithLogger(logger.Named("contact"))
	if contactStore != nil {
		deps.Contact = contact.New(contactStore, mailer, wire.Recipients(cfg.ContactTo), contactLogger)
	} else {
		deps.Contact = contact.New(nil, mailer, wire.Recipients(cfg.ContactTo), contactLogger)
	}

	httpServer := app.NewHTTPServer(app.New(cfg, deps), cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.TranslateTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("site API listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
