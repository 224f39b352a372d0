package app

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"physiosite/api/internal/auth"
	"physiosite/api/internal/botcheck"
	"physiosite/api/internal/config"
	"physiosite/api/internal/contact"
	"physiosite/api/internal/instagram"
	"physiosite/api/internal/tokenrefresh"
	"physiosite/api/internal/translate"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type translator interface {
	Translate(ctx context.Context, texts []string, lang string) []string
}

type tokenRefresher interface {
	Configured() bool
	Refresh(ctx context.Context) (tokenrefresh.Result, error)
}

type feedSource interface {
	Items(ctx context.Context, limit int) ([]instagram.Media, bool, error)
}

type contactSubmitter interface {
	Submit(ctx context.Context, req contact.Request, meta contact.Meta) (contact.Result, error)
}

// Dependencies wires the backends behind the HTTP surface. Nil fields turn
// the matching feature off.
type Dependencies struct {
	Cache      pinger
	Database   pinger
	Translator translator
	Refresher  tokenRefresher
	Detector   botcheck.Detector
	Feed       feedSource
	Contact    contactSubmitter
	// Proxies decides which peers may report the client address.
	Proxies    botcheck.ProxyPolicy
	Logger     *zap.Logger
}

type Service struct {
	cfg        config.Config
	cache      pinger
	database   pinger
	translator translator
	refresher  tokenRefresher
	detector   botcheck.Detector
	feed       feedSource
	contact    contactSubmitter
	proxies    botcheck.ProxyPolicy
	logger     *zap.Logger
}

func New(cfg config.Config, deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	translatorSvc := deps.Translator
	if translatorSvc == nil {
		translatorSvc = translate.New(nil, nil, cfg.SourceLang)
	}
	return &Service{
		cfg:        cfg,
		cache:      deps.Cache,
		database:   deps.Database,
		translator: translatorSvc,
		refresher:  deps.Refresher,
		detector:   deps.Detector,
		feed:       deps.Feed,
		contact:    deps.Contact,
		proxies:    deps.Proxies,
		logger:     logger,
	}
}

type readyCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Ready pings every configured backend. Backends that are not configured
// report "disabled" and do not fail readiness.
func (s *Service) Ready(ctx context.Context) (map[string]readyCheck, bool) {
	checks := map[string]readyCheck{}
	ok := true
	for name, backend := range map[string]pinger{"cache": s.cache, "database": s.database} {
		if backend == nil {
			checks[name] = readyCheck{Status: "disabled"}
			continue
		}
		if err := backend.Ping(ctx); err != nil {
			ok = false
			checks[name] = readyCheck{Status: "error", Error: err.Error()}
			continue
		}
		checks[name] = readyCheck{Status: "ok"}
	}
	return checks, ok
}

func (s *Service) maxTexts() int {
	if s.cfg.TranslateMaxText > 0 {
		return s.cfg.TranslateMaxText
	}
	return 500
}

// TranslateBatch validates the request shape; translation itself never fails.
func (s *Service) TranslateBatch(ctx context.Context, texts []string, lang string) ([]string, error) {
	if texts == nil {
		return nil, badRequest("texts must be an array of strings", nil)
	}
	if strings.TrimSpace(lang) == "" {
		return nil, badRequest("lang is required", nil)
	}
	if len(texts) > s.maxTexts() {
		return nil, badRequest("too many texts", map[string]any{
			"max":   s.maxTexts(),
			"count": len(texts),
		})
	}
	return s.translator.Translate(ctx, texts, lang), nil
}

// refreshOutcome is the token refresh endpoint's response.
type refreshOutcome struct {
	Status  int
	Message string
	Result  *tokenrefresh.Result
}

// RefreshToken runs the webhook's guard sequence and then the refresh.
// A correct secret skips bot detection; detector errors fail open.
func (s *Service) RefreshToken(ctx context.Context, r *http.Request) refreshOutcome {
	if s.cfg.WebhookSecret == "" {
		s.logger.Error("token refresh rejected: WEBHOOK_SECRET not set")
		return refreshOutcome{Status: http.StatusInternalServerError, Message: "Server misconfigured"}
	}

	authErr := auth.VerifyBearer(r, s.cfg.WebhookSecret)
	if authErr != nil && s.detector != nil {
		verdict, err := s.detector.Detect(ctx, r)
		switch {
		case verdict.Bot:
			s.logger.Warn("token refresh blocked as bot",
				zap.String("reason", verdict.Reason),
				zap.String("ip_hash", auth.HashToken(s.proxies.ClientIP(r))),
			)
			return refreshOutcome{Status: http.StatusForbidden, Message: "Forbidden"}
		case err != nil:
			s.logger.Warn("bot detection failed; continuing", zap.Error(err))
		}
	}
	if authErr != nil {
		return refreshOutcome{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	}

	if s.refresher == nil || !s.refresher.Configured() {
		return refreshOutcome{Status: http.StatusInternalServerError, Message: "Token refresh not configured"}
	}
	result, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.logger.Error("token refresh failed", zap.Error(err))
		if errors.Is(err, tokenrefresh.ErrNotConfigured) {
			return refreshOutcome{Status: http.StatusInternalServerError, Message: "Token refresh not configured"}
		}
		return refreshOutcome{Status: http.StatusInternalServerError, Message: "Token refresh failed"}
	}
	return refreshOutcome{Status: http.StatusOK, Message: "Token refreshed", Result: &result}
}

const (
	defaultFeedLimit = 12
	maxFeedLimit     = 50
)

func (s *Service) InstagramFeed(ctx context.Context, limit int) ([]instagram.Media, bool, error) {
	if s.feed == nil {
		return nil, false, unavailable("FEED_UNAVAILABLE", "Instagram feed not configured")
	}
	if limit < 1 || limit > maxFeedLimit {
		return nil, false, badRequest("limit must be between 1 and 50", nil)
	}
	items, stale, err := s.feed.Items(ctx, limit)
	if err != nil {
		if errors.Is(err, instagram.ErrNoToken) {
			return nil, false, unavailable("FEED_UNAVAILABLE", "Instagram feed not configured")
		}
		s.logger.Error("instagram feed fetch failed", zap.Int("limit", limit), zap.Error(err))
		return nil, false, domainError(http.StatusBadGateway, "UPSTREAM_ERROR", "Instagram feed unavailable", nil)
	}
	if stale {
		s.logger.Warn("serving stale instagram feed", zap.Int("limit", limit))
	}
	if items == nil {
		items = []instagram.Media{}
	}
	return items, stale, nil
}

func (s *Service) SubmitContact(ctx context.Context, req contact.Request, meta contact.Meta) (contact.Result, error) {
	if s.contact == nil {
		return contact.Result{}, unavailable("CONTACT_UNAVAILABLE", "Contact form not configured")
	}
	result, err := s.contact.Submit(ctx, req, meta)
	if err == nil {
		return result, nil
	}
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		return contact.Result{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid submission", verr.Fields)
	case errors.Is(err, contact.ErrRateLimited):
		return contact.Result{}, domainError(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
	case errors.Is(err, contact.ErrNotConfigured):
		return contact.Result{}, unavailable("CONTACT_UNAVAILABLE", "Contact form not configured")
	}
	s.logger.Error("contact submission failed", zap.Error(err))
	return contact.Result{}, err
}
