// Package contact accepts contact-form submissions, storing them and
// notifying the practice by email.
package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"physiosite/api/internal/auth"
	"physiosite/api/internal/email"
	"physiosite/api/internal/store"
	"physiosite/api/internal/util"
)

var (
	ErrRateLimited   = errors.New("too many contact submissions")
	ErrNotConfigured = errors.New("contact form not configured")
)

// Request is the submitted form. Website is a honeypot field left empty by
// people and filled in by form bots.
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Locale  string `json:"locale"`
	Consent bool   `json:"consent"`
	Website string `json:"website"`
}

// Meta describes the submitting client.
type Meta struct {
	IP        string
	UserAgent string
}

type Result struct {
	ID string
	// Discarded is set when the honeypot caught the submission.
	Discarded bool
	Notified  bool
}

type submissionStore interface {
	InsertContactSubmission(ctx context.Context, sub store.ContactSubmission) error
	MarkContactNotified(ctx context.Context, id string) error
}

type notifier interface {
	IsConfigured() bool
	SendContactNotification(ctx context.Context, to []string, data email.ContactData) error
}

type Service struct {
	store      submissionStore
	mailer     notifier
	recipients []string
	limiter    *RateLimiter
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a Service. Either backend may be nil.
func New(subs submissionStore, mailer notifier, recipients []string, opts ...Option) *Service {
	s := &Service{
		store:      subs,
		mailer:     mailer,
		recipients: recipients,
		limiter:    NewRateLimiter(5, 3),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) canNotify() bool {
	return s.mailer != nil && s.mailer.IsConfigured() && len(s.recipients) > 0
}

// Configured reports whether submissions can go anywhere.
func (s *Service) Configured() bool {
	return s.store != nil || s.canNotify()
}

// Submit rate-limits, validates, stores and forwards one submission.
func (s *Service) Submit(ctx context.Context, req Request, meta Meta) (Result, error) {
	if s.limiter != nil && !s.limiter.Allow(meta.IP) {
		return Result{}, ErrRateLimited
	}
	if req.Website != "" {
		s.logger.Info("contact honeypot triggered", zap.String("ip_hash", auth.HashToken(meta.IP)))
		return Result{Discarded: true}, nil
	}
	if err := Validate(&req); err != nil {
		return Result{}, err
	}
	if !s.Configured() {
		return Result{}, ErrNotConfigured
	}

	sub := store.ContactSubmission{
		ID:        util.NewID("msg"),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		Locale:    req.Locale,
		IPHash:    auth.HashToken(meta.IP),
		UserAgent: meta.UserAgent,
		CreatedAt: s.now().UTC(),
	}
	result := Result{ID: sub.ID}

	if s.store != nil {
		if err := s.store.InsertContactSubmission(ctx, sub); err != nil {
			return Result{}, fmt.Errorf("store contact submission: %w", err)
		}
	}

	if !s.canNotify() {
		return result, nil
	}
	err := s.mailer.SendContactNotification(ctx, s.recipients, email.ContactData{
		Name:     sub.Name,
		Email:    sub.Email,
		Phone:    sub.Phone,
		Message:  sub.Message,
		Received: sub.CreatedAt,
	})
	if err != nil {
		if s.store == nil {
			return Result{}, fmt.Errorf("send contact notification: %w", err)
		}
		s.logger.Error("contact notification failed; submission kept", zap.String("id", sub.ID), zap.Error(err))
		return result, nil
	}
	result.Notified = true

	if s.store != nil {
		if err := s.store.MarkContactNotified(ctx, sub.ID); err != nil {
			s.logger.Warn("mark contact notified failed", zap.String("id", sub.ID), zap.Error(err))
		}
	}
	return result, nil
}
