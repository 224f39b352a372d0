// Package tokenrefresh rotates the Instagram long-lived token and publishes
// the new value to the hosting platform's environment.
package tokenrefresh

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"physiosite/api/internal/instagram"
)

var ErrNotConfigured = errors.New("token refresh not configured")

type tokenRefresher interface {
	RefreshToken(ctx context.Context, token string) (instagram.Token, error)
}

type envPublisher interface {
	Configured() bool
	UpsertEnv(ctx context.Context, key, value string) (bool, error)
	Redeploy(ctx context.Context) (bool, error)
}

// Result describes a completed rotation.
type Result struct {
	ExpiresIn  int64 `json:"expiresIn"`
	EnvUpdated bool  `json:"envUpdated"`
	EnvCreated bool  `json:"envCreated"`
	Redeployed bool  `json:"redeployed"`
}

type Service struct {
	instagram tokenRefresher
	env       envPublisher
	tokens    *instagram.TokenHolder
	envKey    string
	logger    *zap.Logger
}

func New(ig tokenRefresher, env envPublisher, tokens *instagram.TokenHolder, envKey string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{instagram: ig, env: env, tokens: tokens, envKey: envKey, logger: logger}
}

// Configured reports whether a token and an env target are available.
func (s *Service) Configured() bool {
	return s.tokens != nil && s.tokens.Get() != "" && s.env != nil && s.env.Configured()
}

// Refresh rotates the token, stores it in the environment and swaps it into
// the running process. A failed redeploy is logged; the rotation still counts.
func (s *Service) Refresh(ctx context.Context) (Result, error) {
	if !s.Configured() {
		return Result{}, ErrNotConfigured
	}

	token, err := s.instagram.RefreshToken(ctx, s.tokens.Get())
	if err != nil {
		return Result{}, err
	}

	updated, err := s.env.UpsertEnv(ctx, s.envKey, token.AccessToken)
	if err != nil {
		return Result{}, fmt.Errorf("publish refreshed token: %w", err)
	}
	s.tokens.Set(token.AccessToken)

	result := Result{ExpiresIn: token.ExpiresIn, EnvUpdated: updated, EnvCreated: !updated}
	redeployed, err := s.env.Redeploy(ctx)
	if err != nil {
		s.logger.Warn("deploy hook failed after token refresh", zap.Error(err))
	}
	result.Redeployed = redeployed

	s.logger.Info("instagram token refreshed",
		zap.Int64("expires_in", token.ExpiresIn),
		zap.Bool("env_updated", updated),
		zap.Bool("redeployed", redeployed),
	)
	return result, nil
}
