// Package wire builds the service components from Config. It is shared by
// the API server and the siteops CLI so both talk to the same backends.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"physiosite/api/internal/config"
	"physiosite/api/internal/instagram"
	"physiosite/api/internal/kv"
	"physiosite/api/internal/store"
	"physiosite/api/internal/tokenrefresh"
	"physiosite/api/internal/translate"
	"physiosite/api/internal/vercel"
)

func kvOptions(cfg config.Config) kv.Options {
	return kv.Options{RESTURL: cfg.KVRestURL, RESTToken: cfg.KVRestToken, RedisURL: cfg.RedisURL}
}

// Cache connects the translation cache. An unreachable Redis is logged and
// replaced with a NopStore so translation keeps working uncached.
func Cache(cfg config.Config, logger *zap.Logger) kv.Store {
	opts := kvOptions(cfg)
	cache, err := kv.New(opts)
	if err != nil {
		logger.Error("kv store unavailable; translations will not be cached",
			zap.String("backend", opts.Backend()), zap.Error(err))
		return kv.NopStore{}
	}
	logger.Info("kv store ready", zap.String("backend", opts.Backend()))
	return cache
}

// CacheConfigured reports whether a real cache backend is configured.
func CacheConfigured(cfg config.Config) bool {
	return kvOptions(cfg).Backend() != "none"
}

func Translator(ctx context.Context, cfg config.Config, cache kv.Store, logger *zap.Logger) (*translate.Service, error) {
	provider, name, err := translate.NewProvider(ctx, translate.ProviderConfig{
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
	})
	if err != nil {
		return nil, fmt.Errorf("translation provider %s: %w", name, err)
	}
	logger.Info("translation provider selected", zap.String("provider", name), zap.String("source_lang", cfg.SourceLang))
	return translate.New(cache, provider, cfg.SourceLang,
		translate.WithTimeout(cfg.TranslateTimeout),
		translate.WithLogger(logger.Named("translate")),
	), nil
}

// Refresher builds the token rotation flow around tokens.
func Refresher(cfg config.Config, tokens *instagram.TokenHolder, logger *zap.Logger) *tokenrefresh.Service {
	env := vercel.NewClient(vercel.Config{
		Token:         cfg.VercelToken,
		ProjectID:     cfg.VercelProjectID,
		TeamID:        cfg.VercelTeamID,
		DeployHookURL: cfg.VercelDeployHookURL,
	})
	return tokenrefresh.New(instagram.NewClient(cfg.InstagramGraphURL), env, tokens, cfg.VercelEnvKey, logger.Named("tokenrefresh"))
}

// Database opens Postgres when DATABASE_URL is set; it returns nil, nil otherwise.
func Database(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	return store.Open(ctx, cfg.DatabaseURL)
}

// Recipients splits CONTACT_TO on commas.
func Recipients(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
