// Package translate translates batches of site strings through an LLM
// provider, caching each translation in a key-value store.
package translate

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"physiosite/api/internal/kv"
)

// CacheTTL is how long a stored translation stays valid.
const CacheTTL = 30 * 24 * time.Hour

// ErrShapeMismatch is returned by providers whose reply does not carry
// exactly one item per input text.
var ErrShapeMismatch = errors.New("translation reply does not match batch size")

// Provider translates texts into lang, returning one item per text in order.
type Provider interface {
	Translate(ctx context.Context, lang string, texts []string) ([]string, error)
}

type Service struct {
	cache      kv.Store
	provider   Provider
	sourceLang string
	timeout    time.Duration
	logger     *zap.Logger
}

type Option func(*Service)

// WithTimeout bounds the provider call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a Service. A nil cache behaves as an always-missing cache and a
// nil provider leaves every miss untranslated while still serving cache hits.
func New(cache kv.Store, provider Provider, sourceLang string, opts ...Option) *Service {
	if cache == nil {
		cache = kv.NopStore{}
	}
	s := &Service{
		cache:      cache,
		provider:   provider,
		sourceLang: strings.ToLower(strings.TrimSpace(sourceLang)),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SourceLang is the language site content is authored in.
func (s *Service) SourceLang() string {
	return s.sourceLang
}

// Translate returns texts translated into lang, in input order. It never fails:
// cache errors count as misses and provider errors return texts unchanged.
func (s *Service) Translate(ctx context.Context, texts []string, lang string) []string {
	out := make([]string, len(texts))
	copy(out, texts)

	lang = NormalizeLang(lang)
	if len(texts) == 0 || lang == "" || s.IsSource(lang) {
		return out
	}

	// unique normalized texts in first-seen order, and each input's slot
	var unique []string
	slot := make([]int, len(texts))
	seen := make(map[string]int, len(texts))
	for i, text := range texts {
		norm := NormalizeText(text)
		if norm == "" {
			slot[i] = -1
			continue
		}
		idx, ok := seen[norm]
		if !ok {
			idx = len(unique)
			seen[norm] = idx
			unique = append(unique, norm)
		}
		slot[i] = idx
	}
	if len(unique) == 0 {
		return out
	}

	keys := make([]string, len(unique))
	for i, norm := range unique {
		keys[i] = CacheKey(lang, norm)
	}

	translated := make([]*string, len(unique))
	if cached, err := s.cache.MGet(ctx, keys); err != nil {
		s.logger.Warn("translation cache read failed", zap.String("lang", lang), zap.Int("keys", len(keys)), zap.Error(err))
	} else {
		copy(translated, cached)
	}

	var missIdx []int
	var missTexts []string
	for i, value := range translated {
		if value == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, unique[i])
		}
	}

	switch {
	case len(missTexts) == 0:
	case s.provider == nil:
		s.logger.Debug("no translation provider configured", zap.Int("misses", len(missTexts)))
	default:
		items, err := s.callProvider(ctx, lang, missTexts)
		if err != nil {
			s.logger.Error("translation provider failed; returning source texts",
				zap.String("lang", lang),
				zap.Int("misses", len(missTexts)),
				zap.Error(err),
			)
			return out
		}
		entries := make([]kv.Entry, len(missIdx))
		for j, i := range missIdx {
			item := items[j]
			translated[i] = &item
			entries[j] = kv.Entry{Key: keys[i], Value: item}
		}
		if err := s.cache.SetMany(ctx, entries, CacheTTL); err != nil {
			s.logger.Warn("translation cache write failed", zap.String("lang", lang), zap.Int("keys", len(entries)), zap.Error(err))
		}
	}

	for i, idx := range slot {
		if idx >= 0 && translated[idx] != nil {
			out[i] = *translated[idx]
		}
	}
	return out
}

func (s *Service) callProvider(ctx context.Context, lang string, texts []string) ([]string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	items, err := s.provider.Translate(ctx, lang, texts)
	if err != nil {
		return nil, err
	}
	if len(items) != len(texts) {
		return nil, ErrShapeMismatch
	}
	return items, nil
}

// Lookup returns the cached translation for each text, nil when absent.
func (s *Service) Lookup(ctx context.Context, texts []string, lang string) ([]*string, error) {
	lang = NormalizeLang(lang)
	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = CacheKey(lang, NormalizeText(text))
	}
	return s.cache.MGet(ctx, keys)
}

// IsSource reports whether lang names the source language, ignoring region.
func (s *Service) IsSource(lang string) bool {
	lang = NormalizeLang(lang)
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return lang == s.sourceLang
}

// NormalizeText collapses whitespace runs, trims and case-folds text.
func NormalizeText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

func NormalizeLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// CacheKey is base64("t:{lang}:{normalized}").
func CacheKey(lang, normalized string) string {
	return base64.StdEncoding.EncodeToString([]byte("t:" + lang + ":" + normalized))
}
