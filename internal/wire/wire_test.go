package wire

import (
	"context"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"physiosite/api/internal/config"
	"physiosite/api/internal/instagram"
	"physiosite/api/internal/kv"
	"physiosite/api/internal/logging/logtest"
)

func TestCacheFallsBackToNop(t *testing.T) {
	cache := Cache(config.Config{RedisURL: "redis://127.0.0.1:1/0"}, logtest.Test(t))
	if _, ok := cache.(kv.NopStore); !ok {
		t.Fatalf("expected NopStore for unreachable redis, got %T", cache)
	}
	if CacheConfigured(config.Config{}) {
		t.Fatal("empty config should not report a cache")
	}
}

func TestCacheRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := Cache(config.Config{RedisURL: "redis://" + mr.Addr()}, logtest.Test(t))
	defer cache.Close()
	if _, ok := cache.(*kv.RedisStore); !ok {
		t.Fatalf("expected RedisStore, got %T", cache)
	}
}

func TestTranslatorWithoutProvider(t *testing.T) {
	svc, err := Translator(context.Background(), config.Config{SourceLang: "nl"}, kv.NopStore{}, logtest.Test(t))
	if err != nil {
		t.Fatalf("Translator: %v", err)
	}
	got := svc.Translate(context.Background(), []string{"Hallo"}, "en")
	if !reflect.DeepEqual(got, []string{"Hallo"}) {
		t.Fatalf("expected passthrough, got %v", got)
	}
}

func TestRefresherNotConfigured(t *testing.T) {
	svc := Refresher(config.Config{}, instagram.NewTokenHolder("tok"), logtest.Test(t))
	if svc.Configured() {
		t.Fatal("refresher without vercel credentials should not be configured")
	}
}

func TestDatabaseSkippedWithoutURL(t *testing.T) {
	db, err := Database(context.Background(), config.Config{})
	if db != nil || err != nil {
		t.Fatalf("expected nil, nil; got %v, %v", db, err)
	}
}

func TestRecipients(t *testing.T) {
	got := Recipients(" a@example.com, ,b@example.com ")
	if !reflect.DeepEqual(got, []string{"a@example.com", "b@example.com"}) {
		t.Fatalf("unexpected recipients %v", got)
	}
	if Recipients("") != nil {
		t.Fatal("expected nil for empty value")
	}
}
