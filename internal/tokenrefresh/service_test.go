package tokenrefresh

import (
	"context"
	"errors"
	"testing"

	"physiosite/api/internal/instagram"
	"physiosite/api/internal/logging/logtest"
)

type fakeInstagram struct {
	got   string
	token instagram.Token
	err   error
}

func (f *fakeInstagram) RefreshToken(_ context.Context, token string) (instagram.Token, error) {
	f.got = token
	return f.token, f.err
}

type fakeEnv struct {
	configured bool
	key, value string
	existing   bool
	upsertErr  error
	deployed   bool
	deployErr  error
}

func (f *fakeEnv) Configured() bool { return f.configured }

func (f *fakeEnv) UpsertEnv(_ context.Context, key, value string) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	f.key, f.value = key, value
	return f.existing, nil
}

func (f *fakeEnv) Redeploy(context.Context) (bool, error) {
	return f.deployed, f.deployErr
}

func TestRefreshRotatesAndPublishes(t *testing.T) {
	ig := &fakeInstagram{token: instagram.Token{AccessToken: "new", ExpiresIn: 5184000}}
	env := &fakeEnv{configured: true, existing: true, deployed: true}
	tokens := instagram.NewTokenHolder("old")
	svc := New(ig, env, tokens, "INSTAGRAM_ACCESS_TOKEN", logtest.Test(t))

	result, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if ig.got != "old" {
		t.Errorf("refreshed with %q, want old", ig.got)
	}
	if env.key != "INSTAGRAM_ACCESS_TOKEN" || env.value != "new" {
		t.Errorf("published %s=%s", env.key, env.value)
	}
	if tokens.Get() != "new" {
		t.Errorf("token holder = %q, want new", tokens.Get())
	}
	if !result.EnvUpdated || result.EnvCreated || !result.Redeployed || result.ExpiresIn != 5184000 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestRefreshNotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		env    *fakeEnv
		tokens *instagram.TokenHolder
	}{
		{"no token", &fakeEnv{configured: true}, instagram.NewTokenHolder("")},
		{"no env target", &fakeEnv{}, instagram.NewTokenHolder("old")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&fakeInstagram{}, tt.env, tt.tokens, "K", nil)
			if _, err := svc.Refresh(context.Background()); !errors.Is(err, ErrNotConfigured) {
				t.Fatalf("expected ErrNotConfigured, got %v", err)
			}
		})
	}
}

func TestRefreshKeepsOldTokenWhenPublishFails(t *testing.T) {
	ig := &fakeInstagram{token: instagram.Token{AccessToken: "new"}}
	env := &fakeEnv{configured: true, upsertErr: errors.New("vercel 500")}
	tokens := instagram.NewTokenHolder("old")
	svc := New(ig, env, tokens, "K", nil)

	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if tokens.Get() != "old" {
		t.Fatalf("token holder = %q, want old", tokens.Get())
	}
}

func TestRefreshInstagramFailure(t *testing.T) {
	svc := New(&fakeInstagram{err: errors.New("expired")}, &fakeEnv{configured: true}, instagram.NewTokenHolder("old"), "K", nil)
	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRefreshDeployHookFailureIsNotFatal(t *testing.T) {
	ig := &fakeInstagram{token: instagram.Token{AccessToken: "new"}}
	env := &fakeEnv{configured: true, deployErr: errors.New("hook 500")}
	svc := New(ig, env, instagram.NewTokenHolder("old"), "K", nil)

	result, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if result.Redeployed || !result.EnvCreated {
		t.Fatalf("unexpected result %+v", result)
	}
}
