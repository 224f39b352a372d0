package instagram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/refresh_access_token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("grant_type") != "ig_refresh_token" || q.Get("access_token") != "old-token" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-token","token_type":"bearer","expires_in":5183944}`))
	}))
	defer server.Close()

	token, err := NewClient(server.URL).RefreshToken(context.Background(), "old-token")
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if token.AccessToken != "new-token" || token.ExpiresIn != 5183944 {
		t.Fatalf("unexpected token %+v", token)
	}
}

func TestRefreshTokenRequiresToken(t *testing.T) {
	if _, err := NewClient("http://127.0.0.1:1").RefreshToken(context.Background(), " "); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestRefreshTokenGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Session has expired","type":"OAuthException","code":190}}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).RefreshToken(context.Background(), "old"); err == nil {
		t.Fatal("expected error")
	}
}

func TestMediaMapsFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/media" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "2" {
			t.Errorf("unexpected limit %q", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"1","caption":"Nieuwe praktijkruimte","media_type":"IMAGE","media_url":"https://cdn/1.jpg","permalink":"https://instagram.com/p/1","timestamp":"2026-01-02T10:00:00+0000"},
			{"id":"2","media_type":"VIDEO","media_url":"https://cdn/2.mp4","thumbnail_url":"https://cdn/2.jpg","permalink":"https://instagram.com/p/2","timestamp":"2026-01-01T10:00:00+0000"}
		]}`))
	}))
	defer server.Close()

	items, err := NewClient(server.URL).Media(context.Background(), "tok", 2)
	if err != nil {
		t.Fatalf("Media failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Caption != "Nieuwe praktijkruimte" || items[0].MediaType != "IMAGE" {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if items[1].ThumbnailURL != "https://cdn/2.jpg" {
		t.Errorf("unexpected thumbnail %q", items[1].ThumbnailURL)
	}
}
