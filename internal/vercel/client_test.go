package vercel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type fakeVercel struct {
	mu       sync.Mutex
	envs     []envVar
	patched  map[string]string
	created  []map[string]any
	teamIDs  []string
	failList bool
}

func (f *fakeVercel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	f.teamIDs = append(f.teamIDs, r.URL.Query().Get("teamId"))
	if r.Header.Get("Authorization") != "Bearer vc-token" {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"forbidden","message":"Not authorized"}}`))
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v9/projects/prj_1/env":
		if f.failList {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"internal","message":"boom"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"envs": f.envs})
	case r.Method == http.MethodPatch && len(r.URL.Path) > len("/v9/projects/prj_1/env/"):
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		id := r.URL.Path[len("/v9/projects/prj_1/env/"):]
		if f.patched == nil {
			f.patched = map[string]string{}
		}
		f.patched[id] = body["value"]
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && r.URL.Path == "/v10/projects/prj_1/env":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body)
		_, _ = w.Write([]byte(`{"created":{}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"route"}}`))
	}
}

func newTestClient(t *testing.T, fake *fakeVercel, token string) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Token: token, ProjectID: "prj_1", TeamID: "team_9"})
}

func TestUpsertEnvUpdatesExisting(t *testing.T) {
	fake := &fakeVercel{envs: []envVar{{ID: "env_a", Key: "OTHER"}, {ID: "env_b", Key: "INSTAGRAM_ACCESS_TOKEN"}}}
	client := newTestClient(t, fake, "vc-token")

	updated, err := client.UpsertEnv(context.Background(), "INSTAGRAM_ACCESS_TOKEN", "new-token")
	if err != nil {
		t.Fatalf("UpsertEnv failed: %v", err)
	}
	if !updated {
		t.Fatal("expected existing var to be updated")
	}
	if fake.patched["env_b"] != "new-token" {
		t.Fatalf("unexpected patches %v", fake.patched)
	}
	for _, teamID := range fake.teamIDs {
		if teamID != "team_9" {
			t.Fatalf("expected teamId on every call, got %v", fake.teamIDs)
		}
	}
}

func TestUpsertEnvCreatesMissing(t *testing.T) {
	fake := &fakeVercel{}
	client := newTestClient(t, fake, "vc-token")

	updated, err := client.UpsertEnv(context.Background(), "INSTAGRAM_ACCESS_TOKEN", "new-token")
	if err != nil {
		t.Fatalf("UpsertEnv failed: %v", err)
	}
	if updated {
		t.Fatal("expected create, not update")
	}
	if len(fake.created) != 1 || fake.created[0]["key"] != "INSTAGRAM_ACCESS_TOKEN" || fake.created[0]["type"] != "encrypted" {
		t.Fatalf("unexpected creates %v", fake.created)
	}
}

func TestUpsertEnvSurfacesErrors(t *testing.T) {
	client := newTestClient(t, &fakeVercel{}, "wrong")
	if _, err := client.UpsertEnv(context.Background(), "K", "V"); err == nil {
		t.Fatal("expected auth error")
	}

	client = newTestClient(t, &fakeVercel{failList: true}, "vc-token")
	if _, err := client.UpsertEnv(context.Background(), "K", "V"); err == nil {
		t.Fatal("expected list error")
	}
}

func TestRedeploy(t *testing.T) {
	var hits int
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		hits++
		_, _ = w.Write([]byte(`{"job":{"id":"j1"}}`))
	}))
	defer hook.Close()

	client := NewClient(Config{Token: "t", ProjectID: "p", DeployHookURL: hook.URL})
	ok, err := client.Redeploy(context.Background())
	if err != nil || !ok || hits != 1 {
		t.Fatalf("Redeploy = %v, %v (hits %d)", ok, err, hits)
	}

	ok, err = NewClient(Config{}).Redeploy(context.Background())
	if err != nil || ok {
		t.Fatalf("expected no-op without hook, got %v %v", ok, err)
	}
}

func TestConfigured(t *testing.T) {
	if NewClient(Config{Token: "t"}).Configured() {
		t.Error("missing project should not be configured")
	}
	if !NewClient(Config{Token: "t", ProjectID: "p"}).Configured() {
		t.Error("token and project should be configured")
	}
}
