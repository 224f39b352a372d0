package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"physiosite/api/internal/botcheck"
	"physiosite/api/internal/config"
	"physiosite/api/internal/contact"
	"physiosite/api/internal/instagram"
	"physiosite/api/internal/tokenrefresh"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeRefresher struct {
	configured bool
	result     tokenrefresh.Result
	err        error
	calls      int
}

func (f *fakeRefresher) Configured() bool { return f.configured }

func (f *fakeRefresher) Refresh(context.Context) (tokenrefresh.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeDetector struct {
	verdict botcheck.Verdict
	err     error
	calls   int
}

func (f *fakeDetector) Detect(context.Context, *http.Request) (botcheck.Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

type fakeFeed struct {
	items []instagram.Media
	stale bool
	err   error
	limit int
}

func (f *fakeFeed) Items(_ context.Context, limit int) ([]instagram.Media, bool, error) {
	f.limit = limit
	return f.items, f.stale, f.err
}

type fakeContact struct {
	result contact.Result
	err    error
	got    contact.Request
	meta   contact.Meta
}

func (f *fakeContact) Submit(_ context.Context, req contact.Request, meta contact.Meta) (contact.Result, error) {
	f.got, f.meta = req, meta
	return f.result, f.err
}

var errBoom = errors.New("boom")

func newTestServer(cfg config.Config, deps Dependencies) http.Handler {
	return NewHTTPServer(New(cfg, deps), "*").Handler()
}

func serve(t *testing.T, handler http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	var payload map[string]any
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("parse response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, payload
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
