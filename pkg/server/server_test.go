package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/observability"
	"github.com/matzehuels/stratum/pkg/pipeline"
)

const twoNodes = `{"graph":{"edges":[{"from":"api","to":"db"}]},"options":{"mode":"single"}}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	cfg.Logger = log.New(io.Discard)
	ts := httptest.NewServer(New(pipeline.NewRunner(nil, nil, cfg.Logger), cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return er
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Version == "" {
		t.Errorf("health = %+v", h)
	}
	if _, err := uuid.Parse(resp.Header.Get(HeaderRequestID)); err != nil {
		t.Errorf("request id header: %v", err)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp := post(t, ts, "/v1/layout", twoNodes)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %+v", resp.StatusCode, decodeError(t, resp))
	}
	var l graph.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 2 || len(l.Links) != 1 {
		t.Fatalf("layout = %+v", l)
	}
	if l.Width != 540 || l.Height != 280 {
		t.Errorf("size = %vx%v, want 540x280", l.Width, l.Height)
	}
	if got := resp.Header.Get(HeaderCache); got != "miss" {
		t.Errorf("%s = %q", HeaderCache, got)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"dot", "text/plain; charset=utf-8", "digraph G {"},
		{"json", "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := post(t, ts, "/v1/render/"+tt.format, twoNodes)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q", got)
			}
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(string(body), tt.prefix) {
				t.Errorf("body starts with %q", body[:min(20, len(body))])
			}
		})
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t, Config{MaxBodyBytes: 512})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"bad json", "/v1/layout", `{"graph":`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown field", "/v1/layout", `{"graph":{"edges":[]},"extra":1}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"empty graph", "/v1/layout", `{"graph":{}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty id", "/v1/layout", `{"graph":{"nodes":[{"id":""}]}}`, http.StatusBadRequest, errors.ErrCodeInvalidNodeID},
		{"bad strategy", "/v1/layout", `{"graph":{"nodes":[{"id":"a"}]},"options":{"link_strategy":"spline"}}`, http.StatusBadRequest, errors.ErrCodeInvalidStrategy},
		{"bad format", "/v1/render/gif", twoNodes, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"too large", "/v1/layout", `{"graph":{"nodes":[{"id":"` + strings.Repeat("x", 1024) + `"}]}}`, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput},
		{"no route", "/v2/layout", twoNodes, http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			er := decodeError(t, resp)
			if er.Error.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", er.Error.Code, tt.code, er.Error.Message)
			}
			if er.RequestID != resp.Header.Get(HeaderRequestID) {
				t.Errorf("body request id %q != header %q", er.RequestID, resp.Header.Get(HeaderRequestID))
			}
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t, Config{})
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(HeaderRequestID, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(HeaderRequestID, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got == "not-a-uuid" {
		t.Error("invalid request id should be replaced")
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeInvalidInput:      http.StatusBadRequest,
		errors.ErrCodeFileNotFound:      http.StatusNotFound,
		errors.ErrCodeGraphInconsistent: http.StatusUnprocessableEntity,
		errors.ErrCodeInvariant:         http.StatusUnprocessableEntity,
		errors.ErrCodeTimeout:           http.StatusGatewayTimeout,
		errors.ErrCodeCanceled:          http.StatusRequestTimeout,
		errors.ErrCodeUnsupported:       http.StatusNotImplemented,
		errors.ErrCodeInternal:          http.StatusInternalServerError,
		"something-else":                http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%q) = %d, want %d", code, got, want)
		}
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	requests int
	statuses []int
	errs     int
}

func (h *httpRecorder) OnRequest(context.Context, string, string, string) {
	h.mu.Lock()
	h.requests++
	h.mu.Unlock()
}

func (h *httpRecorder) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	h.statuses = append(h.statuses, status)
	h.mu.Unlock()
}

func (h *httpRecorder) OnError(context.Context, string, string, string, error) {
	h.mu.Lock()
	h.errs++
	h.mu.Unlock()
}

func TestHTTPHooks(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	h := New(pipeline.NewRunner(nil, nil, log.New(io.Discard)), Config{Logger: log.New(io.Discard)}).Handler()
	for _, body := range []string{twoNodes, `{"graph":{}}`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/layout", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.requests != 2 || rec.errs != 1 {
		t.Errorf("requests=%d errs=%d", rec.requests, rec.errs)
	}
	if len(rec.statuses) != 2 || rec.statuses[0] != http.StatusOK || rec.statuses[1] != http.StatusBadRequest {
		t.Errorf("statuses = %v", rec.statuses)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvRedisURL, "redis://example:6379/0")

	cfg := Config{}.ApplyEnv().WithDefaults()
	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.MaxBodyBytes != DefaultMaxBodyBytes || cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if RedisURL() != "redis://example:6379/0" {
		t.Errorf("RedisURL() = %q", RedisURL())
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/.env"
	if err := os.WriteFile(path, []byte("STRATUM_TEST_LOADENV=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STRATUM_TEST_LOADENV", "")
	os.Unsetenv("STRATUM_TEST_LOADENV")

	if err := LoadEnv(dir+"/missing.env", path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("STRATUM_TEST_LOADENV"); got != "loaded" {
		t.Errorf("STRATUM_TEST_LOADENV = %q", got)
	}
}
