package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/session"
	"finadvisor/internal/uuid"
)

func signedIn(t *testing.T, token string) *session.Session {
	t.Helper()
	sess := session.New(session.NewMemoryStore())
	if err := sess.Set(context.Background(), session.State{AccessToken: token, DisplayName: "Test"}); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return sess
}

func TestDo_SendsHeadersAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/transactions/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected Content-Type %q", got)
		}
		if !uuid.IsValid(r.Header.Get("X-Request-ID")) {
			t.Errorf("X-Request-ID should be a uuid, got %q", r.Header.Get("X-Request-ID"))
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["description"] != "Coffee" {
			t.Errorf("unexpected body: %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "description": "Coffee"})
	}))
	defer server.Close()

	c := New(server.URL+"/", signedIn(t, "tok-1"), server.Client())

	var out struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	}
	err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/transactions/",
		Body:   map[string]any{"description": "Coffee", "amount": 4.5},
	}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != 7 || out.Description != "Coffee" {
		t.Errorf("unexpected decoded value: %+v", out)
	}
}

func TestDo_ContentTypeWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected Content-Type %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no Authorization header, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL, session.New(nil), server.Client())
	if err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/health"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_EncodesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("month"); got != "3" {
			t.Errorf("expected month=3, got %q", got)
		}
		if got := r.URL.Query().Get("year"); got != "2025" {
			t.Errorf("expected year=2025, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, signedIn(t, "tok"), server.Client())
	var out []any
	err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/budgets/",
		Query:  url.Values{"month": {"3"}, "year": {"2025"}},
	}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New(server.URL, signedIn(t, "tok"), server.Client())
	out := map[string]any{"untouched": true}
	if err := c.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/goals/1"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["untouched"] != true {
		t.Errorf("204 should leave out untouched, got %v", out)
	}
}

func TestDo_ErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr *apperrors.AppError
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"Email already registered"}`, "Email already registered", apperrors.ErrBackend},
		{"message field", http.StatusBadRequest, `{"message":"bad input"}`, "bad input", apperrors.ErrBackend},
		{"nested error", http.StatusConflict, `{"error":{"code":"X","message":"already exists"}}`, "already exists", apperrors.ErrBackend},
		{"error string", http.StatusBadRequest, `{"error":"plain"}`, "plain", apperrors.ErrBackend},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"},{"msg":"value too large"}]}`, "field required; value too large", apperrors.ErrBackend},
		{"not found", http.StatusNotFound, `{"detail":"Goal not found"}`, "Goal not found", apperrors.ErrNotFound},
		{"non json body", http.StatusInternalServerError, `<html>oops</html>`, "HTTP error! status: 500", apperrors.ErrBackend},
		{"empty body", http.StatusBadGateway, ``, "HTTP error! status: 502", apperrors.ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			c := New(server.URL, signedIn(t, "tok"), server.Client())
			err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *AppError, got %T", err)
			}
			if appErr.Message != tt.want {
				t.Errorf("message = %q, want %q", appErr.Message, tt.want)
			}
			if appErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", appErr.StatusCode, tt.status)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected errors.Is(%s)", tt.wantErr.Code)
			}
		})
	}
}

func TestDo_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": "not-a-number"}`))
	}))
	defer server.Close()

	c := New(server.URL, signedIn(t, "tok"), server.Client())
	var out struct {
		ID int `json:"id"`
	}
	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, &out)
	if !errors.Is(err, apperrors.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestDo_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := server.URL
	server.Close()

	c := New(addr, signedIn(t, "tok"), nil)
	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)
	if !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestDo_UnauthorizedClearsSessionAndRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer server.Close()

	sess := signedIn(t, "stale")
	var redirects int32
	c := New(server.URL, sess, server.Client(), WithNavigator(NavigatorFunc(func() {
		atomic.AddInt32(&redirects, 1)
	})))

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/transactions/"}, nil)
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if sess.Active() {
		t.Error("session should be cleared after 401")
	}
	if got := atomic.LoadInt32(&redirects); got != 1 {
		t.Errorf("expected 1 redirect, got %d", got)
	}
}

func TestDo_ConcurrentUnauthorizedSignsOutOnce(t *testing.T) {
	const workers = 8

	// Hold every request until all of them have reached the server so they
	// all carry the same stale token.
	var arrived sync.WaitGroup
	arrived.Add(workers)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		arrived.Done()
		<-release
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token expired"}`))
	}))
	defer server.Close()

	store := &countingStore{MemoryStore: session.NewMemoryStore()}
	sess := session.New(store)
	if err := sess.Set(context.Background(), session.State{AccessToken: "stale"}); err != nil {
		t.Fatalf("seeding session: %v", err)
	}

	var redirects int32
	c := New(server.URL, sess, server.Client(), WithNavigator(NavigatorFunc(func() {
		atomic.AddInt32(&redirects, 1)
	})))

	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/analytics/summary"}, nil)
		}()
	}
	arrived.Wait()
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			t.Errorf("expected unauthorized, got %v", err)
		}
	}
	if got := atomic.LoadInt32(&redirects); got != 1 {
		t.Errorf("expected exactly 1 redirect, got %d", got)
	}
	if got := atomic.LoadInt32(&store.deletes); got != 1 {
		t.Errorf("expected exactly 1 session delete, got %d", got)
	}
}

func TestDo_UnauthorizedAfterReloginKeepsNewSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sess := signedIn(t, "old")
	var redirects int32
	c := New(server.URL, sess, server.Client(), WithNavigator(NavigatorFunc(func() {
		atomic.AddInt32(&redirects, 1)
	})))

	// Simulate a 401 for a request that was sent with a token that has
	// since been replaced.
	if err := sess.Set(context.Background(), session.State{AccessToken: "new"}); err != nil {
		t.Fatal(err)
	}
	err := c.handleUnauthorized(context.Background(), "old", "")
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if sess.Token() != "new" {
		t.Errorf("newer session must survive a stale 401, token = %q", sess.Token())
	}
	if redirects != 0 {
		t.Errorf("expected no redirect, got %d", redirects)
	}
}

func TestDo_UnauthorizedWithoutSessionKeepsMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	}))
	defer server.Close()

	var redirects int32
	c := New(server.URL, session.New(nil), server.Client(), WithNavigator(NavigatorFunc(func() {
		atomic.AddInt32(&redirects, 1)
	})))

	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/auth/login"}, nil)
	if apperrors.UserMessage(err) != "Incorrect email or password" {
		t.Errorf("unexpected message %q", apperrors.UserMessage(err))
	}
	if redirects != 0 {
		t.Errorf("expected no redirect, got %d", redirects)
	}
}

func TestRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "csv" {
			t.Errorf("expected format=csv, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("id,amount\n1,4.50\n"))
	}))
	defer server.Close()

	c := New(server.URL, signedIn(t, "tok"), server.Client())
	body, contentType, err := c.Raw(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/transactions/export",
		Query:  url.Values{"format": {"csv"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contentType != "text/csv" {
		t.Errorf("unexpected content type %q", contentType)
	}
	if !strings.HasPrefix(string(body), "id,amount") {
		t.Errorf("unexpected body %q", body)
	}
}

type countingStore struct {
	*session.MemoryStore
	deletes int32
}

func (c *countingStore) Delete(ctx context.Context) error {
	atomic.AddInt32(&c.deletes, 1)
	return c.MemoryStore.Delete(ctx)
}
