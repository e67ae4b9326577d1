package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
)

func newTestLogger(t *testing.T) (logger.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l, &buf
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "a,b,c" {
		t.Errorf("order = %s, want a,b,c", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
		if _, ok := r.Context().Value(ContextKeyStartTime).(time.Time); !ok {
			t.Error("start time missing from context")
		}
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		got := rec.Header().Get(HeaderRequestID)
		if !strings.HasPrefix(got, "req-") {
			t.Errorf("request id = %q, want req- prefix", got)
		}
		if seen != got {
			t.Errorf("context id = %q, header id = %q", seen, got)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "caller-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get(HeaderRequestID); got != "caller-42" {
			t.Errorf("request id = %q, want caller-42", got)
		}
		if seen != "caller-42" {
			t.Errorf("context id = %q, want caller-42", seen)
		}
	})

	t.Run("unique", func(t *testing.T) {
		ids := make(map[string]bool)
		for i := 0; i < 100; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			ids[rec.Header().Get(HeaderRequestID)] = true
		}
		if len(ids) != 100 {
			t.Errorf("got %d unique ids, want 100", len(ids))
		}
	})
}

func TestRecover(t *testing.T) {
	log, buf := newTestLogger(t)
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID(), Recover(log))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "FM-SYS-5000" {
		t.Errorf("code = %q, want FM-SYS-5000", body["code"])
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "panic recovered" {
		t.Errorf("msg = %v, want panic recovered", entry["msg"])
	}
	if id, _ := entry["request_id"].(string); !strings.HasPrefix(id, "req-") {
		t.Errorf("request_id = %v", entry["request_id"])
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(okHandler())

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// burst of 2 then throttled
	if got := do("10.0.0.1"); got != http.StatusOK {
		t.Errorf("first request status = %d", got)
	}
	if got := do("10.0.0.1"); got != http.StatusOK {
		t.Errorf("second request status = %d", got)
	}
	if got := do("10.0.0.1"); got != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", got)
	}

	// other clients have their own bucket
	if got := do("10.0.0.2"); got != http.StatusOK {
		t.Errorf("other ip status = %d, want 200", got)
	}
}

func TestRateLimit_Concurrent(t *testing.T) {
	h := RateLimit(1000)(okHandler())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			h.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()
}

func TestIPLimiters_Prune(t *testing.T) {
	l := newIPLimiters(1, 1, time.Minute)
	start := time.Now()

	l.get("a", start)
	l.get("b", start)
	if len(l.visitors) != 2 {
		t.Fatalf("visitors = %d, want 2", len(l.visitors))
	}

	l.get("b", start.Add(90*time.Second))
	l.get("c", start.Add(2*time.Minute+time.Second))
	if _, ok := l.visitors["a"]; ok {
		t.Error("idle visitor a was not pruned")
	}
	if _, ok := l.visitors["b"]; !ok {
		t.Error("recent visitor b was pruned")
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{"allow all", nil, "https://a.example", http.MethodGet, "https://a.example", http.StatusOK},
		{"listed", []string{"https://a.example"}, "https://a.example", http.MethodGet, "https://a.example", http.StatusOK},
		{"not listed", []string{"https://a.example"}, "https://b.example", http.MethodGet, "", http.StatusOK},
		{"wildcard", []string{"*"}, "https://c.example", http.MethodGet, "https://c.example", http.StatusOK},
		{"preflight", nil, "https://a.example", http.MethodOptions, "https://a.example", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/fork/create", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.allowed)(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestAudit(t *testing.T) {
	log, buf := newTestLogger(t)

	mux := http.NewServeMux()
	mux.Handle("GET /fork/{id}", Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), RequestID(), Audit(log)))

	req := httptest.NewRequest(http.MethodGet, "/fork/fork-abc", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("status = %v, want 404", entry["status"])
	}
	if entry["fork_id"] != "fork-abc" {
		t.Errorf("fork_id = %v, want fork-abc", entry["fork_id"])
	}
	if id, _ := entry["request_id"].(string); !strings.HasPrefix(id, "req-") {
		t.Errorf("request_id = %v", entry["request_id"])
	}
}

type observation struct {
	method, path string
	status       int
}

type fakeObserver struct {
	mu  sync.Mutex
	got []observation
}

func (o *fakeObserver) ObserveHTTP(method, path string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, observation{method, path, status})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	obs := &fakeObserver{}
	mux := http.NewServeMux()
	mux.Handle("POST /fork/{id}/rpc", Metrics(obs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})))

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/fork/fork-1/rpc", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/fork/fork-2/rpc", nil))

	if len(obs.got) != 2 {
		t.Fatalf("observations = %d, want 2", len(obs.got))
	}
	for _, o := range obs.got {
		if o.path != "/fork/{id}/rpc" {
			t.Errorf("path = %q, want route pattern", o.path)
		}
		if o.status != http.StatusAccepted || o.method != http.MethodPost {
			t.Errorf("observation = %+v", o)
		}
	}

	// outside a mux there is no pattern
	Metrics(obs)(okHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw", nil))
	if last := obs.got[len(obs.got)-1]; last.path != "unmatched" {
		t.Errorf("path = %q, want unmatched", last.path)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"ipv6 remote addr", "[::1]:8080", nil, "::1"},
		{"x-forwarded-for", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"no port", "192.168.1.9", nil, "192.168.1.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
