package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/internal/storage/memory"
	"github.com/yndnr/forkmesh-go/internal/svm"
	"github.com/yndnr/forkmesh-go/internal/telemetry/metric"
	"github.com/yndnr/forkmesh-go/pkg/solana"
)

// emptyRemote knows no accounts.
type emptyRemote struct {
	healthErr error
}

func (emptyRemote) FetchAccount(context.Context, solana.Pubkey) (*domain.Account, error) {
	return nil, service.ErrAccountNotFound
}

func (r emptyRemote) Health(context.Context) error {
	return r.healthErr
}

type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, remote emptyRemote) (http.Handler, *metric.Registry) {
	t.Helper()
	log, _ := newTestLogger(t)
	reg := metric.NewRegistry()
	forks := service.NewForkService(memory.New(), remote, svm.Factory(),
		service.WithLogger(log), service.WithRecorder(reg))

	cfg := DefaultRouterConfig()
	cfg.ForkService = forks
	cfg.Remote = remote
	cfg.Metrics = reg
	cfg.Logger = log
	return NewRouter(cfg), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func TestRouter_ForkLifecycle(t *testing.T) {
	h, _ := newTestRouter(t, emptyRemote{})

	rec, env := do(t, h, http.MethodPost, "/fork/create", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	if env.RequestID == "" || env.RequestID != rec.Header().Get(HeaderRequestID) {
		t.Errorf("request id mismatch: body %q header %q", env.RequestID, rec.Header().Get(HeaderRequestID))
	}
	var info domain.ForkInfo
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("decode fork: %v", err)
	}
	if !domain.ValidForkID(info.ID) {
		t.Fatalf("fork id %q is not valid", info.ID)
	}

	rec, _ = do(t, h, http.MethodGet, "/fork/"+info.ID, "")
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, "/forks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal(env.Data, &list)
	if list.Total != 1 {
		t.Errorf("total = %d, want 1", list.Total)
	}

	rec, _ = do(t, h, http.MethodGet, "/fork/"+info.ID+"/transactions", "")
	if rec.Code != http.StatusOK {
		t.Errorf("transactions status = %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPost, "/fork/"+info.ID+"/revoke", "")
	if rec.Code != http.StatusOK {
		t.Errorf("revoke status = %d", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, "/fork/"+info.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after revoke status = %d, want 404", rec.Code)
	}
	if env.Code != "FM-FORK-4040" {
		t.Errorf("code = %q, want FM-FORK-4040", env.Code)
	}
}

func TestRouter_RPC(t *testing.T) {
	h, _ := newTestRouter(t, emptyRemote{})

	_, env := do(t, h, http.MethodPost, "/fork/create", "")
	var info domain.ForkInfo
	_ = json.Unmarshal(env.Data, &info)

	addr := solana.SystemProgramID.String()
	rec, _ := do(t, h, http.MethodPost, "/fork/"+info.ID+"/rpc",
		`{"jsonrpc":"2.0","id":1,"method":"set_balance","params":{"address":"`+addr+`","lamports":5000000000}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rpc status = %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPost, "/fork/"+info.ID+"/rpc",
		`{"jsonrpc":"2.0","id":2,"method":"getBalance","params":["`+addr+`"]}`)
	var resp struct {
		ID     int    `json:"id"`
		Result uint64 `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode rpc: %v", err)
	}
	if resp.ID != 2 || resp.Result != 5000000000 {
		t.Errorf("response = %+v, want id 2 result 5e9", resp)
	}
}

func TestRouter_HealthAndReady(t *testing.T) {
	h, _ := newTestRouter(t, emptyRemote{})
	if rec, _ := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}

	down, _ := newTestRouter(t, emptyRemote{healthErr: errors.New("node behind")})
	rec, env := do(t, down, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
	if env.Code != "FM-SYS-5030" {
		t.Errorf("code = %q, want FM-SYS-5030", env.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, emptyRemote{})
	do(t, h, http.MethodPost, "/fork/create", "")
	do(t, h, http.MethodGet, "/fork/fork-missing", "")

	rec, _ := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"forkmesh_forks_created_total 1",
		`forkmesh_http_requests_total{method="POST",path="/fork/create",status="201"} 1`,
		`forkmesh_http_requests_total{method="GET",path="/fork/{id}",status="404"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRouter_AdminGC(t *testing.T) {
	h, _ := newTestRouter(t, emptyRemote{})
	do(t, h, http.MethodPost, "/fork/create", "")

	rec, env := do(t, h, http.MethodPost, "/admin/v1/gc/trigger", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("gc status = %d", rec.Code)
	}
	var gc struct {
		Evicted     int `json:"evicted"`
		ActiveForks int `json:"active_forks"`
	}
	_ = json.Unmarshal(env.Data, &gc)
	if gc.Evicted != 0 || gc.ActiveForks != 1 {
		t.Errorf("gc = %+v, want nothing evicted and one active fork", gc)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	h, _ := newTestRouter(t, emptyRemote{})
	if rec, _ := do(t, h, http.MethodGet, "/sessions", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodDelete, "/fork/create", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestDefaultRouterConfig(t *testing.T) {
	cfg := DefaultRouterConfig()
	if cfg == nil {
		t.Fatal("DefaultRouterConfig returned nil")
	}
	if cfg.GlobalRateLimit <= 0 {
		t.Error("GlobalRateLimit should be positive")
	}
	if !cfg.EnableAudit {
		t.Error("EnableAudit should default to true")
	}
}
