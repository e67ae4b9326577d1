package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yndnr/forkmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/forkmesh-go/internal/infra/tlsroots"
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
)

// Defaults for Config fields left zero.
const (
	DefaultURL             = "https://api.mainnet-beta.solana.com"
	DefaultCommitment      = "confirmed"
	DefaultTimeout         = 10 * time.Second
	DefaultMaxRetries      = 2
	DefaultRetryBase       = 200 * time.Millisecond
	DefaultRateLimit       = 8
	DefaultRateBurst       = 4
	DefaultBreakerFailures = 5
	DefaultBreakerOpen     = 30 * time.Second

	maxRetryDelay    = 5 * time.Second
	maxResponseBytes = 16 << 20
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("rpcclient: remote ledger circuit open")

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpcclient: rpc error %d: %s", e.Code, e.Message)
}

// StatusError is a non-200 HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("rpcclient: http status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Config configures a Client.
type Config struct {
	URL        string
	Commitment string

	// Timeout bounds a single HTTP attempt.
	Timeout    time.Duration
	MaxRetries uint64
	RetryBase  time.Duration

	// RateLimit is outbound requests per second; RateBurst the bucket size.
	RateLimit float64
	RateBurst int

	// BreakerFailures consecutive failures open the breaker for BreakerOpen.
	BreakerFailures uint32
	BreakerOpen     time.Duration

	// RootCAs, when set, replaces the transport's trusted roots.
	RootCAs *tlsroots.Pool

	// HTTPClient overrides the default client. RootCAs is ignored when set.
	HTTPClient *http.Client

	Logger logger.Logger
}

func (c *Config) applyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Commitment == "" {
		c.Commitment = DefaultCommitment
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryBase <= 0 {
		c.RetryBase = DefaultRetryBase
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = DefaultRateBurst
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = DefaultBreakerFailures
	}
	if c.BreakerOpen <= 0 {
		c.BreakerOpen = DefaultBreakerOpen
	}
	if c.Logger == nil {
		c.Logger = logger.Default()
	}
}

// Client is a minimal Solana JSON-RPC client.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	nextID  atomic.Uint64
}

// New builds a client. Zero fields of cfg take their defaults, except
// MaxRetries where zero means a single attempt.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.RootCAs != nil {
			transport.TLSClientConfig = cfg.RootCAs.ClientConfig()
		}
		httpClient = &http.Client{Transport: transport}
	}

	c := &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "remote-ledger",
		Timeout: cfg.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			cfg.Logger.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// URL returns the node endpoint.
func (c *Client) URL() string {
	return c.cfg.URL
}

// Call performs one JSON-RPC call and decodes its result into out.
// RPC-level errors are *RPCError and count as breaker successes, since the
// node answered.
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	var rpcErr *RPCError
	raw, err := c.breaker.Execute(func() (interface{}, error) {
		result, err := c.callWithRetry(ctx, method, params)
		if errors.As(err, &rpcErr) {
			return nil, nil
		}
		return result, err
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s", ErrCircuitOpen, method)
	case err != nil:
		return err
	case rpcErr != nil:
		return rpcErr
	}

	result, _ := raw.(json.RawMessage)
	if out == nil || len(result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("rpcclient: decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) callWithRetry(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	backoff, err := retry.NewExponential(c.cfg.RetryBase)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: backoff: %w", err)
	}
	backoff = retry.WithMaxRetries(c.cfg.MaxRetries, retry.WithCappedDuration(maxRetryDelay, backoff))

	var (
		result  json.RawMessage
		attempt int
	)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var err error
		result, err = c.attempt(ctx, method, params)
		if err == nil || !retryable(ctx, err) {
			return err
		}
		c.cfg.Logger.Debug("remote call failed, retrying",
			"method", method, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	return result, err
}

// attempt sends one request, rate limited and bounded by the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rpcclient: rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("rpcclient: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rpcclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent("forkmesh"))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("rpcclient: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
	}

	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("rpcclient: decode response: %w", err)
	}
	if r.Error != nil {
		return nil, r.Error
	}
	return r.Result, nil
}

// retryable reports whether err is transient. The caller's own
// cancellation is final; a per-attempt timeout is not.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}
