// Package llm talks to the chat-completion providers. Both providers take a system
// prompt plus a user prompt and return the model's text; callers decide whether that
// text is free-form chat or a JSON recipe.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/alchemorsel-mobile/backend/config"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/metrics"
)

// Roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one completion call
type Request struct {
	System  string
	User    string
	History []Message
	// JSON asks the provider for a single JSON object
	JSON bool
}

// Provider is a chat-completion backend
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// StatusError is a non-2xx provider response
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API request failed with status %d: %s", e.Provider, e.Code, e.Body)
}

// ErrEmptyResponse is returned when the provider answered without any content
var ErrEmptyResponse = errors.New("no response from API")

// client holds what both HTTP providers share
type client struct {
	name    string
	cfg     config.ProviderConfig
	http    *http.Client
	limiter *rate.Limiter
}

func newClient(name string, cfg config.ProviderConfig, hc *http.Client) client {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return client{name: name, cfg: cfg, http: hc, limiter: newLimiter(cfg.RequestsPerMinute)}
}

// newLimiter paces outgoing calls; rpm <= 0 means unlimited
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// post sends body as JSON and returns the response body of a 2xx reply
func (c *client) post(ctx context.Context, url string, body any, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limiter: %w", c.name, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to send request: %w", c.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", c.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Provider: c.name, Code: resp.StatusCode, Body: truncate(string(data), 512)}
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Registry holds the configured providers and knows the default one
type Registry struct {
	providers map[string]Provider
	def       string
}

// NewRegistry wraps every provider with logging and metrics
func NewRegistry(defaultName string, log *zap.Logger, providers ...Provider) (*Registry, error) {
	log = logger.OrNop(log).Named("llm")
	r := &Registry{providers: make(map[string]Provider, len(providers)), def: defaultName}
	for _, p := range providers {
		r.providers[p.Name()] = &instrumented{Provider: p, log: log}
	}
	if _, ok := r.providers[defaultName]; !ok {
		return nil, fmt.Errorf("default provider %q is not configured", defaultName)
	}
	return r, nil
}

// Get returns the named provider, or the default for ""
func (r *Registry) Get(name string) (Provider, error) {
	if name == "" {
		name = r.def
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

// Default returns the name of the default provider
func (r *Registry) Default() string { return r.def }

// Names lists the configured providers
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type instrumented struct {
	Provider
	log *zap.Logger
}

func (p *instrumented) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := p.Provider.Complete(ctx, req)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		p.log.Warn("completion failed",
			zap.String("provider", p.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		p.log.Debug("completion",
			zap.String("provider", p.Name()),
			zap.Bool("json", req.JSON),
			zap.Int("response_bytes", len(out)),
			zap.Duration("elapsed", elapsed))
	}
	metrics.ObserveLLMCall(p.Name(), outcome, elapsed.Seconds())
	return out, err
}
