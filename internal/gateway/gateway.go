// Package gateway implements the Credential Gateway: a thin proxy that
// forwards opaque JSON bodies to the content provider and adds the provider
// credential, so clients never hold it.
package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/scry-lexicon/internal/api/middleware"
	"github.com/phrazzld/scry-lexicon/internal/api/shared"
	"github.com/phrazzld/scry-lexicon/internal/config"
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/redact"
)

// TargetHostHeader lets a client pick an allow-listed upstream host.
const TargetHostHeader = "X-Target-Host"

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the client used for upstream calls.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.verifier.now = now
		}
	}
}

// Gateway forwards client requests upstream.
type Gateway struct {
	upstream         *url.URL
	allowed          map[string]struct{}
	credentialHeader string
	apiKey           string
	maxBodyBytes     int64
	requireToken     bool
	verifier         *tokenVerifier
	client           *http.Client
	logger           *slog.Logger
}

// New creates a Gateway from cfg. The upstream host is always allowed.
func New(cfg config.GatewayConfig, log *slog.Logger, opts ...Option) (*Gateway, error) {
	if log == nil {
		log = slog.Default()
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil || upstream.Host == "" {
		return nil, fmt.Errorf("%w: upstream url %q", ErrInvalidConfig, cfg.UpstreamURL)
	}
	if cfg.CredentialHeader == "" {
		return nil, fmt.Errorf("%w: credential header cannot be empty", ErrInvalidConfig)
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("%w: max body bytes must be positive", ErrInvalidConfig)
	}

	allowed := map[string]struct{}{strings.ToLower(upstream.Host): {}}
	for _, host := range cfg.AllowedHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			allowed[host] = struct{}{}
		}
	}

	g := &Gateway{
		upstream:         upstream,
		allowed:          allowed,
		credentialHeader: http.CanonicalHeaderKey(cfg.CredentialHeader),
		apiKey:           cfg.APIKey,
		maxBodyBytes:     cfg.MaxBodyBytes,
		requireToken:     cfg.ClientSecret != "",
		verifier: &tokenVerifier{
			key:       []byte(cfg.ClientSecret),
			clockSkew: 30 * time.Second,
			now:       time.Now,
		},
		client: &http.Client{Timeout: 60 * time.Second},
		logger: log.With(slog.String("component", "credential_gateway")),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.apiKey == "" {
		g.logger.Warn("no provider credential configured, requests are forwarded without one")
	}

	return g, nil
}

// Handler returns the gateway's HTTP routes.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(g.logger))

	r.Group(func(r chi.Router) {
		if g.requireToken {
			r.Use(g.authenticate)
		}
		r.Post("/forward/*", g.forward)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}

// forwardPath joins the client's path onto the upstream base path. The
// result must stay under the base path once dot segments are resolved.
func (g *Gateway) forwardPath(suffix string) (string, error) {
	base := strings.TrimSuffix(g.upstream.Path, "/")
	joined := path.Clean(base + "/" + strings.TrimPrefix(suffix, "/"))

	if joined != base && !strings.HasPrefix(joined, base+"/") {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, suffix)
	}
	if strings.HasSuffix(suffix, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined, nil
}

// targetURL builds the upstream URL for a forwarded request.
func (g *Gateway) targetURL(r *http.Request) (*url.URL, error) {
	host := g.upstream.Host
	if requested := strings.TrimSpace(r.Header.Get(TargetHostHeader)); requested != "" {
		if _, ok := g.allowed[strings.ToLower(requested)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, requested)
		}
		host = requested
	}

	forwardPath, err := g.forwardPath(chi.URLParam(r, "*"))
	if err != nil {
		return nil, err
	}

	target := *g.upstream
	target.Host = host
	target.Path = forwardPath
	target.RawPath = ""
	target.RawQuery = r.URL.RawQuery
	return &target, nil
}

func (g *Gateway) forward(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), g.logger)

	target, err := g.targetURL(r)
	switch {
	case errors.Is(err, ErrPathNotAllowed):
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid forward path", err,
			shared.WithElevatedLogLevel())
		return
	case err != nil:
		shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, "Target host not allowed", err,
			shared.WithElevatedLogLevel())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, g.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !json.Valid(body) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Request body must be JSON", ErrInvalidBody)
		return
	}

	upstreamReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to build upstream request", err)
		return
	}
	upstreamReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		upstreamReq.Header.Set(g.credentialHeader, g.apiKey)
	}

	start := time.Now()
	resp, err := g.client.Do(upstreamReq)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadGateway, "Upstream request failed", err)
		return
	}
	defer resp.Body.Close()

	log.Debug("forwarded request",
		slog.String("host", target.Host),
		slog.String("path", target.Path),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Warn("failed to copy upstream response", slog.String("error", redact.Error(err)))
	}
}
