// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the referralflow service.
package api

import (
	"fmt"
	"net/http"
	"time"

	"referralflow/internal/api/handler/v1handler"
	"referralflow/internal/api/specs"
	"referralflow/internal/api/specs/v1specs"
	"referralflow/internal/config"
	"referralflow/pkg/controller"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// DefaultRequestTimeout applies when Options.RequestTimeout is zero.
const DefaultRequestTimeout = 30 * time.Second

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// SecHandlerOptions configures bearer authentication for v1 ingestion routes.
	SecHandlerOptions *v1handler.SecHandlerOptions

	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string
	// RateLimit is the sustained per-IP request rate on /api routes. Zero disables limiting.
	RateLimit float64
	// RateBurst is the per-IP burst on /api routes.
	RateBurst int
	// TrustedProxies lists proxy addresses or CIDRs whose forwarding headers
	// identify the client for rate limiting.
	TrustedProxies []string
	// MaxBodyBytes caps request bodies on /api routes.
	MaxBodyBytes int64
	// Gatherer provides the metrics served at MetricsPath. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SecHandlerOptions: v1handler.NewSecHandlerOptions(cfg),

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		RateLimit:         cfg.HTTP.RateLimit,
		RateBurst:         cfg.HTTP.RateBurst,
		TrustedProxies:    cfg.HTTP.TrustedProxies,
		MaxBodyBytes:      cfg.HTTP.MaxUploadBytes,
	}
}

type Deps struct {
	v1handler.Deps
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - v1 ingestion routes, rate limited per client IP, and the health check
// - pprof endpoints for profiling
// It also wraps the mux with CORS and logging middlewares and applies a request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	mux := http.NewServeMux()

	// prometheus metrics server
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	mux.Handle("GET "+metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// v1 specs file
	mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(specs.V1)
	})
	// v1 api swagger playground
	mux.Handle("/v1/docs/", v5emb.New(
		"Referral Flow",
		"/specs/v1.yaml",
		"/v1/docs/",
	))

	// v1 api
	secHandler, err := v1handler.NewSecHandler(opts.SecHandlerOptions)
	if err != nil {
		return nil, fmt.Errorf("could not create sec handler: %w", err)
	}
	deps.RequireAuth = secHandler.Enabled()
	v1Srv, err := v1specs.NewServer(v1handler.New(deps.Deps), secHandler, v1handler.ServerOptions()...)
	if err != nil {
		return nil, fmt.Errorf("could not create v1 server: %w", err)
	}

	var limiter *controller.RateLimiter
	if opts.RateLimit > 0 {
		limiter = controller.NewRateLimiter(opts.RateLimit, opts.RateBurst)
		if err = limiter.TrustProxies(opts.TrustedProxies); err != nil {
			return nil, fmt.Errorf("could not configure rate limiter: %w", err)
		}
	}
	mux.Handle("/api/", controller.WithRateLimit(limiter, controller.WithBodyLimit(opts.MaxBodyBytes, v1Srv)))
	mux.Handle(v1handler.HealthPath, v1Srv)

	// pprof
	mux.Handle(controller.PprofPrefix, controller.PprofMux())

	// cors
	handler := controller.WithCORS(opts.CORSOrigins, mux)

	// logger
	handler = controller.WithLogger(handler)

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           http.TimeoutHandler(handler, requestTimeout, `{"code":"TIMEOUT","message":"request timed out"}`),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}
