package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portfolio/internal/contact"
	"portfolio/internal/engine"
	"portfolio/internal/repo"
)

// Config for the HTTP handler.
type Config struct {
	Engine engine.Engine
	Auth   AuthConfig
	Logger *slog.Logger
	// Registry receives the server metrics and backs /metrics. A fresh
	// registry is created when nil.
	Registry *prometheus.Registry
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
	Now        func() time.Time
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"invalid_contact"`
	Message string         `json:"message" example:"missing fields: email"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

type requestKey struct{}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

type handlerDeps struct {
	engine  engine.Engine
	logger  *slog.Logger
	limiter *rateLimiter
	metrics *serverMetrics
	now     func() time.Time
}

// New returns an HTTP handler exposing the portfolio page and API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Engine.Config == nil {
		return nil, errors.New("server: engine config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Auth.Logger == nil {
		cfg.Auth.Logger = logger
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	contactCfg := cfg.Engine.Config.Server.Contact
	limiter := newRateLimiter(contactCfg.RatePerMinute/60, contactCfg.Burst, 10*time.Minute)
	metrics, err := newServerMetrics(reg, limiter)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	deps := handlerDeps{
		engine:  cfg.Engine,
		logger:  logger,
		limiter: limiter,
		metrics: metrics,
		now:     now,
	}

	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors should be 400 bad_request
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	if cfg.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(middleware.Recoverer)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Use(newAuthMiddleware(inboxPrefix, cfg.Auth))

	hcfg := huma.DefaultConfig("Portfolio API", "1.0.0")
	hcfg.OpenAPIPath = "/api/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)

	registerPage(router, cfg.Engine.Config.Site)
	registerDocs(router)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	registerHealth(api)
	registerContact(api, deps)
	registerContent(api, deps)
	registerInbox(api, deps)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var ve *contact.ValidationError
	if errors.As(err, &ve) {
		fields := make([]string, len(ve.Fields))
		for i, f := range ve.Fields {
			fields[i] = string(f)
		}
		return newAPIError(http.StatusBadRequest, "invalid_contact", err.Error(), map[string]any{"reason": ve.Reason, "fields": fields})
	}
	var tl engine.TooLongError
	if errors.As(err, &tl) {
		return newAPIError(http.StatusBadRequest, "message_too_long", err.Error(), map[string]any{"limit": tl.Limit})
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	lowered := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required"):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func requestFromContext(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestKey{}).(*http.Request)
	return r
}

// clientAddr is the host part of the request's remote address.
func clientAddr(ctx context.Context) string {
	r := requestFromContext(ctx)
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userAgent(ctx context.Context) string {
	if r := requestFromContext(ctx); r != nil {
		return r.UserAgent()
	}
	return ""
}

func registerDocs(r chi.Router) {
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML)
	})
}

const swaggerHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Portfolio API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '/api/openapi.json',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Inbox endpoints need Authorization: Bearer &lt;token&gt; (see folio token).
    </p>
  </body>
</html>`

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}
