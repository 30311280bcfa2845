package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/search/request"
	"github.com/kailas-cloud/esmodel/internal/logger"
	"github.com/kailas-cloud/esmodel/internal/version"
	healthuc "github.com/kailas-cloud/esmodel/internal/usecase/health"
	searchuc "github.com/kailas-cloud/esmodel/internal/usecase/search"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest     = "bad_request"
	CodeUnauthorized   = "unauthorized"
	CodeModelNotFound  = "model_not_found"
	CodeNotSupported   = "not_supported"
	CodeEngineError    = "engine_error"
	CodeInternalError  = "internal_error"
	maxRequestBodySize = 1 << 20
)

// ErrorResponse is the JSON body of every non-2xx reply produced by the gateway.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

// SearchRequest is the body of POST /models/{model}/search.
// Query is either a JSON string (free text or raw JSON) or an object.
type SearchRequest struct {
	Query   json.RawMessage `json:"query"`
	Options map[string]any  `json:"options"`
}

// ScrollRequest is the body of POST /models/{model}/scroll.
type ScrollRequest struct {
	ScrollID string         `json:"scroll_id"`
	Options  map[string]any `json:"options"`
}

// ClearScrollRequest is the body of DELETE /scroll.
type ClearScrollRequest struct {
	ScrollID []string `json:"scroll_id"`
}

// errorHandler tries to handle an error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the search gateway on a chi router.
type Server struct {
	models        *searchuc.Registry
	scrolls       searchuc.ScrollClearer
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. scrolls can be nil, in which case
// DELETE /scroll replies 501.
func NewServer(
	models *searchuc.Registry,
	scrolls searchuc.ScrollClearer,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		models:  models,
		scrolls: scrolls,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		engineErrorHandler,
		sentinelHandler(domain.ErrModelNotFound, http.StatusNotFound, CodeModelNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(db.ErrScrollIDRequired, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(db.ErrEncodeBody, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrNotSupported, http.StatusNotImplemented, CodeNotSupported),
	}
	return s
}

// Routes mounts the gateway endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/models/{model}", func(r chi.Router) {
		r.Get("/search", s.SearchQueryString)
		r.Post("/search", s.SearchBody)
		r.Post("/scroll", s.Scroll)
	})
	r.Delete("/scroll", s.ClearScroll)
}

// SearchQueryString handles GET /models/{model}/search?q=...
// Every query parameter other than q becomes a request option.
func (s *Server) SearchQueryString(w http.ResponseWriter, r *http.Request) {
	m, err := s.models.Get(chi.URLParam(r, "model"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	values := r.URL.Query()
	var input any
	if values.Has(request.KeyQ) {
		input = values.Get(request.KeyQ)
		values.Del(request.KeyQ)
	}

	s.respond(w, r, searchuc.Search(m, input, optionsFromQuery(values)))
}

// SearchBody handles POST /models/{model}/search.
func (s *Server) SearchBody(w http.ResponseWriter, r *http.Request) {
	m, err := s.models.Get(chi.URLParam(r, "model"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req SearchRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	input, err := queryInput(req.Query)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.respond(w, r, searchuc.Search(m, input, req.Options))
}

// Scroll handles POST /models/{model}/scroll.
func (s *Server) Scroll(w http.ResponseWriter, r *http.Request) {
	m, err := s.models.Get(chi.URLParam(r, "model"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req ScrollRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.ScrollID) == "" {
		s.handleError(w, r, fmt.Errorf("%w: scroll_id is required", domain.ErrInvalidRequest))
		return
	}

	s.respond(w, r, searchuc.Scroll(m, req.ScrollID, req.Options))
}

// ClearScroll handles DELETE /scroll.
func (s *Server) ClearScroll(w http.ResponseWriter, r *http.Request) {
	if s.scrolls == nil {
		s.handleError(w, r, fmt.Errorf("clear scroll: %w", domain.ErrNotSupported))
		return
	}

	var req ClearScrollRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if len(req.ScrollID) == 0 {
		s.handleError(w, r, fmt.Errorf("%w: scroll_id is required", domain.ErrInvalidRequest))
		return
	}

	if err := s.scrolls.ClearScroll(r.Context(), req.ScrollID...); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// respond executes resp and writes the engine's raw reply.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, resp *searchuc.Response) {
	ctx := logger.With(r.Context(), zap.Stringer("definition", resp.Definition()))

	raw, err := resp.Raw(ctx)
	if err != nil {
		s.handleError(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// queryInput turns the "query" member into a builder input: a JSON string is
// passed as text (free text or raw JSON), anything else is passed verbatim.
func queryInput(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, fmt.Errorf("%w: query: %s", domain.ErrInvalidRequest, err.Error())
		}
		return text, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: query must be a string or an object", domain.ErrInvalidRequest)
	}
	return json.RawMessage(trimmed), nil
}

// optionsFromQuery maps URL parameters to options; repeated keys become lists.
func optionsFromQuery(values url.Values) request.Options {
	if len(values) == 0 {
		return nil
	}
	opts := make(request.Options, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			opts[k] = vs[0]
			continue
		}
		opts[k] = append([]string(nil), vs...)
	}
	return opts
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %s", domain.ErrInvalidRequest, err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// engineErrorHandler passes engine replies through with their own status.
func engineErrorHandler(w http.ResponseWriter, err error) bool {
	var re *db.ResponseError
	if !errors.As(err, &re) {
		return false
	}
	code := re.Type
	if code == "" {
		code = CodeEngineError
	}
	msg := re.Reason
	if msg == "" {
		msg = http.StatusText(re.Status)
	}
	writeError(w, re.Status, code, msg)
	return true
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			l.Warn("request failed", zap.Error(err))
			return
		}
	}
	s.logger.Error("engine request failed", zap.Error(err), zap.String("path", r.URL.Path))
	writeError(w, http.StatusBadGateway, CodeEngineError, "search engine unavailable")
}
