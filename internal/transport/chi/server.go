// Package chi is the HTTP transport: routes, auth and JSON error mapping.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/domain"
	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/logger"
	"github.com/kailas-cloud/crudex/internal/query/page"
	"github.com/kailas-cloud/crudex/internal/version"
	healthuc "github.com/kailas-cloud/crudex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/crudex/internal/usecase/record"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements ServerInterface.
type Server struct {
	records       *recorduc.Service
	health        *healthuc.Service
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(records *recorduc.Service, health *healthuc.Service) *Server {
	s := &Server{
		records:      records,
		health:       health,
		maxBodyBytes: 2 * domrec.MaxSize,
	}
	s.errorHandlers = []errorHandler{
		queryErrorHandler,
		sentinelHandler(domain.ErrInvalidCollection, http.StatusBadRequest, ErrorResponseCodeValidationFailed, false),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, ErrorResponseCodeValidationFailed, false),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeRecordNotFound, true),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorResponseCodeRecordExists, true),
	}
	return s
}

// WithMaxBodyBytes limits request bodies.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

type healthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Version string                          `json:"version"`
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: report.Status, Checks: report.Checks, Version: version.Version})
}

// recordListResponse is the page envelope plus navigation links.
type recordListResponse struct {
	page.Envelope[domrec.Record]
	Links page.Links `json:"links"`
}

// ListRecords handles GET /collections/{collection}/records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request, collection string, params ListRecordsParams) {
	ctx := logger.With(r.Context(), zap.String("collection", collection))
	env, err := s.records.Query(ctx, collection, params.Request())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	base := &url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	writeJSON(w, http.StatusOK, recordListResponse{Envelope: env, Links: page.BuildLinks(base, env)})
}

// CreateRecord handles POST /collections/{collection}/records.
func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request, collection string) {
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	rec, err := s.records.Create(r.Context(), collection, body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/collections/%s/records/%s", collection, url.PathEscape(rec.ID())))
	writeJSON(w, http.StatusCreated, rec)
}

// GetRecord handles GET /collections/{collection}/records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request, collection, id string) {
	rec, err := s.records.Get(r.Context(), collection, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ReplaceRecord handles PUT /collections/{collection}/records/{id}.
func (s *Server) ReplaceRecord(w http.ResponseWriter, r *http.Request, collection, id string) {
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	rec, created, err := s.records.Replace(r.Context(), collection, id, body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/collections/%s/records/%s", collection, url.PathEscape(id)))
	}
	writeJSON(w, status, rec)
}

// DeleteRecord handles DELETE /collections/{collection}/records/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request, collection, id string) {
	if err := s.records.Delete(r.Context(), collection, id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (domrec.Record, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorResponseCodeBadRequest, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "failed to read request body")
		return nil, false
	}
	rec, err := domrec.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	return rec, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// queryErrorHandler returns the parser diagnostics to the client.
func queryErrorHandler(w http.ResponseWriter, err error) bool {
	var qe *domain.QueryError
	if !errors.As(err, &qe) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:        ErrorResponseCodeInvalidQuery,
		Message:     fmt.Sprintf("invalid %s expression", qe.Dialect),
		Dialect:     qe.Dialect,
		Diagnostics: qe.Diagnostics,
	})
	return true
}

// sentinelHandler maps sentinel to status. With terse set only the sentinel
// text reaches the client; validation errors keep their detail.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode, terse bool) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := err.Error()
		if terse {
			msg = sentinel.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	l := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			l.Warn("domain error", zap.Error(err))
			return
		}
	}
	l.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
