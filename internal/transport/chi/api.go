package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/crudex/internal/query/page"
)

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInvalidQuery       ErrorResponseCode = "invalid_query"
	ErrorResponseCodeValidationFailed   ErrorResponseCode = "validation_failed"
	ErrorResponseCodeRecordNotFound     ErrorResponseCode = "record_not_found"
	ErrorResponseCodeRecordExists       ErrorResponseCode = "record_already_exists"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
	ErrorResponseCodeServiceUnavailable ErrorResponseCode = "service_unavailable"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code        ErrorResponseCode `json:"code"`
	Message     string            `json:"message"`
	Dialect     string            `json:"dialect,omitempty"`
	Diagnostics []string          `json:"diagnostics,omitempty"`
}

// ListRecordsParams are the query parameters of GET /collections/{collection}/records.
type ListRecordsParams struct {
	Filter   *string `json:"filter,omitempty"`
	Sort     *string `json:"sort,omitempty"`
	Page     *string `json:"page,omitempty"`
	PageSize *string `json:"pageSize,omitempty"`
}

// Request converts the bound parameters into a page request.
func (p ListRecordsParams) Request() page.Request {
	return page.Request{
		Filter:   deref(p.Filter),
		Sort:     deref(p.Sort),
		Page:     deref(p.Page),
		PageSize: deref(p.PageSize),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ServerInterface lists every API operation.
type ServerInterface interface {
	// (GET /health)
	Health(w http.ResponseWriter, r *http.Request)
	// (GET /collections/{collection}/records)
	ListRecords(w http.ResponseWriter, r *http.Request, collection string, params ListRecordsParams)
	// (POST /collections/{collection}/records)
	CreateRecord(w http.ResponseWriter, r *http.Request, collection string)
	// (GET /collections/{collection}/records/{id})
	GetRecord(w http.ResponseWriter, r *http.Request, collection, id string)
	// (PUT /collections/{collection}/records/{id})
	ReplaceRecord(w http.ResponseWriter, r *http.Request, collection, id string)
	// (DELETE /collections/{collection}/records/{id})
	DeleteRecord(w http.ResponseWriter, r *http.Request, collection, id string)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si on the base router, binding path and query
// parameters before dispatch.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	router := options.BaseRouter
	if router == nil {
		router = chi.NewRouter()
	}
	errorHandler := options.ErrorHandlerFunc
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	b := binder{onError: errorHandler}

	router.Get("/health", si.Health)
	router.Get("/collections/{collection}/records", func(w http.ResponseWriter, r *http.Request) {
		collection, ok := b.path(w, r, "collection")
		if !ok {
			return
		}
		var params ListRecordsParams
		for name, dest := range map[string]**string{
			"filter":   &params.Filter,
			"sort":     &params.Sort,
			"page":     &params.Page,
			"pageSize": &params.PageSize,
		} {
			if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
				errorHandler(w, r, fmt.Errorf("invalid format for parameter %s: %w", name, err))
				return
			}
		}
		si.ListRecords(w, r, collection, params)
	})
	router.Post("/collections/{collection}/records", func(w http.ResponseWriter, r *http.Request) {
		if collection, ok := b.path(w, r, "collection"); ok {
			si.CreateRecord(w, r, collection)
		}
	})
	router.Get("/collections/{collection}/records/{id}", b.withRecord(si.GetRecord))
	router.Put("/collections/{collection}/records/{id}", b.withRecord(si.ReplaceRecord))
	router.Delete("/collections/{collection}/records/{id}", b.withRecord(si.DeleteRecord))
	return router
}

type binder struct {
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

func (b binder) path(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		b.onError(w, r, fmt.Errorf("invalid format for parameter %s: %w", name, err))
		return "", false
	}
	return v, true
}

func (b binder) withRecord(h func(http.ResponseWriter, *http.Request, string, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collection, ok := b.path(w, r, "collection")
		if !ok {
			return
		}
		id, ok := b.path(w, r, "id")
		if !ok {
			return
		}
		h(w, r, collection, id)
	}
}
