package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/repository/memory"
	healthuc "github.com/kailas-cloud/crudex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/crudex/internal/usecase/record"
)

type listBody struct {
	Filter     string           `json:"filter"`
	Sort       string           `json:"sort"`
	Page       int64            `json:"page"`
	PageSize   int64            `json:"pageSize"`
	PageCount  int64            `json:"pageCount"`
	TotalCount int64            `json:"totalCount"`
	Items      []map[string]any `json:"items"`
	Links      struct {
		Self string `json:"self"`
		Prev string `json:"prev"`
		Next string `json:"next"`
		Last string `json:"last"`
	} `json:"links"`
}

func newTestAPI(t *testing.T, cfg RouterConfig) (http.Handler, *Server) {
	t.Helper()
	repo := memory.New()
	srv := NewServer(recorduc.New(repo), healthuc.New(repo, nil))
	return NewRouter(srv, cfg), srv
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

func seedFruit(t *testing.T, h http.Handler) {
	t.Helper()
	for _, body := range []string{
		`{"id":"a","name":"cherry","qty":3}`,
		`{"id":"b","name":"apple","qty":5}`,
		`{"id":"c","name":"Banana","qty":3}`,
		`{"id":"d","name":"date","qty":1}`,
	} {
		if rr := do(t, h, "POST", "/collections/fruit/records", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed: got %d: %s", rr.Code, rr.Body.String())
		}
	}
}

func TestRecordLifecycle(t *testing.T) {
	h, _ := newTestAPI(t, RouterConfig{})

	rr := do(t, h, "POST", "/collections/notes/records", `{"title":"hello"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rr.Code, rr.Body.String())
	}
	loc := rr.Header().Get("Location")
	if !strings.HasPrefix(loc, "/collections/notes/records/") {
		t.Fatalf("location = %q", loc)
	}

	rr = do(t, h, "GET", loc, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d", rr.Code)
	}
	var got map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["title"] != "hello" {
		t.Errorf("title = %v", got["title"])
	}

	if rr = do(t, h, "PUT", loc, `{"title":"bye"}`); rr.Code != http.StatusOK {
		t.Errorf("replace existing: got %d, want 200", rr.Code)
	}
	if rr = do(t, h, "PUT", "/collections/notes/records/fresh", `{}`); rr.Code != http.StatusCreated {
		t.Errorf("replace new: got %d, want 201", rr.Code)
	}
	if rr = do(t, h, "DELETE", loc, ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete: got %d, want 204", rr.Code)
	}
	rr = do(t, h, "GET", loc, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d, want 404", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorResponseCodeRecordNotFound || e.Message != "not found" {
		t.Errorf("error = %+v", e)
	}
}

func TestListRecords(t *testing.T) {
	h, _ := newTestAPI(t, RouterConfig{})
	seedFruit(t, h)

	q := url.Values{}
	q.Set("filter", "qty>=3")
	q.Set("sort", "name ASC")
	q.Set("pageSize", "2")
	rr := do(t, h, "GET", "/collections/fruit/records?"+q.Encode(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}

	var body listBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 3 || body.PageCount != 2 || body.Page != 1 {
		t.Errorf("envelope = %+v", body)
	}
	if len(body.Items) != 2 || body.Items[0]["name"] != "apple" || body.Items[1]["name"] != "Banana" {
		t.Errorf("items = %v", body.Items)
	}
	if body.Filter != "qty>=3" || body.Sort != "name ASC" {
		t.Errorf("echo filter=%q sort=%q", body.Filter, body.Sort)
	}
	if body.Links.Prev != "" {
		t.Errorf("prev = %q, want empty on first page", body.Links.Prev)
	}
	if !strings.Contains(body.Links.Next, "page=2") || !strings.Contains(body.Links.Next, "pageSize=2") {
		t.Errorf("next = %q", body.Links.Next)
	}
}

func TestListRecords_All(t *testing.T) {
	h, _ := newTestAPI(t, RouterConfig{})
	seedFruit(t, h)

	rr := do(t, h, "GET", "/collections/fruit/records?pageSize=ALL", "")
	var body listBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.PageSize != 4 || body.PageCount != 1 || len(body.Items) != 4 {
		t.Errorf("envelope = %+v", body)
	}
}

func TestListRecords_InvalidQuery(t *testing.T) {
	h, _ := newTestAPI(t, RouterConfig{})

	tests := []struct {
		name, param, value, dialect string
	}{
		{name: "filter", param: "filter", value: "foo ? 1", dialect: "filter"},
		{name: "sort", param: "sort", value: "name up", dialect: "sort"},
		{name: "regex", param: "filter", value: "name ~ '('", dialect: "filter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{tt.param: {tt.value}}
			rr := do(t, h, "GET", "/collections/fruit/records?"+q.Encode(), "")
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want 400", rr.Code)
			}
			e := decodeError(t, rr)
			if e.Code != ErrorResponseCodeInvalidQuery || e.Dialect != tt.dialect {
				t.Errorf("error = %+v", e)
			}
			if len(e.Diagnostics) == 0 {
				t.Error("expected diagnostics")
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	h, _ := newTestAPI(t, RouterConfig{})

	tests := []struct {
		name, method, target, body string
		want                       int
		code                       ErrorResponseCode
	}{
		{"bad collection", "GET", "/collections/Bad/records", "", http.StatusBadRequest, ErrorResponseCodeValidationFailed},
		{"bad json", "POST", "/collections/notes/records", `{"a":`, http.StatusBadRequest, ErrorResponseCodeBadRequest},
		{"array body", "POST", "/collections/notes/records", `[1]`, http.StatusBadRequest, ErrorResponseCodeBadRequest},
		{
			"id mismatch", "PUT", "/collections/notes/records/a", `{"id":"b"}`,
			http.StatusBadRequest, ErrorResponseCodeValidationFailed,
		},
		{"bad id", "GET", "/collections/notes/records/bad$id", "", http.StatusBadRequest, ErrorResponseCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.target, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
			if e := decodeError(t, rr); e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}

func TestCreate_Conflict(t *testing.T) {
	h, _ := newTestAPI(t, RouterConfig{})
	do(t, h, "POST", "/collections/notes/records", `{"id":"x"}`)
	rr := do(t, h, "POST", "/collections/notes/records", `{"id":"x"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("got %d, want 409", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorResponseCodeRecordExists {
		t.Errorf("code = %q", e.Code)
	}
}

func TestCreate_BodyTooLarge(t *testing.T) {
	h, srv := newTestAPI(t, RouterConfig{})
	srv.WithMaxBodyBytes(8)
	rr := do(t, h, "POST", "/collections/notes/records", `{"title":"far too long"}`)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got %d, want 413", rr.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestAPI(t, RouterConfig{APIKeys: []string{"k"}})

	rr := do(t, h, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("health: got %d", rr.Code)
	}
	var hr struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hr.Status != "ok" || hr.Checks["storage"] != "ok" {
		t.Errorf("health = %+v", hr)
	}

	if rr = do(t, h, "GET", "/metrics", ""); rr.Code != http.StatusOK {
		t.Errorf("metrics: got %d", rr.Code)
	}
	if rr = do(t, h, "GET", "/collections/notes/records", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated list: got %d, want 401", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorResponseCodeInternalError {
		t.Errorf("code = %q", e.Code)
	}
}
