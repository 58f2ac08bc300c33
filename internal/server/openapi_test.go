package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHandleOpenAPI(t *testing.T) {
	h := handleOpenAPI()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("content-type = %q, want application/json", got)
	}

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		t.Fatalf("openapi = %q, want 3.x", doc.OpenAPI)
	}

	for path, method := range map[string]string{
		"/healthz":                                    "get",
		"/api/auth/register":                          "post",
		"/api/puzzles/{id}/questions":                 "post",
		"/api/puzzles/{id}/guesses":                   "post",
		"/api/rooms/{code}/questions/{qid}/verdict":   "put",
		"/api/rooms/{code}/events":                    "get",
		"/api/rooms/{code}/questions/{qid}/reanalyze": "post",
		"/api/rooms/{code}/ws":                        "get",
		"/api/users/{id}/stats":                       "get",
	} {
		if _, ok := doc.Paths[path][method]; !ok {
			t.Errorf("spec missing %s %s", strings.ToUpper(method), path)
		}
	}
}

func TestOpenAPIDocumentsEveryOperation(t *testing.T) {
	spec, err := newOpenAPISpec()
	if err != nil {
		t.Fatalf("newOpenAPISpec: %v", err)
	}

	for _, o := range apiOperations() {
		item, ok := spec.Paths.MapOfPathItemValues[o.path]
		if !ok {
			t.Errorf("spec missing path %s", o.path)
			continue
		}
		if _, ok := item.MapOfOperationValues[strings.ToLower(o.method)]; !ok {
			t.Errorf("spec missing %s %s", o.method, o.path)
		}
	}
}

func TestOpenAPICoversRouter(t *testing.T) {
	ts := newTestServer(t)

	documented := map[string]bool{}
	for _, o := range apiOperations() {
		documented[o.method+" "+o.path] = true
	}

	err := chi.Walk(ts.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, "/api/") {
			return nil
		}
		route = strings.TrimSuffix(route, "/")
		if !documented[method+" "+route] {
			t.Errorf("route %s %s is not documented", method, route)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}

func TestSwaggerUI(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/docs/", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/html") {
		t.Fatalf("content-type = %q, want text/html", got)
	}
	if body := rec.Body.String(); !strings.Contains(body, "/openapi.json") {
		t.Fatalf("body missing /openapi.json")
	}
}
