package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/saulo-duarte/examgate-lambda/docs"
	"github.com/saulo-duarte/examgate-lambda/internal/router"
)

func TestSwaggerDocument(t *testing.T) {
	r := router.New(router.RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	if _, ok := doc.Paths["/attempts/start"]; !ok {
		t.Errorf("expected /attempts/start in %v", doc.Paths)
	}
}

func TestHealth(t *testing.T) {
	r := router.New(router.RouterConfig{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
