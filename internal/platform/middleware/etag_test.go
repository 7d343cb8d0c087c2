package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func serveWithETag(t *testing.T, ifNoneMatch string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims?page=2", nil)
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}
	rec := httptest.NewRecorder()
	if err := ETag(60)(handler)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestETag_SetsHeaders(t *testing.T) {
	rec := serveWithETag(t, "", func(c echo.Context) error {
		return c.String(http.StatusOK, "rows")
	})

	if rec.Header().Get("ETag") == "" {
		t.Error("expected ETag header")
	}
	if got := rec.Header().Get("Cache-Control"); got != "private, max-age=60" {
		t.Errorf("unexpected Cache-Control %q", got)
	}
	if rec.Body.String() != "rows" {
		t.Errorf("expected body to be flushed, got %q", rec.Body.String())
	}
}

func TestETag_NotModified(t *testing.T) {
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "rows") }
	first := serveWithETag(t, "", handler)

	second := serveWithETag(t, first.Header().Get("ETag"), handler)
	if second.Code != http.StatusNotModified {
		t.Errorf("expected 304, got %d", second.Code)
	}
	if second.Body.Len() != 0 {
		t.Error("expected empty body on 304")
	}
}

func TestETag_SkipsNonOKResponses(t *testing.T) {
	rec := serveWithETag(t, "", func(c echo.Context) error {
		return c.String(http.StatusServiceUnavailable, "loading")
	})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("expected no ETag on a non-200 response")
	}
}

func TestETagMatch(t *testing.T) {
	etag := computeETag([]byte("x"))
	if !etagMatch(`"nope", `+etag, etag) {
		t.Error("expected match in a list")
	}
	if !etagMatch("*", etag) {
		t.Error("expected wildcard to match")
	}
	if etagMatch(`"other"`, etag) {
		t.Error("expected no match")
	}
}
