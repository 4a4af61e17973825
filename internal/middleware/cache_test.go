package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	raw, err := encodePayload(http.StatusOK, hdr, []byte(`[{"id":1}]`))
	if err != nil {
		t.Fatal(err)
	}
	status, gotHdr, body, ok := decodePayload(raw)
	if !ok || status != http.StatusOK || string(body) != `[{"id":1}]` || gotHdr.Get("Content-Type") != "application/json" {
		t.Fatalf("decode = %d %v %q %v", status, gotHdr, body, ok)
	}
	if _, _, _, ok := decodePayload(raw[:5]); ok {
		t.Fatal("short payload accepted")
	}
}

func TestCacheKeyDistinguishesPaths(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "club:cache", KeyStrategy: "route_query"}
	e := echo.New()
	key := func(path string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		c.SetPath("/v1/events/:id")
		return cacheKeyFrom(cfg, c)
	}
	if key("/v1/events/1") == key("/v1/events/2") {
		t.Fatal("different events share a cache key")
	}
	if key("/v1/events/1") != key("/v1/events/1") {
		t.Fatal("cache key not stable")
	}
}

func TestDisabledCacheIsPassThrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	if err := rc.Purge(context.Background()); err != nil {
		t.Fatalf("Purge without redis: %v", err)
	}
	e := echo.New()
	e.GET("/v1/events", func(c echo.Context) error { return c.String(http.StatusOK, "fresh") }, rc.Middleware())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	if rec.Body.String() != "fresh" || rec.Header().Get("X-Cache") != "" {
		t.Fatalf("body=%q x-cache=%q", rec.Body, rec.Header().Get("X-Cache"))
	}
}
