package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func etagRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/view", func(ctx *gin.Context) {
		handlers.RespondJSONWithETag(ctx, gin.H{"id": 1, "name": "Sprint"})
	})
	return r
}

func TestRespondJSONWithETag(t *testing.T) {
	r := etagRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/view", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}
	if !strings.Contains(w.Body.String(), `"name":"Sprint"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	strong := strings.TrimPrefix(etag, "W/")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"same tag", etag, http.StatusNotModified},
		{"strong form of the tag", strong, http.StatusNotModified},
		{"in a list", `"other", ` + etag, http.StatusNotModified},
		{"wildcard", "*", http.StatusNotModified},
		{"stale tag", `W/"stale"`, http.StatusOK},
		{"blank", "  ", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/view", nil)
			req.Header.Set("If-None-Match", tt.header)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusNotModified && w.Body.Len() != 0 {
				t.Fatalf("304 must not carry a body")
			}
		})
	}
}
