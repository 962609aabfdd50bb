package handlers

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag renders a resource view once, tags it with a weak
// validator over the rendered bytes and answers 304 when the client already
// holds that version. Board and workspace views embed their children, so
// the body hash changes whenever a nested task does even though the
// parent's updated_at does not.
func RespondJSONWithETag(ctx *gin.Context, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		RespondInternal(ctx, "Failed to render response")
		return
	}

	etag := viewETag(body)
	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "private, no-cache")

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func viewETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + base64.RawURLEncoding.EncodeToString(sum[:16]) + `"`
}

// etagMatches applies weak comparison to every candidate in an
// If-None-Match list.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	want := opaqueTag(etag)
	for candidate := range strings.SplitSeq(header, ",") {
		if opaqueTag(candidate) == want {
			return true
		}
	}
	return false
}

func opaqueTag(raw string) string {
	v := strings.TrimSpace(raw)
	v, _ = strings.CutPrefix(v, "W/")
	return v
}
