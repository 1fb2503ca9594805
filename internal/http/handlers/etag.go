package handlers

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// weakETag builds W/"kind:<hash of key>:<count>:<unix of newest update>".
// The key is hashed so non-ASCII filter values stay out of the header.
func weakETag(kind, key string, count int64, newest *time.Time) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	var ts int64
	if newest != nil {
		ts = newest.Unix()
	}
	return fmt.Sprintf(`W/"%s:%x:%d:%d"`, kind, h.Sum64(), count, ts)
}

// notModified sets ETag and answers 304 when If-None-Match lists it.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	inm := c.GetHeader("If-None-Match")
	if inm == "" {
		return false
	}
	for _, v := range strings.Split(inm, ",") {
		if v = strings.TrimSpace(v); v == etag || v == "*" {
			c.Status(http.StatusNotModified)
			return true
		}
	}
	return false
}
