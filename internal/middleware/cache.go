package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// ResponseCache memoizes GET responses for reference data that changes
// rarely (clinics, professionals). Entries expire on a short TTL, so
// writes never need to invalidate explicitly.
type ResponseCache struct {
	store *cache.Cache
}

type ResponseCacheConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func DefaultResponseCacheConfig() ResponseCacheConfig {
	return ResponseCacheConfig{
		TTL:             30 * time.Second,
		CleanupInterval: 5 * time.Minute,
	}
}

func NewResponseCache(config ResponseCacheConfig) *ResponseCache {
	return &ResponseCache{
		store: cache.New(config.TTL, config.CleanupInterval),
	}
}

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Cache serves cached GET responses and captures cacheable ones.
func (rc *ResponseCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if entry, found := rc.store.Get(key); found {
			cached := entry.(cachedResponse)
			c.Header("X-Cache", "HIT")
			c.Data(cached.status, cached.contentType, cached.body)
			c.Abort()
			return
		}

		w := &captureWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w
		c.Header("X-Cache", "MISS")

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			rc.store.SetDefault(key, cachedResponse{
				status:      c.Writer.Status(),
				contentType: c.Writer.Header().Get("Content-Type"),
				body:        w.body.Bytes(),
			})
		}
	}
}
