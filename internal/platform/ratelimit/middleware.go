package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"plantid_backend/internal/api"
	"plantid_backend/internal/platform/http/middleware"
	jwtmw "plantid_backend/internal/platform/jwt"
)

// KeyFunc はリクエストを制限単位のキーに変換します。
type KeyFunc func(c *gin.Context) string

// ClientKey は認証済みならクライアント名、未認証なら接続元IPをキーにします。
func ClientKey(c *gin.Context) string {
	if id := jwtmw.ClientID(c); id != "" {
		return "client:" + id
	}
	return "ip:" + c.ClientIP()
}

// Middleware は上限を超えたリクエストを429で拒否するGinミドルウェアを返します。
// Limiterがエラーを返した場合は警告を出してリクエストを通します。
func Middleware(l Limiter, keyFn KeyFunc) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = ClientKey
	}
	return func(c *gin.Context) {
		key := keyFn(c)
		d, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request",
				"request_id", middleware.RequestID(c), "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			slog.Info("rate limit exceeded", "request_id", middleware.RequestID(c), "key", key, "retry_after", retry)

			category := "rate_limited"
			resp := api.ErrorResponse{
				Error:    "Too many requests. Please wait a moment before trying again.",
				Category: &category,
			}
			if id := middleware.RequestID(c); id != "" {
				resp.RequestId = &id
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, resp)
			return
		}
		c.Next()
	}
}
