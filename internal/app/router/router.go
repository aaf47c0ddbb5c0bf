// Package router builds the gin engine and registers every route.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"plantid_backend/internal/api"
	identifyhandler "plantid_backend/internal/feature/identify/transport/handler"
	speciesnoteshandler "plantid_backend/internal/feature/speciesnotes/transport/handler"
	"plantid_backend/internal/platform/http/handler"
	"plantid_backend/internal/platform/http/middleware"
	jwtmw "plantid_backend/internal/platform/jwt"
	"plantid_backend/internal/platform/ratelimit"
)

// Options holds the cross-cutting settings of the HTTP surface.
type Options struct {
	CORSOrigins  []string                 // 空ならCORSヘッダーを付けない
	JWTSecret    string                   // 空なら /v1 は認証不要
	Limiter      ratelimit.Limiter        // nilならレート制限なし
	HealthChecks map[string]handler.Check // /healthz で確認する依存先
	Logger       *slog.Logger
}

// server は各フィーチャーのハンドラーをまとめて api.ServerInterface を満たします。
type server struct {
	*identifyhandler.IdentifyHandler
	*speciesnoteshandler.SpeciesNotesHandler
}

var _ api.ServerInterface = server{}

func NewRouter(opts Options, identify *identifyhandler.IdentifyHandler,
	notes *speciesnoteshandler.SpeciesNotesHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.AccessLog(opts.Logger))

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	health := handler.Health(opts.HealthChecks)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	// /v1 は認証（設定時）→ レート制限の順に通す
	v1 := r.Group("/")
	if opts.JWTSecret != "" {
		v1.Use(jwtmw.AuthRequired(opts.JWTSecret))
	}
	if opts.Limiter != nil {
		v1.Use(ratelimit.Middleware(opts.Limiter, ratelimit.ClientKey))
	}

	api.RegisterHandlersWithOptions(v1, server{identify, notes}, api.GinServerOptions{
		ErrorHandler: bindError,
	})
	return r
}

// bindError はクエリパラメータの形式エラーを共通のエラー形式で返します。
func bindError(c *gin.Context, err error, statusCode int) {
	category := "invalid_request"
	resp := api.ErrorResponse{Error: err.Error(), Category: &category}
	if id := middleware.RequestID(c); id != "" {
		resp.RequestId = &id
	}
	c.JSON(statusCode, resp)
}
