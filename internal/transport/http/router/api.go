package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"store-rating/internal/core/config"
	"store-rating/internal/core/server"
	"store-rating/internal/service"
	httpez "store-rating/internal/transport/http/ez"
	mdw "store-rating/internal/transport/http/middleware"
	resp "store-rating/internal/transport/http/response"
)

type Limits struct {
	RPS            float64
	Burst          int
	MaxConcurrent  int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

func LimitsFromConfig(a config.App) Limits {
	return Limits{
		RPS:            a.RateLimit.RPS,
		Burst:          a.RateLimit.Burst,
		MaxConcurrent:  a.MaxConcurrent,
		MaxBodyBytes:   a.MaxBodyBytes,
		RequestTimeout: time.Duration(a.RequestTimeoutSec) * time.Second,
	}
}

type Deps struct {
	Log      *zap.Logger
	Resolver mdw.Resolver
	Auth     *service.AuthService
	Users    *service.UserService
	Stores   *service.StoreService
	Ratings  *service.RatingService
	// Ping 健康检查探测存储，可为 nil
	Ping        func(ctx context.Context) error
	Limits      Limits
	CORSOrigins []string
	Dev         bool
}

func NewAPIEngine(d Deps) *gin.Engine {
	httpez.RegisterValidators()
	r := server.NewRouter(d.CORSOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		mdw.RateLimit(rate.Limit(d.Limits.RPS), d.Limits.Burst),
		mdw.ConcurrencyLimit(d.Limits.MaxConcurrent),
		mdw.MaxBodyBytes(d.Limits.MaxBodyBytes),
		mdw.Timeout(d.Limits.RequestTimeout),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.Error(http.StatusServiceUnavailable, "database unavailable"))
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"status": "ok"}))
	})
	r.GET("/metrics", mdw.MetricsHandler())

	// 前缀
	api := httpez.New(r.Group("/api"), d.Resolver, d.Log, d.Dev)

	mountAuth(api.Group("/auth"), d.Auth, d.Limits)
	mountRatings(api.Group("/ratings"), d.Ratings)
	mountStores(api.Group("/stores"), d.Stores)
	mountUsers(api.Group("/users"), d.Users)
	return r
}

type msgOut struct {
	Message string `json:"message"`
}

const perIPBurst = 20

// perIPRate 单 IP 取全局速率的十分之一，至少 1 rps
func perIPRate(l Limits) rate.Limit {
	r := l.RPS / 10
	if r < 1 {
		r = 1
	}
	return rate.Limit(r)
}
