package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rishi7822/Finalproject/internal/handler"
	"github.com/rishi7822/Finalproject/internal/handler/response"
	"github.com/rishi7822/Finalproject/pkg/errno"
	"github.com/rishi7822/Finalproject/pkg/logger"
	"github.com/rishi7822/Finalproject/pkg/monitor"
	"github.com/rishi7822/Finalproject/pkg/ratelimit"
	"github.com/rishi7822/Finalproject/pkg/validator"
)

// RouterDeps are the collaborators of the HTTP router.
type RouterDeps struct {
	Session  handler.SessionService
	Registry *prometheus.Registry
	Limiter  *ratelimit.MapLimiter // nil disables rate limiting
	Logger   *zap.Logger
}

// NewHTTPRouter initializes and returns a gin Engine
func NewHTTPRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.Log
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	validator.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(monitor.NewHTTPMetrics(deps.Registry).PrometheusMiddleware())
	handler.LoadTemplates(r)

	r.GET("/health", handler.HealthCheck(deps.Session))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	limited := ratelimit.Middleware(deps.Limiter, response.TooManyRequests)
	h := handler.NewSessionHandler(deps.Session)

	// single page
	r.GET("/", h.Page)
	r.POST("/connect", limited, h.ConnectForm)
	r.POST("/transfer", limited, h.TransferForm)

	api := r.Group("/api/v1")
	{
		api.GET("/session", h.GetSession)
		api.POST("/session/connect", limited, h.Connect)
		api.POST("/session/balance/refresh", limited, h.RefreshBalance)
		api.POST("/transfer", limited, h.Transfer)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Response{
			Code:    errno.ErrNotFound.Code,
			Message: errno.ErrNotFound.Message,
			Data:    gin.H{},
		})
	})

	return r
}
