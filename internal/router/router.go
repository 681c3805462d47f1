package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mykocapp/notifier/internal/handler/event"
	"github.com/mykocapp/notifier/internal/handler/health"
	"github.com/mykocapp/notifier/internal/handler/prometheus"
	"github.com/mykocapp/notifier/internal/middleware"
)

type Router struct {
	engine  *gin.Engine
	eventH  *event.Handler
	healthH *health.Handler
	promH   *prometheus.Handler
}

func NewRouter(eventH *event.Handler, healthH *health.Handler, promH *prometheus.Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	return &Router{
		engine:  engine,
		eventH:  eventH,
		healthH: healthH,
		promH:   promH,
	}
}

func (r *Router) Setup() {
	v1 := r.engine.Group("/v1")
	r.eventH.RegisterRoutes(v1)
	r.healthH.RegisterRoutes(r.engine.Group(""))
	r.engine.GET("/metrics", r.promH.Handler())
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
