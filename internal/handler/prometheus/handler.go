package prometheus

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the service's metric registry over /metrics.
type Handler struct {
	registry *prometheus.Registry
}

func New() *Handler {
	return &Handler{registry: prometheus.NewRegistry()}
}

// MustRegister adds collectors (the notification pipeline metrics) to the
// exposed registry.
func (h *Handler) MustRegister(collectors ...prometheus.Collector) {
	h.registry.MustRegister(collectors...)
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
