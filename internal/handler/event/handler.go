// Package event exposes the trigger surface: the document store's trigger
// mechanism delivers before/after snapshots to these endpoints.
package event

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mykocapp/notifier/internal/model"
	"github.com/mykocapp/notifier/internal/service/notifier"
)

// Notifier is the part of the notification service the trigger surface uses.
type Notifier interface {
	HandleAnnouncementWritten(ctx context.Context, evt model.AnnouncementEvent) *notifier.Summary
	HandleTaskCreated(ctx context.Context, evt model.TaskEvent) *notifier.Summary
	HandleMessageCreated(ctx context.Context, evt model.MessageEvent) *notifier.Summary
}

type Handler struct {
	notifier Notifier
}

func NewHandler(n Notifier) *Handler {
	return &Handler{notifier: n}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.POST("/announcements", h.AnnouncementWritten)
		events.POST("/tasks", h.TaskCreated)
		events.POST("/messages", h.MessageCreated)
	}
}

// AnnouncementWritten handles a create or update of an announcement
// document. The fan-out never fails the request: delivery problems are
// reported inside the returned summary.
func (h *Handler) AnnouncementWritten(c *gin.Context) {
	var evt model.AnnouncementEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	summary := h.notifier.HandleAnnouncementWritten(c.Request.Context(), evt)
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": summary})
}

// TaskCreated handles the creation of a task document.
func (h *Handler) TaskCreated(c *gin.Context) {
	var evt model.TaskEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	summary := h.notifier.HandleTaskCreated(c.Request.Context(), evt)
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": summary})
}

// MessageCreated handles the creation of a chat message. The room id comes
// from the trigger path, carried in the payload.
func (h *Handler) MessageCreated(c *gin.Context) {
	var evt model.MessageEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	summary := h.notifier.HandleMessageCreated(c.Request.Context(), evt)
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": summary})
}
