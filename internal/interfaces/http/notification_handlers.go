package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easybills/easybills/internal/auth"
)

// ListNotifications handles GET /api/notifications. Pass unread=true
// to restrict the list to unread entries.
func (h *Handlers) ListNotifications(c *gin.Context) {
	actor := auth.ActorFrom(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notifications.ListByUser(c.Request.Context(), actor.UserID, unreadOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "", notifications)
}

// MarkNotificationRead handles PUT /api/notifications/:id/read. Only
// the recipient can mark a notification read.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor := auth.ActorFrom(c)

	if err := h.notifications.MarkRead(c.Request.Context(), id, actor.UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, "Notification marked as read", nil)
}
