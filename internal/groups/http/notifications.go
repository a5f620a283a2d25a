package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/pkg/httpx"
)

type NotificationsHandler struct {
	NotificationService *service.NotificationService
}

type notificationResponse struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	RelatedGroupID string    `json:"related_group_id,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

func (h *NotificationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, unread, err := h.NotificationService.Latest(r.Context(), httpx.UserIDFromContext(r.Context()), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		out[i] = notificationResponse{
			ID:             n.ID,
			Kind:           string(n.Kind),
			Title:          n.Title,
			Message:        n.Message,
			RelatedGroupID: n.RelatedGroupID,
			Read:           n.Read,
			CreatedAt:      n.CreatedAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"notifications": out,
		"unread_count":  unread,
	})
}

func (h *NotificationsHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.NotificationService.MarkRead(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationsHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	err := h.NotificationService.MarkAllRead(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
