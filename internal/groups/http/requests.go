package http

import (
	"net/http"
	"time"

	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/pkg/httpx"
)

type RequestsHandler struct {
	RequestService *service.MemberRequestService
}

type requestResponse struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *RequestsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	requests, err := h.RequestService.ListPending(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]requestResponse, len(requests))
	for i, req := range requests {
		out[i] = requestResponse{
			ID:          req.ID,
			GroupID:     req.GroupID,
			UserID:      req.UserID,
			Username:    req.Username,
			DisplayName: req.DisplayName,
			CreatedAt:   req.CreatedAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"requests": out})
}

func (h *RequestsHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	err := h.RequestService.Approve(r.Context(),
		r.PathValue("id"), r.PathValue("requestID"),
		httpx.UserIDFromContext(r.Context()),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RequestsHandler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	err := h.RequestService.Deny(r.Context(),
		r.PathValue("id"), r.PathValue("requestID"),
		httpx.UserIDFromContext(r.Context()),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
