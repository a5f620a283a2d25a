package http

import (
	"net/http"
	"time"

	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/pkg/httpx"
)

type MembershipsHandler struct {
	MembershipService *service.MembershipService
}

type joinResponse struct {
	Outcome string `json:"outcome"`
}

type memberResponse struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

func (h *MembershipsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.MembershipService.Join(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Public joins yield a membership now; private ones queue a request.
	code := http.StatusCreated
	if outcome == service.JoinOutcomeRequested {
		code = http.StatusAccepted
	}
	httpx.WriteJSON(w, code, joinResponse{Outcome: string(outcome)})
}

func (h *MembershipsHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	err := h.MembershipService.Leave(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MembershipsHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.MembershipService.ListMembers(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]memberResponse, len(members))
	for i, m := range members {
		out[i] = memberResponse{
			UserID:      m.UserID,
			Username:    m.Username,
			DisplayName: m.DisplayName,
			Role:        string(m.Role),
			JoinedAt:    m.JoinedAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"members": out})
}

func (h *MembershipsHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.MembershipService.RemoveMember(r.Context(),
		r.PathValue("id"),
		httpx.UserIDFromContext(r.Context()),
		r.PathValue("userID"),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
