package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/pkg/httpx"
)

type InvitationsHandler struct {
	InvitationService *service.InvitationService
}

type inviteRequest struct {
	InviteeID string `json:"invitee_id"`
}

type respondRequest struct {
	Response string `json:"response"` // accept | decline
}

type invitationResponse struct {
	ID              string    `json:"id"`
	GroupID         string    `json:"group_id"`
	GroupName       string    `json:"group_name,omitempty"`
	InviterID       string    `json:"inviter_id"`
	InviterUsername string    `json:"inviter_username,omitempty"`
	InviteeID       string    `json:"invitee_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func (h *InvitationsHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	inv, err := h.InvitationService.Invite(r.Context(),
		r.PathValue("id"),
		httpx.UserIDFromContext(r.Context()),
		req.InviteeID,
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, invitationResponse{
		ID:        inv.ID,
		GroupID:   inv.GroupID,
		InviterID: inv.InviterID,
		InviteeID: inv.InviteeID,
		Status:    string(inv.Status),
		CreatedAt: inv.CreatedAt,
	})
}

func (h *InvitationsHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.InvitationService.ListPendingForUser(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]invitationResponse, len(invitations))
	for i, inv := range invitations {
		out[i] = invitationResponse{
			ID:              inv.ID,
			GroupID:         inv.GroupID,
			GroupName:       inv.GroupName,
			InviterID:       inv.InviterID,
			InviterUsername: inv.InviterUsername,
			InviteeID:       inv.InviteeID,
			Status:          string(inv.Status),
			CreatedAt:       inv.CreatedAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"invitations": out})
}

func (h *InvitationsHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	err := h.InvitationService.Respond(r.Context(),
		r.PathValue("id"),
		httpx.UserIDFromContext(r.Context()),
		service.InvitationResponse(req.Response),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
