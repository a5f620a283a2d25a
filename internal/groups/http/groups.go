package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/pkg/httpx"
)

type GroupsHandler struct {
	GroupService *service.GroupService
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

type updateGroupRequest struct {
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

type groupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Privacy     string    `json:"privacy"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type groupViewResponse struct {
	groupResponse

	MemberCount        int  `json:"member_count"`
	ViewerIsMember     bool `json:"viewer_is_member"`
	ViewerIsOwner      bool `json:"viewer_is_owner"`
	ViewerHasRequested bool `json:"viewer_has_requested"`
}

type groupSummaryResponse struct {
	groupResponse

	MemberCount int `json:"member_count"`
}

func toGroupResponse(g domain.Group) groupResponse {
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Privacy:     string(g.Privacy),
		OwnerID:     g.OwnerID,
		CreatedAt:   g.CreatedAt,
	}
}

func (h *GroupsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	group, err := h.GroupService.Create(r.Context(),
		httpx.UserIDFromContext(r.Context()),
		req.Name, req.Description, domain.Privacy(req.Privacy),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (h *GroupsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.GroupService.Get(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, groupViewResponse{
		groupResponse:      toGroupResponse(view.Group),
		MemberCount:        view.MemberCount,
		ViewerIsMember:     view.ViewerIsMember,
		ViewerIsOwner:      view.ViewerIsOwner,
		ViewerHasRequested: view.ViewerHasRequested,
	})
}

func (h *GroupsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	groups, err := h.GroupService.ListForUser(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"groups": out})
}

func (h *GroupsHandler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := h.GroupService.Discover(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]groupSummaryResponse, len(summaries))
	for i, s := range summaries {
		out[i] = groupSummaryResponse{
			groupResponse: toGroupResponse(s.Group),
			MemberCount:   s.MemberCount,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"groups": out})
}

func (h *GroupsHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	err := h.GroupService.UpdateSettings(r.Context(),
		r.PathValue("id"),
		httpx.UserIDFromContext(r.Context()),
		req.Description, domain.Privacy(req.Privacy),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.GroupService.Delete(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
