package http

import (
	"errors"
	"net/http"

	"github.com/nichenest/nichenest/internal/groups/domain"
	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/pkg/httpx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

// writeServiceError maps the service sentinel errors onto the uniform error
// envelope. Anything unmapped is a 500 with the detail kept in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrInvitationNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrNotInvitee),
		errors.Is(err, service.ErrNotMember):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", err.Error())

	case errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyRequested),
		errors.Is(err, service.ErrAlreadyInvited),
		errors.Is(err, service.ErrOwnerCannotLeave),
		errors.Is(err, service.ErrCannotRemoveOwner),
		errors.Is(err, service.ErrGroupNameTaken),
		errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())

	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrQueryTooShort),
		errors.Is(err, service.ErrInvalidResponse),
		errors.Is(err, domain.ErrInvalidGroupName),
		errors.Is(err, domain.ErrInvalidGroupDescription),
		errors.Is(err, domain.ErrInvalidPrivacy):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())

	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
