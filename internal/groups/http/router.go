package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/pkg/httpx"
	"github.com/nichenest/nichenest/pkg/jwtx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	UserService         *service.UserService
	GroupService        *service.GroupService
	MembershipService   *service.MembershipService
	RequestService      *service.MemberRequestService
	InvitationService   *service.InvitationService
	NotificationService *service.NotificationService
}

func NewRouter(codec *jwtx.Codec, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerGroups()
	r.registerMemberships()
	r.registerRequests()
	r.registerInvitations()
	r.registerNotifications()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps a handler with authentication and a per-user rate limit.
func (r *Router) secured(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.codec),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// Registration and login are unauthenticated and brute-forceable, so
	// they get the strict per-IP limit.
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/sessions",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /v1/users/me",
		r.secured(http.HandlerFunc(h.HandleMe), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/users",
		r.secured(http.HandlerFunc(h.HandleSearch), httpx.ModerateLimit))
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{GroupService: r.GroupService}

	r.Mux.Handle("POST /v1/groups",
		r.secured(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/groups/discover",
		r.secured(http.HandlerFunc(h.HandleDiscover), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/groups/mine",
		r.secured(http.HandlerFunc(h.HandleMine), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/groups/{id}",
		r.secured(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/groups/{id}",
		r.secured(http.HandlerFunc(h.HandleUpdateSettings), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/groups/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
}

func (r *Router) registerMemberships() {
	h := &MembershipsHandler{MembershipService: r.MembershipService}

	r.Mux.Handle("POST /v1/groups/{id}/join",
		r.secured(http.HandlerFunc(h.HandleJoin), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/groups/{id}/leave",
		r.secured(http.HandlerFunc(h.HandleLeave), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/groups/{id}/members",
		r.secured(http.HandlerFunc(h.HandleListMembers), httpx.LenientLimit))
	r.Mux.Handle("DELETE /v1/groups/{id}/members/{userID}",
		r.secured(http.HandlerFunc(h.HandleRemoveMember), httpx.ModerateLimit))
}

func (r *Router) registerRequests() {
	h := &RequestsHandler{RequestService: r.RequestService}

	r.Mux.Handle("GET /v1/groups/{id}/requests",
		r.secured(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/groups/{id}/requests/{requestID}/approve",
		r.secured(http.HandlerFunc(h.HandleApprove), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/groups/{id}/requests/{requestID}/deny",
		r.secured(http.HandlerFunc(h.HandleDeny), httpx.ModerateLimit))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InvitationService: r.InvitationService}

	r.Mux.Handle("POST /v1/groups/{id}/invitations",
		r.secured(http.HandlerFunc(h.HandleInvite), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/invitations",
		r.secured(http.HandlerFunc(h.HandleListMine), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/invitations/{id}/respond",
		r.secured(http.HandlerFunc(h.HandleRespond), httpx.ModerateLimit))
}

func (r *Router) registerNotifications() {
	h := &NotificationsHandler{NotificationService: r.NotificationService}

	r.Mux.Handle("GET /v1/notifications",
		r.secured(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/notifications/read-all",
		r.secured(http.HandlerFunc(h.HandleMarkAllRead), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/notifications/{id}/read",
		r.secured(http.HandlerFunc(h.HandleMarkRead), httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
