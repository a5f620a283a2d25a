package groups_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/nichenest/nichenest/internal/groups/http"
	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/internal/groups/store/drivers/sqlite"
	"github.com/nichenest/nichenest/pkg/jwtx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

/*
 * End-to-end tests for the groups service. The full router runs in-process
 * against an in-memory sqlite store, so every request crosses the real
 * middleware chain, handlers, services and schema.
 */

// newTestServer wires the application stack by hand, mirroring app.New but
// without config loading or the housekeeping loop.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec([]byte("e2e-test-secret"), "nichenest-test", time.Hour)
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{Service: "groups-e2e", Level: "error", Format: "text"})

	notifications := &service.NotificationService{Store: st}
	router := httpapi.NewRouter(codec, "test", st, logger)
	router.UserService = &service.UserService{Store: st, Codec: codec}
	router.GroupService = &service.GroupService{Store: st}
	router.MembershipService = &service.MembershipService{Store: st, Notifier: notifications}
	router.RequestService = &service.MemberRequestService{Store: st, Notifier: notifications}
	router.InvitationService = &service.InvitationService{Store: st, Notifier: notifications}
	router.NotificationService = notifications
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// doJSON performs a request with an optional bearer token and JSON body, and
// decodes the JSON response into out when out is non-nil.
func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type account struct {
	ID    string
	Token string
}

// signup registers a user and logs them in.
func signup(t *testing.T, server *httptest.Server, username string) account {
	t.Helper()

	payload := map[string]string{
		"username":     username,
		"display_name": username,
		"password":     "e2e-password",
	}
	code := doJSON(t, server, http.MethodPost, "/v1/users", "", payload, nil)
	require.Equal(t, http.StatusCreated, code)

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	code = doJSON(t, server, http.MethodPost, "/v1/sessions", "", map[string]string{
		"username": username,
		"password": "e2e-password",
	}, &session)
	require.Equal(t, http.StatusOK, code)

	return account{ID: session.User.ID, Token: session.Token}
}

// createGroup makes a group and returns its id.
func createGroup(t *testing.T, server *httptest.Server, owner account, name, privacy string) string {
	t.Helper()

	var created struct {
		ID string `json:"id"`
	}
	code := doJSON(t, server, http.MethodPost, "/v1/groups", owner.Token, map[string]string{
		"name":        name,
		"description": "an e2e test group",
		"privacy":     privacy,
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	return created.ID
}
