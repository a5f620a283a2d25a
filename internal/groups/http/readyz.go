package http

import (
	"net/http"

	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/pkg/httpx"
)

type readyzResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// ReadyzHandler reports 503 when the database cannot be reached.
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, database := "ok", "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			status, database = "degraded", "error: "+err.Error()
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, readyzResponse{Status: status, Database: database})
	}
}
