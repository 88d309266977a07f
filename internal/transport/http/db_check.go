package http

import (
	"context"
	"net/http"

	"github.com/nuxtz/storefront/internal/app"
)

// DatabaseChecker is the minimal interface needed for the database probe.
type DatabaseChecker interface {
	CheckDatabase(ctx context.Context) (app.DBStatus, error)
}

// HandleDBCheck returns an HTTP handler reporting whether the waiting list
// table is reachable. A missing table is a 200 with success=false.
func HandleDBCheck(svc DatabaseChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.CheckDatabase(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "Database check failed")
			return
		}

		resp := dbCheckResponse{
			Success:     status.Success,
			TableExists: status.TableExists,
			Error:       status.Error,
		}
		if status.Success {
			resp.RowCount = &status.RowCount
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type dbCheckResponse struct {
	Success     bool   `json:"success"`
	TableExists bool   `json:"tableExists"`
	RowCount    *int   `json:"rowCount,omitempty"`
	Error       string `json:"error,omitempty"`
}
