package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/timex"
)

type syncRequest struct {
	LastSyncAt     string                 `json:"lastSyncAt"`
	PendingChanges *models.PendingChanges `json:"pendingChanges"`
}

type syncResponse struct {
	Success       bool               `json:"success"`
	SyncTimestamp string             `json:"syncTimestamp"`
	Changes       *models.Changes    `json:"changes"`
	IDMappings    *models.IDMappings `json:"idMappings"`
	Conflicts     []models.Conflict  `json:"conflicts"`
	Message       string             `json:"message"`
}

type syncFailure struct {
	Success       bool   `json:"success"`
	SyncTimestamp string `json:"syncTimestamp"`
	Message       string `json:"message"`
	Error         string `json:"error,omitempty"`
}

type statusResponse struct {
	Success          bool                `json:"success"`
	HasChanges       bool                `json:"hasChanges"`
	ChangeCount      *models.ChangeCount `json:"changeCount"`
	LastSyncAt       string              `json:"lastSyncAt"`
	CurrentTimestamp string              `json:"currentTimestamp"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(common.SyncTimeLayout)
}

// parseWatermark reads an ISO-8601 timestamp. An empty string yields nil.
func parseWatermark(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := timex.ParseISO(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidWatermark, s)
	}
	return &t, nil
}

func (r *Router) handleSync(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID := getUserID(ctx)

	// An empty body is a plain pull with no pending changes.
	var body syncRequest
	if err := decodeBody(req.Body, &body); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, statusFor(err), "Invalid sync request", err)
		return
	}
	lastSyncAt, err := parseWatermark(body.LastSyncAt)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid lastSyncAt", err)
		return
	}

	res, err := r.services.Sync.Sync(ctx, userID, lastSyncAt, body.PendingChanges)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, syncFailure{
			SyncTimestamp: formatTime(r.clock()),
			Message:       "Sync failed",
			Error:         err.Error(),
		})
		return
	}

	conflicts := res.Conflicts
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	writeJSON(w, http.StatusOK, syncResponse{
		Success:       true,
		SyncTimestamp: formatTime(res.SyncTimestamp),
		Changes:       res.Changes,
		IDMappings:    res.IDMappings,
		Conflicts:     conflicts,
		Message:       "Sync completed successfully",
	})
}

func (r *Router) handleSyncStatus(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	raw := req.URL.Query().Get("lastSyncAt")

	since, err := parseWatermark(raw)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid lastSyncAt", err)
		return
	}
	if since == nil {
		writeFailure(w, http.StatusBadRequest, "lastSyncAt query parameter is required", nil)
		return
	}

	count, err := r.services.Sync.Status(ctx, getUserID(ctx), *since)
	if err != nil {
		r.logger.Error(ctx, "sync status failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to get sync status", err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Success:          true,
		HasChanges:       count.Total > 0,
		ChangeCount:      count,
		LastSyncAt:       raw,
		CurrentTimestamp: formatTime(r.clock()),
	})
}
