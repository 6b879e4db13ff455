/*
handlers.go - HTTP API handlers for the day book

PURPOSE:
  Exposes a Session over HTTP so a local UI can drive the ledger. Handlers
  parse requests, hand actions to the session, and serialize the resulting
  state. All business rules live in the ledger package.

ENDPOINTS:
  Session:
    GET    /api/session                 Who is logged in
    POST   /api/session/login           Log in (creates a new user's book)
    POST   /api/session/logout          Log out; stored data is kept

  State:
    GET    /api/state                   Full state of the logged-in user
    POST   /api/dispatch                Apply one action {type, payload}
    POST   /api/notifications/rescan    Raise due-date and stock alerts now

  Backup:
    GET    /api/backup                  Download the backup file
                                        ?sections=parties,stockItems for a subset
                                        ?format=csv&section=dayBookEntries for CSV
    POST   /api/restore                 Replace data from a backup file
    GET    /api/backup/schema           JSON Schema of the backup file

  Reports:
    GET    /api/reports/parties/{id}    Party statement with running balance
    GET    /api/reports/invoices        Bills grouped by bill number
    GET    /api/reports/stock           Stock levels and value
    GET    /api/reports/cash            Cash totals, ?from=&to= (YYYY-MM-DD)
    GET    /api/audit                   Party balances checked against the day book

  Scenarios:
    GET    /api/scenarios               List demo datasets
    POST   /api/scenarios/load          Load one into the logged-in book

ERROR HANDLING:
  Errors are returned as JSON {error, message, details}:
  - 400: malformed request, invalid action, invalid backup file
  - 401: no user logged in
  - 404: unknown party, item or scenario
  - 422: the ledger rejected the action (stock shortage, duplicate id, ...)
  - 500: internal errors

SECURITY NOTE:
  The host is meant to run next to its UI on one machine. There is no
  authentication beyond the session login.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo datasets
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/daybook/backup"
	"github.com/warp/daybook/factory"
	"github.com/warp/daybook/ledger"
	"github.com/warp/daybook/session"
)

// maxBodyBytes bounds request bodies; backups with embedded images are large.
const maxBodyBytes = 32 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Session *session.Session
	Factory *factory.ActionFactory

	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a new handler around a session.
func NewHandler(sess *session.Session, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Session: sess,
		Factory: factory.NewActionFactory(),
		logger:  logger.Named("api"),
		now:     time.Now,
	}
}

// =============================================================================
// SESSION ENDPOINTS
// =============================================================================

// GetSession reports the login status.
// GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionDTO(h.Session.LoggedIn(), h.Session.State()))
}

// Login logs a user in and returns their state.
// POST /api/session/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
		return
	}

	state, err := h.Session.Login(r.Context(), req.toUser())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Logout ends the session.
// POST /api/session/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Logout(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "Failed to log out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STATE ENDPOINTS
// =============================================================================

// GetState returns the logged-in user's full state.
// GET /api/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requireLogin(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Dispatch applies one action and returns the settled state. LOGIN and
// LOGOUT are accepted here too and routed to the session.
// POST /api/dispatch
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var aj factory.ActionJSON
	if err := decodeBody(r, &aj); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
		return
	}

	switch aj.Type {
	case factory.TypeLogin:
		var req LoginRequest
		if err := json.Unmarshal(aj.Payload, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_action", "Invalid LOGIN payload", err)
			return
		}
		state, err := h.Session.Login(r.Context(), req.toUser())
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
		return

	case factory.TypeLogout:
		if err := h.Session.Logout(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "Failed to log out", err)
			return
		}
		writeJSON(w, http.StatusOK, h.Session.State())
		return
	}

	action, err := h.Factory.FromJSON(aj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_action", err.Error(), nil)
		return
	}

	state, err := h.Session.Dispatch(r.Context(), action)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Rescan raises notifications that came due since the last scan.
// POST /api/notifications/rescan
func (h *Handler) Rescan(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireLogin(w); !ok {
		return
	}
	added, err := h.Session.Rescan(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RescanDTO{Added: added})
}

// =============================================================================
// BACKUP ENDPOINTS
// =============================================================================

// Backup downloads the backup file, a subset of its sections, or one section
// as CSV.
// GET /api/backup
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requireLogin(w)
	if !ok {
		return
	}
	doc := backup.Export(state)
	name := backup.FileName(h.now())
	q := r.URL.Query()

	if strings.EqualFold(q.Get("format"), "csv") {
		section := backup.Section(q.Get("section"))
		if section == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "CSV export needs a section", nil)
			return
		}
		var buf bytes.Buffer
		if err := backup.WriteCSV(&buf, doc, section); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
			return
		}
		name = strings.TrimSuffix(name, ".json") + "-" + string(section) + ".csv"
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	var sections []backup.Section
	for _, s := range splitQuery(q.Get("sections")) {
		sections = append(sections, backup.Section(s))
	}
	data, err := backup.Marshal(doc, sections...)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Restore replaces the logged-in user's data with a backup file. The file is
// validated completely before any state changes.
// POST /api/restore
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireLogin(w); !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Failed to read backup file", err)
		return
	}

	action, err := backup.Parse(data)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	state, err := h.Session.Dispatch(r.Context(), action)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.logger.Info("backup restored",
		zap.Int("parties", len(state.Parties)),
		zap.Int("entries", len(state.DayBookEntries)),
		zap.Int("items", len(state.StockItems)),
	)
	writeJSON(w, http.StatusOK, state)
}

// BackupSchema publishes the JSON Schema of the backup file.
// GET /api/backup/schema
func (h *Handler) BackupSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backup.Schema())
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// PartyStatement returns a party's ledger lines with a running balance.
// GET /api/reports/parties/{id}
func (h *Handler) PartyStatement(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requireLogin(w)
	if !ok {
		return
	}
	st, err := ledger.PartyStatement(state, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Invoices lists bills, newest first.
// GET /api/reports/invoices
func (h *Handler) Invoices(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requireLogin(w)
	if !ok {
		return
	}
	invoices := ledger.Invoices(state)
	if invoices == nil {
		invoices = []ledger.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

// StockSummary lists stock levels per item.
// GET /api/reports/stock
func (h *Handler) StockSummary(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requireLogin(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ledger.StockSummary(state))
}

// CashSummary totals the day book over a date range. Defaults to the
// current month up to today.
// GET /api/reports/cash?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) CashSummary(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requireLogin(w)
	if !ok {
		return
	}

	now := h.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		d, err := ledger.ParseDate(s, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid from date", err)
			return
		}
		from = d
	}
	if s := q.Get("to"); s != "" {
		d, err := ledger.ParseDate(s, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid to date", err)
			return
		}
		to = d
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid_request", "from must not be after to", nil)
		return
	}

	writeJSON(w, http.StatusOK, ledger.CashSummary(state, from, to))
}

// Audit checks every party balance against its day-book entries.
// GET /api/audit
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requireLogin(w)
	if !ok {
		return
	}
	found := ledger.Reconcile(state)
	if len(found) > 0 {
		h.logger.Warn("balance discrepancies found", zap.Int("count", len(found)))
	}
	if found == nil {
		found = []ledger.Discrepancy{}
	}
	writeJSON(w, http.StatusOK, AuditDTO{OK: len(found) == 0, Parties: len(state.Parties), Discrepancies: found})
}

// =============================================================================
// HELPERS
// =============================================================================

// requireLogin returns the current state, or writes 401 and reports false.
func (h *Handler) requireLogin(w http.ResponseWriter) (ledger.State, bool) {
	if !h.Session.LoggedIn() {
		h.writeDomainError(w, session.ErrNotLoggedIn)
		return ledger.State{}, false
	}
	return h.Session.State(), true
}

// writeDomainError maps ledger, session and backup errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var shortage *ledger.InsufficientStockError

	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		writeError(w, http.StatusUnauthorized, "not_logged_in", "No user is logged in", nil)
	case errors.Is(err, session.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, "invalid_user", err.Error(), nil)
	case errors.Is(err, backup.ErrInvalidBackupFormat):
		writeError(w, http.StatusBadRequest, "invalid_backup", "Invalid backup file", err)
	case errors.As(err, &shortage):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_stock", err.Error(), toStockErrorDTO(shortage))
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case ledger.IsClientError(err):
		writeError(w, http.StatusUnprocessableEntity, "rejected", err.Error(), nil)
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	resp := ErrorResponse{Error: code, Message: message}
	if err, ok := details.(error); ok {
		resp.Details = err.Error()
	} else if details != nil {
		resp.Details = details
	}
	writeJSON(w, status, resp)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func splitQuery(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
