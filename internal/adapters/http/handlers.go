package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"svw.info/alchemy/internal/domain"
	"svw.info/alchemy/internal/usecase"
)

type Handler struct {
	UC     *usecase.Service
	Logger *zap.Logger
}

func New(uc *usecase.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{UC: uc, Logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/levels", h.handleLevels)
	mux.HandleFunc("/api/progress", h.handleProgress)
	mux.HandleFunc("/api/session/start", h.handleStart)
	mux.HandleFunc("/api/session/state", h.handleState)
	mux.HandleFunc("/api/session/rotate", h.handleRotate)
	mux.HandleFunc("/api/session/fit", h.handleFit)
	mux.HandleFunc("/api/session/place", h.handlePlace)
	mux.HandleFunc("/api/session/catalyst", h.handleCatalyst)
	mux.HandleFunc("/api/session/abort", h.handleAbort)
	mux.HandleFunc("/api/session/hint", h.handleHint)
	mux.HandleFunc("/api/ws", h.handleWS)
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPlacementRejected), errors.Is(err, domain.ErrCatalystUnavailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidLevelDefinition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionOver):
		return http.StatusGone
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrLevelNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLevelLocked):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type errorResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Error: msg})
}

// post checks the method and decodes an optional JSON body into req.
func post(w http.ResponseWriter, r *http.Request, req any) bool {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func get(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func userParam(r *http.Request) string {
	if u := strings.TrimSpace(r.URL.Query().Get("user")); u != "" {
		return u
	}
	return "player"
}

// ---- Levels / Progress ----

type levelsResp struct {
	Levels []domain.LevelMeta `json:"levels"`
}

func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	if !get(w, r) {
		return
	}
	ls, err := h.UC.ListLevels(r.Context(), userParam(r))
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, levelsResp{Levels: ls})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	if !get(w, r) {
		return
	}
	p, err := h.UC.LoadProgress(r.Context(), userParam(r))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- Session ----

type startReq struct {
	User  string `json:"user"`
	Level string `json:"level"`
}

type sessionReq struct {
	Session string `json:"session"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
}

func (r sessionReq) pos() domain.Pos { return domain.Pos{Row: r.Row, Col: r.Col} }

type snapshotResp struct {
	Session  string          `json:"session"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if !post(w, r, &req) {
		return
	}
	if req.User == "" {
		req.User = "player"
	}
	if req.Level == "" {
		writeErr(w, http.StatusBadRequest, "missing level")
		return
	}
	id, snap, err := h.UC.Start(r.Context(), req.User, req.Level)
	if err != nil && id == "" {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	if err != nil {
		h.Logger.Warn("settle after start failed", zap.String("session", id), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, snapshotResp{Session: id, Snapshot: snap})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	if !get(w, r) {
		return
	}
	id := r.URL.Query().Get("session")
	snap, err := h.UC.Snapshot(r.Context(), id)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshotResp{Session: id, Snapshot: snap})
}

// command runs a snapshot-returning session command.
func (h *Handler) command(w http.ResponseWriter, r *http.Request, run func(req sessionReq) (domain.Snapshot, error)) {
	var req sessionReq
	if !post(w, r, &req) {
		return
	}
	snap, err := run(req)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshotResp{Session: req.Session, Snapshot: snap})
}

func (h *Handler) handleRotate(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(req sessionReq) (domain.Snapshot, error) {
		return h.UC.Rotate(r.Context(), req.Session)
	})
}

func (h *Handler) handlePlace(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(req sessionReq) (domain.Snapshot, error) {
		return h.UC.Place(r.Context(), req.Session, req.pos())
	})
}

func (h *Handler) handleCatalyst(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(req sessionReq) (domain.Snapshot, error) {
		return h.UC.ActivateCatalyst(r.Context(), req.Session, req.pos())
	})
}

func (h *Handler) handleFit(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !post(w, r, &req) {
		return
	}
	fit, err := h.UC.Fit(r.Context(), req.Session, req.pos())
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fit)
}

func (h *Handler) handleAbort(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !post(w, r, &req) {
		return
	}
	out, err := h.UC.Abort(r.Context(), req.Session)
	if err != nil {
		if !out.State.Terminal() {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		h.Logger.Warn("settle after abort failed", zap.String("session", req.Session), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, out)
}

type hintResp struct {
	Found bool        `json:"found"`
	Hint  domain.Hint `json:"hint,omitempty"`
}

func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if !post(w, r, &req) {
		return
	}
	hh, ok, err := h.UC.Hint(r.Context(), req.Session)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, hintResp{Found: ok, Hint: hh})
}
