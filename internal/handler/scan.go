package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/larder/internal/scan"
)

type ScanHandler struct {
	manager *scan.Manager
	logger  *slog.Logger
}

func NewScanHandler(mgr *scan.Manager, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{manager: mgr, logger: logger}
}

// Start handles POST /api/scan/start
func (h *ScanHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Start(r.Context()); err != nil {
		var capErr *scan.CaptureError
		if errors.As(err, &capErr) {
			writeError(w, http.StatusServiceUnavailable, "camera unavailable: "+capErr.Err.Error())
			return
		}
		h.logger.Error("start scan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start scan")
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Status())
}

type detectedRequest struct {
	Barcode string `json:"barcode" validate:"required,numeric,min=8,max=14"`
}

// Detected handles POST /api/scan/detected. The browser-side decoder posts
// each decoded barcode here; detections outside the capturing state are
// ignored.
func (h *ScanHandler) Detected(w http.ResponseWriter, r *http.Request) {
	var req detectedRequest
	if msg, ok := decodeValid(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	h.manager.Detected(req.Barcode)
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// Status handles GET /api/scan/status
func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

type confirmRequest struct {
	Accept bool `json:"accept"`
}

// Confirm handles POST /api/scan/confirm. On accept the candidate is
// returned so the client can prefill the add-item form; the item is not
// added to the inventory until the form is submitted.
func (h *ScanHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if msg, ok := decodeValid(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	candidate, err := h.manager.Confirm(req.Accept)
	if err != nil {
		if errors.Is(err, scan.ErrNoCandidate) {
			writeError(w, http.StatusConflict, "no candidate awaiting confirmation")
			return
		}
		h.logger.Error("confirm scan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to confirm scan")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"candidate": candidate})
}

// Cancel handles POST /api/scan/cancel
func (h *ScanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.manager.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
