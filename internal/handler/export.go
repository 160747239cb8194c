package handler

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/larder/internal/export"
	"github.com/dukerupert/larder/internal/store"
	ws "github.com/dukerupert/larder/internal/websocket"
)

type ExportHandler struct {
	inventory *store.Inventory
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewExportHandler(inv *store.Inventory, hub *ws.Hub, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{inventory: inv, hub: hub, logger: logger}
}

type exportRequest struct {
	Passphrase string `json:"passphrase" validate:"required,min=8"`
}

// Export handles POST /api/export. The response body is the encrypted blob
// itself so the browser can save it as a download.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if msg, ok := decodeValid(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	blob, err := export.Inventory(h.inventory.List(""), req.Passphrase)
	if err != nil {
		h.logger.Error("export inventory", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export inventory")
		return
	}

	filename := fmt.Sprintf("larder-backup-%s.enc", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}

type importRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
	Data       string `json:"data" validate:"required,base64"`
}

// Import handles POST /api/import. The decrypted collection replaces the
// current inventory wholesale.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if msg, ok := decodeValid(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	blob, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "data must be base64-encoded")
		return
	}

	items, err := export.ParseInventory(blob, req.Passphrase)
	if err != nil {
		writeError(w, http.StatusBadRequest, "wrong passphrase or corrupted backup")
		return
	}

	if err := h.inventory.Replace(items); err != nil {
		if store.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("import inventory", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to import inventory")
		return
	}

	h.hub.Broadcast(ws.NewMessage("inventory", "replaced", "", nil))
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(items)})
}
