package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/larder/internal/freshness"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
	ws "github.com/dukerupert/larder/internal/websocket"
)

type InventoryHandler struct {
	inventory *store.Inventory
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewInventoryHandler(inv *store.Inventory, hub *ws.Hub, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inv, hub: hub, logger: logger}
}

type itemRequest struct {
	Name       string `json:"name" validate:"required"`
	Quantity   string `json:"quantity" validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Category   string `json:"category" validate:"required,oneof=produce dairy meats pantry frozen other"`
}

// itemResponse attaches the freshness status, which is derived on every
// read and never stored.
type itemResponse struct {
	model.FoodItem
	Status     freshness.Bucket `json:"status"`
	StatusText string           `json:"status_text"`
}

func toItemResponse(item model.FoodItem, now time.Time) itemResponse {
	st := freshness.Classify(item.ExpiryDate, now)
	return itemResponse{FoodItem: item, Status: st.Bucket, StatusText: st.DisplayText}
}

// List handles GET /api/items?category=
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	category := model.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	now := time.Now()
	items := h.inventory.List(category)
	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item, now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/items/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventory.Get(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item, time.Now()))
}

// Create handles POST /api/items
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if msg, ok := decodeValid(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	expiry, err := model.ParseDate(req.ExpiryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expiry_date must be a date in YYYY-MM-DD format")
		return
	}

	item, err := h.inventory.Add(model.FoodItem{
		Name:       req.Name,
		Quantity:   req.Quantity,
		ExpiryDate: expiry,
		Category:   model.Category(req.Category),
	})
	if err != nil {
		if store.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("add item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("food_item", "created", item.ID, nil))
	writeJSON(w, http.StatusCreated, toItemResponse(item, time.Now()))
}

// Update handles PUT /api/items/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req itemRequest
	if msg, ok := decodeValid(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	expiry, err := model.ParseDate(req.ExpiryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expiry_date must be a date in YYYY-MM-DD format")
		return
	}

	item, err := h.inventory.Update(id, store.Patch{
		Name:       req.Name,
		Quantity:   req.Quantity,
		ExpiryDate: expiry,
		Category:   model.Category(req.Category),
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "item not found")
		case store.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("update item", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save item")
		}
		return
	}

	h.hub.Broadcast(ws.NewMessage("food_item", "updated", item.ID, nil))
	writeJSON(w, http.StatusOK, toItemResponse(item, time.Now()))
}

// Delete handles DELETE /api/items/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.inventory.Remove(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.Error("remove item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("food_item", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/stats?category=
func (h *InventoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	category := model.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"total":         h.inventory.Count(category),
		"expiring_soon": h.inventory.CountExpiringSoon(category, time.Now()),
	})
}
