package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/larder/internal/handler"
	"github.com/dukerupert/larder/internal/lookup"
	"github.com/dukerupert/larder/internal/middleware"
	"github.com/dukerupert/larder/internal/push"
	"github.com/dukerupert/larder/internal/scan"
	"github.com/dukerupert/larder/internal/store"
	ws "github.com/dukerupert/larder/internal/websocket"
)

// Config carries the optional integrations. Barcode Spider is skipped when
// no token is configured, and push reminders are disabled without VAPID keys.
type Config struct {
	BarcodeSpiderToken string
	Push               push.Config
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	inventory     *store.Inventory
	inventoryH    *handler.InventoryHandler
	scanH         *handler.ScanHandler
	exportH       *handler.ExportHandler
	pushH         *handler.PushHandler
	scanManager   *scan.Manager
	pushStore     *store.PushStore
	pushService   *push.Service
	pushScheduler *push.Scheduler
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	inventory, err := store.NewInventory(store.NewSnapshotStore(db))
	if err != nil {
		return nil, err
	}

	providers := []lookup.Provider{
		lookup.NewOpenFoodFacts(),
		lookup.NewUPCItemDB(),
	}
	if cfg.BarcodeSpiderToken != "" {
		providers = append(providers, lookup.NewBarcodeSpider(cfg.BarcodeSpiderToken))
	}
	pipeline := lookup.NewPipeline(logger.With("component", "lookup"), providers...)

	scanMgr := scan.NewManager(scan.RemoteCapture{}, scan.RemoteRecognizer{}, pipeline, func(st scan.Status) {
		hub.Broadcast(ws.Message{
			Type:   "scan_status",
			Entity: "scan",
			Action: string(st.State),
			Extra: map[string]any{
				"barcode":   st.Barcode,
				"not_found": st.NotFound,
				"error":     st.Error,
			},
		})
	}, logger.With("component", "scan"))

	// Push notification service + scheduler
	pushStore := store.NewPushStore(db)
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, inventory, pushStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		inventory:     inventory,
		inventoryH:    handler.NewInventoryHandler(inventory, hub, logger.With("component", "inventory")),
		scanH:         handler.NewScanHandler(scanMgr, logger.With("component", "scan_handler")),
		exportH:       handler.NewExportHandler(inventory, hub, logger.With("component", "export")),
		pushH:         pushH,
		scanManager:   scanMgr,
		pushStore:     pushStore,
		pushService:   pushSvc,
		pushScheduler: pushSched,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}, nil
}

// PushScheduler returns the reminder scheduler, nil when push is disabled.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// ScanManager returns the scan session manager for shutdown cleanup.
func (s *Server) ScanManager() *scan.Manager {
	return s.scanManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Inventory
	mux.HandleFunc("GET /api/items", s.inventoryH.List)
	mux.HandleFunc("POST /api/items", s.inventoryH.Create)
	mux.HandleFunc("GET /api/items/{id}", s.inventoryH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.inventoryH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.inventoryH.Delete)
	mux.HandleFunc("GET /api/stats", s.inventoryH.Stats)

	// Barcode scanning. Detections fan out to trial-tier provider APIs, so
	// they are throttled per client.
	mux.HandleFunc("POST /api/scan/start", s.scanH.Start)
	mux.HandleFunc("POST /api/scan/detected", s.rateLimitedHandler(s.scanH.Detected))
	mux.HandleFunc("GET /api/scan/status", s.scanH.Status)
	mux.HandleFunc("POST /api/scan/confirm", s.scanH.Confirm)
	mux.HandleFunc("POST /api/scan/cancel", s.scanH.Cancel)

	// Encrypted backup
	mux.HandleFunc("POST /api/export", s.exportH.Export)
	mux.HandleFunc("POST /api/import", s.exportH.Import)

	// Push notifications (only when VAPID keys are configured)
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 30, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
