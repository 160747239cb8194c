package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/larder/internal/freshness"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

// Scheduler periodically checks the inventory for items that are expiring
// soon or expired and sends a reminder to every subscribed device, at most
// once per item per calendar day.
type Scheduler struct {
	mu        sync.RWMutex
	service   *Service
	inventory *store.Inventory
	subs      *store.PushStore
	logger    *slog.Logger
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}

	// item id -> day the last reminder went out
	notified map[string]string
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(svc *Service, inventory *store.Inventory, subs *store.PushStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:   svc,
		inventory: inventory,
		subs:      subs,
		logger:    logger,
		interval:  time.Hour,
		notified:  make(map[string]string),
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	due := s.collectDue(now)
	if len(due) == 0 {
		return
	}

	subs, err := s.subs.List()
	if err != nil {
		s.logger.Error("reminder scheduler: list subscriptions", "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	for _, rem := range due {
		s.sendToAll(subs, rem)
	}
}

// collectDue returns one reminder per item whose bucket is expiring_soon or
// expired and which has not been notified today. It also prunes dedup
// entries for items that no longer exist.
func (s *Scheduler) collectDue(now time.Time) []Reminder {
	items := s.inventory.List("")
	today := model.DateOf(now).String()

	s.mu.Lock()
	defer s.mu.Unlock()

	live := make(map[string]struct{}, len(items))
	var due []Reminder
	for _, item := range items {
		live[item.ID] = struct{}{}

		status := freshness.Classify(item.ExpiryDate, now)
		if status.Bucket == freshness.BucketNormal {
			continue
		}
		if s.notified[item.ID] == today {
			continue
		}
		s.notified[item.ID] = today

		due = append(due, Reminder{
			ItemID:   item.ID,
			ItemName: item.Name,
			Status:   status.DisplayText,
		})
	}

	for id := range s.notified {
		if _, ok := live[id]; !ok {
			delete(s.notified, id)
		}
	}
	return due
}

func (s *Scheduler) sendToAll(subs []model.PushSubscription, rem Reminder) {
	for i := range subs {
		sub := &subs[i]
		err := s.service.Send(sub, rem)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrExpired) {
			if derr := s.subs.DeleteByEndpoint(sub.Endpoint); derr != nil {
				s.logger.Error("reminder scheduler: prune subscription", "error", derr)
			}
			continue
		}
		s.logger.Warn("reminder scheduler: send failed", "item_id", rem.ItemID, "error", err)
	}
}
