package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/larder/internal/model"
)

// ErrNoCandidate is returned by Confirm when no lookup result is awaiting
// confirmation.
var ErrNoCandidate = errors.New("no candidate awaiting confirmation")

// State is the scan session state.
type State string

const (
	StateIdle         State = "idle"
	StateCapturing    State = "capturing"
	StateRecognizing  State = "recognizing"
	StateAwaitConfirm State = "awaiting_confirmation"
)

// How long to wait for the capture device to come up before giving up.
const acquireTimeout = 10 * time.Second

// Stream is a live capture handle. Stop releases the underlying device and
// must be safe to call once on every session exit path.
type Stream interface {
	Stop()
}

// Constraints are hints passed to the capture boundary.
type Constraints struct {
	FacingMode string
	Width      int
	Height     int
}

// Capture is the camera boundary. The core never touches frames; it only
// holds the opaque stream handle so it can release it.
type Capture interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}

// Recognizer is the barcode-decoding boundary. Start begins decoding and
// invokes onDetected with each decoded barcode string; Stop halts decoding.
type Recognizer interface {
	Start(onDetected func(code string)) error
	Stop()
}

// Lookuper resolves a barcode to a normalized product. (nil, nil) means no
// database had the barcode.
type Lookuper interface {
	Lookup(ctx context.Context, barcode string) (*model.NormalizedProduct, error)
}

// CaptureError reports that the camera could not be acquired or the
// recognizer could not start. The scan flow is aborted; no retry.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string { return "capture: " + e.Err.Error() }
func (e *CaptureError) Unwrap() error { return e.Err }

// Status is a snapshot of the session, published on every transition.
type Status struct {
	State     State                    `json:"state"`
	Barcode   string                   `json:"barcode,omitempty"`
	Candidate *model.NormalizedProduct `json:"candidate,omitempty"`
	NotFound  bool                     `json:"not_found,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// StatusCallback is called whenever the session state changes.
type StatusCallback func(Status)

// Manager runs the scan session state machine
// idle -> capturing -> recognizing -> awaiting_confirmation -> idle.
// The capture stream is acquired on scan start and released on every exit
// path, and at most one lookup is in flight; starting a new scan cancels
// the previous session.
type Manager struct {
	mu         sync.Mutex
	capture    Capture
	recognizer Recognizer
	lookup     Lookuper
	callback   StatusCallback
	logger     *slog.Logger

	state     State
	stream    Stream
	barcode   string
	candidate *model.NormalizedProduct
	cancel    context.CancelFunc
	session   uint64
}

// NewManager creates an idle scan manager.
func NewManager(capture Capture, recognizer Recognizer, lookup Lookuper, cb StatusCallback, logger *slog.Logger) *Manager {
	return &Manager{
		capture:    capture,
		recognizer: recognizer,
		lookup:     lookup,
		callback:   cb,
		logger:     logger,
		state:      StateIdle,
	}
}

// Status returns the current session status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// Start begins a scan session: it cancels any prior session, acquires the
// capture stream, and starts the recognizer. Any failure releases whatever
// was acquired and returns a *CaptureError.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	m.resetLocked()
	seq := m.session
	m.mu.Unlock()

	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	stream, err := m.capture.Acquire(acquireCtx, Constraints{
		FacingMode: "environment",
		Width:      640,
		Height:     480,
	})
	if err != nil {
		m.failStart(seq, err)
		return &CaptureError{Err: err}
	}

	m.mu.Lock()
	if seq != m.session {
		// Another Start or Cancel raced us; we own the stream, release it.
		m.mu.Unlock()
		stream.Stop()
		return nil
	}
	m.stream = stream
	m.mu.Unlock()

	if err := m.recognizer.Start(m.Detected); err != nil {
		m.mu.Lock()
		if seq == m.session {
			m.releaseLocked()
			m.notifyLocked(Status{State: StateIdle, Error: err.Error()})
		}
		m.mu.Unlock()
		return &CaptureError{Err: err}
	}

	m.mu.Lock()
	if seq == m.session {
		m.state = StateCapturing
		m.notifyLocked(m.statusLocked())
	}
	m.mu.Unlock()
	return nil
}

// Detected is the recognition-boundary callback. The first detection stops
// capture, releases the camera, and kicks off the provider lookup.
func (m *Manager) Detected(code string) {
	m.mu.Lock()
	if m.state != StateCapturing {
		m.mu.Unlock()
		return
	}

	m.recognizer.Stop()
	m.releaseLocked()

	m.state = StateRecognizing
	m.barcode = code

	lookupCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	seq := m.session
	m.notifyLocked(m.statusLocked())
	m.mu.Unlock()

	go m.runLookup(lookupCtx, seq, code)
}

func (m *Manager) runLookup(ctx context.Context, seq uint64, code string) {
	found, err := m.lookup.Lookup(ctx, code)

	m.mu.Lock()
	defer m.mu.Unlock()

	if seq != m.session || m.state != StateRecognizing {
		// Session was cancelled or superseded while we were looking up.
		return
	}
	m.cancel = nil

	if err != nil {
		// Only a cancelled context reaches here; treat it as a cancel.
		m.logger.Debug("lookup aborted", "barcode", code, "error", err)
		m.state = StateIdle
		m.barcode = ""
		m.notifyLocked(m.statusLocked())
		return
	}

	if found == nil {
		m.logger.Info("barcode not found in any database", "barcode", code)
		m.state = StateIdle
		status := m.statusLocked()
		status.Barcode = code
		status.NotFound = true
		m.barcode = ""
		m.notifyLocked(status)
		return
	}

	m.candidate = found
	m.state = StateAwaitConfirm
	m.notifyLocked(m.statusLocked())
}

// Confirm resolves an awaiting_confirmation session. On accept it returns
// the candidate so the caller can prefill the add form; either way the
// session returns to idle and the candidate is discarded.
func (m *Manager) Confirm(accept bool) (*model.NormalizedProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitConfirm {
		return nil, ErrNoCandidate
	}

	candidate := m.candidate
	m.candidate = nil
	m.barcode = ""
	m.state = StateIdle
	m.notifyLocked(m.statusLocked())

	if !accept {
		return nil, nil
	}
	return candidate, nil
}

// Cancel aborts the session on any path: it stops the recognizer, releases
// the stream, and abandons an in-flight lookup without touching the store.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.notifyLocked(m.statusLocked())
}

// failStart reports a failed acquire unless the session was superseded.
func (m *Manager) failStart(seq uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.session {
		return
	}
	m.logger.Warn("capture acquire failed", "error", err)
	m.notifyLocked(Status{State: StateIdle, Error: err.Error()})
}

// resetLocked forces the session back to idle, releasing everything held.
// Callers hold the lock.
func (m *Manager) resetLocked() {
	if m.state == StateCapturing {
		m.recognizer.Stop()
	}
	m.releaseLocked()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state = StateIdle
	m.barcode = ""
	m.candidate = nil
	m.session++
}

func (m *Manager) releaseLocked() {
	if m.stream != nil {
		m.stream.Stop()
		m.stream = nil
	}
}

func (m *Manager) statusLocked() Status {
	return Status{
		State:     m.state,
		Barcode:   m.barcode,
		Candidate: m.candidate,
	}
}

func (m *Manager) notifyLocked(s Status) {
	if m.callback != nil {
		m.callback(s)
	}
}

