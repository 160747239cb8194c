package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/scan"
)

type fakeLookuper struct {
	result *model.NormalizedProduct
}

func (f *fakeLookuper) Lookup(ctx context.Context, barcode string) (*model.NormalizedProduct, error) {
	return f.result, nil
}

func setupScanAPI(t *testing.T, lookup scan.Lookuper) http.Handler {
	t.Helper()

	mgr := scan.NewManager(scan.RemoteCapture{}, scan.RemoteRecognizer{}, lookup, nil, slog.Default())
	h := NewScanHandler(mgr, slog.Default())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scan/start", h.Start)
	mux.HandleFunc("POST /api/scan/detected", h.Detected)
	mux.HandleFunc("GET /api/scan/status", h.Status)
	mux.HandleFunc("POST /api/scan/confirm", h.Confirm)
	mux.HandleFunc("POST /api/scan/cancel", h.Cancel)
	return mux
}

func scanStatus(t *testing.T, mux http.Handler) scan.Status {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/scan/status", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var st scan.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	return st
}

func waitForScanState(t *testing.T, mux http.Handler, want scan.State) scan.Status {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		st := scanStatus(t, mux)
		if st.State == want {
			return st
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for state %q, at %q", want, st.State)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestScanFlow(t *testing.T) {
	mux := setupScanAPI(t, &fakeLookuper{result: &model.NormalizedProduct{
		ProductName: "Sriracha Sauce",
		Category:    model.CategoryPantry,
		Source:      "Open Food Facts",
	}})

	rec := postJSON(t, mux, "POST", "/api/scan/start", map[string]string{})
	if rec.Code != http.StatusOK {
		t.Fatalf("start: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, mux, "POST", "/api/scan/detected", map[string]string{"barcode": "012345678905"})
	if rec.Code != http.StatusOK {
		t.Fatalf("detected: status = %d, body %s", rec.Code, rec.Body.String())
	}

	st := waitForScanState(t, mux, scan.StateAwaitConfirm)
	if st.Candidate == nil || st.Candidate.ProductName != "Sriracha Sauce" {
		t.Fatalf("candidate = %+v", st.Candidate)
	}

	rec = postJSON(t, mux, "POST", "/api/scan/confirm", map[string]bool{"accept": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: status = %d", rec.Code)
	}
	var confirmed struct {
		Candidate *model.NormalizedProduct `json:"candidate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("unmarshal confirm: %v", err)
	}
	if confirmed.Candidate == nil || confirmed.Candidate.ProductName != "Sriracha Sauce" {
		t.Errorf("confirmed candidate = %+v", confirmed.Candidate)
	}

	// A second confirm has nothing to resolve.
	rec = postJSON(t, mux, "POST", "/api/scan/confirm", map[string]bool{"accept": true})
	if rec.Code != http.StatusConflict {
		t.Errorf("second confirm: status = %d, want 409", rec.Code)
	}
}

func TestScanDetectedValidation(t *testing.T) {
	mux := setupScanAPI(t, &fakeLookuper{})

	tests := []struct {
		name    string
		barcode string
	}{
		{"empty", ""},
		{"too short", "1234"},
		{"not numeric", "abcdefgh9012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, mux, "POST", "/api/scan/detected", map[string]string{"barcode": tt.barcode})
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestScanNotFound(t *testing.T) {
	mux := setupScanAPI(t, &fakeLookuper{}) // lookup always misses

	postJSON(t, mux, "POST", "/api/scan/start", map[string]string{})
	postJSON(t, mux, "POST", "/api/scan/detected", map[string]string{"barcode": "000000000000"})

	waitForScanState(t, mux, scan.StateIdle)
}

func TestScanCancel(t *testing.T) {
	mux := setupScanAPI(t, &fakeLookuper{})

	postJSON(t, mux, "POST", "/api/scan/start", map[string]string{})

	req := httptest.NewRequest("POST", "/api/scan/cancel", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: status = %d, want 204", rec.Code)
	}

	if st := scanStatus(t, mux); st.State != scan.StateIdle {
		t.Errorf("state = %q, want idle", st.State)
	}
}
