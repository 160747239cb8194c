package lookup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/larder/internal/model"
)

type fakeProvider struct {
	name   string
	result *model.NormalizedProduct
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Lookup(ctx context.Context, barcode string) (*model.NormalizedProduct, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.result, f.err
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestPipelineFirstMatchWins(t *testing.T) {
	first := &fakeProvider{name: "first", result: &model.NormalizedProduct{
		ProductName:  "Whole Milk",
		CategoryTags: []string{"en:milk"},
		Source:       "first",
	}}
	second := &fakeProvider{name: "second"}

	p := NewPipeline(testLogger(), first, second)

	got, err := p.Lookup(context.Background(), "012345678905")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Source != "first" {
		t.Errorf("source = %q, want %q", got.Source, "first")
	}
	if second.calls != 0 {
		t.Errorf("second provider called %d times, want 0", second.calls)
	}
}

func TestPipelineFallsThroughOnMiss(t *testing.T) {
	first := &fakeProvider{name: "first"} // (nil, nil) miss
	second := &fakeProvider{name: "second", result: &model.NormalizedProduct{
		ProductName:  "Sriracha Sauce",
		CategoryTags: []string{"en:condiments"},
		Source:       "second",
	}}

	p := NewPipeline(testLogger(), first, second)

	got, err := p.Lookup(context.Background(), "012345678905")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil || got.Source != "second" {
		t.Fatalf("got %+v, want result from second", got)
	}
	if first.calls != 1 {
		t.Errorf("first provider called %d times, want 1", first.calls)
	}
}

func TestPipelineFallsThroughOnError(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("boom")}
	second := &fakeProvider{name: "second", result: &model.NormalizedProduct{
		ProductName: "Rice 2kg",
		Source:      "second",
	}}

	p := NewPipeline(testLogger(), first, second)

	got, err := p.Lookup(context.Background(), "012345678905")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil || got.Source != "second" {
		t.Fatalf("got %+v, want result from second", got)
	}
}

func TestPipelineAllMiss(t *testing.T) {
	p := NewPipeline(testLogger(), &fakeProvider{name: "a"}, &fakeProvider{name: "b"})

	got, err := p.Lookup(context.Background(), "000000000000")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for all-miss", got)
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	prov := &fakeProvider{name: "a", result: &model.NormalizedProduct{ProductName: "x"}}
	p := NewPipeline(testLogger(), prov)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Lookup(ctx, "012345678905")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if prov.calls != 0 {
		t.Errorf("provider called %d times after cancel, want 0", prov.calls)
	}
}

func TestPipelineNormalizesResult(t *testing.T) {
	prov := &fakeProvider{name: "a", result: &model.NormalizedProduct{
		ProductName:  `<b>Cheddar</b> "Cheese"`,
		CategoryTags: []string{"en:cheeses"},
		Source:       "a",
	}}
	p := NewPipeline(testLogger(), prov)

	got, err := p.Lookup(context.Background(), "012345678905")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.ProductName != "bCheddar/b Cheese" {
		t.Errorf("name = %q, markup characters not stripped", got.ProductName)
	}
	if got.Category != model.CategoryDairy {
		t.Errorf("category = %q, want %q", got.Category, model.CategoryDairy)
	}
}

func TestOpenFoodFactsLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/product/0073628089124.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": 1,
			"product": {
				"product_name": "Sriracha Hot Chili Sauce",
				"categories_tags": ["en:condiments", "en:sauces"],
				"quantity": "17 oz"
			}
		}`))
	}))
	defer srv.Close()

	off := NewOpenFoodFacts()
	off.baseURL = srv.URL

	got, err := off.Lookup(context.Background(), "0073628089124")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.ProductName != "Sriracha Hot Chili Sauce" {
		t.Errorf("name = %q", got.ProductName)
	}
	if got.ContainerSize != "17 oz" {
		t.Errorf("size = %q, want %q", got.ContainerSize, "17 oz")
	}
	if got.Source != "Open Food Facts" {
		t.Errorf("source = %q", got.Source)
	}
}

func TestOpenFoodFactsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 0}`))
	}))
	defer srv.Close()

	off := NewOpenFoodFacts()
	off.baseURL = srv.URL

	got, err := off.Lookup(context.Background(), "000000000000")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for status 0", got)
	}
}

func TestOpenFoodFactsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	off := NewOpenFoodFacts()
	off.baseURL = srv.URL

	if _, err := off.Lookup(context.Background(), "000000000000"); err == nil {
		t.Fatal("expected an error for status 500")
	}
}

func TestUPCItemDBLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("upc"); got != "012345678905" {
			t.Errorf("upc = %q", got)
		}
		w.Write([]byte(`{
			"code": "OK",
			"items": [{"title": "Saltine Crackers", "brand": "Nabisco", "size": "16 oz"}]
		}`))
	}))
	defer srv.Close()

	upc := NewUPCItemDB()
	upc.baseURL = srv.URL

	got, err := upc.Lookup(context.Background(), "012345678905")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.ProductName != "Saltine Crackers" {
		t.Errorf("name = %q", got.ProductName)
	}
	if len(got.CategoryTags) != 1 || got.CategoryTags[0] != "en:snacks" {
		t.Errorf("tags = %v, want [en:snacks]", got.CategoryTags)
	}
	if got.ContainerSize != "16 oz" {
		t.Errorf("size = %q", got.ContainerSize)
	}
}

func TestUPCItemDBNoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "OK", "items": []}`))
	}))
	defer srv.Close()

	upc := NewUPCItemDB()
	upc.baseURL = srv.URL

	got, err := upc.Lookup(context.Background(), "000000000000")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for empty items", got)
	}
}

func TestBarcodeSpiderNotFound404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("token"); got != "test-token" {
			t.Errorf("token header = %q", got)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	spider := NewBarcodeSpider("test-token")
	spider.baseURL = srv.URL

	got, err := spider.Lookup(context.Background(), "000000000000")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for 404", got)
	}
}

func TestBarcodeSpiderLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"item_response": {"code": 200},
			"item_attributes": {"title": "Chicken Broth", "brand": "Swanson", "size": "32 oz"}
		}`))
	}))
	defer srv.Close()

	spider := NewBarcodeSpider("test-token")
	spider.baseURL = srv.URL

	got, err := spider.Lookup(context.Background(), "012345678905")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.ProductName != "Chicken Broth" {
		t.Errorf("name = %q", got.ProductName)
	}
	if got.Source != "Barcode Spider" {
		t.Errorf("source = %q", got.Source)
	}
}
