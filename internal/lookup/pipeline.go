package lookup

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/product"
)

const (
	clientTimeout   = 10 * time.Second
	providerTimeout = 5 * time.Second
)

// Provider is a single external barcode database. Lookup returns
// (nil, nil) when the provider answers but has no match; an error means
// the provider itself failed (network, bad status, malformed body).
// All response-shape parsing lives inside the adapter.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, barcode string) (*model.NormalizedProduct, error)
}

// Pipeline tries providers in a fixed priority order and returns the first
// positive match, normalized. Provider failures are logged and skipped;
// they never surface to the caller.
type Pipeline struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// NewPipeline creates a pipeline over the given providers, tried in order.
func NewPipeline(logger *slog.Logger, providers ...Provider) *Pipeline {
	return &Pipeline{
		providers: providers,
		timeout:   providerTimeout,
		logger:    logger,
	}
}

// Lookup resolves a barcode against each provider in turn. It returns
// (nil, nil) when every provider was tried and none had the barcode; the
// only error it returns is the context's, so callers can tell "no provider
// had it" from "the scan was cancelled".
func (p *Pipeline) Lookup(ctx context.Context, barcode string) (*model.NormalizedProduct, error) {
	for _, prov := range p.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		found, err := prov.Lookup(callCtx, barcode)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("provider lookup failed", "provider", prov.Name(), "barcode", barcode, "error", err)
			continue
		}
		if found == nil {
			p.logger.Debug("provider miss", "provider", prov.Name(), "barcode", barcode)
			continue
		}

		return p.normalize(found), nil
	}

	return nil, nil
}

// normalize applies the shared name/category/size rules to a raw provider
// result.
func (p *Pipeline) normalize(raw *model.NormalizedProduct) *model.NormalizedProduct {
	raw.ProductName = product.SanitizeName(raw.ProductName)
	raw.Category = product.MapTags(raw.CategoryTags)
	return raw
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: clientTimeout}
}
