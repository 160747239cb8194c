package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/product"
)

// OpenFoodFacts queries the Open Food Facts public product database.
// It is the primary provider: free, no key, and the only one with real
// taxonomy tags.
type OpenFoodFacts struct {
	client  *http.Client
	baseURL string
}

// NewOpenFoodFacts creates an Open Food Facts adapter.
func NewOpenFoodFacts() *OpenFoodFacts {
	return &OpenFoodFacts{
		client:  newHTTPClient(),
		baseURL: "https://world.openfoodfacts.org",
	}
}

func (o *OpenFoodFacts) Name() string { return "Open Food Facts" }

type offResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName    string   `json:"product_name"`
		CategoriesTags []string `json:"categories_tags"`
		Quantity       string   `json:"quantity"`
	} `json:"product"`
}

func (o *OpenFoodFacts) Lookup(ctx context.Context, barcode string) (*model.NormalizedProduct, error) {
	url := fmt.Sprintf("%s/api/v0/product/%s.json", o.baseURL, barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open food facts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open food facts returned status %d", resp.StatusCode)
	}

	var body offResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode open food facts response: %w", err)
	}

	// status 0 is the API's "product not found"
	if body.Status != 1 {
		return nil, nil
	}

	return &model.NormalizedProduct{
		ProductName:   body.Product.ProductName,
		CategoryTags:  body.Product.CategoriesTags,
		ContainerSize: product.ExtractSize(body.Product.ProductName, body.Product.Quantity),
		Source:        o.Name(),
	}, nil
}
