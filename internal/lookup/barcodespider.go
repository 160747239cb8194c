package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/product"
)

// BarcodeSpider queries barcodespider.com. The API requires a token, so the
// adapter is only registered with the pipeline when one is configured.
type BarcodeSpider struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewBarcodeSpider creates a Barcode Spider adapter with the given API
// token.
func NewBarcodeSpider(token string) *BarcodeSpider {
	return &BarcodeSpider{
		client:  newHTTPClient(),
		baseURL: "https://api.barcodespider.com",
		token:   token,
	}
}

func (b *BarcodeSpider) Name() string { return "Barcode Spider" }

type spiderResponse struct {
	ItemResponse struct {
		Code int `json:"code"`
	} `json:"item_response"`
	ItemAttributes struct {
		Title string `json:"title"`
		Brand string `json:"brand"`
		Size  string `json:"size"`
	} `json:"item_attributes"`
}

func (b *BarcodeSpider) Lookup(ctx context.Context, barcode string) (*model.NormalizedProduct, error) {
	url := fmt.Sprintf("%s/v1/lookup?upc=%s", b.baseURL, barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("token", b.token)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("barcode spider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("barcode spider returned status %d", resp.StatusCode)
	}

	var body spiderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode barcode spider response: %w", err)
	}

	if body.ItemResponse.Code != 200 || body.ItemAttributes.Title == "" {
		return nil, nil
	}

	attrs := body.ItemAttributes
	return &model.NormalizedProduct{
		ProductName:   attrs.Title,
		CategoryTags:  product.TagsFromText(attrs.Brand, attrs.Title),
		ContainerSize: product.ExtractSize(attrs.Title, attrs.Size),
		Source:        b.Name(),
	}, nil
}
