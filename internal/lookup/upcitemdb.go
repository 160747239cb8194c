package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/product"
)

// UPCItemDB queries the upcitemdb.com trial lookup endpoint. It carries no
// taxonomy, so category tags are synthesized from the brand and title.
type UPCItemDB struct {
	client  *http.Client
	baseURL string
}

// NewUPCItemDB creates a UPCItemDB adapter.
func NewUPCItemDB() *UPCItemDB {
	return &UPCItemDB{
		client:  newHTTPClient(),
		baseURL: "https://api.upcitemdb.com",
	}
}

func (u *UPCItemDB) Name() string { return "UPC Database" }

type upcResponse struct {
	Code  string `json:"code"`
	Items []struct {
		Title string `json:"title"`
		Brand string `json:"brand"`
		Size  string `json:"size"`
	} `json:"items"`
}

func (u *UPCItemDB) Lookup(ctx context.Context, barcode string) (*model.NormalizedProduct, error) {
	url := fmt.Sprintf("%s/prod/trial/lookup?upc=%s", u.baseURL, barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upcitemdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upcitemdb returned status %d", resp.StatusCode)
	}

	var body upcResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode upcitemdb response: %w", err)
	}

	if body.Code != "OK" || len(body.Items) == 0 {
		return nil, nil
	}

	item := body.Items[0]
	return &model.NormalizedProduct{
		ProductName:   item.Title,
		CategoryTags:  product.TagsFromText(item.Brand, item.Title),
		ContainerSize: product.ExtractSize(item.Title, item.Size),
		Source:        u.Name(),
	}, nil
}
