package model

// NormalizedProduct is the common shape every barcode provider response is
// converted into. It lives only for a single scan-to-confirmation flow and
// is never persisted.
type NormalizedProduct struct {
	ProductName   string   `json:"product_name"`
	CategoryTags  []string `json:"category_tags,omitempty"`
	Category      Category `json:"category"`
	ContainerSize string   `json:"container_size,omitempty"`
	Source        string   `json:"source"`
}
