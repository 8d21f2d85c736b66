package grpc

import "github.com/shopspring/decimal"

const ServiceName = "storefront.catalog.v1.CatalogService"

type MenuItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	PhotoURL      string          `json:"photo_url,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAtUnix int64           `json:"created_at_unix"`
	UpdatedAtUnix int64           `json:"updated_at_unix"`
}

type ItemFields struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	PhotoURL    string          `json:"photo_url,omitempty"`
	Description string          `json:"description,omitempty"`
}

type CreateItemRequest struct {
	Item ItemFields `json:"item"`
}

type UpdateItemRequest struct {
	ID   string     `json:"id"`
	Item ItemFields `json:"item"`
}

type ItemID struct {
	ID string `json:"id"`
}

type ListItemsRequest struct {
	Category string `json:"category,omitempty"`
}

type ListItemsResponse struct {
	Items []MenuItem `json:"items"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type AttachPhotoRequest struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

type Empty struct{}
