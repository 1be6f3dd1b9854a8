package domain

import "github.com/shopspring/decimal"

// Item is an immutable catalog snapshot as returned by the catalog service
type Item struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"` // Empty when the item has none
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active"`
}

func (i Item) InStock() bool {
	return i.StockQuantity > 0
}

// Category is a plain category label
type Category = string

// ItemList is the body of GET /items
type ItemList struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
}

// CategoryList is the body of GET /categories
type CategoryList struct {
	Categories []Category `json:"categories"`
	Count      int        `json:"count"`
}

// PingStatus is the body of GET /ping
type PingStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Connected bool   `json:"connected"`
}
