package domain

import (
	"context"
	"errors"
)

type Service interface {
	Start(ctx context.Context) error
	Stop()

	List(ctx context.Context, q Query) ListResult
	Create(ctx context.Context, req SaveRequest) (*Asset, error)
	Update(ctx context.Context, assetID string, req SaveRequest) error
	Delete(ctx context.Context, assetID string, confirmed bool) error
	Lookup(ctx context.Context, assetID string) (*Asset, error)
	ExportCSV(ctx context.Context, q Query) string
	Watch() (<-chan []Asset, func())
}

type Query struct {
	Search   string
	Category string
	Status   string
}

type ListResult struct {
	Records  []Asset `json:"records"`
	Mode     string  `json:"mode"`
	Loading  bool    `json:"loading"`
	LowStock int     `json:"low_stock"`
}

// SaveRequest carries the asset form for both create and edit.
type SaveRequest struct {
	AssetID      string `json:"assetId"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	Quantity     *int   `json:"quantity"`
	MinQuantity  *int   `json:"minQuantity"`
	Unit         string `json:"unit"`
	Status       string `json:"status"`
	Department   string `json:"department"`
	Description  string `json:"description"`
	PurchaseDate string `json:"purchaseDate"`
	Cost         string `json:"cost"`
}

var (
	ErrInvalidAssetID = errors.New("invalid_asset_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrNotFound       = errors.New("not_found")
)
