package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	matchmodel "inventory-recon/internal/match/model"
	stockmodel "inventory-recon/internal/stock/model"
)

// ErrNotFound is returned for lookups and adjustments against unknown ids.
var ErrNotFound = errors.New("not found")

// ProductStore is the catalog side of the document store.
type ProductStore interface {
	// ListProducts returns a point-in-time catalog snapshot in stable order.
	ListProducts(ctx context.Context) ([]matchmodel.CatalogProduct, error)
	GetProduct(ctx context.Context, id string) (matchmodel.CatalogProduct, error)
	CreateProduct(ctx context.Context, p matchmodel.CatalogProduct, price decimal.Decimal) (string, error)
	// AdjustQuantity atomically increments the on-hand quantity by delta.
	AdjustQuantity(ctx context.Context, id string, delta float64, reason string) error
	ProductQuantity(ctx context.Context, id string) (float64, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
}

// SnapshotStore persists the per-job applied snapshot.
type SnapshotStore interface {
	// AppliedSnapshot returns nil when the job was never applied.
	AppliedSnapshot(ctx context.Context, jobID string) ([]stockmodel.SnapshotItem, error)
	// ReplaceAppliedSnapshot overwrites (never merges) the applied snapshot.
	ReplaceAppliedSnapshot(ctx context.Context, jobID string, items []stockmodel.SnapshotItem) error
}
