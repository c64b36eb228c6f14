package model

import "github.com/shopspring/decimal"

// SnapshotItem is one (product, quantity) pair of an applied snapshot —
// the quantities whose stock effect was actually committed the last time
// the job reached a completed state.
type SnapshotItem struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// StockDelta is a signed adjustment for exactly one product. Ephemeral:
// computed fresh on every reconciliation, consumed by one atomic
// increment call, never persisted.
type StockDelta struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
	Reason    string  `json:"reason"`
}

// ConfirmedItem is a human-confirmed line of a job or invoice as handed
// over by the review UI.
type ConfirmedItem struct {
	ProductID  string          `json:"productId"`
	Quantity   float64         `json:"quantity"`
	ApplyQty   bool            `json:"applyQty"`
	ApplyPrice bool            `json:"applyPrice"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// FailedDelta identifies a product whose adjustment did not go through
// and still needs a retry.
type FailedDelta struct {
	ProductID string `json:"productId"`
	Error     string `json:"error"`
}

// ReconcileResult is the partial-success report of one completion.
type ReconcileResult struct {
	Adjusted int           `json:"adjusted"`
	Failed   []FailedDelta `json:"failed,omitempty"`
}

// Complete reports whether every delta of the reconciliation went through.
func (r ReconcileResult) Complete() bool { return len(r.Failed) == 0 }

// StockViolation is a draft-time availability failure: the requested
// additional deduction exceeds what is on hand.
type StockViolation struct {
	ProductID string  `json:"productId"`
	Requested float64 `json:"requested"`
	Available float64 `json:"available"`
}
