package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"inventory-recon/internal/stock/model"
)

// Store is the narrow slice of the document store the engine needs.
// AdjustQuantity must be atomic per product (read-modify-write inside the
// store, no lost updates against concurrent adjustments).
type Store interface {
	AdjustQuantity(ctx context.Context, productID string, delta float64, reason string) error
	ProductQuantity(ctx context.Context, productID string) (float64, error)
	// AppliedSnapshot returns nil when the job has never been applied.
	AppliedSnapshot(ctx context.Context, jobID string) ([]model.SnapshotItem, error)
	ReplaceAppliedSnapshot(ctx context.Context, jobID string, items []model.SnapshotItem) error
}

// Engine drives job completion: diff against the last applied snapshot,
// apply each delta through the store's atomic increment, persist a
// snapshot that reflects exactly what succeeded.
type Engine struct {
	store Store
	log   zerolog.Logger
}

func NewEngine(store Store, logger zerolog.Logger) *Engine {
	return &Engine{store: store, log: logger}
}

// Complete applies the current item list for jobID. Safe to call any
// number of times: the first completion diffs against an empty snapshot,
// re-completions diff against whatever was last applied. Per-product
// failures don't abort the batch — they are reported in the result, and
// the stored snapshot keeps those products at their previously applied
// quantity so a retry computes exactly the remaining diff.
func (e *Engine) Complete(ctx context.Context, jobID string, current []model.SnapshotItem) (model.ReconcileResult, error) {
	previous, err := e.store.AppliedSnapshot(ctx, jobID)
	if err != nil {
		return model.ReconcileResult{}, fmt.Errorf("loading applied snapshot: %w", err)
	}

	deltas := Diff(previous, current)

	var res model.ReconcileResult
	failed := make(map[string]bool)
	for _, d := range deltas {
		reason := fmt.Sprintf("job %s: %s", jobID, d.Reason)
		if err := e.store.AdjustQuantity(ctx, d.ProductID, d.Quantity, reason); err != nil {
			e.log.Error().Err(err).
				Str("job_id", jobID).
				Str("product_id", d.ProductID).
				Float64("delta", d.Quantity).
				Msg("delta application failed")
			failed[d.ProductID] = true
			res.Failed = append(res.Failed, model.FailedDelta{ProductID: d.ProductID, Error: err.Error()})
			continue
		}
		res.Adjusted++
	}

	snapshot := nextSnapshot(previous, current, failed)
	if err := e.store.ReplaceAppliedSnapshot(ctx, jobID, snapshot); err != nil {
		return res, fmt.Errorf("replacing applied snapshot: %w", err)
	}

	e.log.Info().
		Str("job_id", jobID).
		Int("deltas", len(deltas)).
		Int("adjusted", res.Adjusted).
		Int("failed", len(res.Failed)).
		Msg("reconcile done")
	return res, nil
}

// ValidateAvailability is the draft-time guard: for every product whose
// requested quantity would deduct more than is on hand (over and above
// what this job already has applied), report a violation. Runs before
// reconciliation; a job that passes here can still hit store failures
// later, but it can't overdraw stock.
func (e *Engine) ValidateAvailability(ctx context.Context, jobID string, current []model.SnapshotItem) ([]model.StockViolation, error) {
	previous, err := e.store.AppliedSnapshot(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("loading applied snapshot: %w", err)
	}
	applied := make(map[string]float64, len(previous))
	for _, it := range previous {
		applied[it.ProductID] += it.Quantity
	}

	var out []model.StockViolation
	for _, it := range current {
		additional := it.Quantity - applied[it.ProductID]
		if additional <= 0 {
			continue
		}
		onHand, err := e.store.ProductQuantity(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("reading quantity of %s: %w", it.ProductID, err)
		}
		if additional > onHand {
			out = append(out, model.StockViolation{
				ProductID: it.ProductID,
				Requested: additional,
				Available: onHand,
			})
		}
	}
	return out, nil
}

// nextSnapshot is the applied state after a (possibly partial) run:
// succeeded products move to their requested quantity, failed products
// stay where the previous snapshot had them.
func nextSnapshot(previous, current []model.SnapshotItem, failed map[string]bool) []model.SnapshotItem {
	prev := make(map[string]float64, len(previous))
	for _, it := range previous {
		prev[it.ProductID] += it.Quantity
	}

	out := make([]model.SnapshotItem, 0, len(current))
	inCurrent := make(map[string]bool, len(current))
	for _, it := range current {
		if inCurrent[it.ProductID] {
			continue
		}
		inCurrent[it.ProductID] = true

		if failed[it.ProductID] {
			if p, ok := prev[it.ProductID]; ok {
				out = append(out, model.SnapshotItem{ProductID: it.ProductID, Quantity: p})
			}
			// failed and never applied before: stays out of the snapshot
			continue
		}
		out = append(out, model.SnapshotItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	// removed items whose reversal failed remain applied at the old quantity
	for _, it := range previous {
		if inCurrent[it.ProductID] || !failed[it.ProductID] {
			continue
		}
		inCurrent[it.ProductID] = true
		out = append(out, model.SnapshotItem{ProductID: it.ProductID, Quantity: prev[it.ProductID]})
	}

	return out
}
