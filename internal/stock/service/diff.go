package service

import "inventory-recon/internal/stock/model"

// Diff computes the minimal signed adjustments that move inventory from
// "previous applied" to "current applied". Full outer join on productId:
//
//	only in previous            -> +previous.qty  (reverse in full)
//	only in current             -> -current.qty   (deduct in full)
//	both, current > previous    -> -(current - previous)
//	both, current < previous    -> +(previous - current)
//	both, equal                 -> nothing
//
// Applying the output to a stock state where previous was the last thing
// applied yields exactly the state where current is applied, however many
// complete/edit/re-complete rounds came before. Pure function; identical
// lists produce no deltas.
func Diff(previous, current []model.SnapshotItem) []model.StockDelta {
	prev := sumByProduct(previous)
	cur := sumByProduct(current)

	var out []model.StockDelta

	// current list order first: new and changed quantities
	seen := make(map[string]bool, len(cur))
	for _, it := range current {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true

		c := cur[it.ProductID]
		p, existed := prev[it.ProductID]
		switch {
		case !existed && c != 0:
			out = append(out, model.StockDelta{ProductID: it.ProductID, Quantity: -c, Reason: "item added"})
		case existed && c > p:
			out = append(out, model.StockDelta{ProductID: it.ProductID, Quantity: -(c - p), Reason: "quantity increased"})
		case existed && c < p:
			out = append(out, model.StockDelta{ProductID: it.ProductID, Quantity: p - c, Reason: "quantity decreased"})
		}
	}

	// then previous list order: removed items get reversed in full
	seen = make(map[string]bool, len(prev))
	for _, it := range previous {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true

		if _, still := cur[it.ProductID]; still {
			continue
		}
		if p := prev[it.ProductID]; p != 0 {
			out = append(out, model.StockDelta{ProductID: it.ProductID, Quantity: p, Reason: "item removed"})
		}
	}

	return out
}

// sumByProduct collapses duplicate product ids. The HTTP boundary rejects
// duplicates outright; this keeps the join well-defined regardless.
func sumByProduct(items []model.SnapshotItem) map[string]float64 {
	m := make(map[string]float64, len(items))
	for _, it := range items {
		m[it.ProductID] += it.Quantity
	}
	return m
}
