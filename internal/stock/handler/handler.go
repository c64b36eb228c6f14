package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"inventory-recon/internal/stock/model"
	stocksvc "inventory-recon/internal/stock/service"
	"inventory-recon/internal/store"
)

type completeRequest struct {
	Items []model.ConfirmedItem `json:"items"`
}

// Complete handles POST /jobs/{jobID}/complete: the human-confirmed item
// list goes through the reconciliation engine. 200 when every delta
// applied, 207 when some products still need a retry.
func Complete(engine *stocksvc.Engine, products store.ProductStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		jobID := chi.URLParam(r, "jobID")
		if jobID == "" {
			writeError(w, http.StatusBadRequest, "missing job id")
			return
		}

		var req completeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad request body: "+err.Error())
			return
		}
		current, err := confirmedToSnapshot(req.Items)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// price updates are independent of stock; failures only log
		for _, it := range req.Items {
			if !it.ApplyPrice {
				continue
			}
			if err := products.UpdatePrice(r.Context(), it.ProductID, it.UnitPrice); err != nil {
				logger.Warn().Err(err).
					Str("job_id", jobID).
					Str("product_id", it.ProductID).
					Msg("price update failed")
			}
		}

		res, err := engine.Complete(r.Context(), jobID, current)
		if err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Msg("reconcile failed")
			writeError(w, http.StatusInternalServerError, "reconcile failed")
			return
		}

		status := http.StatusOK
		if !res.Complete() {
			status = http.StatusMultiStatus
		}
		writeJSON(w, status, res)
	}
}

type validateResponse struct {
	OK         bool                   `json:"ok"`
	Violations []model.StockViolation `json:"violations,omitempty"`
}

// Validate handles POST /jobs/{jobID}/validate: the draft-time
// availability check. 409 with the violating products when the request
// would overdraw stock; nothing is mutated either way.
func Validate(engine *stocksvc.Engine, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		jobID := chi.URLParam(r, "jobID")
		if jobID == "" {
			writeError(w, http.StatusBadRequest, "missing job id")
			return
		}

		var req completeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad request body: "+err.Error())
			return
		}
		current, err := confirmedToSnapshot(req.Items)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		violations, err := engine.ValidateAvailability(r.Context(), jobID, current)
		if err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Msg("availability check failed")
			writeError(w, http.StatusInternalServerError, "availability check failed")
			return
		}
		if len(violations) > 0 {
			writeJSON(w, http.StatusConflict, validateResponse{OK: false, Violations: violations})
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{OK: true})
	}
}

// confirmedToSnapshot is the boundary guard: every item needs a product
// id (confirming without one is an ambiguous override), quantities must
// be non-negative, duplicates are rejected. Items with ApplyQty unset
// don't participate in stock at all.
func confirmedToSnapshot(items []model.ConfirmedItem) ([]model.SnapshotItem, error) {
	seen := make(map[string]bool, len(items))
	out := make([]model.SnapshotItem, 0, len(items))
	for i, it := range items {
		if it.ProductID == "" {
			return nil, fmt.Errorf("item %d has no product selected", i)
		}
		if it.Quantity < 0 {
			return nil, fmt.Errorf("item %d has a negative quantity", i)
		}
		if !it.ApplyQty {
			continue
		}
		if seen[it.ProductID] {
			return nil, fmt.Errorf("product %s appears more than once", it.ProductID)
		}
		seen[it.ProductID] = true
		out = append(out, model.SnapshotItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
