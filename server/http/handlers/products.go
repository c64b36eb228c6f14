package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"inventory-recon/internal/match/model"
	"inventory-recon/internal/store"
)

// ListProducts handles GET /products: the same point-in-time catalog
// snapshot the matching engine reads.
func ListProducts(products store.ProductStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := products.ListProducts(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("listing products")
			writeError(w, http.StatusInternalServerError, "listing products")
			return
		}
		if catalog == nil {
			catalog = []model.CatalogProduct{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": catalog})
	}
}

type createProductRequest struct {
	Name       string          `json:"name"`
	Sku        string          `json:"sku"`
	PartNumber string          `json:"partNumber"`
	Quantity   float64         `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// CreateProduct handles POST /products.
func CreateProduct(products store.ProductStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req createProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad request body: "+err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if req.Quantity < 0 {
			writeError(w, http.StatusBadRequest, "quantity must be non-negative")
			return
		}

		id, err := products.CreateProduct(r.Context(), model.CatalogProduct{
			Name:       strings.TrimSpace(req.Name),
			Sku:        strings.TrimSpace(req.Sku),
			PartNumber: strings.TrimSpace(req.PartNumber),
			Quantity:   req.Quantity,
		}, req.Price)
		if err != nil {
			logger.Error().Err(err).Msg("creating product")
			writeError(w, http.StatusInternalServerError, "creating product")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
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
