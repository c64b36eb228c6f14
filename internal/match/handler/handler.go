package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"inventory-recon/internal/extract"
	"inventory-recon/internal/match/model"
	matchsvc "inventory-recon/internal/match/service"
	"inventory-recon/internal/store"
)

type scanResponse struct {
	Metadata model.InvoiceMetadata `json:"metadata"`
	Results  []model.MatchResult   `json:"results"`
}

// Scan handles POST /invoices/scan: multipart image in, extraction plus
// match results out. The catalog is read once at the start of the match;
// it is never refreshed mid-pass.
func Scan(extractor extract.Extractor, products store.ProductStore, th matchsvc.Thresholds, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer r.Body.Close()

		if extractor == nil {
			writeError(w, http.StatusServiceUnavailable, "extraction is not configured")
			return
		}

		if err := r.ParseMultipartForm(64 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing image: "+err.Error())
			return
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading image: "+err.Error())
			return
		}

		ex, err := extractor.Extract(r.Context(), image, header.Header.Get("Content-Type"))
		if errors.Is(err, extract.ErrNoItems) {
			writeError(w, http.StatusUnprocessableEntity, "no items found")
			return
		}
		if err != nil {
			logger.Error().Err(err).Msg("extraction failed")
			writeError(w, http.StatusBadGateway, "extraction failed")
			return
		}

		catalog, err := products.ListProducts(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("loading catalog")
			writeError(w, http.StatusInternalServerError, "loading catalog")
			return
		}

		results := matchsvc.Match(ex.Items, catalog, th)
		writeJSON(w, http.StatusOK, scanResponse{Metadata: ex.Metadata, Results: results})

		logger.Info().
			Int("items", len(ex.Items)).
			Int("catalog", len(catalog)).
			Dur("elapsed", time.Since(start)).
			Msg("scan done")
	}
}

type matchRequest struct {
	Items []model.ExtractedLineItem `json:"items"`
}

type matchResponse struct {
	Results []model.MatchResult `json:"results"`
}

// Match handles POST /match: already-extracted line items in, one result
// per item out, order preserved.
func Match(products store.ProductStore, th matchsvc.Thresholds, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad request body: "+err.Error())
			return
		}
		if len(req.Items) == 0 {
			writeError(w, http.StatusBadRequest, "items is empty")
			return
		}

		catalog, err := products.ListProducts(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("loading catalog")
			writeError(w, http.StatusInternalServerError, "loading catalog")
			return
		}

		writeJSON(w, http.StatusOK, matchResponse{Results: matchsvc.Match(req.Items, catalog, th)})
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
