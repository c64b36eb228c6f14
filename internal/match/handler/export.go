package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	excelize "github.com/xuri/excelize/v2"

	"inventory-recon/internal/match/model"
)

type exportRequest struct {
	Results []model.MatchResult `json:"results"`
}

// Export handles POST /match/export: match results in, an xlsx review
// workbook out, one row per line item with the suggested product and
// confidence next to it.
func Export(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req exportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad request body: "+err.Error())
			return
		}
		if len(req.Results) == 0 {
			writeError(w, http.StatusBadRequest, "results is empty")
			return
		}

		f, err := buildWorkbook(req.Results)
		if err != nil {
			logger.Error().Err(err).Msg("building workbook")
			writeError(w, http.StatusInternalServerError, "building workbook")
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="match-review.xlsx"`)
		if err := f.Write(w); err != nil {
			logger.Error().Err(err).Msg("writing workbook")
		}
	}
}

func buildWorkbook(results []model.MatchResult) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := []any{"Description", "Qty", "Unit Price", "SKU", "Part No",
		"Status", "Method", "Product ID", "Product", "Confidence"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, res := range results {
		row := []any{
			res.Item.Description,
			res.Item.Quantity,
			res.Item.UnitPrice.String(),
			res.Item.Sku,
			res.Item.PartNumber,
			string(res.Status),
			res.Method,
			res.ProductID,
			res.ProductName,
		}
		if res.Confidence != nil {
			row = append(row, *res.Confidence)
		} else {
			row = append(row, "")
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}
