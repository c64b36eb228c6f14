package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"inventory-recon/internal/match/model"
	"inventory-recon/internal/utils"
)

// The model is told to answer with bare JSON but still loves code fences
// and stringly-typed numbers; the wire types below absorb both.

type rawExtraction struct {
	Supplier      string    `json:"supplier"`
	InvoiceNumber string    `json:"invoiceNumber"`
	Date          string    `json:"date"`
	Total         flexMoney `json:"total"`
	Items         []rawItem `json:"items"`
}

type rawItem struct {
	RawText     string    `json:"rawText"`
	Description string    `json:"description"`
	Quantity    flexFloat `json:"quantity"`
	UnitPrice   flexMoney `json:"unitPrice"`
	Total       flexMoney `json:"total"`
	Sku         string    `json:"sku"`
	PartNumber  string    `json:"partNumber"`
}

func parseExtraction(text string) (*Extraction, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoItems
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decoding extraction payload: %w", err)
	}

	items := make([]model.ExtractedLineItem, 0, len(raw.Items))
	for _, it := range raw.Items {
		desc := strings.TrimSpace(it.Description)
		rawText := strings.TrimSpace(it.RawText)
		if desc == "" && rawText == "" {
			continue
		}
		if desc == "" {
			desc = rawText
		}
		qty := float64(it.Quantity)
		if qty < 0 {
			qty = 0
		}
		items = append(items, model.ExtractedLineItem{
			RawText:     rawText,
			Description: desc,
			Quantity:    qty,
			UnitPrice:   it.UnitPrice.Decimal,
			Total:       it.Total.Decimal,
			Sku:         strings.TrimSpace(it.Sku),
			PartNumber:  strings.TrimSpace(it.PartNumber),
		})
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	return &Extraction{
		Items: items,
		Metadata: model.InvoiceMetadata{
			Supplier:      strings.TrimSpace(raw.Supplier),
			InvoiceNumber: strings.TrimSpace(raw.InvoiceNumber),
			Date:          strings.TrimSpace(raw.Date),
			Total:         raw.Total.Decimal,
		},
	}, nil
}

// flexFloat accepts both JSON numbers and printed amounts in strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		v, _ := utils.ParseAmount(str)
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexMoney is the decimal counterpart of flexFloat.
type flexMoney struct {
	decimal.Decimal
}

func (m *flexMoney) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		if d, err := decimal.NewFromString(strings.TrimSpace(str)); err == nil {
			m.Decimal = d
			return nil
		}
		if v, ok := utils.ParseAmount(str); ok {
			m.Decimal = decimal.NewFromFloat(v)
			return nil
		}
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.UnmarshalJSON(b)
}
