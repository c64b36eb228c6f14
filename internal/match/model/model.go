package model

import "github.com/shopspring/decimal"

// ExtractedLineItem is one row pulled out of a scanned supplier document.
// Produced by the vision collaborator, never mutated afterwards.
type ExtractedLineItem struct {
	RawText     string          `json:"rawText,omitempty"`
	Description string          `json:"description"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	Sku         string          `json:"sku,omitempty"`
	PartNumber  string          `json:"partNumber,omitempty"`
}

// CatalogProduct is a point-in-time view of a product record.
type CatalogProduct struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Sku        string  `json:"sku,omitempty"`
	PartNumber string  `json:"partNumber,omitempty"`
	Quantity   float64 `json:"quantity"`
}

// InvoiceMetadata is invoice-level data from the extraction step.
// Matching passes it through untouched.
type InvoiceMetadata struct {
	Supplier      string          `json:"supplier,omitempty"`
	InvoiceNumber string          `json:"invoiceNumber,omitempty"`
	Date          string          `json:"date,omitempty"`
	Total         decimal.Decimal `json:"total"`
}

type MatchStatus string

const (
	StatusMatched   MatchStatus = "matched"
	StatusPending   MatchStatus = "pending"
	StatusUnmatched MatchStatus = "unmatched"
)

// How a match was found.
const (
	MethodSku   = "sku"
	MethodPart  = "part"
	MethodExact = "exact"
	MethodFuzzy = "fuzzy"
)

type MatchResult struct {
	Item        ExtractedLineItem `json:"item"`
	ProductID   string            `json:"productId,omitempty"`
	ProductName string            `json:"productName,omitempty"`
	Confidence  *float64          `json:"confidence,omitempty"`
	Status      MatchStatus       `json:"status"`
	Method      string            `json:"method,omitempty"`
}

// Matched builds a confirmed result. Invariant: a matched result always
// carries a product id.
func Matched(item ExtractedLineItem, p CatalogProduct, confidence float64, method string) MatchResult {
	return MatchResult{
		Item:        item,
		ProductID:   p.ID,
		ProductName: p.Name,
		Confidence:  &confidence,
		Status:      StatusMatched,
		Method:      method,
	}
}

// Pending builds a plausible-but-unconfirmed result for human review.
func Pending(item ExtractedLineItem, p CatalogProduct, confidence float64) MatchResult {
	return MatchResult{
		Item:        item,
		ProductID:   p.ID,
		ProductName: p.Name,
		Confidence:  &confidence,
		Status:      StatusPending,
		Method:      MethodFuzzy,
	}
}

// Unmatched builds a result with no candidate: no product id, no confidence.
func Unmatched(item ExtractedLineItem) MatchResult {
	return MatchResult{Item: item, Status: StatusUnmatched}
}
