package extract

import (
	"context"
	"errors"

	"inventory-recon/internal/match/model"
)

// ErrNoItems means the vision step returned nothing usable. Surfaced to
// the user as "no items found"; no partial state is created.
var ErrNoItems = errors.New("no usable items found")

// Extraction is what comes back from one scanned document: the line
// items plus invoice-level metadata, which matching passes through
// untouched.
type Extraction struct {
	Items    []model.ExtractedLineItem `json:"items"`
	Metadata model.InvoiceMetadata     `json:"metadata"`
}

// Extractor turns a document image into line items. Implemented by the
// external vision collaborator; everything downstream only sees this.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*Extraction, error)
}
