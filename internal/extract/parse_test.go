package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	text := "```json\n" + `{
		"supplier": "ACME Parts GmbH",
		"invoiceNumber": "INV-2031",
		"date": "2026-08-14",
		"total": "1 234,50",
		"items": [
			{"rawText": "2x Widget AB-100 9.99", "description": "Widget",
			 "quantity": 2, "unitPrice": 9.99, "total": "19.98", "sku": "AB-100"},
			{"description": "Brake pad set", "quantity": "4", "unitPrice": "12,50",
			 "total": 50, "partNumber": "PN-77"},
			{"rawText": "", "description": "", "quantity": 1}
		]
	}` + "\n```"

	ex, err := parseExtraction(text)
	require.NoError(t, err)
	require.Len(t, ex.Items, 2, "blank row is dropped")

	assert.Equal(t, "ACME Parts GmbH", ex.Metadata.Supplier)
	assert.Equal(t, "INV-2031", ex.Metadata.InvoiceNumber)
	assert.Equal(t, "1234.5", ex.Metadata.Total.String())

	first := ex.Items[0]
	assert.Equal(t, "Widget", first.Description)
	assert.Equal(t, 2.0, first.Quantity)
	assert.Equal(t, "AB-100", first.Sku)
	assert.Equal(t, "19.98", first.Total.String())

	second := ex.Items[1]
	assert.Equal(t, 4.0, second.Quantity, "string quantity parsed")
	assert.Equal(t, "12.5", second.UnitPrice.String())
	assert.Equal(t, "PN-77", second.PartNumber)
}

func TestParseExtractionNegativeQuantityClamped(t *testing.T) {
	ex, err := parseExtraction(`{"items":[{"description":"Widget","quantity":-3}]}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ex.Items[0].Quantity)
}

func TestParseExtractionDescriptionFallsBackToRawText(t *testing.T) {
	ex, err := parseExtraction(`{"items":[{"rawText":"1x mystery part","quantity":1}]}`)
	require.NoError(t, err)
	assert.Equal(t, "1x mystery part", ex.Items[0].Description)
}

func TestParseExtractionNoItems(t *testing.T) {
	_, err := parseExtraction(`{"supplier":"ACME","items":[]}`)
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = parseExtraction("the image is too blurry to read")
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestParseExtractionMalformed(t *testing.T) {
	_, err := parseExtraction(`{"items": [{"description": }`)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoItems, "malformed payloads fail loudly, not as empty")
}
