package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	matchmodel "inventory-recon/internal/match/model"
	"inventory-recon/internal/stock/model"
	stocksvc "inventory-recon/internal/stock/service"
)

// fakeStore backs both the engine and the price updates.
type fakeStore struct {
	qty       map[string]float64
	prices    map[string]decimal.Decimal
	snapshots map[string][]model.SnapshotItem
	failIDs   map[string]bool
}

func newFakeStore(qty map[string]float64) *fakeStore {
	return &fakeStore{
		qty:       qty,
		prices:    map[string]decimal.Decimal{},
		snapshots: map[string][]model.SnapshotItem{},
		failIDs:   map[string]bool{},
	}
}

func (f *fakeStore) AdjustQuantity(_ context.Context, id string, delta float64, _ string) error {
	if f.failIDs[id] {
		return errors.New("store unavailable")
	}
	f.qty[id] += delta
	return nil
}

func (f *fakeStore) ProductQuantity(_ context.Context, id string) (float64, error) {
	return f.qty[id], nil
}

func (f *fakeStore) AppliedSnapshot(_ context.Context, jobID string) ([]model.SnapshotItem, error) {
	return f.snapshots[jobID], nil
}

func (f *fakeStore) ReplaceAppliedSnapshot(_ context.Context, jobID string, its []model.SnapshotItem) error {
	f.snapshots[jobID] = its
	return nil
}

func (f *fakeStore) ListProducts(context.Context) ([]matchmodel.CatalogProduct, error) {
	return nil, nil
}

func (f *fakeStore) GetProduct(context.Context, string) (matchmodel.CatalogProduct, error) {
	return matchmodel.CatalogProduct{}, nil
}

func (f *fakeStore) CreateProduct(context.Context, matchmodel.CatalogProduct, decimal.Decimal) (string, error) {
	return "", nil
}

func (f *fakeStore) UpdatePrice(_ context.Context, id string, price decimal.Decimal) error {
	f.prices[id] = price
	return nil
}

func newRouter(st *fakeStore) *chi.Mux {
	eng := stocksvc.NewEngine(st, zerolog.Nop())
	r := chi.NewRouter()
	r.Post("/jobs/{jobID}/validate", Validate(eng, zerolog.Nop()))
	r.Post("/jobs/{jobID}/complete", Complete(eng, st, zerolog.Nop()))
	return r
}

func post(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCompleteHappyPath(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10})
	rec := post(t, newRouter(st), "/jobs/job1/complete",
		`{"items":[{"productId":"p1","quantity":5,"applyQty":true}]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res model.ReconcileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Adjusted)
	assert.Empty(t, res.Failed)
	assert.Equal(t, 5.0, st.qty["p1"])
}

func TestCompleteRejectsMissingProductID(t *testing.T) {
	st := newFakeStore(map[string]float64{})
	rec := post(t, newRouter(st), "/jobs/job1/complete",
		`{"items":[{"quantity":2,"applyQty":true}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no product selected")
}

func TestCompleteRejectsDuplicates(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10})
	rec := post(t, newRouter(st), "/jobs/job1/complete",
		`{"items":[
			{"productId":"p1","quantity":2,"applyQty":true},
			{"productId":"p1","quantity":3,"applyQty":true}
		]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 10.0, st.qty["p1"], "nothing applied on rejection")
}

func TestCompleteRejectsNegativeQuantity(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10})
	rec := post(t, newRouter(st), "/jobs/job1/complete",
		`{"items":[{"productId":"p1","quantity":-1,"applyQty":true}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteSkipsItemsWithoutApplyQty(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10, "p2": 10})
	rec := post(t, newRouter(st), "/jobs/job1/complete",
		`{"items":[
			{"productId":"p1","quantity":5,"applyQty":true},
			{"productId":"p2","quantity":3,"applyQty":false}
		]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5.0, st.qty["p1"])
	assert.Equal(t, 10.0, st.qty["p2"])
}

func TestCompletePartialFailureIs207(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10, "p2": 10})
	st.failIDs["p2"] = true
	rec := post(t, newRouter(st), "/jobs/job1/complete",
		`{"items":[
			{"productId":"p1","quantity":5,"applyQty":true},
			{"productId":"p2","quantity":2,"applyQty":true}
		]}`)

	require.Equal(t, http.StatusMultiStatus, rec.Code)
	var res model.ReconcileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Adjusted)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "p2", res.Failed[0].ProductID)
}

func TestCompleteAppliesPrices(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10})
	rec := post(t, newRouter(st), "/jobs/job1/complete",
		`{"items":[{"productId":"p1","quantity":5,"applyQty":true,"applyPrice":true,"unitPrice":"9.99"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "9.99", st.prices["p1"].String())
}

func TestValidateConflict(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 3})
	rec := post(t, newRouter(st), "/jobs/job1/validate",
		`{"items":[{"productId":"p1","quantity":5,"applyQty":true}]}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	var res validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.OK)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "p1", res.Violations[0].ProductID)
	assert.Equal(t, 3.0, st.qty["p1"], "validation never mutates stock")
}

func TestValidateOK(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10})
	rec := post(t, newRouter(st), "/jobs/job1/validate",
		`{"items":[{"productId":"p1","quantity":5,"applyQty":true}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
