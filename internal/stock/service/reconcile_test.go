package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-recon/internal/stock/model"
)

// fakeStore keeps stock in memory and can be told to fail increments for
// specific products.
type fakeStore struct {
	qty       map[string]float64
	snapshots map[string][]model.SnapshotItem
	failIDs   map[string]bool
	adjusts   int
}

func newFakeStore(qty map[string]float64) *fakeStore {
	if qty == nil {
		qty = map[string]float64{}
	}
	return &fakeStore{
		qty:       qty,
		snapshots: map[string][]model.SnapshotItem{},
		failIDs:   map[string]bool{},
	}
}

func (f *fakeStore) AdjustQuantity(_ context.Context, productID string, delta float64, _ string) error {
	if f.failIDs[productID] {
		return errors.New("store unavailable")
	}
	f.adjusts++
	f.qty[productID] += delta
	return nil
}

func (f *fakeStore) ProductQuantity(_ context.Context, productID string) (float64, error) {
	return f.qty[productID], nil
}

func (f *fakeStore) AppliedSnapshot(_ context.Context, jobID string) ([]model.SnapshotItem, error) {
	return f.snapshots[jobID], nil
}

func (f *fakeStore) ReplaceAppliedSnapshot(_ context.Context, jobID string, its []model.SnapshotItem) error {
	f.snapshots[jobID] = its
	return nil
}

func engineWith(store Store) *Engine {
	return NewEngine(store, zerolog.Nop())
}

func TestCompleteFirstTime(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10})
	eng := engineWith(st)

	res, err := eng.Complete(context.Background(), "job1", items("p1", 5))
	require.NoError(t, err)
	assert.True(t, res.Complete())
	assert.Equal(t, 1, res.Adjusted)
	assert.Equal(t, 5.0, st.qty["p1"])
	assert.Equal(t, items("p1", 5), st.snapshots["job1"])
}

func TestCompleteEditAndRecomplete(t *testing.T) {
	// complete with 5, edit to 3, re-complete: net effect is -3
	st := newFakeStore(map[string]float64{"p1": 10})
	eng := engineWith(st)
	ctx := context.Background()

	_, err := eng.Complete(ctx, "job1", items("p1", 5))
	require.NoError(t, err)
	res, err := eng.Complete(ctx, "job1", items("p1", 3))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Adjusted)
	assert.Equal(t, 7.0, st.qty["p1"], "final stock matches the final requested quantity")
	assert.Equal(t, items("p1", 3), st.snapshots["job1"])
}

func TestCompleteAddedProductOnly(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10, "p2": 10})
	eng := engineWith(st)
	ctx := context.Background()

	_, err := eng.Complete(ctx, "job1", items("p1", 5))
	require.NoError(t, err)
	st.adjusts = 0

	res, err := eng.Complete(ctx, "job1", items("p1", 5, "p2", 2))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Adjusted)
	assert.Equal(t, 1, st.adjusts, "unchanged p1 must not be touched again")
	assert.Equal(t, 5.0, st.qty["p1"])
	assert.Equal(t, 8.0, st.qty["p2"])
}

func TestCompleteRemovalReversesInFull(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10})
	eng := engineWith(st)
	ctx := context.Background()

	_, err := eng.Complete(ctx, "job1", items("p1", 4))
	require.NoError(t, err)
	res, err := eng.Complete(ctx, "job1", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Adjusted)
	assert.Equal(t, 10.0, st.qty["p1"])
	assert.Empty(t, st.snapshots["job1"])
}

func TestCompleteReplaySafety(t *testing.T) {
	// X then edit to Y must equal completing Y directly.
	x := items("p1", 5, "p2", 3)
	y := items("p1", 2, "p3", 7)

	edited := newFakeStore(map[string]float64{"p1": 20, "p2": 20, "p3": 20})
	engA := engineWith(edited)
	ctx := context.Background()
	_, err := engA.Complete(ctx, "job1", x)
	require.NoError(t, err)
	_, err = engA.Complete(ctx, "job1", y)
	require.NoError(t, err)

	direct := newFakeStore(map[string]float64{"p1": 20, "p2": 20, "p3": 20})
	engB := engineWith(direct)
	_, err = engB.Complete(ctx, "job2", y)
	require.NoError(t, err)

	assert.Equal(t, direct.qty, edited.qty)
	assert.Equal(t, direct.snapshots["job2"], edited.snapshots["job1"])
}

func TestCompletePartialFailureAndRetry(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10, "p2": 10})
	st.failIDs["p2"] = true
	eng := engineWith(st)
	ctx := context.Background()

	res, err := eng.Complete(ctx, "job1", items("p1", 5, "p2", 2))
	require.NoError(t, err, "partial failure is a result, not an error")
	assert.False(t, res.Complete())
	assert.Equal(t, 1, res.Adjusted)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "p2", res.Failed[0].ProductID)

	// p1 applied, p2 not; snapshot records only what succeeded
	assert.Equal(t, 5.0, st.qty["p1"])
	assert.Equal(t, 10.0, st.qty["p2"])
	assert.Equal(t, items("p1", 5), st.snapshots["job1"])

	// retry after the store recovers applies only the remainder
	st.failIDs = map[string]bool{}
	st.adjusts = 0
	res, err = eng.Complete(ctx, "job1", items("p1", 5, "p2", 2))
	require.NoError(t, err)
	assert.True(t, res.Complete())
	assert.Equal(t, 1, st.adjusts, "p1 must not be re-applied")
	assert.Equal(t, 5.0, st.qty["p1"])
	assert.Equal(t, 8.0, st.qty["p2"])
	assert.Equal(t, items("p1", 5, "p2", 2), st.snapshots["job1"])
}

func TestCompleteFailedReversalStaysApplied(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 10})
	eng := engineWith(st)
	ctx := context.Background()

	_, err := eng.Complete(ctx, "job1", items("p1", 4))
	require.NoError(t, err)

	st.failIDs["p1"] = true
	res, err := eng.Complete(ctx, "job1", nil)
	require.NoError(t, err)
	assert.False(t, res.Complete())
	// reversal did not happen, so the snapshot must still say "4 applied"
	assert.Equal(t, items("p1", 4), st.snapshots["job1"])

	st.failIDs = map[string]bool{}
	_, err = eng.Complete(ctx, "job1", nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, st.qty["p1"])
	assert.Empty(t, st.snapshots["job1"])
}

func TestValidateAvailability(t *testing.T) {
	st := newFakeStore(map[string]float64{"p1": 3, "p2": 5})
	eng := engineWith(st)
	ctx := context.Background()

	viol, err := eng.ValidateAvailability(ctx, "job1", items("p1", 5, "p2", 5))
	require.NoError(t, err)
	require.Len(t, viol, 1)
	assert.Equal(t, "p1", viol[0].ProductID)
	assert.Equal(t, 5.0, viol[0].Requested)
	assert.Equal(t, 3.0, viol[0].Available)
}

func TestValidateAvailabilityCountsAlreadyApplied(t *testing.T) {
	// 5 already deducted by this job; asking for 7 only needs 2 more.
	st := newFakeStore(map[string]float64{"p1": 2})
	st.snapshots["job1"] = items("p1", 5)
	eng := engineWith(st)

	viol, err := eng.ValidateAvailability(context.Background(), "job1", items("p1", 7))
	require.NoError(t, err)
	assert.Empty(t, viol)

	viol, err = eng.ValidateAvailability(context.Background(), "job1", items("p1", 8))
	require.NoError(t, err)
	require.Len(t, viol, 1)
	assert.Equal(t, 3.0, viol[0].Requested)
}
