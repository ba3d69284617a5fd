package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
)

// MockCartAPI implements Client for testing
type MockCartAPI struct {
	Lines    []commerce.CartLine
	FetchErr error

	AddErr       error
	UpdateErr    error
	SelectionErr error
	RemoveErr    error
	MergeErr     error

	Fetches     int
	RemovedIDs  []int64
	MergedToken string
}

func (m *MockCartAPI) Fetch(_ context.Context) ([]commerce.CartLine, error) {
	m.Fetches++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	out := make([]commerce.CartLine, len(m.Lines))
	copy(out, m.Lines)
	return out, nil
}

func (m *MockCartAPI) AddItem(_ context.Context, productVariantID int64, quantity int) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Lines = append(m.Lines, commerce.CartLine{
		CartItemID:       int64(len(m.Lines) + 1),
		ProductVariantID: productVariantID,
		Quantity:         quantity,
		Selected:         true,
	})
	return nil
}

func (m *MockCartAPI) UpdateQuantity(_ context.Context, cartItemID int64, quantity int) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.Lines {
		if m.Lines[i].CartItemID == cartItemID {
			m.Lines[i].Quantity = quantity
		}
	}
	return nil
}

func (m *MockCartAPI) UpdateSelection(_ context.Context, cartItemID int64, selected bool) error {
	if m.SelectionErr != nil {
		return m.SelectionErr
	}
	for i := range m.Lines {
		if m.Lines[i].CartItemID == cartItemID {
			m.Lines[i].Selected = selected
		}
	}
	return nil
}

func (m *MockCartAPI) UpdateAllSelection(_ context.Context, selected bool) error {
	if m.SelectionErr != nil {
		return m.SelectionErr
	}
	for i := range m.Lines {
		m.Lines[i].Selected = selected
	}
	return nil
}

func (m *MockCartAPI) RemoveItem(_ context.Context, cartItemID int64) error {
	return m.RemoveItems(context.Background(), []int64{cartItemID})
}

func (m *MockCartAPI) RemoveItems(_ context.Context, cartItemIDs []int64) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.RemovedIDs = append(m.RemovedIDs, cartItemIDs...)
	var kept []commerce.CartLine
	for _, l := range m.Lines {
		removed := false
		for _, id := range cartItemIDs {
			if l.CartItemID == id {
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, l)
		}
	}
	m.Lines = kept
	return nil
}

func (m *MockCartAPI) Merge(_ context.Context, guestToken string) error {
	if m.MergeErr != nil {
		return m.MergeErr
	}
	m.MergedToken = guestToken
	return nil
}

func line(id int64, price int64, qty int, selected bool) commerce.CartLine {
	return commerce.CartLine{
		CartItemID:       id,
		ProductVariantID: id * 10,
		UnitPrice:        price,
		Quantity:         qty,
		Selected:         selected,
		StockQuantity:    10,
	}
}

func newStore(api *MockCartAPI) *Store {
	return NewStore(api, nil, "sess-1", nil)
}

func TestRefresh_LoadsLines(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{line(1, 20000, 2, true), line(2, 5000, 1, false)}}
	store := newStore(api)

	require.NoError(t, store.Refresh(context.Background()))

	assert.Len(t, store.Lines(), 2)
	assert.Len(t, store.SelectedLines(), 1)
}

func TestMutation_FailureLeavesStateUntouched(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{line(1, 20000, 2, true)}}
	store := newStore(api)
	require.NoError(t, store.Refresh(context.Background()))

	before := store.Lines()
	api.UpdateErr = errors.New("stock changed")

	err := store.UpdateQuantity(context.Background(), 1, 5)

	require.Error(t, err)
	assert.Equal(t, before, store.Lines())
}

func TestMutation_SuccessMatchesFreshRefresh(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{line(1, 20000, 2, true)}}
	store := newStore(api)
	require.NoError(t, store.Refresh(context.Background()))

	require.NoError(t, store.UpdateQuantity(context.Background(), 1, 5))

	fresh, err := api.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, store.Lines())
	assert.Equal(t, 5, store.Lines()[0].Quantity)
}

func TestUpdateQuantity_Validation(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{line(1, 20000, 2, true)}}
	store := newStore(api)
	require.NoError(t, store.Refresh(context.Background()))

	assert.ErrorIs(t, store.UpdateQuantity(context.Background(), 1, 0), ErrQuantityRange)
	assert.ErrorIs(t, store.UpdateQuantity(context.Background(), 99, 2), ErrLineNotFound)
}

func TestUpdateQuantity_OutOfStockGuard(t *testing.T) {
	oos := line(1, 20000, 2, true)
	oos.OutOfStock = true
	oos.StockQuantity = 3
	api := &MockCartAPI{Lines: []commerce.CartLine{oos}}
	store := newStore(api)
	require.NoError(t, store.Refresh(context.Background()))

	assert.ErrorIs(t, store.UpdateQuantity(context.Background(), 1, 4), ErrInsufficientStock)
	assert.NoError(t, store.UpdateQuantity(context.Background(), 1, 3))
}

func TestRemoveSelected(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{
		line(1, 20000, 2, true),
		line(2, 5000, 1, false),
		line(3, 1000, 1, true),
	}}
	store := newStore(api)
	require.NoError(t, store.Refresh(context.Background()))

	require.NoError(t, store.RemoveSelected(context.Background()))

	assert.ElementsMatch(t, []int64{1, 3}, api.RemovedIDs)
	remaining := store.Lines()
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(2), remaining[0].CartItemID)
}

func TestRemovePurchased_RefreshesAfterClear(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{line(1, 20000, 2, true), line(2, 5000, 1, true)}}
	store := newStore(api)
	require.NoError(t, store.Refresh(context.Background()))

	require.NoError(t, store.RemovePurchased(context.Background(), []int64{1, 2}))

	assert.Empty(t, store.Lines())
}

func TestMergeGuest_CompletesBeforeRefresh(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{line(1, 20000, 1, true)}}
	store := newStore(api)

	require.NoError(t, store.MergeGuest(context.Background(), "guest-token-1"))

	assert.Equal(t, "guest-token-1", api.MergedToken)
	// the refresh after the merge already populated the store
	assert.Len(t, store.Lines(), 1)
}

func TestSummary(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{
		line(1, 30000, 2, true), // 60000 selected
		line(2, 99999, 1, false),
	}}
	store := newStore(api)
	require.NoError(t, store.Refresh(context.Background()))

	sum := store.Summary()
	assert.Equal(t, 1, sum.SelectedCount)
	assert.Equal(t, int64(60000), sum.Subtotal)
	assert.Equal(t, int64(0), sum.DeliveryFee)
	assert.Equal(t, int64(60000), sum.Total)
}

func TestSummary_BelowFreeDelivery(t *testing.T) {
	api := &MockCartAPI{Lines: []commerce.CartLine{line(1, 15000, 2, true)}}
	store := newStore(api)
	require.NoError(t, store.Refresh(context.Background()))

	sum := store.Summary()
	assert.Equal(t, int64(30000), sum.Subtotal)
	assert.Equal(t, int64(2500), sum.DeliveryFee)
	assert.Equal(t, int64(32500), sum.Total)
}
