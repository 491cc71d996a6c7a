package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalyshkoA/chat-bot-mipt/internal/model"
)

func TestAddAndListRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	holdings := NewHoldingRepository(db)
	ctx := context.Background()

	_, err := users.Create(ctx, testUserID)
	require.NoError(t, err)

	want := model.Holding{
		OwnerID:      testUserID,
		Ticker:       "AAPL",
		Quantity:     10,
		UnitPrice:    100,
		PurchaseDate: "2023-07-13 03:09:10.579702",
	}
	require.NoError(t, holdings.Add(ctx, &want))

	got, err := holdings.ListByOwner(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got, want, "a read-back holding must equal the inserted value field by field")

	// The stored timestamp text must survive verbatim.
	var storedDate string
	require.NoError(t, db.Raw(
		"SELECT purchase_date FROM holdings WHERE owner_id = ?", testUserID,
	).Scan(&storedDate).Error)
	assert.Equal(t, "2023-07-13 03:09:10.579702", storedDate)
}

func TestAddRejectsUnknownOwner(t *testing.T) {
	db := setupTestDB(t)
	holdings := NewHoldingRepository(db)

	err := holdings.Add(context.Background(), &model.Holding{
		OwnerID:      testUserID,
		Ticker:       "AAPL",
		Quantity:     1,
		UnitPrice:    1,
		PurchaseDate: "2023-07-13 03:09:10.579702",
	})
	assert.Error(t, err, "holdings referencing a missing user must be rejected by the store")
}

func TestListByOwnerEmpty(t *testing.T) {
	db := setupTestDB(t)
	holdings := NewHoldingRepository(db)

	got, err := holdings.ListByOwner(context.Background(), testUserID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByOwnerScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	holdings := NewHoldingRepository(db)
	ctx := context.Background()

	otherID := testUserID + 1
	_, err := users.Create(ctx, testUserID)
	require.NoError(t, err)
	_, err = users.Create(ctx, otherID)
	require.NoError(t, err)

	mine := model.Holding{OwnerID: testUserID, Ticker: "GAZP", Quantity: 3, UnitPrice: 170.5, PurchaseDate: "2024-01-01 00:00:00.000000"}
	theirs := model.Holding{OwnerID: otherID, Ticker: "LKOH", Quantity: 1, UnitPrice: 7000, PurchaseDate: "2024-01-02 00:00:00.000000"}
	require.NoError(t, holdings.Add(ctx, &mine))
	require.NoError(t, holdings.Add(ctx, &theirs))

	got, err := holdings.ListByOwner(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine, got[0])
}
