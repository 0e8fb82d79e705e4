package market

import (
	"context"
	"testing"

	"local_marketplace/internal/domain"
	"local_marketplace/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastSale_NotifiesLocalBuyers(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	testutil.CreateSellerDetails(t, gdb, seller.ID, "110001", 2)
	b1 := testutil.CreateUser(t, gdb, "b1", "110001", testutil.Buyer)
	b2 := testutil.CreateUser(t, gdb, "b2", "110001", testutil.Buyer)
	testutil.CreateUser(t, gdb, "far", "400001", testutil.Buyer)
	testutil.CreateUser(t, gdb, "rival", "110001", testutil.Seller)

	res, err := svc.BroadcastSale(ctx, seller.ID, " Masks, Sanitizer ")
	require.NoError(t, err)
	assert.Equal(t, 2, res.BuyersNotified)
	assert.Equal(t, 1, res.PendingSaleCredit)

	var rows []domain.Notification
	require.NoError(t, gdb.Where("seller_id = ?", seller.ID).Order("user_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, b1.ID, rows[0].UserID)
	assert.Equal(t, b2.ID, rows[1].UserID)
	assert.Equal(t, "Sale Live! Discount on: Masks, Sanitizer", rows[0].Message)
	assert.Nil(t, rows[0].OrderID)
	assert.Equal(t, int64(2), countRows(t, gdb, &domain.PushLog{}, "title = ?", SalePushTitle))
}

func TestBroadcastSale_NoCredit(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	testutil.CreateSellerDetails(t, gdb, seller.ID, "110001", 0)
	testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)

	_, err := svc.BroadcastSale(ctx, seller.ID, "Masks")
	assert.ErrorIs(t, err, ErrNoSaleCredit)
	assert.Equal(t, int64(0), countRows(t, gdb, &domain.Notification{}, ""))

	d, err := svc.SellerDetails(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, d.PendingSaleCredit)
}

func TestBroadcastSale_NoBuyersKeepsCredit(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	testutil.CreateSellerDetails(t, gdb, seller.ID, "110001", 1)
	testutil.CreateUser(t, gdb, "far", "400001", testutil.Buyer)

	_, err := svc.BroadcastSale(ctx, seller.ID, "Masks")
	assert.ErrorIs(t, err, ErrNoBuyersMatched)

	d, err := svc.SellerDetails(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.PendingSaleCredit)
}

func TestBroadcastSale_Rejections(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	noShop := testutil.CreateUser(t, gdb, "noshop", "110001", testutil.Seller)
	noPin := testutil.CreateUser(t, gdb, "nopin", "", testutil.Seller)
	testutil.CreateSellerDetails(t, gdb, noPin.ID, "", 1)

	_, err := svc.BroadcastSale(ctx, noShop.ID, "  ")
	assert.ErrorIs(t, err, ErrEmptySaleItems)

	_, err = svc.BroadcastSale(ctx, noShop.ID, "Masks")
	assert.ErrorIs(t, err, ErrSellerNotFound)

	_, err = svc.BroadcastSale(ctx, noPin.ID, "Masks")
	assert.ErrorIs(t, err, ErrNoPincode)
}

func TestBroadcastSale_UsesCurrentUserPincode(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	testutil.CreateSellerDetails(t, gdb, seller.ID, "110001", 1)
	moved := testutil.CreateUser(t, gdb, "moved", "560001", testutil.Buyer)

	require.NoError(t, svc.UpdatePincode(ctx, seller.ID, "560001"))
	d, err := svc.SellerDetails(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "560001", d.Pincode)

	res, err := svc.BroadcastSale(ctx, seller.ID, "Gloves")
	require.NoError(t, err)
	assert.Equal(t, 1, res.BuyersNotified)
	assert.Equal(t, int64(1), countRows(t, gdb, &domain.Notification{}, "user_id = ?", moved.ID))
}
