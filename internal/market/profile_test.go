package market

import (
	"context"
	"testing"

	"local_marketplace/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseRole_Once(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, gdb, "newbie", "110001")

	got, err := svc.ChooseRole(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Seller())

	got, err = svc.ChooseRole(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Seller())

	_, err = svc.ChooseRole(ctx, u.ID, false)
	assert.ErrorIs(t, err, ErrRoleAlreadySet)

	_, err = svc.ChooseRole(ctx, 9999, false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetupSeller_CreatesThenUpdates(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)

	d, err := svc.SetupSeller(ctx, seller.ID, ShopInput{ShopName: " City Pharmacy ", ShopAddress: "MG Road"})
	require.NoError(t, err)
	assert.Equal(t, "City Pharmacy", d.ShopName)
	assert.Equal(t, "110001", d.Pincode)
	assert.Equal(t, 1, d.PendingSaleCredit)

	require.NoError(t, svc.Ledger.ConsumeSaleCredit(ctx, seller.ID))

	d, err = svc.SetupSeller(ctx, seller.ID, ShopInput{ShopName: "City Pharmacy 24x7", Notes: "open late"})
	require.NoError(t, err)
	assert.Equal(t, "City Pharmacy 24x7", d.ShopName)
	assert.Equal(t, "open late", d.Notes)
	assert.Equal(t, 0, d.PendingSaleCredit)

	_, err = svc.SetupSeller(ctx, buyer.ID, ShopInput{ShopName: "nope"})
	assert.ErrorIs(t, err, ErrNotSeller)
}

func TestUpdatePincode(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)

	assert.ErrorIs(t, svc.UpdatePincode(ctx, u.ID, "abc"), ErrInvalidPincode)
	assert.ErrorIs(t, svc.UpdatePincode(ctx, 9999, "560001"), ErrUserNotFound)
	require.NoError(t, svc.UpdatePincode(ctx, u.ID, " 560001 "))
	require.NoError(t, svc.UpdatePincode(ctx, u.ID, "560001"))

	p, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "560001", p.User.Pincode)
	assert.Equal(t, 30, p.Credits.Available)
	assert.Nil(t, p.Shop)
}
