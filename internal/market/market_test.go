package market

import (
	"context"
	"testing"
	"time"

	"local_marketplace/internal/domain"
	"local_marketplace/internal/testutil"
	"local_marketplace/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb := testutil.OpenTestDB(t)
	return NewService(gdb, nil, Options{CacheTTL: time.Minute, InitialSaleCredits: 1}), gdb
}

func strPtr(s string) *string { return &s }

func countRows(t *testing.T, gdb *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := gdb.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func reloadUser(t *testing.T, gdb *gorm.DB, id uint) domain.User {
	t.Helper()
	var u domain.User
	require.NoError(t, gdb.First(&u, id).Error)
	return u
}

func TestCreateRequest_NotifiesSellersInSamePincode(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer, testutil.Credits(1))
	s1 := testutil.CreateUser(t, gdb, "seller1", "110001", testutil.Seller)
	s2 := testutil.CreateUser(t, gdb, "seller2", "110001", testutil.Seller)
	far := testutil.CreateUser(t, gdb, "seller3", "400001", testutil.Seller)

	out, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "  Paracetamol ", Pincode: strPtr("110001")})
	require.NoError(t, err)
	assert.Equal(t, 2, out.SellersNotified)
	assert.Equal(t, "Paracetamol", out.Order.ItemName)
	assert.Equal(t, domain.CategoryMedical, out.Order.Category)
	assert.NotZero(t, out.Order.ID)
	assert.False(t, out.Order.CreatedAt.IsZero())

	assert.Equal(t, int64(2), countRows(t, gdb, &domain.Notification{}, "order_id = ?", out.Order.ID))
	assert.Equal(t, int64(1), countRows(t, gdb, &domain.Notification{}, "user_id = ?", s1.ID))
	assert.Equal(t, int64(1), countRows(t, gdb, &domain.Notification{}, "user_id = ?", s2.ID))
	assert.Equal(t, int64(0), countRows(t, gdb, &domain.Notification{}, "user_id = ?", far.ID))

	var n domain.Notification
	require.NoError(t, gdb.Where("user_id = ?", s1.ID).First(&n).Error)
	assert.Equal(t, "A new request for 'Paracetamol' has been posted in your area.", n.Message)
	assert.False(t, n.IsRead)

	assert.Equal(t, int64(2), countRows(t, gdb, &domain.PushLog{}, "status = ?", domain.PushPending))

	after := reloadUser(t, gdb, buyer.ID)
	assert.Equal(t, 0, after.AvailableRequestCount)
	assert.Equal(t, 1, after.UsedCreditCount)
}

func TestCreateRequest_NoCreditRejectsBeforeAnyWrite(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	buyer := testutil.CreateUser(t, gdb, "broke", "110001", testutil.Buyer, testutil.Credits(0))
	testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)

	ok, err := svc.Ledger.CanCreateRequest(ctx, buyer.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Insulin"})
	assert.ErrorIs(t, err, ErrNoCredit)
	assert.Equal(t, int64(0), countRows(t, gdb, &domain.Order{}, ""))
	assert.Equal(t, int64(0), countRows(t, gdb, &domain.Notification{}, ""))

	after := reloadUser(t, gdb, buyer.ID)
	assert.Equal(t, 0, after.AvailableRequestCount)
	assert.Equal(t, 0, after.UsedCreditCount)
}

func TestCreateRequest_NoDoubleSpendAcrossSequentialCalls(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer, testutil.Credits(1))

	_, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Bandage"})
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Gauze"})
	assert.ErrorIs(t, err, ErrNoCredit)

	after := reloadUser(t, gdb, buyer.ID)
	assert.Equal(t, 0, after.AvailableRequestCount)
	assert.Equal(t, 1, after.UsedCreditCount)
	assert.Equal(t, int64(1), countRows(t, gdb, &domain.Order{}, ""))
}

func TestCreateRequest_CreditsConserved(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer, testutil.Credits(5))

	for i := 0; i < 3; i++ {
		_, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Syrup"})
		require.NoError(t, err)
	}
	after := reloadUser(t, gdb, buyer.ID)
	assert.Equal(t, 2, after.AvailableRequestCount)
	assert.Equal(t, 3, after.UsedCreditCount)
	assert.Equal(t, 5, after.AvailableRequestCount+after.UsedCreditCount)
}

func TestCreateRequest_EmptyPincodeNotifiesNobody(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)
	testutil.CreateUser(t, gdb, "nopin", "", testutil.Seller)
	testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)

	out, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Cough drops", Pincode: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "", out.Order.Pincode)
	assert.Equal(t, 0, out.SellersNotified)
	assert.Equal(t, int64(0), countRows(t, gdb, &domain.Notification{}, ""))
}

func TestCreateRequest_DefaultsToProfilePincode(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "560001", testutil.Buyer)
	testutil.CreateUser(t, gdb, "seller", "560001", testutil.Seller)

	out, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Thermometer"})
	require.NoError(t, err)
	assert.Equal(t, "560001", out.Order.Pincode)
	assert.Equal(t, 1, out.SellersNotified)
}

func TestCreateRequest_Validation(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	undecided := testutil.CreateUser(t, gdb, "undecided", "110001")

	_, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "   "})
	assert.ErrorIs(t, err, ErrEmptyItemName)

	_, err = svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Aspirin", Pincode: strPtr("12345")})
	assert.ErrorIs(t, err, ErrInvalidPincode)

	_, err = svc.CreateRequest(ctx, CreateRequestInput{BuyerID: seller.ID, ItemName: "Aspirin"})
	assert.ErrorIs(t, err, ErrNotBuyer)

	_, err = svc.CreateRequest(ctx, CreateRequestInput{BuyerID: undecided.ID, ItemName: "Aspirin"})
	assert.ErrorIs(t, err, ErrNotBuyer)

	_, err = svc.CreateRequest(ctx, CreateRequestInput{BuyerID: 9999, ItemName: "Aspirin"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Equal(t, 30, reloadUser(t, gdb, buyer.ID).AvailableRequestCount)
}

func TestCreateRequest_IdempotencyKeyReplays(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer, testutil.Credits(3))
	testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)

	first, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "ORS", IdempotencyKey: "k-1"})
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	again, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "ORS", IdempotencyKey: "k-1"})
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Order.ID, again.Order.ID)

	after := reloadUser(t, gdb, buyer.ID)
	assert.Equal(t, 2, after.AvailableRequestCount)
	assert.Equal(t, int64(1), countRows(t, gdb, &domain.Order{}, ""))
	assert.Equal(t, int64(1), countRows(t, gdb, &domain.Notification{}, ""))
}

func TestRecordResponse_UpsertsPerOrderAndSeller(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	out, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Crocin"})
	require.NoError(t, err)

	first, err := svc.RecordResponse(ctx, out.Order.ID, seller.ID, "in stock")
	require.NoError(t, err)
	second, err := svc.RecordResponse(ctx, out.Order.ID, seller.ID, "in stock, 10% off")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), countRows(t, gdb, &domain.SellerResponse{}, "order_id = ? AND user_id = ?", out.Order.ID, seller.ID))

	rows, err := svc.Responses.ListForOrder(ctx, out.Order.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "in stock, 10% off", rows[0].Notes)
}

func TestRecordResponse_Rejections(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	out, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Crocin"})
	require.NoError(t, err)

	_, err = svc.RecordResponse(ctx, out.Order.ID, buyer.ID, "me too")
	assert.ErrorIs(t, err, ErrNotSeller)

	_, err = svc.RecordResponse(ctx, 424242, seller.ID, "hello")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCountResponsesPerOrder(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)
	s1 := testutil.CreateUser(t, gdb, "s1", "110001", testutil.Seller)
	s2 := testutil.CreateUser(t, gdb, "s2", "110001", testutil.Seller)

	a, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "A"})
	require.NoError(t, err)
	b, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "B"})
	require.NoError(t, err)
	c, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "C"})
	require.NoError(t, err)

	_, err = svc.RecordResponse(ctx, a.Order.ID, s1.ID, "")
	require.NoError(t, err)
	_, err = svc.RecordResponse(ctx, a.Order.ID, s2.ID, "")
	require.NoError(t, err)
	_, err = svc.RecordResponse(ctx, b.Order.ID, s1.ID, "")
	require.NoError(t, err)

	counts, err := svc.CountResponsesPerOrder(ctx, []uint{a.Order.ID, b.Order.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{a.Order.ID: 2, b.Order.ID: 1}, counts)

	counts, err = svc.CountResponsesPerOrder(ctx, []uint{c.Order.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{c.Order.ID: 0}, counts)

	counts, err = svc.CountResponsesPerOrder(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestListRequestsForBuyer_NewestFirstWithCounts(t *testing.T) {
	gdb := testutil.OpenTestDB(t)
	rdb, _ := testutil.OpenTestRedis(t)
	svc := NewService(gdb, rdb, Options{CacheTTL: time.Minute})
	ctx := context.Background()

	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)
	first, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "first"})
	require.NoError(t, err)
	second, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "second"})
	require.NoError(t, err)

	list, cached, err := svc.ListRequestsForBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, list, 2)
	assert.Equal(t, second.Order.ID, list[0].ID)
	assert.Equal(t, first.Order.ID, list[1].ID)

	_, cached, err = svc.ListRequestsForBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.True(t, cached)

	// A response invalidates the cached list
	_, err = svc.RecordResponse(ctx, first.Order.ID, seller.ID, "available")
	require.NoError(t, err)
	list, cached, err = svc.ListRequestsForBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int64(1), list[1].ResponseCount)
	assert.Equal(t, int64(0), list[0].ResponseCount)
}

func TestListRequestsForBuyer_LateCacheFillIsIgnored(t *testing.T) {
	gdb := testutil.OpenTestDB(t)
	rdb, _ := testutil.OpenTestRedis(t)
	svc := NewService(gdb, rdb, Options{CacheTTL: time.Minute})
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)

	// A reader sampled the version, then a create committed before the reader cached its result
	before, err := utils.CacheVersion(ctx, rdb, buyerVersionKey(buyer.ID))
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Dolo"})
	require.NoError(t, err)
	require.NoError(t, utils.SetCache(ctx, rdb, buyerCacheKey(buyer.ID, before), []RequestSummary{}, time.Minute))

	list, cached, err := svc.ListRequestsForBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, list, 1)
}

func TestGetRequest_JoinsShopsAndScopesToOwner(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)
	other := testutil.CreateUser(t, gdb, "other", "110001", testutil.Buyer)
	withShop := testutil.CreateUser(t, gdb, "withshop", "110001", testutil.Seller)
	noShop := testutil.CreateUser(t, gdb, "noshop", "110001", testutil.Seller)
	testutil.CreateSellerDetails(t, gdb, withShop.ID, "110001", 1)

	out, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "Vitamin C"})
	require.NoError(t, err)
	_, err = svc.RecordResponse(ctx, out.Order.ID, withShop.ID, "yes")
	require.NoError(t, err)
	_, err = svc.RecordResponse(ctx, out.Order.ID, noShop.ID, "also yes")
	require.NoError(t, err)

	detail, err := svc.GetRequest(ctx, buyer.ID, out.Order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Responses, 2)
	shops := map[uint]string{}
	for _, r := range detail.Responses {
		shops[r.SellerID] = r.ShopName
	}
	assert.Equal(t, "Shop", shops[withShop.ID])
	assert.Equal(t, UnknownSeller, shops[noShop.ID])

	_, err = svc.GetRequest(ctx, other.ID, out.Order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSellerInbox_SplitsIncomingAndAccepted(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, gdb, "buyer", "110001", testutil.Buyer)
	farBuyer := testutil.CreateUser(t, gdb, "farbuyer", "400001", testutil.Buyer)
	seller := testutil.CreateUser(t, gdb, "seller", "110001", testutil.Seller)

	a, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "A"})
	require.NoError(t, err)
	b, err := svc.CreateRequest(ctx, CreateRequestInput{BuyerID: buyer.ID, ItemName: "B"})
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, CreateRequestInput{BuyerID: farBuyer.ID, ItemName: "far"})
	require.NoError(t, err)
	_, err = svc.RecordResponse(ctx, a.Order.ID, seller.ID, "have it")
	require.NoError(t, err)

	inbox, err := svc.SellerInbox(ctx, seller.ID)
	require.NoError(t, err)
	require.Len(t, inbox.Incoming, 1)
	require.Len(t, inbox.Accepted, 1)
	assert.Equal(t, b.Order.ID, inbox.Incoming[0].ID)
	assert.Equal(t, StatusIncoming, inbox.Incoming[0].Status)
	assert.Equal(t, a.Order.ID, inbox.Accepted[0].ID)
	assert.Equal(t, "have it", inbox.Accepted[0].Notes)

	_, err = svc.SellerInbox(ctx, buyer.ID)
	assert.ErrorIs(t, err, ErrNotSeller)
}
