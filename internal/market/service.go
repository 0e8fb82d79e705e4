package market

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"local_marketplace/internal/domain"
	"local_marketplace/internal/push"
	"local_marketplace/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Options tune a Service
type Options struct {
	CacheTTL           time.Duration // Lifetime of cached request lists
	InitialSaleCredits int           // Sale credits granted when a shop is first set up
}

// Service is the request lifecycle and matching engine shared by every client.
// It owns no state beyond its store handles; all coordination goes through the database.
type Service struct {
	db   *gorm.DB
	rdb  *redis.Client
	opts Options

	Directory *Directory
	Ledger    *Ledger
	Requests  *RequestStore
	Responses *ResponseStore
	Matcher   *Matcher
	Notifier  *Notifier
}

// NewService wires the components over db; rdb may be nil to disable caching
func NewService(db *gorm.DB, rdb *redis.Client, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 60 * time.Second
	}
	dir := NewDirectory(db)
	return &Service{
		db:        db,
		rdb:       rdb,
		opts:      opts,
		Directory: dir,
		Ledger:    NewLedger(db),
		Requests:  NewRequestStore(db),
		Responses: NewResponseStore(db),
		Matcher:   NewMatcher(dir),
		Notifier:  NewNotifier(db, push.NewQueue(db)),
	}
}

// txScope holds component copies bound to one transaction
type txScope struct {
	ledger   *Ledger
	requests *RequestStore
	matcher  *Matcher
	notifier *Notifier
}

func (s *Service) inTx(ctx context.Context, fn func(sc txScope) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txScope{
			ledger:   s.Ledger.WithTx(tx),
			requests: s.Requests.WithTx(tx),
			matcher:  NewMatcher(s.Directory.WithTx(tx)),
			notifier: s.Notifier.WithTx(tx),
		})
	})
}

// CreateRequestInput describes a buyer's new request
type CreateRequestInput struct {
	BuyerID        uint
	ItemName       string
	Pincode        *string // nil uses the buyer's profile pincode
	IdempotencyKey string  // optional client retry key
}

// CreatedRequest is the outcome of CreateRequest
type CreatedRequest struct {
	Order           domain.Order `json:"order"`
	SellersNotified int          `json:"sellers_notified"`
	Replayed        bool         `json:"replayed"` // true when an earlier call with the same key is returned
}

// CreateRequest validates, charges one credit, stores the order and notifies matched sellers.
// The credit, the order and the notifications commit together or not at all.
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*CreatedRequest, error) {
	itemName := strings.TrimSpace(in.ItemName)
	if itemName == "" {
		return nil, ErrEmptyItemName
	}
	buyer, err := s.Directory.GetUser(ctx, in.BuyerID)
	if err != nil {
		return nil, err
	}
	if !buyer.Buyer() {
		return nil, ErrNotBuyer
	}
	pincode := utils.NormalizePincode(buyer.Pincode)
	if in.Pincode != nil {
		pincode = utils.NormalizePincode(*in.Pincode)
	}
	if pincode != "" && !utils.IsValidPincode(pincode) {
		return nil, ErrInvalidPincode
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		prev, err := s.Requests.FindByIdempotencyKey(ctx, buyer.ID, key)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			return &CreatedRequest{Order: *prev, Replayed: true}, nil
		}
	}

	order := domain.Order{
		UserID:   buyer.ID,
		ItemName: itemName,
		Pincode:  pincode,
		Category: domain.CategoryMedical,
	}
	if key != "" {
		order.IdempotencyKey = &key
	}
	notified := 0 // Sellers reached by this request
	err = s.inTx(ctx, func(sc txScope) error {
		if err := sc.ledger.ConsumeCredit(ctx, buyer.ID); err != nil {
			return err // Return error to rollback
		}
		if err := sc.requests.Insert(ctx, &order); err != nil {
			return err // Return error to rollback
		}
		n, err := sc.notifier.NotifyMatched(ctx, &order, sc.matcher.MatchSellers(ctx, &order))
		notified = n
		return err // nil commits the credit, the order and the notifications
	})
	if err != nil {
		if key != "" && !errors.Is(err, ErrNoCredit) {
			// A concurrent call with the same key may have won the unique index
			if prev, lookupErr := s.Requests.FindByIdempotencyKey(ctx, buyer.ID, key); lookupErr == nil && prev != nil {
				return &CreatedRequest{Order: *prev, Replayed: true}, nil
			}
		}
		if !errors.Is(err, ErrNoCredit) && !errors.Is(err, ErrUserNotFound) {
			logrus.WithFields(logrus.Fields{
				"user_id":   buyer.ID,
				"item_name": itemName,
				"error":     err.Error(),
			}).Error("Create request failed")
		}
		return nil, err
	}

	s.invalidateBuyer(ctx, buyer.ID) // Request list changed
	logrus.WithFields(logrus.Fields{
		"user_id":          buyer.ID,
		"order_id":         order.ID,
		"pincode":          order.Pincode,
		"sellers_notified": notified,
	}).Info("Request created")
	return &CreatedRequest{Order: order, SellersNotified: notified}, nil
}

// RequestSummary is one row of a buyer's request list
type RequestSummary struct {
	ID            uint      `json:"id"`
	ItemName      string    `json:"item_name"`
	Pincode       string    `json:"pincode"`
	CreatedAt     time.Time `json:"created_at"`
	ResponseCount int64     `json:"response_count"`
}

// ListRequestsForBuyer returns the buyer's requests newest first, annotated with response counts.
// The second result reports whether the list came from cache.
func (s *Service) ListRequestsForBuyer(ctx context.Context, buyerID uint) ([]RequestSummary, bool, error) {
	// The version is read before the database so a concurrent invalidation
	// leaves whatever this call caches under an orphaned key
	version, verErr := utils.CacheVersion(ctx, s.rdb, buyerVersionKey(buyerID))
	key := buyerCacheKey(buyerID, version)
	var cached []RequestSummary
	if verErr == nil {
		if found, err := utils.GetCache(ctx, s.rdb, key, &cached); err == nil && found {
			return cached, true, nil
		}
	}
	orders, err := s.Requests.ListForBuyer(ctx, buyerID)
	if err != nil {
		return nil, false, err
	}
	orderIDs := make([]uint, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	counts, err := s.Responses.CountPerOrder(ctx, orderIDs)
	if err != nil {
		return nil, false, err
	}
	out := make([]RequestSummary, len(orders))
	for i, o := range orders {
		out[i] = RequestSummary{
			ID:            o.ID,
			ItemName:      o.ItemName,
			Pincode:       o.Pincode,
			CreatedAt:     o.CreatedAt,
			ResponseCount: counts[o.ID],
		}
	}
	if verErr == nil {
		_ = utils.SetCache(ctx, s.rdb, key, out, s.opts.CacheTTL) // Cache the list for future requests
	}
	return out, false, nil
}

// ResponseView is a seller response joined with the seller's shop
type ResponseView struct {
	ID          uint      `json:"id"`
	SellerID    uint      `json:"seller_id"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	ShopName    string    `json:"shop_name"`
	ShopAddress string    `json:"shop_address"`
}

// RequestDetail is a buyer's view of one request
type RequestDetail struct {
	Order     domain.Order   `json:"order"`
	Responses []ResponseView `json:"responses"`
}

// UnknownSeller names a responding seller that never set up a shop
const UnknownSeller = "Unknown Seller"

// GetRequest returns one of the buyer's requests with its responses
func (s *Service) GetRequest(ctx context.Context, buyerID, orderID uint) (*RequestDetail, error) {
	order, err := s.Requests.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != buyerID {
		return nil, ErrOrderNotFound
	}
	responses, err := s.Responses.ListForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	sellerIDs := make([]uint, len(responses))
	for i, r := range responses {
		sellerIDs[i] = r.UserID
	}
	shops := map[uint]domain.SellerDetails{}
	if len(sellerIDs) > 0 {
		var details []domain.SellerDetails
		if err := s.db.WithContext(ctx).Where("user_id IN ?", sellerIDs).Find(&details).Error; err != nil {
			logrus.WithFields(logrus.Fields{"order_id": orderID, "error": err.Error()}).Warn("Could not load seller shops")
		}
		for _, d := range details {
			shops[d.UserID] = d
		}
	}
	views := make([]ResponseView, len(responses))
	for i, r := range responses {
		v := ResponseView{ID: r.ID, SellerID: r.UserID, Notes: r.Notes, CreatedAt: r.CreatedAt, ShopName: UnknownSeller}
		if d, ok := shops[r.UserID]; ok {
			v.ShopName = d.ShopName
			v.ShopAddress = d.ShopAddress
		}
		views[i] = v
	}
	return &RequestDetail{Order: *order, Responses: views}, nil
}

// RecordResponse stores a seller's acceptance of an order; repeating it updates the notes
func (s *Service) RecordResponse(ctx context.Context, orderID, sellerID uint, notes string) (*domain.SellerResponse, error) {
	seller, err := s.Directory.GetUser(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !seller.Seller() {
		return nil, ErrNotSeller
	}
	order, err := s.Requests.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp, err := s.Responses.Upsert(ctx, order.ID, seller.ID, strings.TrimSpace(notes)) // Second call updates notes
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id":  orderID,
			"seller_id": sellerID,
			"error":     err.Error(),
		}).Error("Record response failed")
		return nil, err
	}
	s.invalidateBuyer(ctx, order.UserID) // Response counts changed
	logrus.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"seller_id": seller.ID,
	}).Info("Seller response recorded")
	return resp, nil
}

// CountResponsesPerOrder maps each order id to its number of seller responses
func (s *Service) CountResponsesPerOrder(ctx context.Context, orderIDs []uint) (map[uint]int64, error) {
	return s.Responses.CountPerOrder(ctx, orderIDs)
}

// Inbox status values
const (
	StatusIncoming = "incoming"
	StatusAccepted = "accepted"
)

// InboxItem is one order as seen by a seller
type InboxItem struct {
	ID        uint      `json:"id"`
	ItemName  string    `json:"item_name"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
}

// Inbox splits the orders of a seller's locality into unanswered and answered
type Inbox struct {
	Incoming []InboxItem `json:"incoming"`
	Accepted []InboxItem `json:"accepted"`
}

// SellerInbox returns the orders placed in the seller's pincode, split by whether the seller responded
func (s *Service) SellerInbox(ctx context.Context, sellerID uint) (*Inbox, error) {
	seller, err := s.Directory.GetUser(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !seller.Seller() {
		return nil, ErrNotSeller
	}
	orders, err := s.Requests.ListByPincode(ctx, utils.NormalizePincode(seller.Pincode))
	if err != nil {
		return nil, err
	}
	responses, err := s.Responses.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	notes := make(map[uint]string, len(responses))
	for _, r := range responses {
		notes[r.OrderID] = r.Notes
	}
	inbox := &Inbox{Incoming: []InboxItem{}, Accepted: []InboxItem{}}
	for _, o := range orders {
		item := InboxItem{ID: o.ID, ItemName: o.ItemName, Pincode: o.Pincode, CreatedAt: o.CreatedAt}
		if n, ok := notes[o.ID]; ok {
			item.Status = StatusAccepted
			item.Notes = n
			inbox.Accepted = append(inbox.Accepted, item)
			continue
		}
		item.Status = StatusIncoming
		inbox.Incoming = append(inbox.Incoming, item)
	}
	return inbox, nil
}

func buyerVersionKey(buyerID uint) string {
	return "requests:buyer:" + strconv.FormatUint(uint64(buyerID), 10) + ":version"
}

func buyerCacheKey(buyerID uint, version int64) string {
	return "requests:buyer:" + strconv.FormatUint(uint64(buyerID), 10) + ":v" + strconv.FormatInt(version, 10)
}

// invalidateBuyer bumps the buyer's list version; older entries expire on their own TTL
func (s *Service) invalidateBuyer(ctx context.Context, buyerID uint) {
	if err := utils.BumpCacheVersion(ctx, s.rdb, buyerVersionKey(buyerID)); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": buyerID, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}

// wrapStore annotates unexpected store errors while letting sentinel errors through
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
