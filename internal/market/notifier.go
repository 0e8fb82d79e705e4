package market

import (
	"context"
	"fmt"

	"local_marketplace/internal/domain"
	"local_marketplace/internal/push"

	"gorm.io/gorm"
)

// Push titles for queued deliveries
const (
	RequestPushTitle = "New request nearby"
	SalePushTitle    = "Sale Live!"
)

// RequestMessage is the notification text sent to sellers for a new request
func RequestMessage(itemName string) string {
	return fmt.Sprintf("A new request for '%s' has been posted in your area.", itemName)
}

// SaleMessage is the notification text sent to buyers for a sale broadcast
func SaleMessage(items string) string {
	return "Sale Live! Discount on: " + items
}

// Notifier writes notification rows and their push deliveries
type Notifier struct {
	db    *gorm.DB
	queue *push.Queue
}

// NewNotifier returns a notifier writing through db and enqueuing pushes on queue
func NewNotifier(db *gorm.DB, queue *push.Queue) *Notifier {
	return &Notifier{db: db, queue: queue}
}

// WithTx returns a copy of the notifier bound to tx
func (n *Notifier) WithTx(tx *gorm.DB) *Notifier {
	return &Notifier{db: tx, queue: n.queue.WithTx(tx)}
}

// NotifyMatched inserts one notification per matched seller for order and returns how many were written
func (n *Notifier) NotifyMatched(ctx context.Context, order *domain.Order, sellerIDs []uint) (int, error) {
	if len(sellerIDs) == 0 {
		return 0, nil
	}
	msg := RequestMessage(order.ItemName)               // Same text for every seller
	rows := make([]domain.Notification, len(sellerIDs)) // One row per matched seller
	for i, id := range sellerIDs {
		orderID := order.ID
		rows[i] = domain.Notification{UserID: id, OrderID: &orderID, Message: msg}
	}
	if err := n.insert(ctx, rows); err != nil {
		return 0, err // Caller's transaction rolls back
	}
	// Queue the push deliveries alongside the rows
	if err := n.queue.Enqueue(ctx, sellerIDs, RequestPushTitle, msg, map[string]any{"order_id": order.ID}); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// NotifySale inserts one sale notification per buyer carrying sellerID
func (n *Notifier) NotifySale(ctx context.Context, sellerID uint, buyerIDs []uint, items string) (int, error) {
	if len(buyerIDs) == 0 {
		return 0, nil
	}
	msg := SaleMessage(items)                          // Same text for every buyer
	rows := make([]domain.Notification, len(buyerIDs)) // One row per matched buyer
	for i, id := range buyerIDs {
		sid := sellerID
		rows[i] = domain.Notification{UserID: id, SellerID: &sid, Message: msg}
	}
	if err := n.insert(ctx, rows); err != nil {
		return 0, err
	}
	if err := n.queue.Enqueue(ctx, buyerIDs, SalePushTitle, msg, map[string]any{"seller_id": sellerID}); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (n *Notifier) insert(ctx context.Context, rows []domain.Notification) error {
	if err := n.db.WithContext(ctx).CreateInBatches(&rows, 100).Error; err != nil { // Batched insert
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

// List returns the user's notifications, newest first
func (n *Notifier) List(ctx context.Context, userID uint) ([]domain.Notification, error) {
	rows := []domain.Notification{}
	if err := n.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications of user %d: %w", userID, err)
	}
	return rows, nil
}

// MarkRead flips one of the user's notifications to read; already-read is a no-op
func (n *Notifier) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := n.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", notificationID, userID, false). // Owner scoped, unread only
		Update("is_read", true)                                                         // Read never goes back to unread
	if res.Error != nil {
		return fmt.Errorf("mark notification %d read: %w", notificationID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64 // Already read, or not ours at all
	if err := n.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check notification %d: %w", notificationID, err)
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification of the user and returns how many changed
func (n *Notifier) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := n.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all read for user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

// UnreadCount counts the user's unread notifications
func (n *Notifier) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := n.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count unread for user %d: %w", userID, err)
	}
	return count, nil
}
