package push

import (
	"context"       // Request-scoped context
	"encoding/json" // Payload encoding
	"fmt"           // Error wrapping

	"local_marketplace/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Queue enqueues push deliveries into notification_logs
type Queue struct {
	db *gorm.DB
}

// NewQueue returns a queue writing through db
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// WithTx returns a copy of the queue bound to tx
func (q *Queue) WithTx(tx *gorm.DB) *Queue {
	return &Queue{db: tx}
}

// Enqueue inserts one pending log per receiver in a single batch
func (q *Queue) Enqueue(ctx context.Context, receiverIDs []uint, title, body string, data map[string]any) error {
	if len(receiverIDs) == 0 {
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data) // Encode payload once for all receivers
	if err != nil {
		return fmt.Errorf("encode push data: %w", err)
	}
	logs := make([]domain.PushLog, len(receiverIDs))
	for i, id := range receiverIDs {
		logs[i] = domain.PushLog{
			ReceiverID: id,
			Title:      title,
			Body:       body,
			Data:       string(payload),
			Status:     domain.PushPending,
		}
	}
	if err := q.db.WithContext(ctx).CreateInBatches(&logs, 100).Error; err != nil {
		return fmt.Errorf("enqueue push logs: %w", err)
	}
	return nil
}
