package push

import (
	"context"       // Request-scoped context
	"encoding/json" // Payload decoding
	"fmt"           // Error wrapping

	"local_marketplace/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// DefaultBatchSize caps how many pending logs one run processes
const DefaultBatchSize = 500

// Summary reports the outcome of one dispatch run
type Summary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// Dispatcher drains pending notification_logs through a Sender
type Dispatcher struct {
	db        *gorm.DB
	registry  *Registry
	sender    Sender
	batchSize int
}

// NewDispatcher wires a dispatcher; batchSize <= 0 uses DefaultBatchSize
func NewDispatcher(db *gorm.DB, registry *Registry, sender Sender, batchSize int) *Dispatcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{db: db, registry: registry, sender: sender, batchSize: batchSize}
}

// ProcessPending sends pending logs oldest first and marks each sent or failed.
// Each log is claimed before delivery, so overlapping runs never send the same log twice.
func (d *Dispatcher) ProcessPending(ctx context.Context) (Summary, error) {
	var logs []domain.PushLog
	if err := d.db.WithContext(ctx).
		Where("status = ?", domain.PushPending).
		Order("sent_at asc, id asc").
		Limit(d.batchSize).
		Find(&logs).Error; err != nil {
		return Summary{}, fmt.Errorf("fetch pending push logs: %w", err)
	}

	sum := Summary{}
	for _, l := range logs {
		claimed, err := d.claim(ctx, l.ID)
		if err != nil {
			return sum, err
		}
		if !claimed {
			continue // Another run owns this log
		}
		sum.Total++
		status := domain.PushSent
		if err := d.deliver(ctx, l); err != nil {
			status = domain.PushFailed
			sum.Failed++
			logrus.WithFields(logrus.Fields{
				"log_id":      l.ID,
				"receiver_id": l.ReceiverID,
				"error":       err.Error(),
			}).Warn("Push delivery failed")
		} else {
			sum.Processed++
		}
		if err := d.db.WithContext(ctx).Model(&domain.PushLog{}).Where("id = ?", l.ID).Update("status", status).Error; err != nil {
			return sum, fmt.Errorf("update push log %d: %w", l.ID, err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"processed": sum.Processed,
		"failed":    sum.Failed,
		"total":     sum.Total,
	}).Info("Push logs processed")
	return sum, nil
}

// claim moves a pending log to processing; false when another run got there first
func (d *Dispatcher) claim(ctx context.Context, id uint) (bool, error) {
	res := d.db.WithContext(ctx).Model(&domain.PushLog{}).
		Where("id = ? AND status = ?", id, domain.PushPending).
		Update("status", domain.PushProcessing) // Conditional update, only one run wins
	if res.Error != nil {
		return false, fmt.Errorf("claim push log %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (d *Dispatcher) deliver(ctx context.Context, l domain.PushLog) error {
	token, ok, err := d.registry.Lookup(ctx, l.ReceiverID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no push token for user %d", l.ReceiverID)
	}
	data := map[string]any{}
	if l.Data != "" {
		if err := json.Unmarshal([]byte(l.Data), &data); err != nil {
			return fmt.Errorf("decode push data: %w", err)
		}
	}
	return d.sender.Send(ctx, Message{To: token, Title: l.Title, Body: l.Body, Data: data})
}
