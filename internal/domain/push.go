package domain

import "time"

// Push log status values
const (
	PushPending    = "pending"
	PushProcessing = "processing" // Claimed by a dispatcher run
	PushSent       = "sent"
	PushFailed     = "failed"
)

// PushToken Model, the device token registered for a user
type PushToken struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PushToken string    `gorm:"not null;size:255" json:"push_token"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the historical table name
func (PushToken) TableName() string { return "user_push_tokens" }

// PushLog Model, a queued push delivery
type PushLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Title      string    `gorm:"size:120" json:"title"`
	Body       string    `gorm:"type:text" json:"body"`
	Data       string    `gorm:"type:text" json:"data"` // JSON object sent as the push payload
	Status     string    `gorm:"size:16;index;default:pending" json:"status"`
	SentAt     time.Time `gorm:"autoCreateTime" json:"sent_at"` // Enqueue time
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName keeps the historical table name
func (PushLog) TableName() string { return "notification_logs" }
