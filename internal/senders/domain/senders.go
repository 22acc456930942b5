package domain

import "time"

// Mirror values of UnsubscribedSender.Action.
const (
	ActionTrashed = "trashed"
	ActionDeleted = "deleted"
)

// UnsubscribedSender is a sender address or domain the user asked to get rid of.
type UnsubscribedSender struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;uniqueIndex:idx_unsubscribed_user_sender,priority:1"`
	Sender        string    `json:"sender" gorm:"not null;uniqueIndex:idx_unsubscribed_user_sender,priority:2"`
	Action        string    `json:"action" gorm:"not null"`
	GmailFilterID string    `json:"gmail_filter_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (UnsubscribedSender) TableName() string {
	return "unsubscribed_senders"
}

// SafeSender is a domain the user never wants flagged.
type SafeSender struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_safe_user_domain,priority:1"`
	Domain    string    `json:"domain" gorm:"not null;uniqueIndex:idx_safe_user_domain,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SafeSender) TableName() string {
	return "safe_senders"
}
