package domain

import (
	"time"

	"mailsweep-backend/pkg/mailbox"
)

// GmailLabel mirrors one provider label of a user.
type GmailLabel struct {
	ID                    string    `json:"id" gorm:"primaryKey"`
	UserID                string    `json:"user_id" gorm:"not null;uniqueIndex:idx_gmail_labels_user_label,priority:1"`
	LabelID               string    `json:"label_id" gorm:"not null;uniqueIndex:idx_gmail_labels_user_label,priority:2"`
	Name                  string    `json:"name" gorm:"not null"`
	Type                  string    `json:"type"`
	MessagesTotal         int64     `json:"messages_total"`
	MessagesUnread        int64     `json:"messages_unread"`
	ThreadsTotal          int64     `json:"threads_total"`
	ThreadsUnread         int64     `json:"threads_unread"`
	ColorBackgroundColor  string    `json:"color_background_color,omitempty"`
	ColorTextColor        string    `json:"color_text_color,omitempty"`
	LabelListVisibility   string    `json:"label_list_visibility"`
	MessageListVisibility string    `json:"message_list_visibility"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (GmailLabel) TableName() string {
	return "gmail_labels"
}

// FromMailbox builds the mirror row of l, filling the provider defaults.
func FromMailbox(userID string, l *mailbox.Label) *GmailLabel {
	row := &GmailLabel{
		UserID:                userID,
		LabelID:               l.ID,
		Name:                  l.Name,
		Type:                  l.Type,
		MessagesTotal:         l.MessagesTotal,
		MessagesUnread:        l.MessagesUnread,
		ThreadsTotal:          l.ThreadsTotal,
		ThreadsUnread:         l.ThreadsUnread,
		ColorBackgroundColor:  l.BackgroundColor,
		ColorTextColor:        l.TextColor,
		LabelListVisibility:   l.LabelListVisibility,
		MessageListVisibility: l.MessageListVisibility,
	}
	if row.Type == "" {
		row.Type = "user"
	}
	if row.LabelListVisibility == "" {
		row.LabelListVisibility = "labelShow"
	}
	if row.MessageListVisibility == "" {
		row.MessageListVisibility = "show"
	}
	return row
}
