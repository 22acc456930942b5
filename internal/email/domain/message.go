package domain

import (
	"sort"

	"mailsweep-backend/pkg/mailbox"

	"github.com/samber/lo"
)

// Message is one entry of a mailbox listing.
type Message struct {
	ID           string   `json:"id"`
	ThreadID     string   `json:"threadId"`
	Subject      string   `json:"subject"`
	From         string   `json:"from"`
	Date         string   `json:"date"`
	Snippet      string   `json:"snippet"`
	IsUnread     bool     `json:"isUnread"`
	LabelIDs     []string `json:"labelIds"`
	InternalDate int64    `json:"internalDate"`
}

// FromMetadata maps fetched headers to a listing entry with display defaults.
func FromMetadata(m *mailbox.MessageMetadata) *Message {
	msg := &Message{
		ID:           m.ID,
		ThreadID:     m.ThreadID,
		Subject:      m.Subject,
		From:         m.From,
		Date:         m.Date,
		Snippet:      m.Snippet,
		IsUnread:     lo.Contains(m.LabelIDs, mailbox.LabelUnread),
		LabelIDs:     m.LabelIDs,
		InternalDate: m.InternalDate,
	}
	if msg.Subject == "" {
		msg.Subject = "No Subject"
	}
	if msg.From == "" {
		msg.From = "Unknown Sender"
	}
	if msg.LabelIDs == nil {
		msg.LabelIDs = []string{}
	}
	return msg
}

// SortNewestFirst orders messages by received time, newest first.
func SortNewestFirst(messages []*Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].InternalDate > messages[j].InternalDate
	})
}
