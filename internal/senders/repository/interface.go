package repository

import sendersdomain "mailsweep-backend/internal/senders/domain"

// UnsubscribedSenderRepository persists the per-user deny list
type UnsubscribedSenderRepository interface {
	// Upsert keys on (user_id, sender). An empty GmailFilterID keeps the stored one.
	Upsert(sender *sendersdomain.UnsubscribedSender) error
	FindByUserAndSender(userID, sender string) (*sendersdomain.UnsubscribedSender, error)
	ListByUser(userID string) ([]*sendersdomain.UnsubscribedSender, error)
	ListSenders(userID string) ([]string, error)
	UpdateFilterID(userID, sender, filterID string) error
	Delete(userID, sender string) (int64, error)
	// ListPurgeTargets returns the users with at least one delete-mode filter
	ListPurgeTargets() ([]string, error)
}

// SafeSenderRepository persists the per-user allow list
type SafeSenderRepository interface {
	Upsert(userID, domain string) (*sendersdomain.SafeSender, error)
	Delete(userID, domain string) (int64, error)
	ListByUser(userID string) ([]*sendersdomain.SafeSender, error)
	ListDomains(userID string) ([]string, error)
}
