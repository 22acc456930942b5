package repository

import labelsdomain "mailsweep-backend/internal/labels/domain"

// LabelRepository persists the per-user label mirror
type LabelRepository interface {
	// ReplaceForUser swaps every mirrored label of userID for labels in one transaction
	ReplaceForUser(userID string, labels []*labelsdomain.GmailLabel) error
	// UpsertMany writes labels keyed by (user_id, label_id)
	UpsertMany(labels []*labelsdomain.GmailLabel) error
	ListByUser(userID string) ([]*labelsdomain.GmailLabel, error)
	UpdateName(userID, labelID, name string) error
	Delete(userID, labelID string) error
}
