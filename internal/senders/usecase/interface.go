package usecase

import (
	"context"
	"errors"

	sendersdomain "mailsweep-backend/internal/senders/domain"
	sendersdto "mailsweep-backend/internal/senders/dto"
	"mailsweep-backend/pkg/mailbox"
)

const (
	ActionTrash  = "trash"
	ActionDelete = "delete"
)

var (
	ErrMissingTarget         = errors.New("missing target or action")
	ErrInvalidAction         = errors.New("invalid action")
	ErrMissingSender         = errors.New("missing sender")
	ErrMissingDomain         = errors.New("missing domain")
	ErrNoUnsubscribedSenders = errors.New("no unsubscribed senders found")
	// ErrStore marks a failed write to the allow or deny list.
	ErrStore = errors.New("sender list store failed")
)

type UnsubscribeInput struct {
	UserID       string
	Credentials  mailbox.Credentials
	Target       string
	Action       string
	CreateFilter bool
}

// CredentialLookup yields the stored provider credential of a user.
type CredentialLookup interface {
	ProviderCredentialsByID(userID string) (mailbox.Credentials, error)
}

// JobLock leases a per-user purge key across replicas.
type JobLock interface {
	Acquire(ctx context.Context, key string) bool
	Release(ctx context.Context, key string)
}

// SendersUsecase executes sender-level actions on the mailbox and keeps the
// allow and deny lists
type SendersUsecase interface {
	Unsubscribe(ctx context.Context, in *UnsubscribeInput) (*sendersdto.UnsubscribeResponse, error)
	Resubscribe(ctx context.Context, userID string, creds mailbox.Credentials, sender string) (*sendersdto.ResubscribeResponse, error)
	MarkSafe(userID, domain string) (*sendersdto.DomainResponse, error)
	UnmarkSafe(userID, domain string) (*sendersdto.DomainResponse, error)
	ListSafeSenders(userID string) ([]*sendersdomain.SafeSender, error)
	ListUnsubscribedSenders(userID string) ([]*sendersdomain.UnsubscribedSender, error)
	// SyncFilters creates a trash filter for every unsubscribed sender that has none
	SyncFilters(ctx context.Context, userID string, creds mailbox.Credentials) (*sendersdto.FilterSyncResponse, error)
	Purger
}

// Purger permanently deletes messages tagged for deletion by delete-mode filters.
type Purger interface {
	PurgeMarked(ctx context.Context) (*sendersdto.PurgeResponse, error)
}
