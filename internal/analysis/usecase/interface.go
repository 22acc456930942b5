package usecase

import (
	"context"
	"errors"

	analysisdomain "mailsweep-backend/internal/analysis/domain"
	analysisdto "mailsweep-backend/internal/analysis/dto"
	"mailsweep-backend/pkg/mailbox"
)

// ErrStoreStats marks a failed aggregate upsert.
var ErrStoreStats = errors.New("failed to store stats")

type AnalyzeInput struct {
	UserID      string
	Credentials mailbox.Credentials
	// ExcludeTransactional overrides the configured default when set.
	ExcludeTransactional *bool
}

// AnalysisUsecase runs mailbox analysis passes and serves their results
type AnalysisUsecase interface {
	Analyze(ctx context.Context, in *AnalyzeInput) (*analysisdto.AnalyzeResponse, error)
	// PreviewEmails lists the messages the next pass would scan without persisting anything
	PreviewEmails(ctx context.Context, in *AnalyzeInput) ([]*analysisdto.EmailPreview, error)
	GetStats(userID string) ([]*analysisdomain.SenderStat, error)
}

// SafeSenderLister supplies the allow list consulted by every pass.
type SafeSenderLister interface {
	ListDomains(userID string) ([]string, error)
}

// UnsubscribedSenderLister supplies the deny list consulted by every pass.
type UnsubscribedSenderLister interface {
	ListSenders(userID string) ([]string, error)
}
