package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	emaildomain "mailsweep-backend/internal/email/domain"
	emaildto "mailsweep-backend/internal/email/dto"
	"mailsweep-backend/pkg/config"
	"mailsweep-backend/pkg/mailbox"

	"go.uber.org/zap"
)

// ErrInvalidToken marks a credential the provider refused on the profile check.
var ErrInvalidToken = errors.New("access token invalid")

const (
	defaultMaxResults = 20
	// moveSearchLimit caps how many messages one move-to-label call touches.
	moveSearchLimit = 500
)

var listingHeaders = []string{mailbox.HeaderSubject, mailbox.HeaderFrom, mailbox.HeaderDate}

// emailUsecase implements EmailUsecase interface
type emailUsecase struct {
	opener mailbox.Opener
	cfg    config.ActionConfig
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewEmailUsecase creates a new instance of emailUsecase
func NewEmailUsecase(opener mailbox.Opener, cfg config.ActionConfig, logger *zap.Logger) EmailUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &emailUsecase{
		opener: opener,
		cfg:    cfg,
		logger: logger.Named("email"),
	}
}

// openChecked opens a provider and confirms the credential with a profile read.
func (u *emailUsecase) openChecked(ctx context.Context, creds mailbox.Credentials) (mailbox.Provider, error) {
	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	profile, err := provider.Profile(ctx)
	if err != nil {
		if errors.Is(err, mailbox.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	u.logger.Debug("provider credential accepted", zap.String("email", profile.EmailAddress))
	return provider, nil
}

func (u *emailUsecase) ListMessages(ctx context.Context, creds mailbox.Credentials, req *emaildto.ListMessagesRequest) (*emaildto.MessagesResponse, error) {
	if req.LabelID == "" {
		return nil, ErrMissingLabelID
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	provider, err := u.openChecked(ctx, creds)
	if err != nil {
		return nil, err
	}

	page, err := provider.ListMessages(ctx, mailbox.ListQuery{
		Query:     req.Query,
		LabelIDs:  []string{req.LabelID},
		PageToken: req.PageToken,
		PageSize:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	resp := &emaildto.MessagesResponse{Messages: []*emaildomain.Message{}}
	if page.NextPageToken != "" {
		next := page.NextPageToken
		resp.NextPageToken = &next
	}
	if len(page.IDs) == 0 {
		return resp, nil
	}
	resp.ResultSizeEstimate = page.ResultSizeEstimate

	fetched, err := mailbox.FetchMetadata(ctx, provider, page.IDs, mailbox.FetchOptions{
		BatchSize: u.cfg.BrowseBatchSize,
		Delay:     u.cfg.BrowseBatchDelay,
		Headers:   listingHeaders,
		Sleep:     u.sleep,
		Logger:    u.logger,
	})
	if err != nil {
		return nil, err
	}

	for _, m := range fetched.Messages {
		resp.Messages = append(resp.Messages, emaildomain.FromMetadata(m))
	}
	emaildomain.SortNewestFirst(resp.Messages)
	return resp, nil
}

func (u *emailUsecase) MoveToLabel(ctx context.Context, creds mailbox.Credentials, req *emaildto.MoveToLabelRequest) (*emaildto.MoveToLabelResponse, error) {
	if req.SenderDomain == "" || req.LabelID == "" {
		return nil, ErrMissingParams
	}

	provider, err := u.openChecked(ctx, creds)
	if err != nil {
		return nil, err
	}

	ids, err := mailbox.ListMessageIDs(ctx, provider, mailbox.ListOptions{
		Query:       mailbox.FromSenderQuery(req.SenderEmail, req.SenderDomain),
		PageSize:    moveSearchLimit,
		MaxMessages: moveSearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search for emails: %w", err)
	}
	if len(ids) == 0 {
		return &emaildto.MoveToLabelResponse{
			Success: true,
			Message: "No emails found for this sender",
			Errors:  []mailbox.BatchError{},
		}, nil
	}

	report := mailbox.ApplyInBatches(ctx, "move_to_label", ids, u.cfg.BatchSize, func(ctx context.Context, batch []string) error {
		return provider.BatchModify(ctx, batch, []string{req.LabelID}, nil)
	})

	resp := &emaildto.MoveToLabelResponse{
		Success:      report.Success(),
		Message:      fmt.Sprintf("Successfully moved %d emails to the selected label", report.Processed),
		MovedCount:   report.Processed,
		Total:        report.Total,
		Processed:    report.Processed,
		Errors:       report.Errors,
		LabelID:      req.LabelID,
		SenderDomain: req.SenderDomain,
	}
	if !report.Success() {
		u.logger.Warn("some move to label batches failed",
			zap.String("sender_domain", req.SenderDomain),
			zap.String("label_id", req.LabelID),
			zap.Int("processed", report.Processed),
			zap.Int("failed_batches", len(report.Errors)),
		)
		resp.Message = fmt.Sprintf("Moved %d of %d emails. Some batches failed. See errors.", report.Processed, report.Total)
	}
	return resp, nil
}
