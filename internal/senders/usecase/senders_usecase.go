package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mailsweep-backend/internal/analysis/repository"
	sendersdomain "mailsweep-backend/internal/senders/domain"
	sendersdto "mailsweep-backend/internal/senders/dto"
	sendersrepo "mailsweep-backend/internal/senders/repository"
	"mailsweep-backend/pkg/config"
	"mailsweep-backend/pkg/mailbox"
	"mailsweep-backend/pkg/metrics"

	"go.uber.org/zap"
)

const searchPageSize = 100

// sendersUsecase implements SendersUsecase interface
type sendersUsecase struct {
	unsubRepo   sendersrepo.UnsubscribedSenderRepository
	safeRepo    sendersrepo.SafeSenderRepository
	statsRepo   repository.StatsRepository
	opener      mailbox.Opener
	credentials CredentialLookup
	locker      JobLock
	cfg         config.ActionConfig
	logger      *zap.Logger
}

// NewSendersUsecase creates a new instance of sendersUsecase
func NewSendersUsecase(
	unsubRepo sendersrepo.UnsubscribedSenderRepository,
	safeRepo sendersrepo.SafeSenderRepository,
	statsRepo repository.StatsRepository,
	opener mailbox.Opener,
	credentials CredentialLookup,
	locker JobLock,
	cfg config.ActionConfig,
	logger *zap.Logger,
) SendersUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sendersUsecase{
		unsubRepo:   unsubRepo,
		safeRepo:    safeRepo,
		statsRepo:   statsRepo,
		opener:      opener,
		credentials: credentials,
		locker:      locker,
		cfg:         cfg,
		logger:      logger.Named("senders"),
	}
}

func (u *sendersUsecase) search(ctx context.Context, provider mailbox.Provider, query string) ([]string, error) {
	return mailbox.ListMessageIDs(ctx, provider, mailbox.ListOptions{
		Query:    query,
		PageSize: searchPageSize,
	})
}

func (u *sendersUsecase) Unsubscribe(ctx context.Context, in *UnsubscribeInput) (*sendersdto.UnsubscribeResponse, error) {
	target := strings.TrimSpace(in.Target)
	if target == "" || in.Action == "" {
		return nil, ErrMissingTarget
	}
	if in.Action != ActionTrash && in.Action != ActionDelete {
		return nil, ErrInvalidAction
	}
	log := u.logger.With(zap.String("user_id", in.UserID), zap.String("target", target), zap.String("action", in.Action))

	provider, err := u.opener.Open(ctx, in.Credentials)
	if err != nil {
		return nil, err
	}

	ids, err := u.search(ctx, provider, mailbox.FromQuery(target))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &sendersdto.UnsubscribeResponse{
			Success: true,
			Errors:  []mailbox.BatchError{},
			Message: "No messages found for target.",
		}, nil
	}

	report := mailbox.ApplyInBatches(ctx, in.Action, ids, u.cfg.BatchSize, func(ctx context.Context, batch []string) error {
		// permanent deletion goes through trash first
		if err := provider.BatchModify(ctx, batch, []string{mailbox.LabelTrash}, []string{mailbox.LabelInbox}); err != nil {
			return err
		}
		if in.Action == ActionDelete {
			return provider.BatchDelete(ctx, batch)
		}
		return nil
	})

	resp := &sendersdto.UnsubscribeResponse{
		Success:   report.Success(),
		Total:     report.Total,
		Processed: report.Processed,
		Errors:    report.Errors,
	}
	switch {
	case !report.Success():
		resp.Message = "Some batches failed. See errors."
	case in.Action == ActionTrash:
		resp.Message = "All messages moved to trash."
	default:
		resp.Message = "All messages deleted."
	}

	if in.CreateFilter {
		filter, err := u.createFilter(ctx, provider, target, in.Action)
		if err != nil {
			log.Warn("failed to create sender filter", zap.Error(err))
			resp.FilterError = err.Error()
		} else {
			resp.FilterID = filter.ID
		}
	}

	u.mirrorUnsubscribe(in.UserID, target, in.Action, resp.FilterID, log)

	log.Info("unsubscribe complete", zap.Int("total", report.Total), zap.Int("processed", report.Processed))
	return resp, nil
}

// createFilter routes future mail from target to trash, or for delete mode to
// the label swept by the purge job.
func (u *sendersUsecase) createFilter(ctx context.Context, provider mailbox.Provider, target, action string) (*mailbox.Filter, error) {
	filter := &mailbox.Filter{From: target}
	if action == ActionTrash {
		filter.AddLabelIDs = []string{mailbox.LabelTrash}
		filter.RemoveLabelIDs = []string{mailbox.LabelInbox}
	} else {
		label, err := mailbox.EnsureLabel(ctx, provider, mailbox.LabelToDelete)
		if err != nil {
			return nil, fmt.Errorf("ensure %s label: %w", mailbox.LabelToDelete, err)
		}
		filter.AddLabelIDs = []string{label.ID}
	}
	return provider.CreateFilter(ctx, filter)
}

func (u *sendersUsecase) mirrorUnsubscribe(userID, target, action, filterID string, log *zap.Logger) {
	if userID == "" {
		log.Warn("no user for unsubscribe; sender lists not updated")
		return
	}

	mirrorAction := sendersdomain.ActionTrashed
	if action == ActionDelete {
		mirrorAction = sendersdomain.ActionDeleted
	}
	if err := u.unsubRepo.Upsert(&sendersdomain.UnsubscribedSender{
		UserID:        userID,
		Sender:        target,
		Action:        mirrorAction,
		GmailFilterID: filterID,
	}); err != nil {
		log.Warn("failed to record unsubscribed sender", zap.Error(err))
	}
	if _, err := u.statsRepo.DeleteBySenderOrDomain(userID, target); err != nil {
		log.Warn("failed to remove stats for unsubscribed sender", zap.Error(err))
	}
}

func (u *sendersUsecase) Resubscribe(ctx context.Context, userID string, creds mailbox.Credentials, sender string) (*sendersdto.ResubscribeResponse, error) {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return nil, ErrMissingSender
	}
	log := u.logger.With(zap.String("user_id", userID), zap.String("sender", sender))

	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}

	ids, err := u.search(ctx, provider, mailbox.FromQuery(sender)+" in:trash")
	if err != nil {
		return nil, err
	}

	report := mailbox.ApplyInBatches(ctx, "restore", ids, u.cfg.BatchSize, func(ctx context.Context, batch []string) error {
		return provider.BatchModify(ctx, batch, []string{mailbox.LabelInbox}, []string{mailbox.LabelTrash})
	})
	if !report.Success() {
		log.Warn("some restore batches failed", zap.Any("errors", report.Errors))
	}

	record, err := u.unsubRepo.FindByUserAndSender(userID, sender)
	if err != nil {
		log.Warn("failed to load unsubscribed sender", zap.Error(err))
	}
	if record != nil && record.GmailFilterID != "" {
		if err := provider.DeleteFilter(ctx, record.GmailFilterID); err != nil && !errors.Is(err, mailbox.ErrNotFound) {
			log.Warn("failed to delete sender filter", zap.String("filter_id", record.GmailFilterID), zap.Error(err))
		}
	}

	if _, err := u.unsubRepo.Delete(userID, sender); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return &sendersdto.ResubscribeResponse{
		Success:        true,
		Message:        fmt.Sprintf("Successfully resubscribed to %s. Moved %d emails from trash to inbox.", sender, report.Processed),
		Sender:         sender,
		EmailsRestored: report.Processed,
		Errors:         report.Errors,
	}, nil
}

func (u *sendersUsecase) MarkSafe(userID, domain string) (*sendersdto.DomainResponse, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, ErrMissingDomain
	}

	if _, err := u.safeRepo.Upsert(userID, domain); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	// the next pass skips the domain, so its old aggregate would never update
	if _, err := u.statsRepo.DeleteByDomain(userID, domain); err != nil {
		u.logger.Warn("failed to remove stats for safe domain",
			zap.String("user_id", userID),
			zap.String("domain", domain),
			zap.Error(err),
		)
	}

	return &sendersdto.DomainResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully marked %s as safe", domain),
		Domain:  domain,
	}, nil
}

func (u *sendersUsecase) UnmarkSafe(userID, domain string) (*sendersdto.DomainResponse, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, ErrMissingDomain
	}

	if _, err := u.safeRepo.Delete(userID, domain); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return &sendersdto.DomainResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully removed %s from safe list", domain),
		Domain:  domain,
	}, nil
}

func (u *sendersUsecase) ListSafeSenders(userID string) ([]*sendersdomain.SafeSender, error) {
	return u.safeRepo.ListByUser(userID)
}

func (u *sendersUsecase) ListUnsubscribedSenders(userID string) ([]*sendersdomain.UnsubscribedSender, error) {
	return u.unsubRepo.ListByUser(userID)
}

func (u *sendersUsecase) SyncFilters(ctx context.Context, userID string, creds mailbox.Credentials) (*sendersdto.FilterSyncResponse, error) {
	senders, err := u.unsubRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(senders) == 0 {
		return nil, ErrNoUnsubscribedSenders
	}

	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	existing, err := provider.ListFilters(ctx)
	if err != nil {
		return nil, err
	}
	covered := make(map[string]struct{}, len(existing))
	for _, f := range existing {
		covered[strings.ToLower(f.From)] = struct{}{}
	}

	resp := &sendersdto.FilterSyncResponse{Results: make([]*sendersdto.FilterResult, 0, len(senders))}
	for _, s := range senders {
		result := &sendersdto.FilterResult{Email: s.Sender}
		resp.Results = append(resp.Results, result)

		if s.Sender == "" {
			result.Error = "Empty sender email"
			continue
		}
		if _, ok := covered[strings.ToLower(s.Sender)]; ok {
			result.Error = "Filter already exists"
			continue
		}

		filter, err := provider.CreateFilter(ctx, &mailbox.Filter{
			From:           s.Sender,
			AddLabelIDs:    []string{mailbox.LabelTrash},
			RemoveLabelIDs: []string{mailbox.LabelInbox},
		})
		if err != nil {
			result.Error = err.Error()
			continue
		}
		result.Success = true
		result.FilterID = filter.ID
		covered[strings.ToLower(s.Sender)] = struct{}{}

		if s.GmailFilterID == "" {
			if err := u.unsubRepo.UpdateFilterID(userID, s.Sender, filter.ID); err != nil {
				u.logger.Warn("failed to record filter id",
					zap.String("user_id", userID),
					zap.String("sender", s.Sender),
					zap.Error(err),
				)
			}
		}
	}
	return resp, nil
}

func (u *sendersUsecase) PurgeMarked(ctx context.Context) (*sendersdto.PurgeResponse, error) {
	userIDs, err := u.unsubRepo.ListPurgeTargets()
	if err != nil {
		return nil, fmt.Errorf("failed to list purge targets: %w", err)
	}

	resp := &sendersdto.PurgeResponse{Message: "Successfully processed delete requests"}
	for _, userID := range userIDs {
		key := "purge:" + userID
		if u.locker != nil && !u.locker.Acquire(ctx, key) {
			continue
		}
		resp.ProcessedUsers++

		n, err := u.purgeUser(ctx, userID)
		if u.locker != nil {
			u.locker.Release(ctx, key)
		}
		if err != nil {
			u.logger.Warn("purge failed for user", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		resp.PurgedMessages += n
	}

	u.logger.Info("purge pass complete",
		zap.Int("users", resp.ProcessedUsers),
		zap.Int("messages", resp.PurgedMessages),
	)
	return resp, nil
}

func (u *sendersUsecase) purgeUser(ctx context.Context, userID string) (int, error) {
	creds, err := u.credentials.ProviderCredentialsByID(userID)
	if err != nil {
		return 0, err
	}
	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return 0, err
	}

	labels, err := provider.ListLabels(ctx)
	if err != nil {
		return 0, err
	}
	label := mailbox.FindLabelByName(labels, mailbox.LabelToDelete)
	if label == nil {
		return 0, nil
	}

	ids, err := mailbox.ListMessageIDs(ctx, provider, mailbox.ListOptions{
		LabelIDs: []string{label.ID},
		PageSize: searchPageSize,
	})
	if err != nil {
		return 0, err
	}

	report := mailbox.ApplyInBatches(ctx, "purge", ids, mailbox.MaxBatchSize, provider.BatchDelete)
	metrics.PurgedMessages.Add(float64(report.Processed))
	if !report.Success() {
		return report.Processed, fmt.Errorf("%d purge batches failed, first: %s", len(report.Errors), report.Errors[0].Error)
	}
	return report.Processed, nil
}
