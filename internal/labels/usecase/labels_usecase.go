package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	labelsdomain "mailsweep-backend/internal/labels/domain"
	labelsdto "mailsweep-backend/internal/labels/dto"
	"mailsweep-backend/internal/labels/repository"
	"mailsweep-backend/pkg/config"
	"mailsweep-backend/pkg/mailbox"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// labelsUsecase implements LabelsUsecase interface
type labelsUsecase struct {
	labelRepo repository.LabelRepository
	opener    mailbox.Opener
	cfg       config.ActionConfig
	logger    *zap.Logger
}

// NewLabelsUsecase creates a new instance of labelsUsecase
func NewLabelsUsecase(labelRepo repository.LabelRepository, opener mailbox.Opener, cfg config.ActionConfig, logger *zap.Logger) LabelsUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &labelsUsecase{
		labelRepo: labelRepo,
		opener:    opener,
		cfg:       cfg,
		logger:    logger.Named("labels"),
	}
}

// hiddenLabel reports labels left out of a sync: chat and the inbox categories.
func hiddenLabel(l *mailbox.Label) bool {
	return l.ID == "CHAT" ||
		strings.HasPrefix(l.ID, "CATEGORY_") ||
		l.Name == "" ||
		strings.HasPrefix(l.Name, "CATEGORY_")
}

func toRows(userID string, labels []*mailbox.Label) []*labelsdomain.GmailLabel {
	return lo.Map(labels, func(l *mailbox.Label, _ int) *labelsdomain.GmailLabel {
		return labelsdomain.FromMailbox(userID, l)
	})
}

func (u *labelsUsecase) ListStored(userID string) ([]*labelsdomain.GmailLabel, error) {
	return u.labelRepo.ListByUser(userID)
}

func (u *labelsUsecase) Sync(ctx context.Context, userID string, creds mailbox.Credentials) (*labelsdto.SyncResponse, error) {
	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	labels, err := provider.ListLabels(ctx)
	if err != nil {
		return nil, err
	}

	visible := lo.Reject(labels, func(l *mailbox.Label, _ int) bool { return hiddenLabel(l) })
	rows := toRows(userID, visible)
	resp := &labelsdto.SyncResponse{
		Success: true,
		Labels:  rows,
		Count:   len(rows),
	}
	if len(rows) == 0 {
		return resp, nil
	}

	if err := u.labelRepo.ReplaceForUser(userID, rows); err != nil {
		u.logger.Warn("failed to store synced labels", zap.String("user_id", userID), zap.Error(err))
		resp.StorageMessage = fmt.Sprintf("Database storage failed: %s", err.Error())
		return resp, nil
	}
	resp.Stored = true
	resp.StorageMessage = fmt.Sprintf("Successfully stored %d labels in database", len(rows))
	return resp, nil
}

func (u *labelsUsecase) Fetch(ctx context.Context, userID string, creds mailbox.Credentials) ([]*labelsdomain.GmailLabel, error) {
	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	labels, err := provider.ListLabels(ctx)
	if err != nil {
		return nil, err
	}

	rows := toRows(userID, labels)
	if err := u.labelRepo.UpsertMany(rows); err != nil {
		return nil, fmt.Errorf("failed to store labels in database: %w", err)
	}
	return rows, nil
}

func (u *labelsUsecase) Create(ctx context.Context, userID string, creds mailbox.Credentials, name, parentLabelID string) (*labelsdto.LabelResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingLabelName
	}

	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}

	fullName := name
	if parentLabelID != "" && parentLabelID != "none" {
		// an unknown parent falls back to a top-level label
		parent, err := provider.GetLabel(ctx, parentLabelID)
		if err != nil {
			u.logger.Warn("parent label lookup failed", zap.String("parent_label_id", parentLabelID), zap.Error(err))
		} else if parent.Name != "" {
			fullName = parent.Name + "/" + name
		}
	}

	label, err := provider.CreateLabel(ctx, &mailbox.Label{
		Name:                  fullName,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	})
	if err != nil {
		if errors.Is(err, mailbox.ErrConflict) {
			return nil, &LabelExistsError{Name: fullName}
		}
		return nil, err
	}

	if userID != "" {
		if err := u.labelRepo.UpsertMany([]*labelsdomain.GmailLabel{labelsdomain.FromMailbox(userID, label)}); err != nil {
			u.logger.Warn("failed to mirror created label", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return &labelsdto.LabelResponse{
		Success: true,
		Label:   label,
		Message: fmt.Sprintf("Label %q created successfully", fullName),
	}, nil
}

func (u *labelsUsecase) Delete(ctx context.Context, userID string, creds mailbox.Credentials, labelID string) (*labelsdto.LabelResponse, error) {
	if labelID == "" {
		return nil, ErrMissingLabelID
	}

	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := provider.DeleteLabel(ctx, labelID); err != nil {
		return nil, err
	}

	if userID != "" {
		if err := u.labelRepo.Delete(userID, labelID); err != nil {
			u.logger.Warn("failed to remove mirrored label", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return &labelsdto.LabelResponse{Success: true, Message: "Label deleted successfully"}, nil
}

func (u *labelsUsecase) Rename(ctx context.Context, userID string, creds mailbox.Credentials, labelID, newName string) (*labelsdto.LabelResponse, error) {
	newName = strings.TrimSpace(newName)
	if labelID == "" || newName == "" {
		return nil, ErrMissingRename
	}

	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	label, err := provider.RenameLabel(ctx, labelID, newName)
	if err != nil {
		return nil, err
	}

	if userID != "" {
		if err := u.labelRepo.UpdateName(userID, labelID, label.Name); err != nil {
			u.logger.Warn("failed to rename mirrored label", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return &labelsdto.LabelResponse{Success: true, Label: label, Message: "Label renamed successfully"}, nil
}

func (u *labelsUsecase) Move(ctx context.Context, creds mailbox.Credentials, fromLabelID, toLabelID string) (*labelsdto.MoveResponse, error) {
	if fromLabelID == "" || toLabelID == "" {
		return nil, ErrMissingMove
	}

	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	ids, err := mailbox.ListMessageIDs(ctx, provider, mailbox.ListOptions{
		LabelIDs: []string{fromLabelID},
		PageSize: 500,
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &labelsdto.MoveResponse{Success: true, Message: "No messages found."}, nil
	}

	report := mailbox.ApplyInBatches(ctx, "move_label", ids, u.cfg.BatchSize, func(ctx context.Context, batch []string) error {
		return provider.BatchModify(ctx, batch, []string{toLabelID}, []string{fromLabelID})
	})
	return &labelsdto.MoveResponse{Success: report.Success(), Moved: report.Processed, Errors: report.Errors}, nil
}

func (u *labelsUsecase) MoveFromSenders(ctx context.Context, creds mailbox.Credentials, senders []string, labelID string) (*labelsdto.MoveResponse, error) {
	senders = lo.Uniq(lo.Compact(lo.Map(senders, func(s string, _ int) string { return strings.TrimSpace(s) })))
	if len(senders) == 0 || labelID == "" {
		return nil, ErrMissingSenders
	}

	provider, err := u.opener.Open(ctx, creds)
	if err != nil {
		return nil, err
	}

	// batch numbers continue across senders so every error names one batch
	resp := &labelsdto.MoveResponse{Success: true}
	offset := 0
	for _, sender := range senders {
		ids, err := mailbox.ListMessageIDs(ctx, provider, mailbox.ListOptions{
			Query:    mailbox.FromQuery(sender),
			PageSize: 500,
		})
		if err != nil {
			return nil, err
		}
		report := mailbox.ApplyInBatches(ctx, "label_senders", ids, u.cfg.BatchSize, func(ctx context.Context, batch []string) error {
			return provider.BatchModify(ctx, batch, []string{labelID}, nil)
		})
		resp.Moved += report.Processed
		for _, e := range report.Errors {
			resp.Success = false
			resp.Errors = append(resp.Errors, mailbox.BatchError{
				Batch: offset + e.Batch,
				Error: sender + ": " + e.Error,
			})
		}
		offset += report.Batches
	}
	return resp, nil
}
