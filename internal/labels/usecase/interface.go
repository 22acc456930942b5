package usecase

import (
	"context"
	"errors"
	"fmt"

	labelsdomain "mailsweep-backend/internal/labels/domain"
	labelsdto "mailsweep-backend/internal/labels/dto"
	"mailsweep-backend/pkg/mailbox"
)

var (
	ErrMissingLabelName = errors.New("label name is required")
	ErrMissingLabelID   = errors.New("missing labelId")
	ErrMissingRename    = errors.New("missing labelId or newName")
	ErrMissingMove      = errors.New("missing fromLabelId or toLabelId")
	ErrMissingSenders   = errors.New("missing senders or labelId")
	ErrLabelExists      = errors.New("label already exists")
)

// LabelExistsError names the label that collided with an existing one.
type LabelExistsError struct {
	Name string
}

func (e *LabelExistsError) Error() string {
	return fmt.Sprintf("Label %q already exists.", e.Name)
}

func (e *LabelExistsError) Unwrap() error {
	return ErrLabelExists
}

// LabelsUsecase manages provider labels and their local mirror
type LabelsUsecase interface {
	ListStored(userID string) ([]*labelsdomain.GmailLabel, error)
	// Sync replaces the mirror with the provider's labels minus chat and category labels
	Sync(ctx context.Context, userID string, creds mailbox.Credentials) (*labelsdto.SyncResponse, error)
	// Fetch upserts every provider label into the mirror
	Fetch(ctx context.Context, userID string, creds mailbox.Credentials) ([]*labelsdomain.GmailLabel, error)
	Create(ctx context.Context, userID string, creds mailbox.Credentials, name, parentLabelID string) (*labelsdto.LabelResponse, error)
	Delete(ctx context.Context, userID string, creds mailbox.Credentials, labelID string) (*labelsdto.LabelResponse, error)
	Rename(ctx context.Context, userID string, creds mailbox.Credentials, labelID, newName string) (*labelsdto.LabelResponse, error)
	Move(ctx context.Context, creds mailbox.Credentials, fromLabelID, toLabelID string) (*labelsdto.MoveResponse, error)
	MoveFromSenders(ctx context.Context, creds mailbox.Credentials, senders []string, labelID string) (*labelsdto.MoveResponse, error)
}
