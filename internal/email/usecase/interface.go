package usecase

import (
	"context"
	"errors"

	emaildto "mailsweep-backend/internal/email/dto"
	"mailsweep-backend/pkg/mailbox"
)

var (
	ErrMissingLabelID = errors.New("label id is required")
	ErrMissingParams  = errors.New("missing required parameters")
)

// EmailUsecase defines the interface for mailbox browsing use cases
type EmailUsecase interface {
	// ListMessages returns one page of a label listing with header details
	ListMessages(ctx context.Context, creds mailbox.Credentials, req *emaildto.ListMessagesRequest) (*emaildto.MessagesResponse, error)
	// MoveToLabel adds labelID to every message from the sender address or domain
	MoveToLabel(ctx context.Context, creds mailbox.Credentials, req *emaildto.MoveToLabelRequest) (*emaildto.MoveToLabelResponse, error)
}
