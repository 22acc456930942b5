package dto

import (
	emaildomain "mailsweep-backend/internal/email/domain"
	"mailsweep-backend/pkg/mailbox"
)

type ListMessagesRequest struct {
	LabelID    string
	Query      string
	MaxResults int64
	PageToken  string
}

type MessagesResponse struct {
	Messages           []*emaildomain.Message `json:"messages"`
	NextPageToken      *string                `json:"nextPageToken"`
	ResultSizeEstimate int64                  `json:"resultSizeEstimate"`
}

type MoveToLabelRequest struct {
	AccessToken  string `json:"accessToken"`
	UserID       string `json:"userId"`
	UserEmail    string `json:"userEmail"`
	SenderDomain string `json:"senderDomain"`
	SenderEmail  string `json:"senderEmail"`
	LabelID      string `json:"labelId"`
}

type MoveToLabelResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	MovedCount   int                  `json:"movedCount"`
	Total        int                  `json:"total"`
	Processed    int                  `json:"processed"`
	Errors       []mailbox.BatchError `json:"errors"`
	LabelID      string               `json:"labelId,omitempty"`
	SenderDomain string               `json:"senderDomain,omitempty"`
}
