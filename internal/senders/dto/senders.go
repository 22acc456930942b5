package dto

import (
	sendersdomain "mailsweep-backend/internal/senders/domain"
	"mailsweep-backend/pkg/mailbox"
)

type UnsubscribeRequest struct {
	Target       string `json:"target"`
	Action       string `json:"action"`
	CreateFilter bool   `json:"createFilter"`
	AccessToken  string `json:"accessToken"`
	UserID       string `json:"userId"`
}

type UnsubscribeResponse struct {
	Success     bool                 `json:"success"`
	Total       int                  `json:"total"`
	Processed   int                  `json:"processed"`
	Errors      []mailbox.BatchError `json:"errors"`
	Message     string               `json:"message"`
	FilterID    string               `json:"filterId,omitempty"`
	FilterError string               `json:"filterError,omitempty"`
}

type ResubscribeRequest struct {
	Sender      string `json:"sender"`
	AccessToken string `json:"accessToken"`
}

type ResubscribeResponse struct {
	Success        bool                 `json:"success"`
	Message        string               `json:"message"`
	Sender         string               `json:"sender"`
	EmailsRestored int                  `json:"emailsRestored"`
	Errors         []mailbox.BatchError `json:"errors,omitempty"`
}

type DomainRequest struct {
	Domain string `json:"domain"`
}

type DomainResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Domain  string `json:"domain"`
}

type SafeSendersResponse struct {
	Senders []*sendersdomain.SafeSender `json:"senders"`
	Count   int                         `json:"count"`
}

type UnsubscribedSendersResponse struct {
	Senders []*sendersdomain.UnsubscribedSender `json:"senders"`
	Count   int                                 `json:"count"`
}

type FilterSyncRequest struct {
	AccessToken string `json:"accessToken"`
}

type FilterResult struct {
	Email    string `json:"email"`
	Success  bool   `json:"success"`
	FilterID string `json:"filterId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type FilterSyncResponse struct {
	Results []*FilterResult `json:"results"`
}

type PurgeResponse struct {
	Message        string `json:"message"`
	ProcessedUsers int    `json:"processedUsers"`
	PurgedMessages int    `json:"purgedMessages"`
}
