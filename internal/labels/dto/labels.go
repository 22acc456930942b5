package dto

import (
	labelsdomain "mailsweep-backend/internal/labels/domain"
	"mailsweep-backend/pkg/mailbox"
)

type SyncRequest struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
}

type LabelsResponse struct {
	Success bool                       `json:"success"`
	Labels  []*labelsdomain.GmailLabel `json:"labels"`
	Count   int                        `json:"count"`
	Source  string                     `json:"source,omitempty"`
}

type SyncResponse struct {
	Success        bool                       `json:"success"`
	Labels         []*labelsdomain.GmailLabel `json:"labels"`
	Count          int                        `json:"count"`
	Stored         bool                       `json:"stored"`
	StorageMessage string                     `json:"storageMessage"`
}

type CreateLabelRequest struct {
	AccessToken   string `json:"accessToken"`
	UserID        string `json:"userId"`
	LabelName     string `json:"labelName"`
	Name          string `json:"name"`
	ParentLabelID string `json:"parentLabelId"`
}

type DeleteLabelRequest struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	LabelID     string `json:"labelId"`
}

type RenameLabelRequest struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	LabelID     string `json:"labelId"`
	NewName     string `json:"newName"`
}

type LabelResponse struct {
	Success bool           `json:"success"`
	Label   *mailbox.Label `json:"label,omitempty"`
	Message string         `json:"message"`
}

type MoveLabelRequest struct {
	AccessToken string `json:"accessToken"`
	FromLabelID string `json:"fromLabelId"`
	ToLabelID   string `json:"toLabelId"`
}

type MoveFromSendersRequest struct {
	AccessToken string   `json:"accessToken"`
	Senders     []string `json:"senders"`
	LabelID     string   `json:"labelId"`
}

type MoveResponse struct {
	Success bool                 `json:"success"`
	Moved   int                  `json:"moved"`
	Message string               `json:"message,omitempty"`
	Errors  []mailbox.BatchError `json:"errors,omitempty"`
}
