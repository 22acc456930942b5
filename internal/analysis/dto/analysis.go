package dto

import analysisdomain "mailsweep-backend/internal/analysis/domain"

type AnalyzeRequest struct {
	AccessToken          string `json:"accessToken"`
	UserID               string `json:"userId"`
	UserEmail            string `json:"userEmail"`
	ExcludeTransactional *bool  `json:"excludeTransactional"`
}

type AnalyzeResponse struct {
	Message            string `json:"message"`
	Inserted           int    `json:"inserted"`
	Analyzed           int    `json:"analyzed"`
	Scanned            int    `json:"scanned"`
	Dropped            int    `json:"dropped"`
	Query              string `json:"query"`
	CheckpointAdvanced bool   `json:"checkpointAdvanced"`
}

// EmailPreview is returned instead of persisting when the caller asks for the
// raw message list.
type EmailPreview struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

type EmailsResponse struct {
	Emails []*EmailPreview `json:"emails"`
	Count  int             `json:"count"`
}

type StatsResponse struct {
	Stats []*analysisdomain.SenderStat `json:"stats"`
}
