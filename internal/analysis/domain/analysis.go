package domain

import "time"

// SenderStat is the per-domain rollup of one analysis pass. Each pass
// overwrites the row for the domains it saw.
type SenderStat struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	UserID            string    `json:"user_id" gorm:"not null;uniqueIndex:idx_email_stats_domain_user,priority:2"`
	Domain            string    `json:"domain" gorm:"not null;uniqueIndex:idx_email_stats_domain_user,priority:1"`
	SenderEmail       string    `json:"sender_email"`
	TotalEmails       int       `json:"total_emails"`
	SenderCount       int       `json:"sender_count"`
	MonthlyAvg        float64   `json:"monthly_avg"`
	UnsubscribeURL    string    `json:"unsubscribe_url,omitempty"`
	UnsubscribeMailto string    `json:"unsubscribe_mailto,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (SenderStat) TableName() string {
	return "email_stats"
}

// AnalysisCheckpoint records when the last successful pass for a user ran.
type AnalysisCheckpoint struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex"`
	LastRun   time.Time `json:"last_run"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnalysisCheckpoint) TableName() string {
	return "email_analysis_meta"
}
