package repository

import (
	"time"

	analysisdomain "mailsweep-backend/internal/analysis/domain"
)

// StatsRepository persists per-domain sender aggregates
type StatsRepository interface {
	// Upsert writes every row keyed by (domain, user_id), replacing existing values
	Upsert(stats []*analysisdomain.SenderStat) error
	ListByUser(userID string) ([]*analysisdomain.SenderStat, error)
	// DeleteBySenderOrDomain removes rows whose sender_email or domain equals target
	DeleteBySenderOrDomain(userID, target string) (int64, error)
	DeleteByDomain(userID, domain string) (int64, error)
}

// CheckpointRepository persists the one-row-per-user analysis checkpoint
type CheckpointRepository interface {
	FindByUser(userID string) (*analysisdomain.AnalysisCheckpoint, error)
	Save(userID string, lastRun time.Time) error
}
