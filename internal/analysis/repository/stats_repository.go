package repository

import (
	"strings"
	"time"

	analysisdomain "mailsweep-backend/internal/analysis/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// statsRepository implements StatsRepository interface
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new instance of statsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{
		db: db,
	}
}

func (r *statsRepository) Upsert(stats []*analysisdomain.SenderStat) error {
	if len(stats) == 0 {
		return nil
	}

	now := time.Now()
	for _, s := range stats {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		s.CreatedAt = now
		s.UpdatedAt = now
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "domain"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sender_email", "total_emails", "sender_count", "monthly_avg",
			"unsubscribe_url", "unsubscribe_mailto", "updated_at",
		}),
	}).Create(&stats).Error
}

func (r *statsRepository) ListByUser(userID string) ([]*analysisdomain.SenderStat, error) {
	stats := make([]*analysisdomain.SenderStat, 0)
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Order("total_emails DESC").Find(&stats).Error
	return stats, err
}

func (r *statsRepository) DeleteBySenderOrDomain(userID, target string) (int64, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	res := r.db.Where("user_id = ? AND (LOWER(sender_email) = ? OR domain = ?)", userID, target, target).
		Delete(&analysisdomain.SenderStat{})
	return res.RowsAffected, res.Error
}

func (r *statsRepository) DeleteByDomain(userID, domain string) (int64, error) {
	res := r.db.Where("user_id = ? AND domain = ?", userID, strings.ToLower(strings.TrimSpace(domain))).
		Delete(&analysisdomain.SenderStat{})
	return res.RowsAffected, res.Error
}
