package repository

import (
	"strings"
	"time"

	sendersdomain "mailsweep-backend/internal/senders/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// safeSenderRepository implements SafeSenderRepository interface
type safeSenderRepository struct {
	db *gorm.DB
}

// NewSafeSenderRepository creates a new instance of safeSenderRepository
func NewSafeSenderRepository(db *gorm.DB) SafeSenderRepository {
	return &safeSenderRepository{
		db: db,
	}
}

func normalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
}

func (r *safeSenderRepository) Upsert(userID, domain string) (*sendersdomain.SafeSender, error) {
	now := time.Now()
	row := &sendersdomain.SafeSender{
		ID:        uuid.New().String(),
		UserID:    userID,
		Domain:    normalizeDomain(domain),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *safeSenderRepository) Delete(userID, domain string) (int64, error) {
	res := r.db.Where("user_id = ? AND domain = ?", userID, normalizeDomain(domain)).
		Delete(&sendersdomain.SafeSender{})
	return res.RowsAffected, res.Error
}

func (r *safeSenderRepository) ListByUser(userID string) ([]*sendersdomain.SafeSender, error) {
	rows := make([]*sendersdomain.SafeSender, 0)
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&rows).Error
	return rows, err
}

func (r *safeSenderRepository) ListDomains(userID string) ([]string, error) {
	domains := make([]string, 0)
	err := r.db.Model(&sendersdomain.SafeSender{}).Where("user_id = ?", userID).Pluck("domain", &domains).Error
	return domains, err
}
