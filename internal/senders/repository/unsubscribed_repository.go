package repository

import (
	"errors"
	"strings"
	"time"

	sendersdomain "mailsweep-backend/internal/senders/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unsubscribedSenderRepository implements UnsubscribedSenderRepository interface
type unsubscribedSenderRepository struct {
	db *gorm.DB
}

// NewUnsubscribedSenderRepository creates a new instance of unsubscribedSenderRepository
func NewUnsubscribedSenderRepository(db *gorm.DB) UnsubscribedSenderRepository {
	return &unsubscribedSenderRepository{
		db: db,
	}
}

func normalizeSender(sender string) string {
	return strings.ToLower(strings.TrimSpace(sender))
}

func (r *unsubscribedSenderRepository) Upsert(sender *sendersdomain.UnsubscribedSender) error {
	now := time.Now()
	if sender.ID == "" {
		sender.ID = uuid.New().String()
	}
	sender.Sender = normalizeSender(sender.Sender)
	sender.CreatedAt = now
	sender.UpdatedAt = now

	columns := []string{"action", "updated_at"}
	if sender.GmailFilterID != "" {
		columns = append(columns, "gmail_filter_id")
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "sender"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(sender).Error
}

func (r *unsubscribedSenderRepository) FindByUserAndSender(userID, sender string) (*sendersdomain.UnsubscribedSender, error) {
	var row sendersdomain.UnsubscribedSender
	err := r.db.Where("user_id = ? AND sender = ?", userID, normalizeSender(sender)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *unsubscribedSenderRepository) ListByUser(userID string) ([]*sendersdomain.UnsubscribedSender, error) {
	rows := make([]*sendersdomain.UnsubscribedSender, 0)
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&rows).Error
	return rows, err
}

func (r *unsubscribedSenderRepository) ListSenders(userID string) ([]string, error) {
	senders := make([]string, 0)
	err := r.db.Model(&sendersdomain.UnsubscribedSender{}).Where("user_id = ?", userID).Pluck("sender", &senders).Error
	return senders, err
}

func (r *unsubscribedSenderRepository) UpdateFilterID(userID, sender, filterID string) error {
	return r.db.Model(&sendersdomain.UnsubscribedSender{}).
		Where("user_id = ? AND sender = ?", userID, normalizeSender(sender)).
		Updates(map[string]interface{}{"gmail_filter_id": filterID, "updated_at": time.Now()}).Error
}

func (r *unsubscribedSenderRepository) Delete(userID, sender string) (int64, error) {
	res := r.db.Where("user_id = ? AND sender = ?", userID, normalizeSender(sender)).
		Delete(&sendersdomain.UnsubscribedSender{})
	return res.RowsAffected, res.Error
}

func (r *unsubscribedSenderRepository) ListPurgeTargets() ([]string, error) {
	userIDs := make([]string, 0)
	err := r.db.Model(&sendersdomain.UnsubscribedSender{}).
		Where("action = ? AND gmail_filter_id <> ''", sendersdomain.ActionDeleted).
		Distinct().Order("user_id").Pluck("user_id", &userIDs).Error
	return userIDs, err
}
