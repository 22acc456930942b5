package repository

import (
	"time"

	labelsdomain "mailsweep-backend/internal/labels/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// labelRepository implements LabelRepository interface
type labelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new instance of labelRepository
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepository{
		db: db,
	}
}

func stamp(labels []*labelsdomain.GmailLabel) {
	now := time.Now()
	for _, l := range labels {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.CreatedAt = now
		l.UpdatedAt = now
	}
}

func (r *labelRepository) ReplaceForUser(userID string, labels []*labelsdomain.GmailLabel) error {
	stamp(labels)
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&labelsdomain.GmailLabel{}).Error; err != nil {
			return err
		}
		if len(labels) == 0 {
			return nil
		}
		return tx.Create(&labels).Error
	})
}

func (r *labelRepository) UpsertMany(labels []*labelsdomain.GmailLabel) error {
	if len(labels) == 0 {
		return nil
	}
	stamp(labels)
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "label_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "type", "messages_total", "messages_unread", "threads_total", "threads_unread",
			"color_background_color", "color_text_color", "label_list_visibility", "message_list_visibility",
			"updated_at",
		}),
	}).Create(&labels).Error
}

func (r *labelRepository) ListByUser(userID string) ([]*labelsdomain.GmailLabel, error) {
	labels := make([]*labelsdomain.GmailLabel, 0)
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&labels).Error
	return labels, err
}

func (r *labelRepository) UpdateName(userID, labelID, name string) error {
	return r.db.Model(&labelsdomain.GmailLabel{}).
		Where("user_id = ? AND label_id = ?", userID, labelID).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()}).Error
}

func (r *labelRepository) Delete(userID, labelID string) error {
	return r.db.Where("user_id = ? AND label_id = ?", userID, labelID).Delete(&labelsdomain.GmailLabel{}).Error
}
