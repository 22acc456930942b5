package repository

import (
	"errors"
	"time"

	analysisdomain "mailsweep-backend/internal/analysis/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// checkpointRepository implements CheckpointRepository interface
type checkpointRepository struct {
	db *gorm.DB
}

// NewCheckpointRepository creates a new instance of checkpointRepository
func NewCheckpointRepository(db *gorm.DB) CheckpointRepository {
	return &checkpointRepository{
		db: db,
	}
}

func (r *checkpointRepository) FindByUser(userID string) (*analysisdomain.AnalysisCheckpoint, error) {
	var checkpoint analysisdomain.AnalysisCheckpoint
	err := r.db.Where("user_id = ?", userID).First(&checkpoint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checkpoint, nil
}

func (r *checkpointRepository) Save(userID string, lastRun time.Time) error {
	now := time.Now()
	checkpoint := &analysisdomain.AnalysisCheckpoint{
		ID:        uuid.New().String(),
		UserID:    userID,
		LastRun:   lastRun,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_run", "updated_at"}),
	}).Create(checkpoint).Error
}
