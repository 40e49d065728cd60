package implementation

import (
	"context"

	"agora-be/internal/entity"
	"agora-be/internal/mapper"
	"agora-be/internal/model"
	"agora-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemoryRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemoryRecordMapper
}

func NewMemoryRecordRepository(db *gorm.DB) contract.MemoryRecordRepository {
	return &MemoryRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemoryRecordMapper(),
	}
}

func (r *MemoryRecordRepositoryImpl) Upsert(ctx context.Context, record *entity.MemoryRecord) error {
	m := r.mapper.ToModel(record)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mastered_topics", "confused_topics", "digest", "embedding", "updated_at",
			}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}

	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *MemoryRecordRepositoryImpl) FindRecentByUser(ctx context.Context, userId string, limit int) ([]*entity.MemoryRecord, error) {
	if limit <= 0 {
		limit = 5
	}

	var models []*model.MemoryRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("updated_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(models), nil
}

func (r *MemoryRecordRepositoryImpl) DeleteBySession(ctx context.Context, userId, sessionId string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userId, sessionId).
		Delete(&model.MemoryRecord{}).Error
}
