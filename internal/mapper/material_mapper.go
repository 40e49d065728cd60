package mapper

import (
	"time"

	"agora-be/internal/entity"
	"agora-be/internal/model"

	"gorm.io/gorm"
)

type MaterialMapper struct{}

func NewMaterialMapper() *MaterialMapper {
	return &MaterialMapper{}
}

func (m *MaterialMapper) ToEntity(e *model.Material) *entity.Material {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Material{
		Id:          e.Id,
		UserId:      e.UserId,
		CourseId:    e.CourseId,
		Filename:    e.Filename,
		ContentType: e.ContentType,
		StoragePath: e.StoragePath,
		SizeBytes:   e.SizeBytes,
		Status:      e.Status,
		Progress:    e.Progress,
		Error:       e.Error,
		ChunkCount:  e.ChunkCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *MaterialMapper) ToModel(e *entity.Material) *model.Material {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Material{
		Id:          e.Id,
		UserId:      e.UserId,
		CourseId:    e.CourseId,
		Filename:    e.Filename,
		ContentType: e.ContentType,
		StoragePath: e.StoragePath,
		SizeBytes:   e.SizeBytes,
		Status:      e.Status,
		Progress:    e.Progress,
		Error:       e.Error,
		ChunkCount:  e.ChunkCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *MaterialMapper) ToEntities(materials []*model.Material) []*entity.Material {
	entities := make([]*entity.Material, len(materials))
	for i, e := range materials {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
