package mapper

import (
	"encoding/json"
	"time"

	"agora-be/internal/entity"
	"agora-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MaterialChunkMapper struct{}

func NewMaterialChunkMapper() *MaterialChunkMapper {
	return &MaterialChunkMapper{}
}

func (m *MaterialChunkMapper) ToEntity(e *model.MaterialChunk) *entity.MaterialChunk {
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

	var metadata map[string]interface{}
	if len(e.Metadata) > 0 {
		_ = json.Unmarshal(e.Metadata, &metadata)
	}

	return &entity.MaterialChunk{
		Id:         e.Id,
		MaterialId: e.MaterialId,
		UserId:     e.UserId,
		CourseId:   e.CourseId,
		ChunkIndex: e.ChunkIndex,
		Content:    e.Content,
		Embedding:  e.Embedding.Slice(),
		Metadata:   metadata,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  e.DeletedAt.Valid,
	}
}

func (m *MaterialChunkMapper) ToModel(e *entity.MaterialChunk) *model.MaterialChunk {
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

	var metadata datatypes.JSON
	if e.Metadata != nil {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.MaterialChunk{
		Id:         e.Id,
		MaterialId: e.MaterialId,
		UserId:     e.UserId,
		CourseId:   e.CourseId,
		ChunkIndex: e.ChunkIndex,
		Content:    e.Content,
		Embedding:  pgvector.NewVector(e.Embedding),
		Metadata:   metadata,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *MaterialChunkMapper) ToEntities(chunks []*model.MaterialChunk) []*entity.MaterialChunk {
	entities := make([]*entity.MaterialChunk, len(chunks))
	for i, e := range chunks {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *MaterialChunkMapper) ToModels(chunks []*entity.MaterialChunk) []*model.MaterialChunk {
	models := make([]*model.MaterialChunk, len(chunks))
	for i, e := range chunks {
		models[i] = m.ToModel(e)
	}
	return models
}
