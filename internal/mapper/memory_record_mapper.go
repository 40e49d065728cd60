package mapper

import (
	"encoding/json"
	"time"

	"agora-be/internal/entity"
	"agora-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type MemoryRecordMapper struct{}

func NewMemoryRecordMapper() *MemoryRecordMapper {
	return &MemoryRecordMapper{}
}

func (m *MemoryRecordMapper) ToEntity(e *model.MemoryRecord) *entity.MemoryRecord {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.MemoryRecord{
		Id:             e.Id,
		UserId:         e.UserId,
		SessionId:      e.SessionId,
		MasteredTopics: decodeTopics(e.MasteredTopics),
		ConfusedTopics: decodeTopics(e.ConfusedTopics),
		Digest:         e.Digest,
		Embedding:      e.Embedding.Slice(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *MemoryRecordMapper) ToModel(e *entity.MemoryRecord) *model.MemoryRecord {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.MemoryRecord{
		Id:             e.Id,
		UserId:         e.UserId,
		SessionId:      e.SessionId,
		MasteredTopics: encodeTopics(e.MasteredTopics),
		ConfusedTopics: encodeTopics(e.ConfusedTopics),
		Digest:         e.Digest,
		Embedding:      pgvector.NewVector(e.Embedding),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *MemoryRecordMapper) ToEntities(records []*model.MemoryRecord) []*entity.MemoryRecord {
	entities := make([]*entity.MemoryRecord, len(records))
	for i, e := range records {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func decodeTopics(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var topics []string
	_ = json.Unmarshal(raw, &topics)
	return topics
}

func encodeTopics(topics []string) datatypes.JSON {
	if topics == nil {
		topics = []string{}
	}
	raw, err := json.Marshal(topics)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return raw
}
