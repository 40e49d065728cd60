package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type MemoryRecord struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_memory_user_session"`
	SessionId      string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_memory_user_session"`
	MasteredTopics datatypes.JSON  `gorm:"type:jsonb"`
	ConfusedTopics datatypes.JSON  `gorm:"type:jsonb"`
	Digest         string          `gorm:"type:text"`
	Embedding      pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (MemoryRecord) TableName() string {
	return "memory_records"
}
