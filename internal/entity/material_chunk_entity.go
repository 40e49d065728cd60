package entity

import (
	"time"

	"github.com/google/uuid"
)

// MaterialChunk is one embedded slice of an uploaded course material
type MaterialChunk struct {
	Id         uuid.UUID
	MaterialId uuid.UUID
	UserId     string
	CourseId   string
	ChunkIndex int
	Content    string
	Embedding  []float32
	Metadata   map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
