package entity

import (
	"time"

	"github.com/google/uuid"
)

// Ingestion statuses for an uploaded material
const (
	MaterialStatusQueued     = "queued"
	MaterialStatusProcessing = "processing"
	MaterialStatusCompleted  = "completed"
	MaterialStatusFailed     = "failed"
)

type Material struct {
	Id          uuid.UUID
	UserId      string
	CourseId    string
	Filename    string
	ContentType string
	StoragePath string
	SizeBytes   int64
	Status      string
	Progress    int
	Error       string
	ChunkCount  int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
