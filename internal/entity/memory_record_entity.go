package entity

import (
	"time"

	"github.com/google/uuid"
)

// MemoryRecord is the persisted understanding profile for one tutoring
// session. Records are keyed by (user, session) and upserted in place.
type MemoryRecord struct {
	Id             uuid.UUID
	UserId         string
	SessionId      string
	MasteredTopics []string
	ConfusedTopics []string
	Digest         string
	Embedding      []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
