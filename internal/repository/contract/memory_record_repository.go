package contract

import (
	"context"

	"agora-be/internal/entity"
)

type MemoryRecordRepository interface {
	// Upsert writes the record keyed by (user_id, session_id); replaying
	// the same key overwrites the previous row.
	Upsert(ctx context.Context, record *entity.MemoryRecord) error
	FindRecentByUser(ctx context.Context, userId string, limit int) ([]*entity.MemoryRecord, error)
	DeleteBySession(ctx context.Context, userId, sessionId string) error
}
