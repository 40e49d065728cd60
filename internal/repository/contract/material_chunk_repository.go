package contract

import (
	"context"

	"agora-be/internal/entity"
	"agora-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredMaterialChunk wraps MaterialChunk with its similarity score
type ScoredMaterialChunk struct {
	Chunk      *entity.MaterialChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type MaterialChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.MaterialChunk) error
	DeleteByMaterialId(ctx context.Context, materialId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MaterialChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs a cosine search scoped to one student and
	// course, returning chunks with their similarity scores.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId, courseId string) ([]*ScoredMaterialChunk, error)
}
