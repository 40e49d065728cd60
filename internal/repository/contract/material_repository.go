package contract

import (
	"context"

	"agora-be/internal/entity"
	"agora-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	Update(ctx context.Context, material *entity.Material) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Material, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Material, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateIngestState moves a material through the ingestion lifecycle
	// without touching the rest of the row.
	UpdateIngestState(ctx context.Context, id uuid.UUID, status string, progress int, errMsg string) error
}
