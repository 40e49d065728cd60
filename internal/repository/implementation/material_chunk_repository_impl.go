package implementation

import (
	"context"

	"agora-be/internal/entity"
	"agora-be/internal/mapper"
	"agora-be/internal/model"
	"agora-be/internal/repository/contract"
	"agora-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type MaterialChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MaterialChunkMapper
}

func NewMaterialChunkRepository(db *gorm.DB) contract.MaterialChunkRepository {
	return &MaterialChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewMaterialChunkMapper(),
	}
}

func (r *MaterialChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MaterialChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.MaterialChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *MaterialChunkRepositoryImpl) DeleteByMaterialId(ctx context.Context, materialId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("material_id = ?", materialId).Delete(&model.MaterialChunk{}).Error
}

func (r *MaterialChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MaterialChunk, error) {
	var models []*model.MaterialChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MaterialChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.MaterialChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns chunks with similarity scores for one
// student's course material.
func (r *MaterialChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId, courseId string) ([]*contract.ScoredMaterialChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding <=> query_vector) = cosine_similarity
	type result struct {
		model.MaterialChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("material_chunks").
		Select("material_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("material_chunks.user_id = ?", userId).
		Where("material_chunks.deleted_at IS NULL")

	if courseId != "" {
		query = query.Where("material_chunks.course_id = ?", courseId)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredMaterialChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredMaterialChunk{
			Chunk:      r.mapper.ToEntity(&res.MaterialChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
