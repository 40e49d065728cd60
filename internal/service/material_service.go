package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agora-be/internal/config"
	"agora-be/internal/dto"
	"agora-be/internal/entity"
	"agora-be/internal/pkg/logger"
	"agora-be/internal/repository/contract"
	"agora-be/internal/repository/specification"

	"github.com/google/uuid"
)

type IMaterialService interface {
	Upload(ctx context.Context, userId, courseId, filename, contentType string, content []byte) (*dto.UploadMaterialResponse, error)
	Status(ctx context.Context, userId string, jobId uuid.UUID) (*dto.MaterialStatusResponse, error)
	List(ctx context.Context, userId, courseId string) (*dto.ListMaterialsResponse, error)
	Delete(ctx context.Context, userId string, id uuid.UUID) error
}

type materialService struct {
	materialRepo     contract.MaterialRepository
	chunkRepo        contract.MaterialChunkRepository
	publisherService IPublisherService
	storage          config.StorageConfig
	logger           logger.ILogger
}

func NewMaterialService(
	materialRepo contract.MaterialRepository,
	chunkRepo contract.MaterialChunkRepository,
	publisherService IPublisherService,
	storage config.StorageConfig,
	log logger.ILogger,
) IMaterialService {
	return &materialService{
		materialRepo:     materialRepo,
		chunkRepo:        chunkRepo,
		publisherService: publisherService,
		storage:          storage,
		logger:           log,
	}
}

func (s *materialService) Upload(ctx context.Context, userId, courseId, filename, contentType string, content []byte) (*dto.UploadMaterialResponse, error) {
	if filename == "" {
		return nil, fmt.Errorf("no filename provided")
	}
	if int64(len(content)) > s.storage.MaxUploadBytes {
		return nil, fmt.Errorf("file too large. Maximum size: %dMB", s.storage.MaxUploadBytes/(1024*1024))
	}
	if courseId == "" {
		courseId = "general"
	}

	material := entity.Material{
		Id:          uuid.New(),
		UserId:      userId,
		CourseId:    courseId,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   int64(len(content)),
		Status:      entity.MaterialStatusQueued,
		CreatedAt:   time.Now(),
	}

	// Files are stored per user and course, named by job id so uploads
	// with the same filename never collide.
	dir := filepath.Join(s.storage.UploadDir, userId, courseId)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	material.StoragePath = filepath.Join(dir, material.Id.String()+filepath.Ext(filename))

	if err := os.WriteFile(material.StoragePath, content, 0o644); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}

	if err := s.materialRepo.Create(ctx, &material); err != nil {
		return nil, err
	}

	msgPayload := dto.IngestMaterialMessage{MaterialId: material.Id}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	s.logger.Info("MaterialService", "Upload accepted, ingestion queued", map[string]interface{}{
		"job_id":   material.Id.String(),
		"user_id":  userId,
		"filename": filename,
		"size":     len(content),
	})

	return &dto.UploadMaterialResponse{
		JobId:    material.Id,
		Filename: filename,
		Status:   material.Status,
	}, nil
}

func (s *materialService) Status(ctx context.Context, userId string, jobId uuid.UUID) (*dto.MaterialStatusResponse, error) {
	material, err := s.materialRepo.FindOne(ctx, specification.ByID{ID: jobId})
	if err != nil {
		return nil, err
	}
	if material == nil || material.UserId != userId {
		return nil, nil
	}

	return &dto.MaterialStatusResponse{
		JobId:    material.Id,
		Filename: material.Filename,
		Status:   material.Status,
		Progress: material.Progress,
		Error:    material.Error,
		Chunks:   material.ChunkCount,
	}, nil
}

func (s *materialService) List(ctx context.Context, userId, courseId string) (*dto.ListMaterialsResponse, error) {
	specs := []specification.Specification{
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if courseId != "" {
		specs = append(specs, specification.ByCourseID{CourseID: courseId})
	}

	materials, err := s.materialRepo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.ListMaterialsResponse{Materials: make([]dto.MaterialSummary, 0, len(materials))}
	for _, m := range materials {
		res.Materials = append(res.Materials, dto.MaterialSummary{
			Id:        m.Id,
			Filename:  m.Filename,
			CourseId:  m.CourseId,
			Status:    m.Status,
			Chunks:    m.ChunkCount,
			CreatedAt: m.CreatedAt,
		})
	}
	return res, nil
}

func (s *materialService) Delete(ctx context.Context, userId string, id uuid.UUID) error {
	material, err := s.materialRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if material == nil || material.UserId != userId {
		return fmt.Errorf("material not found")
	}

	if err := s.chunkRepo.DeleteByMaterialId(ctx, id); err != nil {
		return err
	}
	if err := s.materialRepo.Delete(ctx, id); err != nil {
		return err
	}

	if material.StoragePath != "" {
		if err := os.Remove(material.StoragePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("MaterialService", "Failed to remove stored file", map[string]interface{}{
				"path":  material.StoragePath,
				"error": err.Error(),
			})
		}
	}
	return nil
}
