package service

import (
	"context"
	"encoding/json"
	"time"

	"agora-be/internal/dto"
	"agora-be/internal/entity"
	"agora-be/internal/pkg/logger"
	"agora-be/internal/repository/contract"
	"agora-be/internal/repository/specification"
	"agora-be/pkg/docparse"
	"agora-be/pkg/embedding"
	"agora-be/pkg/events"
	pktNats "agora-be/pkg/nats"
	"agora-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Chunking parameters match the embedding model's sweet spot: 512 chars
// with a 50 char overlap, breaking at sentence boundaries.
const (
	ingestChunkSize    = 512
	ingestChunkOverlap = 50
)

// IngestNotifier pushes ingestion progress to connected clients
type IngestNotifier interface {
	NotifyUser(userID string, event string, payload map[string]interface{})
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	materialRepo      contract.MaterialRepository
	chunkRepo         contract.MaterialChunkRepository
	parser            *docparse.Parser
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	notifier          IngestNotifier
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	materialRepo contract.MaterialRepository,
	chunkRepo contract.MaterialChunkRepository,
	parser *docparse.Parser,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	notifier IngestNotifier,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		materialRepo:      materialRepo,
		chunkRepo:         chunkRepo,
		parser:            parser,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		notifier:          notifier,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestMaterialMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	material, err := cs.materialRepo.FindOne(ctx, specification.ByID{ID: payload.MaterialId})
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to load material", map[string]interface{}{
			"material_id": payload.MaterialId.String(),
			"error":       err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}
	if material == nil {
		cs.logger.Warn("ConsumerService", "Material not found, skipping", map[string]interface{}{
			"material_id": payload.MaterialId.String(),
		})
		msg.Ack() // Material deleted? Ack.
		return
	}

	if err := cs.ingest(ctx, material); err != nil {
		cs.logger.Error("ConsumerService", "Ingestion failed", map[string]interface{}{
			"material_id": material.Id.String(),
			"error":       err.Error(),
		})
		cs.setProgress(ctx, material, entity.MaterialStatusFailed, 0, err.Error())
		msg.Ack() // Parsing failures are not retriable
		return
	}

	msg.Ack()
}

func (cs *consumerService) ingest(ctx context.Context, material *entity.Material) error {
	cs.setProgress(ctx, material, entity.MaterialStatusProcessing, 10, "Parsing document...")

	content, err := cs.parser.Parse(ctx, material.StoragePath)
	if err != nil {
		return err
	}

	cs.setProgress(ctx, material, entity.MaterialStatusProcessing, 40, "Chunking content...")

	chunks := utils.SplitText(content, ingestChunkSize, ingestChunkOverlap)

	cs.setProgress(ctx, material, entity.MaterialStatusProcessing, 60, "Generating embeddings...")

	newChunks := make([]*entity.MaterialChunk, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return err
		}

		newChunks = append(newChunks, &entity.MaterialChunk{
			Id:         uuid.New(),
			MaterialId: material.Id,
			UserId:     material.UserId,
			CourseId:   material.CourseId,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  res.Embedding.Values,
			Metadata: map[string]interface{}{
				"source_file": material.Filename,
				"chunk_index": i,
				"job_id":      material.Id.String(),
			},
			CreatedAt: time.Now(),
		})
	}

	cs.setProgress(ctx, material, entity.MaterialStatusProcessing, 80, "Storing in vector database...")

	// Re-ingestion replaces the previous chunks
	if err := cs.chunkRepo.DeleteByMaterialId(ctx, material.Id); err != nil {
		return err
	}
	if err := cs.chunkRepo.CreateBulk(ctx, newChunks); err != nil {
		return err
	}

	material.Status = entity.MaterialStatusCompleted
	material.Progress = 100
	material.Error = ""
	material.ChunkCount = len(newChunks)
	if err := cs.materialRepo.Update(ctx, material); err != nil {
		return err
	}
	cs.notify(material, "Processing complete!")

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "MATERIAL_INGESTED",
			Data: map[string]interface{}{
				"material_id": material.Id.String(),
				"user_id":     material.UserId,
				"course_id":   material.CourseId,
				"filename":    material.Filename,
				"chunks":      len(newChunks),
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to publish ingestion event", map[string]interface{}{
				"material_id": material.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	cs.logger.Info("ConsumerService", "Material processed", map[string]interface{}{
		"material_id": material.Id.String(),
		"chunks":      len(newChunks),
	})
	return nil
}

func (cs *consumerService) setProgress(ctx context.Context, material *entity.Material, status string, progress int, message string) {
	material.Status = status
	material.Progress = progress
	if status == entity.MaterialStatusFailed {
		material.Error = message
	}

	if err := cs.materialRepo.UpdateIngestState(ctx, material.Id, status, progress, material.Error); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to persist ingest state", map[string]interface{}{
			"material_id": material.Id.String(),
			"error":       err.Error(),
		})
	}
	cs.notify(material, message)
}

func (cs *consumerService) notify(material *entity.Material, message string) {
	if cs.notifier == nil {
		return
	}
	cs.notifier.NotifyUser(material.UserId, "material_status", map[string]interface{}{
		"job_id":   material.Id.String(),
		"status":   material.Status,
		"progress": material.Progress,
		"message":  message,
	})
}
