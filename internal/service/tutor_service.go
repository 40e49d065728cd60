package service

import (
	"context"
	"errors"
	"time"

	"agora-be/internal/config"
	"agora-be/internal/dto"
	"agora-be/internal/entity"
	"agora-be/internal/pkg/logger"
	"agora-be/internal/repository/contract"
	memrepo "agora-be/internal/repository/memory"
	"agora-be/pkg/embedding"
	"agora-be/pkg/llm"
	"agora-be/pkg/speech/stt"
	"agora-be/pkg/speech/tts"
	"agora-be/pkg/tutor/memory"
	"agora-be/pkg/tutor/pipeline"
	"agora-be/pkg/tutor/respond"
	"agora-be/pkg/tutor/retrieval"
	"agora-be/pkg/tutor/router"
	"agora-be/pkg/tutor/state"

	"github.com/google/uuid"
)

// ErrTurnInFlight is returned when a turn arrives while the previous one
// for the same session is still being processed.
var ErrTurnInFlight = errors.New("a turn is already being processed for this session")

type ITutorService interface {
	InitSession(userId, sessionId, courseId string) *memrepo.Session
	GetSession(sessionId string) (*memrepo.Session, bool)
	EndSession(sessionId string)
	ProcessTurn(ctx context.Context, session *memrepo.Session, userText string) (*dto.TurnResult, error)
	Transcribe(ctx context.Context, audioData []byte, format string) (string, error)
}

type tutorService struct {
	sessions *memrepo.SessionRepository
	pipeline *pipeline.Pipeline
	stt      stt.Provider
	logger   logger.ILogger
}

func NewTutorService(
	sessions *memrepo.SessionRepository,
	chunkRepo contract.MaterialChunkRepository,
	memoryRepo contract.MemoryRecordRepository,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	sttProvider stt.Provider,
	ttsProvider tts.Provider,
	aiCfg config.AIConfig,
	tutorCfg config.TutorConfig,
	log logger.ILogger,
) ITutorService {
	mem := memory.New(
		llmProvider,
		embeddingProvider,
		&memoryStoreAdapter{repo: memoryRepo},
		tutorCfg.MemoryUpdateInterval,
	)
	retr := retrieval.New(embeddingProvider, &chunkSearcherAdapter{repo: chunkRepo})
	gen := respond.New(llmProvider, aiCfg.Temperature, aiCfg.MaxTokens, tutorCfg.FrustrationThreshold)

	return &tutorService{
		sessions: sessions,
		pipeline: pipeline.New(mem, router.New(llmProvider), retr, gen, ttsProvider, log),
		stt:      sttProvider,
		logger:   log,
	}
}

func (s *tutorService) InitSession(userId, sessionId, courseId string) *memrepo.Session {
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	session := &memrepo.Session{
		State: state.NewState(userId, sessionId, courseId),
	}
	s.sessions.Save(session)

	s.logger.Info("TutorService", "Session initialized", map[string]interface{}{
		"user_id":    userId,
		"session_id": sessionId,
		"course_id":  courseId,
	})
	return session
}

func (s *tutorService) GetSession(sessionId string) (*memrepo.Session, bool) {
	return s.sessions.Get(sessionId)
}

func (s *tutorService) EndSession(sessionId string) {
	s.sessions.Delete(sessionId)
}

func (s *tutorService) ProcessTurn(ctx context.Context, session *memrepo.Session, userText string) (*dto.TurnResult, error) {
	if !session.BeginTurn() {
		return nil, ErrTurnInFlight
	}
	defer session.EndTurn()

	audio := s.pipeline.ProcessTurn(ctx, session.State, userText)

	// Sliding TTL: an active session should not expire mid-conversation
	s.sessions.Save(session)

	return &dto.TurnResult{
		Response:         session.State.CurrentResponse,
		VisualActions:    session.State.VisualActions,
		Audio:            audio,
		TurnCount:        session.State.TurnCount,
		ProcessingTimeMs: int(session.State.ProcessingTime * 1000),
		Error:            session.State.Error,
	}, nil
}

func (s *tutorService) Transcribe(ctx context.Context, audioData []byte, format string) (string, error) {
	if s.stt == nil {
		return "", errors.New("speech-to-text is not configured")
	}
	return s.stt.Transcribe(ctx, audioData, format)
}

// chunkSearcherAdapter bridges the retrieval stage to the pgvector-backed
// chunk repository.
type chunkSearcherAdapter struct {
	repo contract.MaterialChunkRepository
}

func (a *chunkSearcherAdapter) SearchSimilar(ctx context.Context, userID, courseID string, vector []float32, limit int) ([]state.RetrievedChunk, error) {
	scored, err := a.repo.SearchSimilarWithScore(ctx, vector, limit, userID, courseID)
	if err != nil {
		return nil, err
	}

	chunks := make([]state.RetrievedChunk, 0, len(scored))
	for _, sc := range scored {
		source := ""
		if sc.Chunk.Metadata != nil {
			if v, ok := sc.Chunk.Metadata["source_file"].(string); ok {
				source = v
			}
		}
		chunks = append(chunks, state.RetrievedChunk{
			Text:   sc.Chunk.Content,
			Score:  sc.Similarity,
			Source: source,
		})
	}
	return chunks, nil
}

// memoryStoreAdapter bridges the memory stage to the memory record
// repository.
type memoryStoreAdapter struct {
	repo contract.MemoryRecordRepository
}

func (a *memoryStoreAdapter) FindRecent(ctx context.Context, userID string, limit int) ([]memory.Snapshot, error) {
	records, err := a.repo.FindRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	snapshots := make([]memory.Snapshot, 0, len(records))
	for _, rec := range records {
		snapshots = append(snapshots, memory.Snapshot{
			Mastered: rec.MasteredTopics,
			Confused: rec.ConfusedTopics,
		})
	}
	return snapshots, nil
}

func (a *memoryStoreAdapter) Upsert(ctx context.Context, userID, sessionID string, summary state.MemorySummary, digest string, vector []float32) error {
	now := time.Now()
	record := entity.MemoryRecord{
		Id:             uuid.New(),
		UserId:         userID,
		SessionId:      sessionID,
		MasteredTopics: summary.MasteredTopics,
		ConfusedTopics: summary.ConfusedTopics,
		Digest:         digest,
		Embedding:      vector,
		CreatedAt:      now,
		UpdatedAt:      &now,
	}
	return a.repo.Upsert(ctx, &record)
}
