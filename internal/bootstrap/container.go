package bootstrap

import (
	"context"
	"log"
	"time"

	"agora-be/internal/config"
	"agora-be/internal/controller"
	"agora-be/internal/pkg/logger"
	"agora-be/internal/repository/implementation"
	"agora-be/internal/repository/memory"
	"agora-be/internal/service"
	"agora-be/internal/websocket"
	"agora-be/pkg/docparse"
	"agora-be/pkg/embedding"
	"agora-be/pkg/llm/factory"
	"agora-be/pkg/llm/gemini"
	"agora-be/pkg/speech/stt"
	"agora-be/pkg/speech/tts"

	pktNats "agora-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	MaterialController controller.IMaterialController
	HealthController   controller.IHealthController

	// WebSockets
	SessionHandler *websocket.SessionHandler
	WebSocketHub   *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	sttProvider, err := stt.NewProvider(cfg.Ai.STTProvider, cfg.Keys.Deepgram)
	if err != nil {
		log.Printf("[WARN] STT disabled: %v", err)
	}
	ttsProvider, err := tts.NewProvider(cfg.Ai.TTSProvider, cfg.Keys.ElevenLabs, cfg.Ai.TTSVoiceId, cfg.Ai.TTSModel)
	if err != nil {
		log.Printf("[WARN] TTS disabled: %v", err)
	}

	// Image materials need a multimodal model regardless of the chat
	// provider choice.
	var vision docparse.VisionAnalyzer
	if cfg.Keys.GoogleGemini != "" {
		vision = gemini.NewGeminiProvider(cfg.Keys.GoogleGemini, "")
	}
	parser := docparse.New(vision)

	// 4. Repositories
	materialRepo := implementation.NewMaterialRepository(db)
	chunkRepo := implementation.NewMaterialChunkRepository(db)
	memoryRepo := implementation.NewMemoryRecordRepository(db)
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Tutor.SessionTimeoutSecs) * time.Second)

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IngestTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		materialRepo,
		chunkRepo,
		parser,
		embeddingProvider,
		natsPub,
		wsHub,
		sysLogger,
	)

	relayService := service.NewEventRelayService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go relayService.Start()
	}

	materialService := service.NewMaterialService(
		materialRepo,
		chunkRepo,
		publisherService,
		cfg.Storage,
		sysLogger,
	)

	tutorService := service.NewTutorService(
		sessionRepo,
		chunkRepo,
		memoryRepo,
		llmProvider,
		embeddingProvider,
		sttProvider,
		ttsProvider,
		cfg.Ai,
		cfg.Tutor,
		sysLogger,
	)

	return &Container{
		MaterialController: controller.NewMaterialController(materialService),
		HealthController:   controller.NewHealthController(db),
		SessionHandler:     websocket.NewSessionHandler(tutorService, sysLogger),
		WebSocketHub:       wsHub,
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
