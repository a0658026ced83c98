package bootstrap

import (
	"context"
	"log"

	"ai-kbchat-be/internal/config"
	"ai-kbchat-be/internal/constant"
	"ai-kbchat-be/internal/controller"
	"ai-kbchat-be/internal/pkg/logger"
	"ai-kbchat-be/internal/repository/implementation"
	"ai-kbchat-be/internal/service"
	"ai-kbchat-be/pkg/embedding"
	"ai-kbchat-be/pkg/llm"
	"ai-kbchat-be/pkg/llm/factory"
	"ai-kbchat-be/pkg/rag/executor"
	"ai-kbchat-be/pkg/rag/memory"
	"ai-kbchat-be/pkg/rag/retrieval"
	"ai-kbchat-be/pkg/rag/tools"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RagController controller.IRagController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
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

	// Redis (chat memory)
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

	// 3. AI Providers
	if cfg.Ai.EmbeddingProvider != "ollama" {
		log.Printf("[WARN] Unsupported embedding provider %q, falling back to OLLAMA", cfg.Ai.EmbeddingProvider)
	}
	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbeddingModel,
	)
	log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)

	registry := llm.NewRegistry(cfg.Ai.DefaultModel)

	if cfg.Ai.DeepSeekAPIKey != "" {
		deepseekProvider, err := factory.NewLLMProvider(
			"deepseek",
			cfg.Ai.DeepSeekModel,
			cfg.Ai.DeepSeekBaseURL,
			cfg.Ai.DeepSeekAPIKey,
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize DeepSeek provider: %v", err)
		}
		registry.Register("deepseek", deepseekProvider)
	} else {
		log.Printf("[WARN] DEEPSEEK_API_KEY not set, DeepSeek backend unavailable")
	}

	ollamaProvider, err := factory.NewLLMProvider(
		"ollama",
		cfg.Ai.OllamaChatModel,
		cfg.Ai.OllamaBaseURL,
		"",
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Ollama provider: %v", err)
	}
	registry.Register("ollama", ollamaProvider)

	log.Printf("[INFO] Registered LLM backends: %v (default: %s)", registry.Names(), cfg.Ai.DefaultModel)

	// 4. Repositories
	kbDocumentRepo := implementation.NewKbDocumentRepository(db)
	chatLogRepo := implementation.NewChatLogRepository(db)

	// 5. RAG Components
	retriever := retrieval.NewRetriever(embeddingProvider, kbDocumentRepo, sysLogger)
	memoryStore := memory.NewStore(memory.NewRedisListStore(rdb), sysLogger)

	toolRegistry := tools.NewRegistry(
		tools.Definition{
			Name:        "kb_search",
			Description: "Search the knowledge base for relevant documents",
			Profiles:    []tools.Profile{tools.ProfileBasicChat, tools.ProfileWebGuide},
		},
		tools.Definition{
			Name:        "page_navigator",
			Description: "Suggest site pages relevant to the user question",
			Profiles:    []tools.Profile{tools.ProfileWebGuide},
		},
	)

	chatLogService := service.NewChatLogService(pubSub, constant.ChatLogTopicName, sysLogger)
	consumerService := service.NewConsumerService(pubSub, constant.ChatLogTopicName, chatLogRepo, sysLogger)

	pipeline := executor.NewPipeline(
		retriever,
		memoryStore,
		registry,
		toolRegistry,
		chatLogService,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		RagController:   controller.NewRagController(retriever, pipeline, sysLogger),
		ConsumerService: consumerService,
	}
}
