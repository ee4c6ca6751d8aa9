package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knowlex-labs/rag-engine-sub001/internal/config"
	"github.com/knowlex-labs/rag-engine-sub001/internal/core/ports"
	"github.com/knowlex-labs/rag-engine-sub001/internal/core/usecase"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/chunking"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/detect"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/extractor/pdfdoc"
	neo4jstore "github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/graph/neo4j"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/llm/ollama"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/llm/openai"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/queue/nats"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/repository/postgres"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/resilience"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/storage/gcs"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/storage/localfs"
)

// llmClient is the provider-neutral view both LLM clients satisfy.
type llmClient interface {
	ports.GraphExtractor
	ports.Embedder
	ports.AnswerGenerator
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.LegalQueryService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{Logger: logger})

	storage, storageClose, err := newObjectStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llm, err := newLLMClient(cfg, executor)
	if err != nil {
		return nil, err
	}

	driver, err := neo4jstore.Open(ctx, neo4jstore.Config{
		URI:             cfg.Neo4jURI,
		User:            cfg.Neo4jUser,
		Password:        cfg.Neo4jPassword,
		Database:        cfg.Neo4jDatabase,
		VectorIndexName: cfg.Neo4jVectorIndexName,
	})
	if err != nil {
		return nil, fmt.Errorf("open neo4j: %w", err)
	}
	graphStore := neo4jstore.NewStore(driver, cfg.Neo4jDatabase, cfg.Neo4jVectorIndexName)

	chunker := chunking.NewSplitter()
	detector := detect.New()
	textExtractor := pdfdoc.NewExtractor(storage)

	coordinator := usecase.NewGraphExtractionCoordinator(chunker, llm, logger, cfg.ExtractionConcurrency)
	sanitizer := usecase.NewGraphSanitizer(logger)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, textExtractor, detector, coordinator, sanitizer, graphStore, logger)
	queryUC := usecase.NewQueryUseCase(llm, graphStore, llm, cfg.RelevanceThreshold, cfg.SearchLimit, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue: queue,
		Repo:  repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,

		closeFn: func() {
			queue.Close()
			_ = driver.Close(context.Background())
			if storageClose != nil {
				storageClose()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, func(), error) {
	switch cfg.StorageType {
	case "gcs":
		store, err := gcs.New(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

func newLLMClient(cfg config.Config, executor *resilience.Executor) (llmClient, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIGenModel, cfg.OpenAIEmbedModel, cfg.LLMRequestsPerSecond, executor), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, cfg.LLMRequestsPerSecond, executor), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
