// Command server is the process entry point for the Zantara agentic
// core: it loads configuration, dials every backing service, wires the
// retrieval/memory/reasoning/prompt collaborators into an
// orchestrator.Orchestrator, and then reads queries from stdin in a
// REPL loop, printing each answer plus its sources. There is no HTTP
// transport here; that surface is an external collaborator's concern.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	genai "google.golang.org/genai"

	"zantaracore/internal/config"
	"zantaracore/internal/embedding"
	"zantaracore/internal/llmgateway"
	"zantaracore/internal/mcp"
	"zantaracore/internal/memory"
	"zantaracore/internal/observability"
	"zantaracore/internal/orchestrator"
	"zantaracore/internal/prompt"
	"zantaracore/internal/reasoning"
	"zantaracore/internal/retrieval"
	"zantaracore/internal/tools"
	"zantaracore/internal/vectordb"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

func run() error {
	configPath := getenv("ZANTARA_CONFIG", "config.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	observability.InitLogger(cfg.LogPath, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, closeFn, err := wire(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wire collaborators: %w", err)
	}
	defer closeFn()

	log.Info().Msg("zantara agentic core ready")
	return repl(ctx, orch)
}

// wire builds every process-wide singleton and assembles the
// orchestrator. The returned func closes every pooled connection; call
// it on shutdown.
func wire(ctx context.Context, cfg *config.Config) (*orchestrator.Orchestrator, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	vdb, err := vectordb.New(vectordb.Config{
		Host:       cfg.VectorDB.Host,
		APIKey:     cfg.VectorDB.APIKey,
		UseTLS:     cfg.VectorDB.UseTLS,
		MaxRetries: 3,
		Backoff:    time.Second,
	})
	if err != nil {
		return nil, closeAll, fmt.Errorf("vector db: %w", err)
	}
	closers = append(closers, func() { _ = vdb.Close() })

	embedProvider, err := embedding.NewRemote(cfg.Embeddings)
	if err != nil {
		log.Warn().Err(err).Msg("remote_embedding_unavailable_falling_back_to_local")
		embedProvider = embedding.NewLocal(cfg.Embeddings.LocalDimensions)
	}
	embedder := embedding.NewGenerator(embedProvider, cfg.Embeddings.EmbedPrefix, cfg.Embeddings.SearchPrefix)

	pool, err := pgxpool.New(ctx, cfg.Database.ConnectionString)
	if err != nil {
		return nil, closeAll, fmt.Errorf("postgres pool: %w", err)
	}
	closers = append(closers, pool.Close)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	closers = append(closers, func() { _ = redisClient.Close() })

	gateway, err := buildGateway(ctx, cfg)
	if err != nil {
		return nil, closeAll, fmt.Errorf("llm gateway: %w", err)
	}

	repo, err := memory.NewRepository(ctx, pool)
	if err != nil {
		return nil, closeAll, fmt.Errorf("memory repository: %w", err)
	}

	var memRunner memory.TaskRunner
	if brokers := strings.TrimSpace(cfg.Kafka.Brokers); brokers != "" {
		writer := &kafka.Writer{
			Addr:  kafka.TCP(strings.Split(brokers, ",")...),
			Topic: cfg.Kafka.Topic,
		}
		closers = append(closers, func() { _ = writer.Close() })
		memRunner = memory.KafkaRunner{Writer: writer, Topic: cfg.Kafka.Topic}
	}

	memOrch := memory.NewOrchestrator(
		repo,
		&memory.GatewayFactExtractor{Gateway: gateway},
		embedder,
		&memory.PostgresProfileLookup{Pool: pool},
		memRunner,
	)

	router := retrieval.NewRouter(retrieval.DefaultCollections())
	var retrievalOpts []retrieval.Option
	if cfg.Reranker.Enabled {
		retrievalOpts = append(retrievalOpts, retrieval.WithReranker(retrieval.NewHTTPReranker(cfg.Reranker.Host, cfg.Reranker.Model)))
	}
	retrievalService := retrieval.NewService(router, vdb, embedder, retrievalOpts...)
	go retrievalService.Warmup(ctx)

	metrics, err := observability.NewMetricsSink(ctx, cfg.ClickHouse)
	if err != nil {
		log.Warn().Err(err).Msg("clickhouse_metrics_sink_unavailable")
		metrics = nil
	}
	if metrics != nil {
		closers = append(closers, func() { _ = metrics.Close() })
	}

	registry := buildToolRegistry(ctx, cfg, pool, embedProvider, retrievalService, repo, metrics)

	engine := reasoning.NewEngine(gateway, registry, cfg.Reasoning.MaxToolCallsPerRequest, cfg.Reasoning.MaxSteps)
	promptBuilder := prompt.NewBuilder(prompt.NewRedisCache(redisClient))
	semanticCache := orchestrator.NewSemanticCache(redisClient)

	orch := orchestrator.New(gateway, engine, promptBuilder, memOrch, retrievalService, semanticCache, metrics)
	return orch, closeAll, nil
}

// buildGateway dials a single shared Gemini client and wraps each
// configured cascade tier (three Gemini tiers plus an OpenRouter tier
// addressed through the OpenAI-compatible client) into the gateway's
// per-tier model map.
func buildGateway(ctx context.Context, cfg *config.Config) (*llmgateway.Gateway, error) {
	clients := map[llmgateway.Tier]llmgateway.ModelClient{}

	var geminiClient *genai.Client
	for _, tier := range cfg.LLM.Cascade {
		t, ok := tierFromName(tier.Name)
		if !ok {
			continue
		}
		if t == llmgateway.TierOpenRouter {
			clients[t] = llmgateway.NewOpenRouter(tier.APIKey, tier.BaseURL, tier.Model)
			continue
		}
		if geminiClient == nil {
			gc, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: tier.APIKey})
			if err != nil {
				return nil, fmt.Errorf("init gemini client: %w", err)
			}
			geminiClient = gc
		}
		clients[t] = llmgateway.NewGemini(geminiClient, tier.Model)
	}
	if len(clients) == 0 {
		return nil, &config.ConfigError{Field: "llm.cascade", Msg: "no recognized tier names configured"}
	}
	return llmgateway.NewGateway(clients), nil
}

func tierFromName(name string) (llmgateway.Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lite":
		return llmgateway.TierLite, true
	case "flash":
		return llmgateway.TierFlash, true
	case "pro":
		return llmgateway.TierPro, true
	case "openrouter":
		return llmgateway.TierOpenRouter, true
	default:
		return "", false
	}
}

// buildToolRegistry registers every first-class tool the reasoning
// engine can dispatch. The MCP super-tool and the vision tool are
// attached only when their prerequisites (an mcp_servers.yaml, an S3
// bucket plus an Anthropic key) are configured; their absence is not
// fatal, since the reasoning engine degrades gracefully to a smaller
// tool set.
func buildToolRegistry(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, embedProvider embedding.Provider, retrievalService *retrieval.Service, repo *memory.Repository, metrics *observability.MetricsSink) *tools.Registry {
	registry := tools.NewRegistry()
	vectorSearch := &tools.VectorSearchTool{Service: retrievalService}
	if metrics != nil {
		vectorSearch.Metrics = metrics
	}
	registry.Register(vectorSearch)
	registry.Register(&tools.CalculatorTool{})
	registry.Register(&tools.GetPricingTool{Pool: pool})
	registry.Register(&tools.DatabaseQueryTool{Pool: pool})
	registry.Register(&tools.TeamKnowledgeTool{Service: retrievalService})
	registry.Register(&tools.GraphTraversalTool{Store: repo, MaxHops: 3})
	registry.Register(&tools.WebFetchTool{})
	registry.Register(&tools.WebSearchTool{})
	registry.Register(&tools.DiagnosticsTool{
		Embedder: embedProvider,
		Services: map[string]tools.Pinger{"embeddings": embedProvider},
	})

	if cfg.LLM.AnthropicKey != "" && cfg.S3.Bucket != "" {
		if s3Client, err := newS3Client(ctx, cfg.S3.Region); err == nil {
			registry.Register(&tools.VisionAnalysisTool{
				S3Client:     s3Client,
				Bucket:       cfg.S3.Bucket,
				AnthropicKey: cfg.LLM.AnthropicKey,
			})
		} else {
			log.Warn().Err(err).Msg("s3_client_unavailable_skipping_vision_tool")
		}
	}

	if mgr, err := mcp.NewManager(ctx, "mcp_servers.yaml"); err == nil {
		registry.Register(&tools.MCPSuperTool{Manager: mgr})
	} else {
		log.Info().Err(err).Msg("mcp_manager_unavailable_skipping_mcp_super_tool")
	}

	return registry
}

func newS3Client(ctx context.Context, region string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// repl reads one query per line from stdin and prints the resulting
// answer and sources as JSON, until stdin closes or the process is
// signaled to stop.
func repl(ctx context.Context, orch *orchestrator.Orchestrator) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	fmt.Fprintln(os.Stderr, "zantara> ready (one query per line, Ctrl-D to exit)")
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		result, err := orch.ProcessQuery(ctx, orchestrator.QueryRequest{Query: query, UserID: "cli-user"})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
	}
	return scanner.Err()
}
