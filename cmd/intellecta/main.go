// Package main is the Intellecta CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/intellecta/intellecta/internal/config"
	"github.com/intellecta/intellecta/internal/embedding"
	"github.com/intellecta/intellecta/internal/history"
	"github.com/intellecta/intellecta/internal/ingest"
	"github.com/intellecta/intellecta/internal/llm"
	"github.com/intellecta/intellecta/internal/models"
	"github.com/intellecta/intellecta/internal/orchestrator"
	"github.com/intellecta/intellecta/internal/rerank"
	"github.com/intellecta/intellecta/internal/retrieval"
	"github.com/intellecta/intellecta/internal/security"
	"github.com/intellecta/intellecta/internal/server"
	"github.com/intellecta/intellecta/internal/storage"
	"github.com/intellecta/intellecta/internal/vector"
	"github.com/intellecta/intellecta/internal/watcher"
	"github.com/intellecta/intellecta/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/intellecta/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	case "ingest":
		runIngest()
	case "detect":
		runDetect()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("intellecta version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var dropWatcher *watcher.Watcher
	if cfg.Ingest.WatchDir != "" {
		ingestor := components.Ingestor
		dropWatcher = watcher.New(cfg.Ingest.WatchDir, cfg.Ingest.Extensions,
			func(path string, level models.SecurityLevel) {
				data, err := os.ReadFile(path)
				if err != nil {
					logger.Warn("drop read failed", zap.String("path", path), zap.Error(err))
					return
				}
				_, err = ingestor.Ingest(context.Background(), &models.DocumentInput{
					Filename:      filepath.Base(path),
					Content:       string(data),
					SecurityLevel: &level,
					Source:        "drop",
				})
				if err != nil {
					logger.Warn("drop ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
		)
		if err := dropWatcher.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start drop watcher", zap.Error(err))
		}
		dropWatcher.SyncExisting()
	}

	srv := server.NewServer(
		components.Orchestrator,
		components.Ingestor,
		components.Storage,
		components.VectorIndex,
		components.Classifier,
		components.History,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if dropWatcher != nil {
		dropWatcher.Stop()
	}
	if cfg.Vector.IndexType == "memory" && cfg.Storage.VectorIndexPath != "" {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQueryText joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQueryText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// splitDocumentIDs parses a comma-separated id list, dropping empty entries.
func splitDocumentIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	language := fs.String("language", "en", "response language: en, ko, or vi")
	clearance := fs.String("clearance", "PUBLIC", "caller security clearance")
	quality := fs.Bool("quality", false, "use quality mode (slower, chain-of-thought)")
	docIDs := fs.String("documents", "", "comma-separated document ids to restrict search")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: intellecta query [flags] <question>")
		os.Exit(1)
	}
	queryText := buildQueryText(fs.Args())
	if queryText == "" {
		fmt.Println("Usage: intellecta query [flags] <question>")
		os.Exit(1)
	}

	fast := !*quality
	req := &models.QueryRequest{
		Query:             queryText,
		Language:          models.Language(*language),
		SecurityClearance: models.SecurityLevel(*clearance),
		DocumentIDs:       splitDocumentIDs(*docIDs),
		FastMode:          &fast,
	}

	var resp models.QueryResponse
	if err := postTo(*serverURL+"/query", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
		return
	}
	fmt.Println(resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(resp.Sources, ", "))
	}
	fmt.Printf("Chunks used: %d, blocked: %d\n", resp.ChunksUsed, resp.ChunksBlocked)
	if resp.Security != nil && resp.Security.Warning != "" {
		fmt.Printf("Warning: %s\n", resp.Security.Warning)
	}
	if resp.Metrics != nil {
		fmt.Printf("Accuracy: %.1f, Precision: %.1f, Efficiency: %.1f, Throughput: %.1f\n",
			resp.Metrics.Accuracy, resp.Metrics.Precision,
			resp.Metrics.Efficiency, resp.Metrics.Throughput)
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	level := fs.String("level", "", "security level (empty = auto-detect)")
	source := fs.String("source", "", "dataset source tag")
	domain := fs.String("domain", "", "domain tag for analytics grouping")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: intellecta ingest [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
		os.Exit(1)
	}

	input := &models.DocumentInput{
		Filename: filepath.Base(path),
		Content:  string(data),
		Source:   *source,
		Domain:   *domain,
	}
	if *level != "" {
		parsed, err := models.ParseSecurityLevel(*level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		input.SecurityLevel = &parsed
	}

	var resp models.IngestResponse
	if err := postTo(*serverURL+"/documents", input, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %s: %d chunks at %s (doc %s)\n",
		resp.Filename, resp.ChunksCreated, resp.SecurityLevel, resp.DocID)
}

func runDetect() {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: intellecta detect [flags] <document-id> [document-id...]")
		os.Exit(1)
	}

	var resp models.AutoDetectResponse
	req := map[string]interface{}{"document_ids": fs.Args()}
	if err := postTo(*serverURL+"/security/auto-detect", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Detect failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Detected level: %s (confidence %.1f)\n", resp.DetectedLevel, resp.Confidence)
	fmt.Printf("Findings: %d\n", resp.FindingsCount)
	for _, f := range resp.Findings {
		fmt.Printf("  [%s] %s %s%s\n", f.Level, f.Type, f.Match, strings.Join(f.Matches, ", "))
	}
	fmt.Println(resp.Recommendation)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status struct {
		Documents       int64 `json:"documents"`
		Chunks          int64 `json:"chunks"`
		VectorIndexSize int   `json:"vector_index_size"`
		HistoryEntries  int   `json:"history_entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "decode response: %v\n", err)
		os.Exit(1)
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(status)
		return
	}
	fmt.Printf("documents:          %d\n", status.Documents)
	fmt.Printf("chunks:             %d\n", status.Chunks)
	fmt.Printf("vector_index_size:  %d\n", status.VectorIndexSize)
	fmt.Printf("history_entries:    %d\n", status.HistoryEntries)
}

func postTo(url string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	VectorIndex  vector.VectorIndex
	Coordinator  *retrieval.Coordinator
	Generator    llm.Client
	Classifier   *security.Classifier
	History      *history.Store
	Orchestrator *orchestrator.Orchestrator
	Ingestor     *ingest.Ingestor
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	vectorIndex, err := vector.NewVectorIndex(
		vector.IndexType(cfg.Vector.IndexType), cfg.Embedding.Dimensions, cfg.Storage.VectorIndexPath)
	if err != nil {
		if cfg.Vector.IndexType != "memory" && cfg.Vector.IndexType != "" {
			logger.Warn("failed to create vector index, falling back to memory",
				zap.String("requested_type", cfg.Vector.IndexType),
				zap.Error(err))
			vectorIndex, err = vector.NewVectorIndex(vector.IndexTypeMemory, cfg.Embedding.Dimensions, "")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load skipped",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}
	logger.Info("vector index initialized",
		zap.String("type", cfg.Vector.IndexType),
		zap.Int("size", vectorIndex.Size()))

	var reranker rerank.Reranker
	if cfg.Retrieval.RerankURL != "" {
		reranker = rerank.NewHTTPReranker(cfg.Retrieval.RerankURL,
			time.Duration(cfg.Retrieval.RerankTimeoutMS)*time.Millisecond)
	} else {
		reranker = rerank.NewLexicalReranker()
	}

	coordinator := retrieval.NewCoordinator(embedder, vectorIndex, store, reranker, cfg.Retrieval, logger)

	generator, err := llm.NewClient(cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}

	classifier := security.NewClassifier(nil)
	historyStore := history.NewStore(cfg.History.Capacity)
	orch := orchestrator.New(
		coordinator,
		generator,
		classifier,
		historyStore,
		orchestrator.DefaultKeywordTable(),
		time.Duration(cfg.Generation.TimeoutMS)*time.Millisecond,
		logger,
	)
	ingestor := ingest.NewIngestor(store, vectorIndex, embedder, classifier,
		ingest.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap), logger)

	return &Components{
		Storage:      store,
		Embedder:     embedder,
		VectorIndex:  vectorIndex,
		Coordinator:  coordinator,
		Generator:    generator,
		Classifier:   classifier,
		History:      historyStore,
		Orchestrator: orch,
		Ingestor:     ingestor,
	}, nil
}

func printUsage() {
	fmt.Println(`intellecta - Security-aware document question answering

Usage:
  intellecta server [flags]              Start the HTTP server
  intellecta query [flags] <question>    Ask a question over ingested documents
  intellecta ingest [flags] <file>       Ingest a document
  intellecta detect [flags] <doc-id>...  Auto-detect the security level of stored documents
  intellecta status [flags]              Show corpus and index status
  intellecta version                     Show version
  intellecta help                        Show this help

Server Flags:
  --config string     Config file path (default: /usr/local/etc/intellecta/config.yaml)
  --debug             Enable debug logging

Query Flags:
  --server string     Server URL (default: http://localhost:8080)
  --language string   Response language: en, ko, or vi (default: en)
  --clearance string  Caller security clearance (default: PUBLIC)
  --quality           Use quality mode (chain-of-thought, slower)
  --documents string  Comma-separated document ids to restrict search
  --output string     Output format: text or json (default: text)

Ingest Flags:
  --server string     Server URL (default: http://localhost:8080)
  --level string      Security level; omit to auto-detect from content
  --source string     Dataset source tag
  --domain string     Domain tag for analytics grouping

Examples:
  intellecta server
  intellecta ingest --level CONFIDENTIAL quarterly-report.txt
  intellecta query "what was the peak demand in March"
  intellecta query --quality --language ko --clearance RESTRICTED "발전 용량은?"
  intellecta detect doc-123
  intellecta status --output json`)
}
