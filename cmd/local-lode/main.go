// Command local-lode is a local retrieval tool: it indexes a folder of
// documents into a vector store and answers natural-language queries
// over them, entirely on your machine.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/chengahtung/local-lode/internal/adapters/driven/config/file"
	"github.com/chengahtung/local-lode/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/chengahtung/local-lode/internal/adapters/driven/llm/ollama"
	"github.com/chengahtung/local-lode/internal/adapters/driven/rerank/httpce"
	"github.com/chengahtung/local-lode/internal/adapters/driven/storage/sqlite"
	"github.com/chengahtung/local-lode/internal/adapters/driven/vector/qdrant"
	"github.com/chengahtung/local-lode/internal/adapters/driving/cli"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
	"github.com/chengahtung/local-lode/internal/core/services"
	"github.com/chengahtung/local-lode/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env next to the binary; real environment wins.
	_ = godotenv.Load()

	settingsStore, err := file.NewSettingsStore(os.Getenv("LOCAL_LODE_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}

	embedder := ollama.New(ollama.Config{
		BaseURL:    os.Getenv("OLLAMA_URL"),
		Model:      os.Getenv("EMBEDDING_MODEL"),
		Dimensions: envInt("EMBEDDING_DIMENSIONS"),
	})
	index := qdrant.New(qdrant.Config{
		BaseURL:    os.Getenv("QDRANT_URL"),
		Collection: os.Getenv("QDRANT_COLLECTION"),
	}, embedder)
	generator := llmollama.New(llmollama.Config{
		BaseURL: os.Getenv("OLLAMA_URL"),
		Model:   os.Getenv("LLM_MODEL"),
	})
	scorer := httpce.New(httpce.Config{
		BaseURL: os.Getenv("RERANKER_URL"),
		Model:   os.Getenv("RERANKER_MODEL"),
	})

	ledger, err := sqlite.NewLedger(os.Getenv("LOCAL_LODE_DATA_DIR"))
	if err != nil {
		// The ledger is bookkeeping; run without it rather than fail.
		logger.Warn("ingest ledger unavailable: %v", err)
		ledger = nil
	} else {
		defer ledger.Close()
	}

	lifecycle := services.NewIndexLifecycle(index, ledgerOrNil(ledger))
	retriever := services.NewRetriever(lifecycle)
	reranker := services.NewReranker(scorer, settingsStore)

	cli.SetServices(cli.Services{
		Query:    services.NewQuery(retriever, reranker, generator),
		Ingest:   services.NewIngestor(lifecycle, settingsStore, ledgerOrNil(ledger)),
		Admin:    lifecycle,
		Settings: services.NewSettingsManager(settingsStore),
	})
	return cli.Execute()
}

// ledgerOrNil converts a typed nil *sqlite.Ledger into a nil interface so
// the services' "no ledger configured" checks work.
func ledgerOrNil(l *sqlite.Ledger) driven.IngestLedger {
	if l == nil {
		return nil
	}
	return l
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("ignoring %s=%q: not an integer", key, v)
		return 0
	}
	return n
}
