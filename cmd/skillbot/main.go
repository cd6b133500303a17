// Command skillbot chats with people's skills documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/skillbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/skillbot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/skillbot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/skillbot/internal/adapters/driven/workspace"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/cli"
	"github.com/custodia-labs/skillbot/internal/core/services"
	"github.com/custodia-labs/skillbot/internal/extractors"
	"github.com/custodia-labs/skillbot/internal/logger"
	"github.com/custodia-labs/skillbot/internal/postprocessors"
	"github.com/custodia-labs/skillbot/internal/postprocessors/textnorm"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli.SetVersion(version)
	err = cli.Execute(ctx)
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

// wire builds every service from configuration and hands them to the CLI.
// AI failures are not fatal: commands that need no provider still run.
func wire(ctx context.Context) (func(), error) {
	home, err := file.HomeDir()
	if err != nil {
		return nil, err
	}
	cwd, _ := os.Getwd()
	if err := file.LoadEnvFiles(cwd, home); err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settings := file.LoadSettings(configStore, home)
	file.ApplyEnv(&settings, os.LookupEnv)
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	ws, err := workspace.New(settings.Storage.DocsDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	docStore := store.DocumentStore()
	locks := services.NewDocumentLocks()
	svc := cli.Services{
		AIValidator: ai.NewConfigValidator(),
		Settings:    settings,
	}

	closers := []func(){func() { _ = store.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	aiServices, aiErr := ai.Init(ctx, settings.Embedding, settings.LLM, false)
	if aiErr != nil {
		logger.Debug("AI services unavailable: %v", aiErr)
		svc.AIError = aiErr
		svc.Documents = services.NewDocumentService(docStore, ws, nil, locks)
		cli.SetServices(svc)
		return cleanup, nil
	}
	closers = append(closers, aiServices.Close)

	prompts, err := file.NewPromptStore("")
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("open prompts: %w", err)
	}
	normaliser := textnorm.New()
	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunker, normaliser)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	indexStore := sqlite.NewIndexStore()

	factory := services.NewSessionFactory(ws, indexStore,
		services.NewLLMSummarizer(aiServices.LLM, prompts),
		services.ChainConfig{
			Embedding:  aiServices.Embedding,
			LLM:        aiServices.LLM,
			Normaliser: normaliser,
			Prompts:    prompts,
			Settings:   settings.Retrieval,
		}, settings.Memory)
	sessions := services.NewSessionCache(factory.Build, settings.Sessions.Capacity)
	closers = append(closers, sessions.Close)

	svc.Chat = services.NewChatService(sessions, ws)
	svc.Ingestion = services.NewIngestionService(services.IngestionConfig{
		Workspace:  ws,
		Extractors: extractors.NewDefaultRegistry(),
		Pipeline:   pipeline,
		Indexer:    services.NewIndexer(aiServices.Embedding, indexStore, settings.Index),
		DocStore:   docStore,
		Sessions:   sessions,
		Locks:      locks,
	})
	svc.Documents = services.NewDocumentService(docStore, ws, sessions, locks)
	cli.SetServices(svc)
	return cleanup, nil
}
