package main

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/medreminder/internal/azure"
	"github.com/vcscsvcscs/medreminder/internal/config"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"go.uber.org/zap"
)

func newCheckCmd(envFile *string) *cobra.Command {
	var withAI bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the database, blob storage and the language model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			failed := 0
			run := func(name string, check func(context.Context, *config.Config, *zap.Logger) error) {
				logger.Info("=== Checking " + name + " ===")
				if err := check(ctx, cfg, logger); err != nil {
					failed++
					logger.Error(name+" check failed", zap.Error(err))
					return
				}
				logger.Info(name + " check passed")
			}

			run("API document", checkAPIDocument)
			run("database", checkDatabase)
			run("blob storage", checkBlobStorage)
			if withAI {
				run("language model", checkLanguageModel)
			}

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withAI, "ai", false, "also send a test prompt to the configured language model")

	return cmd
}

func checkAPIDocument(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	doc, err := api.GetSwagger()
	if err != nil {
		return err
	}
	logger.Info("API document is valid",
		zap.String("version", doc.Info.Version),
		zap.Int("paths", doc.Paths.Len()),
	)
	return nil
}

func checkDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	var tables int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_name IN ('medications', 'medication_logs', 'user_settings')`,
	).Scan(&tables)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if tables < 3 {
		return fmt.Errorf("schema is incomplete, run migrate")
	}
	return nil
}

func checkBlobStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	storage := cfg.Azure.Storage
	if !storage.Enabled() {
		logger.Warn("Azure Storage not configured, the in-memory store is used")
		return nil
	}

	for _, container := range []string{storage.PhotoContainer, storage.ReportContainer} {
		client, err := azure.NewBlobStorageClient(storage.AccountName, storage.AccountKey, container, storage.BlobEndpoint, logger)
		if err != nil {
			return err
		}
		if err := client.EnsureContainer(ctx); err != nil {
			return err
		}
		logger.Info("container ready", zap.String("container", container))
	}
	return nil
}

func checkLanguageModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client, err := chatClient(cfg, logger)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("no language model configured")
	}

	response, err := client.Complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a helpful assistant."),
		openai.UserMessage("Reply with the single word: ready"),
	})
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}

	logger.Info("language model response received",
		zap.String("response", response),
		zap.Int("response_length", len(response)),
	)
	return nil
}
