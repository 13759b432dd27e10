package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tfgs-backend/internal/search"
	"tfgs-backend/internal/store"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Export search documents from the current dataset.",
		Long: `reindex regenerates the search-document export from whatever is
currently loaded, without running an ingestion.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := store.New(ctx, store.Config{DSN: cfg.DB.DSN, MaxConns: cfg.DB.MaxConns}, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			sink := search.NewFileSink(cfg.Search.ExportPath, logger)
			count, err := search.Export(ctx, st, sink)
			if err != nil {
				return err
			}
			logger.Info("reindex complete", zap.Int("documents", count))
			return nil
		},
	}
}
