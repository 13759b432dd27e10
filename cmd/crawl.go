package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tfgs-backend/internal/archive"
	"tfgs-backend/internal/metrics"
	"tfgs-backend/internal/pipeline"
	"tfgs-backend/internal/scrape"
	"tfgs-backend/internal/search"
	"tfgs-backend/internal/store"
)

// storeAdapter narrows *store.Store to the pipeline's transaction
// interface.
type storeAdapter struct {
	store *store.Store
}

func (a storeAdapter) BeginRun(ctx context.Context) (pipeline.RunTx, error) {
	return a.store.BeginRun(ctx)
}

func newCrawlCmd() *cobra.Command {
	var skipExport bool

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one full catalog rebuild.",
		Long: `crawl performs a complete ingestion run: taxonomy load, game
discovery, concurrent page fetch, parse and relational load, all inside
one transaction. On success it exports the search documents unless
--skip-export is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			metrics.Init()

			st, err := store.New(ctx, store.Config{DSN: cfg.DB.DSN, MaxConns: cfg.DB.MaxConns}, logger)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.EnsureSchema(ctx); err != nil {
				return err
			}

			var arc pipeline.Archiver
			if cfg.Crawler.ArchiveDir != "" {
				a, err := archive.New(cfg.Crawler.ArchiveDir, cfg.Crawler.MaxPageBytes, logger)
				if err != nil {
					return err
				}
				arc = a
			}

			fetcher := scrape.NewCollyFetcher(scrape.FetchConfig{
				UserAgent: cfg.Origin.UserAgent,
				Timeout:   cfg.HTTPTimeout(),
			})

			p := pipeline.New(pipeline.Config{
				BaseURL:     cfg.Origin.BaseURL,
				Concurrency: cfg.Crawler.Concurrency,
			}, fetcher, storeAdapter{store: st}, arc, logger)

			summary, err := p.Run(ctx)
			if err != nil {
				return fmt.Errorf("ingestion run %s failed: %w", summary.RunID, err)
			}

			if skipExport || cfg.Search.ExportPath == "" {
				return nil
			}
			sink := search.NewFileSink(cfg.Search.ExportPath, logger)
			count, err := search.Export(ctx, st, sink)
			if err != nil {
				return fmt.Errorf("search export after run %s: %w", summary.RunID, err)
			}
			logger.Info("run complete",
				zap.String("run_id", summary.RunID),
				zap.Int("games_loaded", summary.Loaded),
				zap.Int("documents_exported", count),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipExport, "skip-export", false, "skip the search-document export after the run")

	return cmd
}
