// Package pipeline sequences the ingestion run: taxonomy load, game
// discovery, concurrent page fetch, parse, reference resolution and the
// ordered relational load, all inside one rebuild transaction.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tfgs-backend/internal/catalog"
	"tfgs-backend/internal/metrics"
	"tfgs-backend/internal/scrape"
)

// State is the pipeline's lifecycle state.
type State string

// Pipeline states. Failed is reachable from any state on an unrecoverable
// error.
const (
	StateIdle              State = "idle"
	StateTaxonomyLoading   State = "taxonomy_loading"
	StateDiscovering       State = "discovering"
	StateFetching          State = "fetching"
	StateParsingAndLoading State = "parsing_and_loading"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// Skip records one game excluded from the run and why.
type Skip struct {
	GameID int
	Reason string
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	RunID      string
	State      State
	Discovered int
	Fetched    int
	Parsed     int
	Loaded     int
	Skips      []Skip
	Started    time.Time
	Finished   time.Time
}

// Skip reasons surfaced in the summary.
const (
	reasonFetchFailed      = "fetch failed"
	reasonParseFailed      = "parse failed"
	reasonUnresolvedAuthor = "unresolved author"
	reasonUnresolvedEngine = "unresolved engine"
	reasonUnresolvedRating = "unresolved rating"
	reasonLoadFailed       = "load failed"
)

// Store opens rebuild transactions against the relational store.
type Store interface {
	BeginRun(ctx context.Context) (RunTx, error)
}

// RunTx is one rebuild transaction. Purge must run first; taxonomy rows
// must be in place before any game references them; Commit makes the new
// generation visible atomically.
type RunTx interface {
	Purge(ctx context.Context) error
	InsertTaxonomy(ctx context.Context, kind catalog.TaxonomyKind, entries []catalog.TaxonomyEntry) error
	LoadGame(ctx context.Context, game *catalog.Game) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Archiver persists raw fetched pages. Optional; failures are logged and
// never fatal.
type Archiver interface {
	Save(runID string, gameID int, doc string, body []byte) error
}

// Config controls a pipeline run.
type Config struct {
	BaseURL     string
	Concurrency int
}

// Pipeline owns one full-rebuild ingestion run.
type Pipeline struct {
	cfg     Config
	fetcher scrape.Fetcher
	store   Store
	archive Archiver
	logger  *zap.Logger
}

// New constructs a Pipeline. archive may be nil.
func New(cfg Config, fetcher scrape.Fetcher, store Store, archive Archiver, logger *zap.Logger) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 100
	}
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		archive: archive,
		logger:  logger,
	}
}

// Run executes the full rebuild. Per-game failures accumulate in the
// summary; run-level failures roll the store back to its pre-run state and
// return an error alongside the partial summary.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.NewString(),
		State:   StateIdle,
		Started: time.Now().UTC(),
	}
	logger := p.logger.With(zap.String("run_id", summary.RunID))

	tx, err := p.store.BeginRun(ctx)
	if err != nil {
		return p.fail(summary, fmt.Errorf("begin run: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				logger.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	taxonomy, err := p.loadTaxonomy(ctx, tx, summary, logger)
	if err != nil {
		return p.fail(summary, err)
	}
	resolver := NewResolver(taxonomy)

	refs, err := p.discover(ctx, summary, logger)
	if err != nil {
		return p.fail(summary, err)
	}

	pages := p.fetchPages(ctx, refs, summary, logger)

	if err := p.parseAndLoad(ctx, tx, refs, pages, resolver, summary, logger); err != nil {
		return p.fail(summary, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return p.fail(summary, fmt.Errorf("commit run: %w", err))
	}
	committed = true

	summary.State = StateDone
	summary.Finished = time.Now().UTC()
	logger.Info("ingestion run finished",
		zap.Int("discovered", summary.Discovered),
		zap.Int("fetched", summary.Fetched),
		zap.Int("parsed", summary.Parsed),
		zap.Int("loaded", summary.Loaded),
		zap.Int("skipped", len(summary.Skips)),
		zap.Duration("elapsed", summary.Finished.Sub(summary.Started)),
	)
	return summary, nil
}

func (p *Pipeline) fail(summary *Summary, err error) (*Summary, error) {
	summary.State = StateFailed
	summary.Finished = time.Now().UTC()
	return summary, err
}

// loadTaxonomy purges the prior dataset and loads all six taxonomy kinds
// sequentially. Any failure here is fatal to the run; the purge happens
// inside the transaction, so a failed run leaves the prior generation
// intact.
func (p *Pipeline) loadTaxonomy(ctx context.Context, tx RunTx, summary *Summary, logger *zap.Logger) (map[catalog.TaxonomyKind][]catalog.TaxonomyEntry, error) {
	summary.State = StateTaxonomyLoading

	if err := tx.Purge(ctx); err != nil {
		return nil, fmt.Errorf("purge store: %w", err)
	}

	taxonomy := make(map[catalog.TaxonomyKind][]catalog.TaxonomyEntry, len(catalog.Kinds()))
	for _, kind := range catalog.Kinds() {
		body, err := p.fetcher.Get(ctx, scrape.TaxonomyURL(p.cfg.BaseURL, kind))
		if err != nil {
			return nil, fmt.Errorf("fetch %s taxonomy: %w", kind, err)
		}
		entries, err := scrape.ParseTaxonomy(body, kind)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			logger.Warn("taxonomy listing yielded no entries", zap.String("kind", string(kind)))
		}
		if err := tx.InsertTaxonomy(ctx, kind, entries); err != nil {
			return nil, fmt.Errorf("insert %s taxonomy: %w", kind, err)
		}
		taxonomy[kind] = entries
		logger.Info("taxonomy loaded",
			zap.String("kind", string(kind)),
			zap.Int("entries", len(entries)),
		)
	}
	return taxonomy, nil
}

// discover issues the catalog-wide search and extracts the game list. Zero
// games is unrecoverable: it means the origin answered with something that
// is not the catalog.
func (p *Pipeline) discover(ctx context.Context, summary *Summary, logger *zap.Logger) ([]scrape.GameRef, error) {
	summary.State = StateDiscovering

	body, err := p.fetcher.Post(ctx, scrape.SearchURL(p.cfg.BaseURL), []byte(scrape.DiscoveryPayload))
	if err != nil {
		return nil, fmt.Errorf("discovery request: %w", err)
	}
	refs, err := scrape.ParseGameList(body, p.cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	refs = dedupeRefs(refs)
	if len(refs) == 0 {
		return nil, errors.New("discovery returned zero games")
	}

	summary.Discovered = len(refs)
	logger.Info("games discovered", zap.Int("count", len(refs)))
	return refs, nil
}

// dedupeRefs drops repeated game ids, keeping the first occurrence. A
// duplicate listing row would otherwise double-count the game in the
// summary and fetch its pages twice.
func dedupeRefs(refs []scrape.GameRef) []scrape.GameRef {
	seen := make(map[int]struct{}, len(refs))
	out := refs[:0]
	for _, ref := range refs {
		if _, ok := seen[ref.ID]; ok {
			continue
		}
		seen[ref.ID] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// fetchPages submits two tasks per game to the bounded pool and re-keys the
// unordered results by game id. Games missing either document are dropped
// here with a fetch-failed skip.
func (p *Pipeline) fetchPages(ctx context.Context, refs []scrape.GameRef, summary *Summary, logger *zap.Logger) map[int]map[scrape.DocKind][]byte {
	summary.State = StateFetching

	tasks := make([]scrape.Task, 0, 2*len(refs))
	for _, ref := range refs {
		tasks = append(tasks,
			scrape.Task{Key: scrape.TaskKey{GameID: ref.ID, Doc: scrape.DocDetail}, URL: ref.URL},
			scrape.Task{Key: scrape.TaskKey{GameID: ref.ID, Doc: scrape.DocReviews}, URL: scrape.ReviewsURL(p.cfg.BaseURL, ref.ID)},
		)
	}

	results := scrape.FetchAll(ctx, p.fetcher, tasks, p.cfg.Concurrency, logger)

	pages := make(map[int]map[scrape.DocKind][]byte, len(refs))
	for _, res := range results {
		metrics.ObserveFetch(string(res.Key.Doc), res.Err == nil)
		if res.Err != nil {
			continue
		}
		docs, ok := pages[res.Key.GameID]
		if !ok {
			docs = make(map[scrape.DocKind][]byte, 2)
			pages[res.Key.GameID] = docs
		}
		docs[res.Key.Doc] = res.Body
		p.archivePage(summary.RunID, res, logger)
	}

	for _, ref := range refs {
		docs := pages[ref.ID]
		if len(docs) == 2 {
			summary.Fetched++
			continue
		}
		delete(pages, ref.ID)
		p.skip(summary, ref.ID, reasonFetchFailed)
	}
	logger.Info("fetch stage complete",
		zap.Int("games_complete", summary.Fetched),
		zap.Int("games_dropped", summary.Discovered-summary.Fetched),
	)
	return pages
}

func (p *Pipeline) archivePage(runID string, res scrape.Result, logger *zap.Logger) {
	if p.archive == nil {
		return
	}
	if err := p.archive.Save(runID, res.Key.GameID, string(res.Key.Doc), res.Body); err != nil {
		logger.Warn("archive write failed",
			zap.Int("game_id", res.Key.GameID),
			zap.String("doc", string(res.Key.Doc)),
			zap.Error(err),
		)
	}
}

// parseAndLoad walks the fetched games in ascending id order so a run over
// identical origin content always produces the same rows, then runs
// parse → resolve → load per game. Per-game failures are isolated.
func (p *Pipeline) parseAndLoad(
	ctx context.Context,
	tx RunTx,
	refs []scrape.GameRef,
	pages map[int]map[scrape.DocKind][]byte,
	resolver Resolver,
	summary *Summary,
	logger *zap.Logger,
) error {
	summary.State = StateParsingAndLoading

	ids := make([]int, 0, len(pages))
	for id := range pages {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run canceled: %w", err)
		}
		docs := pages[id]

		rec, err := scrape.ParseGamePage(id, docs[scrape.DocDetail], docs[scrape.DocReviews], resolver.AuthorIDs(), p.cfg.BaseURL)
		if err != nil {
			reason := reasonParseFailed
			if errors.Is(err, scrape.ErrUnresolvedAuthor) {
				reason = reasonUnresolvedAuthor
			}
			logger.Warn("game parse failed", zap.Int("game_id", id), zap.Error(err))
			p.skip(summary, id, reason)
			continue
		}
		summary.Parsed++

		game, err := resolver.Resolve(rec, logger)
		if err != nil {
			reason := reasonUnresolvedEngine
			if errors.Is(err, ErrUnresolvedRating) {
				reason = reasonUnresolvedRating
			}
			logger.Warn("game resolution failed", zap.Int("game_id", id), zap.Error(err))
			p.skip(summary, id, reason)
			continue
		}

		if err := tx.LoadGame(ctx, game); err != nil {
			logger.Warn("game load failed", zap.Int("game_id", id), zap.Error(err))
			p.skip(summary, id, reasonLoadFailed)
			continue
		}
		summary.Loaded++
		metrics.ObserveGameLoaded()
	}
	return nil
}

func (p *Pipeline) skip(summary *Summary, gameID int, reason string) {
	summary.Skips = append(summary.Skips, Skip{GameID: gameID, Reason: reason})
	metrics.ObserveGameSkipped(reason)
}
