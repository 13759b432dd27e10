package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tfgs-backend/internal/catalog"
)

// taxonomyTables maps taxonomy kinds to their table names.
var taxonomyTables = map[catalog.TaxonomyKind]string{
	catalog.KindEngine:     "engines",
	catalog.KindRating:     "content_ratings",
	catalog.KindAdultTheme: "adult_themes",
	catalog.KindTFTheme:    "transformation_themes",
	catalog.KindMultimedia: "multimedia_themes",
	catalog.KindAuthor:     "authors",
}

// purgeOrder deletes children before parents so the rebuild never trips a
// foreign key.
var purgeOrder = []string{
	"game_adult_themes",
	"game_transformation_themes",
	"game_multimedia_themes",
	"game_authors",
	"downloads",
	"reviews",
	"game_versions",
	"games",
	"engines",
	"content_ratings",
	"adult_themes",
	"transformation_themes",
	"multimedia_themes",
	"authors",
}

// Run is one rebuild transaction. All writes of an ingestion run happen
// inside it; nothing becomes visible until Commit. Version, download and
// review ids are assigned sequentially per run.
type Run struct {
	tx     pgx.Tx
	logger *zap.Logger

	nextVersionID  int64
	nextDownloadID int64
	nextReviewID   int64
}

// BeginRun opens the rebuild transaction.
func (s *Store) BeginRun(ctx context.Context) (*Run, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin rebuild transaction: %w", err)
	}
	return &Run{tx: tx, logger: s.logger}, nil
}

// Purge removes the prior generation. It runs inside the transaction, so
// an aborted run leaves the previous dataset untouched.
func (r *Run) Purge(ctx context.Context) error {
	for _, table := range purgeOrder {
		if _, err := r.tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("purge %s: %w", table, err)
		}
	}
	return nil
}

// InsertTaxonomy writes one taxonomy kind's rows. Taxonomy must be in
// place before any game row references it.
func (r *Run) InsertTaxonomy(ctx context.Context, kind catalog.TaxonomyKind, entries []catalog.TaxonomyEntry) error {
	table, ok := taxonomyTables[kind]
	if !ok {
		return fmt.Errorf("unknown taxonomy kind %q", kind)
	}
	query := "INSERT INTO " + table + " (id, name) VALUES ($1, $2)"
	for _, entry := range entries {
		if _, err := r.tx.Exec(ctx, query, entry.ID, entry.Name); err != nil {
			return fmt.Errorf("insert %s %d: %w", table, entry.ID, err)
		}
	}
	return nil
}

const insertGameSQL = `INSERT INTO games (
	id, title, engine_id, content_rating_id, language,
	release_date, last_update, version, development_stage, likes,
	contest, orig_pc_gender, thread, play_online,
	synopsis_text, synopsis_html, plot_text, plot_html,
	characters_text, characters_html, walkthrough_text, walkthrough_html,
	changelog_text, changelog_html
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
	$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
)`

// LoadGame writes one game's full object graph in dependency order: the
// game row, then its versions, their downloads, the reviews and the
// association rows. The graph is wrapped in a savepoint so one game's
// failure never poisons the rest of the rebuild.
func (r *Run) LoadGame(ctx context.Context, game *catalog.Game) error {
	if _, err := r.tx.Exec(ctx, "SAVEPOINT load_game"); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}

	if err := r.loadGameGraph(ctx, game); err != nil {
		if _, rbErr := r.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT load_game"); rbErr != nil {
			return fmt.Errorf("rollback to savepoint after %v: %w", err, rbErr)
		}
		return err
	}

	if _, err := r.tx.Exec(ctx, "RELEASE SAVEPOINT load_game"); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func (r *Run) loadGameGraph(ctx context.Context, game *catalog.Game) error {
	_, err := r.tx.Exec(ctx, insertGameSQL,
		game.ID, game.Title, game.EngineID, game.RatingID, game.Language,
		game.ReleaseDate, game.LastUpdate, game.Version, game.DevelopmentStage, game.Likes,
		game.Contest, game.OrigPCGender, game.Thread, game.PlayOnline,
		game.Synopsis.Text, game.Synopsis.HTML, game.Plot.Text, game.Plot.HTML,
		game.Characters.Text, game.Characters.HTML, game.Walkthrough.Text, game.Walkthrough.HTML,
		game.Changelog.Text, game.Changelog.HTML,
	)
	if err != nil {
		return fmt.Errorf("insert game %d: %w", game.ID, err)
	}

	for _, version := range game.Versions {
		r.nextVersionID++
		versionID := r.nextVersionID
		if _, err := r.tx.Exec(ctx,
			"INSERT INTO game_versions (id, game_id, version) VALUES ($1, $2, $3)",
			versionID, game.ID, version.Label,
		); err != nil {
			return fmt.Errorf("insert version %q of game %d: %w", version.Label, game.ID, err)
		}
		for _, dl := range version.Downloads {
			r.nextDownloadID++
			if _, err := r.tx.Exec(ctx,
				"INSERT INTO downloads (id, version_id, link, report, note, dead_link) VALUES ($1, $2, $3, $4, $5, $6)",
				r.nextDownloadID, versionID, dl.Link, dl.Report, dl.Note, dl.DeadLink,
			); err != nil {
				return fmt.Errorf("insert download for game %d: %w", game.ID, err)
			}
		}
	}

	for _, review := range game.Reviews {
		r.nextReviewID++
		if _, err := r.tx.Exec(ctx,
			"INSERT INTO reviews (id, game_id, author, version, review_date, body) VALUES ($1, $2, $3, $4, $5, $6)",
			r.nextReviewID, game.ID, review.Author, review.Version, review.Date, review.Text,
		); err != nil {
			return fmt.Errorf("insert review for game %d: %w", game.ID, err)
		}
	}

	if err := r.insertAssociations(ctx, "game_authors", "author_id", game.ID, game.AuthorIDs); err != nil {
		return err
	}
	if err := r.insertAssociations(ctx, "game_adult_themes", "theme_id", game.ID, game.AdultThemeIDs); err != nil {
		return err
	}
	if err := r.insertAssociations(ctx, "game_transformation_themes", "theme_id", game.ID, game.TFThemeIDs); err != nil {
		return err
	}
	return r.insertAssociations(ctx, "game_multimedia_themes", "theme_id", game.ID, game.MultimediaIDs)
}

func (r *Run) insertAssociations(ctx context.Context, table, column string, gameID int, ids []int) error {
	query := fmt.Sprintf("INSERT INTO %s (game_id, %s) VALUES ($1, $2)", table, column)
	for _, id := range ids {
		if _, err := r.tx.Exec(ctx, query, gameID, id); err != nil {
			return fmt.Errorf("insert %s row (%d, %d): %w", table, gameID, id, err)
		}
	}
	return nil
}

// Commit publishes the new generation.
func (r *Run) Commit(ctx context.Context) error {
	if err := r.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// Rollback abandons the run, restoring the pre-run dataset.
func (r *Run) Rollback(ctx context.Context) error {
	err := r.tx.Rollback(ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("rollback rebuild: %w", err)
	}
	return nil
}
