package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"tfgs-backend/internal/catalog"
)

// ErrNotFound is returned when a requested game does not exist.
var ErrNotFound = errors.New("not found")

// GameSummary is the list-endpoint shape: enough to render a catalog row
// without pulling the whole object graph.
type GameSummary struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Engine      string     `json:"engine"`
	Rating      string     `json:"rating"`
	Likes       int        `json:"likes"`
	Version     string     `json:"version"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
}

// GameDetail is the single-game shape with the full graph attached.
type GameDetail struct {
	GameSummary
	Language         string          `json:"language"`
	DevelopmentStage string          `json:"development_stage"`
	Contest          string          `json:"contest,omitempty"`
	OrigPCGender     string          `json:"orig_pc_gender,omitempty"`
	Thread           string          `json:"thread,omitempty"`
	PlayOnline       string          `json:"play_online,omitempty"`
	Authors          []string        `json:"authors"`
	AdultThemes      []string        `json:"adult_themes"`
	TFThemes         []string        `json:"tf_themes"`
	Multimedia       []string        `json:"multimedia"`
	Synopsis         catalog.Section `json:"synopsis"`
	Plot             catalog.Section `json:"plot"`
	Characters       catalog.Section `json:"characters"`
	Walkthrough      catalog.Section `json:"walkthrough"`
	Changelog        catalog.Section `json:"changelog"`
	Versions         []VersionDetail `json:"versions"`
}

// VersionDetail is one release with its download mirrors.
type VersionDetail struct {
	ID        int64              `json:"id"`
	Version   string             `json:"version"`
	Downloads []catalog.Download `json:"downloads"`
}

// ReviewRow is one user review as served by the API.
type ReviewRow struct {
	ID      int64      `json:"id"`
	Author  string     `json:"author"`
	Version string     `json:"version"`
	Date    *time.Time `json:"date,omitempty"`
	Body    string     `json:"body"`
}

// ListFilter narrows ListGames. Zero values mean no filtering.
type ListFilter struct {
	Engine string
	Rating string
	Limit  int
	Offset int
}

const summaryColumns = `g.id, g.title, e.name, cr.name, g.likes, g.version, g.release_date, g.last_update
FROM games g
JOIN engines e ON e.id = g.engine_id
JOIN content_ratings cr ON cr.id = g.content_rating_id`

// ListGames returns a page of game summaries ordered by title, plus the
// total count matching the filter.
func (s *Store) ListGames(ctx context.Context, filter ListFilter) ([]GameSummary, int, error) {
	where := ""
	args := []any{}
	if filter.Engine != "" {
		args = append(args, filter.Engine)
		where = " WHERE e.name = $" + strconv.Itoa(len(args))
	}
	if filter.Rating != "" {
		args = append(args, filter.Rating)
		clause := "cr.name = $" + strconv.Itoa(len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	countSQL := `SELECT COUNT(*)
FROM games g
JOIN engines e ON e.id = g.engine_id
JOIN content_ratings cr ON cr.id = g.content_rating_id` + where
	var total int
	if err := s.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	listSQL := fmt.Sprintf("SELECT %s%s ORDER BY g.title LIMIT $%d OFFSET $%d",
		summaryColumns, where, len(args)-1, len(args))
	rows, err := s.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// RecentlyReleased returns the newest games by release date.
func (s *Store) RecentlyReleased(ctx context.Context, limit int) ([]GameSummary, error) {
	return s.topGames(ctx, "g.release_date", limit)
}

// RecentlyUpdated returns the most recently updated games.
func (s *Store) RecentlyUpdated(ctx context.Context, limit int) ([]GameSummary, error) {
	return s.topGames(ctx, "g.last_update", limit)
}

func (s *Store) topGames(ctx context.Context, orderCol string, limit int) ([]GameSummary, error) {
	query := fmt.Sprintf("SELECT %s WHERE %s IS NOT NULL ORDER BY %s DESC LIMIT $1",
		summaryColumns, orderCol, orderCol)
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top games by %s: %w", orderCol, err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func scanSummaries(rows pgx.Rows) ([]GameSummary, error) {
	var out []GameSummary
	for rows.Next() {
		var g GameSummary
		if err := rows.Scan(&g.ID, &g.Title, &g.Engine, &g.Rating, &g.Likes,
			&g.Version, &g.ReleaseDate, &g.LastUpdate); err != nil {
			return nil, fmt.Errorf("scan game summary: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game summaries: %w", err)
	}
	return out, nil
}

const gameDetailSQL = `SELECT g.id, g.title, e.name, cr.name, g.likes, g.version,
	g.release_date, g.last_update, g.language, g.development_stage,
	g.contest, g.orig_pc_gender, g.thread, g.play_online,
	g.synopsis_text, g.synopsis_html, g.plot_text, g.plot_html,
	g.characters_text, g.characters_html, g.walkthrough_text, g.walkthrough_html,
	g.changelog_text, g.changelog_html
FROM games g
JOIN engines e ON e.id = g.engine_id
JOIN content_ratings cr ON cr.id = g.content_rating_id
WHERE g.id = $1`

// GetGame loads one game with authors, themes, versions and downloads.
// Returns ErrNotFound when the id does not exist.
func (s *Store) GetGame(ctx context.Context, id int) (*GameDetail, error) {
	var d GameDetail
	err := s.db.QueryRow(ctx, gameDetailSQL, id).Scan(
		&d.ID, &d.Title, &d.Engine, &d.Rating, &d.Likes, &d.Version,
		&d.ReleaseDate, &d.LastUpdate, &d.Language, &d.DevelopmentStage,
		&d.Contest, &d.OrigPCGender, &d.Thread, &d.PlayOnline,
		&d.Synopsis.Text, &d.Synopsis.HTML, &d.Plot.Text, &d.Plot.HTML,
		&d.Characters.Text, &d.Characters.HTML, &d.Walkthrough.Text, &d.Walkthrough.HTML,
		&d.Changelog.Text, &d.Changelog.HTML,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", id, err)
	}

	if d.Authors, err = s.gameNames(ctx, "game_authors", "author_id", "authors", id); err != nil {
		return nil, err
	}
	if d.AdultThemes, err = s.gameNames(ctx, "game_adult_themes", "theme_id", "adult_themes", id); err != nil {
		return nil, err
	}
	if d.TFThemes, err = s.gameNames(ctx, "game_transformation_themes", "theme_id", "transformation_themes", id); err != nil {
		return nil, err
	}
	if d.Multimedia, err = s.gameNames(ctx, "game_multimedia_themes", "theme_id", "multimedia_themes", id); err != nil {
		return nil, err
	}
	if d.Versions, err = s.gameVersions(ctx, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) gameNames(ctx context.Context, assocTable, idColumn, nameTable string, gameID int) ([]string, error) {
	query := fmt.Sprintf(`SELECT n.name FROM %s a JOIN %s n ON n.id = a.%s WHERE a.game_id = $1 ORDER BY n.name`,
		assocTable, nameTable, idColumn)
	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("query %s for game %d: %w", assocTable, gameID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s name: %w", nameTable, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s names: %w", nameTable, err)
	}
	return names, nil
}

func (s *Store) gameVersions(ctx context.Context, gameID int) ([]VersionDetail, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, version FROM game_versions WHERE game_id = $1 ORDER BY id", gameID)
	if err != nil {
		return nil, fmt.Errorf("query versions for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var versions []VersionDetail
	for rows.Next() {
		var v VersionDetail
		if err := rows.Scan(&v.ID, &v.Version); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	for i := range versions {
		dls, err := s.versionDownloads(ctx, versions[i].ID)
		if err != nil {
			return nil, err
		}
		versions[i].Downloads = dls
	}
	return versions, nil
}

func (s *Store) versionDownloads(ctx context.Context, versionID int64) ([]catalog.Download, error) {
	rows, err := s.db.Query(ctx,
		"SELECT link, report, note, dead_link FROM downloads WHERE version_id = $1 ORDER BY id", versionID)
	if err != nil {
		return nil, fmt.Errorf("query downloads for version %d: %w", versionID, err)
	}
	defer rows.Close()

	var dls []catalog.Download
	for rows.Next() {
		var d catalog.Download
		if err := rows.Scan(&d.Link, &d.Report, &d.Note, &d.DeadLink); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		dls = append(dls, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate downloads: %w", err)
	}
	return dls, nil
}

// ListReviews pages through a game's reviews, oldest first.
func (s *Store) ListReviews(ctx context.Context, gameID, limit, offset int) ([]ReviewRow, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, author, version, review_date, body FROM reviews WHERE game_id = $1 ORDER BY id LIMIT $2 OFFSET $3",
		gameID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query reviews for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var reviews []ReviewRow
	for rows.Next() {
		var r ReviewRow
		if err := rows.Scan(&r.ID, &r.Author, &r.Version, &r.Date, &r.Body); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

const searchRecordsSQL = `SELECT g.id, g.title, g.synopsis_text, g.likes,
	g.last_update, g.release_date, g.play_online
FROM games g
ORDER BY g.id`

// SearchRecords streams every game in the shape the search exporter
// feeds to the index.
func (s *Store) SearchRecords(ctx context.Context) ([]catalog.SearchRecord, error) {
	rows, err := s.db.Query(ctx, searchRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("query search records: %w", err)
	}
	defer rows.Close()

	var records []catalog.SearchRecord
	for rows.Next() {
		var rec catalog.SearchRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Synopsis, &rec.Likes,
			&rec.LastUpdate, &rec.ReleaseDate, &rec.PlayOnline); err != nil {
			return nil, fmt.Errorf("scan search record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search records: %w", err)
	}
	return records, nil
}
