// Package catalog defines the shared domain types for the TFGS dataset:
// the persisted entity graph, the taxonomy reference tables, and the typed
// intermediate record produced by the page parser before reference
// resolution.
package catalog

import "time"

// TaxonomyKind identifies one of the six reference tables whose identities
// originate from the source site.
type TaxonomyKind string

// The taxonomy kinds, in the order they are loaded.
const (
	KindEngine     TaxonomyKind = "engine"
	KindRating     TaxonomyKind = "rating"
	KindAdultTheme TaxonomyKind = "adult"
	KindTFTheme    TaxonomyKind = "transformation"
	KindMultimedia TaxonomyKind = "multimedia"
	KindAuthor     TaxonomyKind = "author"
)

// Kinds lists all taxonomy kinds in load order.
func Kinds() []TaxonomyKind {
	return []TaxonomyKind{
		KindEngine,
		KindRating,
		KindAdultTheme,
		KindTFTheme,
		KindMultimedia,
		KindAuthor,
	}
}

// TaxonomyEntry is one row of a taxonomy table. The ID is assigned by the
// source site; Name is lowercased with spaces replaced by underscores.
type TaxonomyEntry struct {
	ID   int
	Name string
}

// Section holds one long-form content block in both stripped-text and raw
// markup forms. The markup is kept so the read API can re-render it.
type Section struct {
	Text string
	HTML string
}

// ParsedDownload is one download entry found on a detail page.
type ParsedDownload struct {
	Link     string
	Report   string
	Note     string
	DeadLink string
}

// ParsedVersion groups the downloads that appeared under one version
// header, in page order.
type ParsedVersion struct {
	Label     string
	Downloads []ParsedDownload
}

// ParsedReview is one review block from the reviews document. Author is a
// display name, not a taxonomy reference.
type ParsedReview struct {
	Author  string
	Version string
	Date    time.Time
	Text    string
}

// ParsedGame is the parser's intermediate representation of one game,
// prior to reference resolution. Engine, Rating and the theme lists hold
// normalized natural-key names; Authors maps normalized names to the
// source-assigned author ids taken from the page links. Nil time fields
// mean the page value matched none of the known formats.
type ParsedGame struct {
	ID               int
	Title            string
	Authors          map[string]int
	Engine           string
	Rating           string
	Language         string
	ReleaseDate      *time.Time
	LastUpdate       *time.Time
	Version          string
	DevelopmentStage string
	Likes            int
	Contest          string
	OrigPCGender     string
	Thread           string
	PlayOnline       string

	AdultThemes []string
	TFThemes    []string
	Multimedia  []string

	Versions []ParsedVersion
	Reviews  []ParsedReview

	Synopsis    Section
	Plot        Section
	Characters  Section
	Walkthrough Section
	Changelog   Section
}

// Download is a persisted download row.
type Download struct {
	Link     string
	Report   string
	Note     string
	DeadLink string
}

// Version is a persisted game version row. Its label is unique only within
// its game.
type Version struct {
	Label     string
	Downloads []Download
}

// Review is a persisted review row.
type Review struct {
	Author  string
	Version string
	Date    time.Time
	Text    string
}

// Game is one fully resolved game graph, ready for the relational loader.
// All reference fields hold taxonomy row ids. Optional text fields are
// empty strings rather than nulls for downstream compatibility.
type Game struct {
	ID               int
	Title            string
	EngineID         int
	RatingID         int
	Language         string
	ReleaseDate      *time.Time
	LastUpdate       *time.Time
	Version          string
	DevelopmentStage string
	Likes            int
	Contest          string
	OrigPCGender     string
	Thread           string
	PlayOnline       string

	AuthorIDs     []int
	AdultThemeIDs []int
	TFThemeIDs    []int
	MultimediaIDs []int

	Versions []Version
	Reviews  []Review

	Synopsis    Section
	Plot        Section
	Characters  Section
	Walkthrough Section
	Changelog   Section
}

// SearchRecord is the slice of a finalized game row handed to the
// search-index builder once ingestion completes.
type SearchRecord struct {
	ID          int
	Title       string
	Synopsis    string
	Likes       int
	LastUpdate  *time.Time
	ReleaseDate *time.Time
	PlayOnline  string
}
