package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tfgs-backend/internal/catalog"
)

func testTaxonomy() map[catalog.TaxonomyKind][]catalog.TaxonomyEntry {
	return map[catalog.TaxonomyKind][]catalog.TaxonomyEntry{
		catalog.KindEngine: {{ID: 3, Name: "ren'py"}},
		catalog.KindRating: {{ID: 1, Name: "adult"}},
		catalog.KindAdultTheme: {
			{ID: 10, Name: "mind_control"},
			{ID: 11, Name: "hypnosis"},
		},
		catalog.KindTFTheme:    {{ID: 20, Name: "gender_swap"}},
		catalog.KindMultimedia: {{ID: 30, Name: "images"}},
		catalog.KindAuthor:     {{ID: 77, Name: "jane_doe"}},
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(testTaxonomy())
	rec := &catalog.ParsedGame{
		ID:          1500,
		Title:       "Shapeshifter Saga",
		Authors:     map[string]int{"jane_doe": 77, "guest": 5},
		Engine:      "ren'py",
		Rating:      "adult",
		AdultThemes: []string{"mind_control", "unknown_theme", "hypnosis"},
		TFThemes:    []string{"gender_swap"},
		Versions: []catalog.ParsedVersion{
			{Label: "2.1", Downloads: []catalog.ParsedDownload{{Link: "https://mirror.example/a.zip"}}},
		},
		Reviews: []catalog.ParsedReview{{Author: "Alice", Version: "1.0", Text: "Great game."}},
	}

	game, err := resolver.Resolve(rec, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 3, game.EngineID)
	require.Equal(t, 1, game.RatingID)
	require.Equal(t, []int{5, 77}, game.AuthorIDs)
	// Unknown theme names are dropped individually.
	require.Equal(t, []int{10, 11}, game.AdultThemeIDs)
	require.Equal(t, []int{20}, game.TFThemeIDs)
	require.Empty(t, game.MultimediaIDs)
	require.Len(t, game.Versions, 1)
	require.Equal(t, "2.1", game.Versions[0].Label)
	require.Len(t, game.Reviews, 1)
}

func TestResolveVersionFallback(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(testTaxonomy())
	rec := &catalog.ParsedGame{Engine: "ren'py", Rating: "adult"}

	game, err := resolver.Resolve(rec, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "1.0.0", game.Version)
}

func TestResolveUnresolvedEngine(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(testTaxonomy())
	rec := &catalog.ParsedGame{Engine: "unity", Rating: "adult"}

	_, err := resolver.Resolve(rec, zap.NewNop())
	require.ErrorIs(t, err, ErrUnresolvedEngine)
}

func TestResolveUnresolvedRating(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(testTaxonomy())
	rec := &catalog.ParsedGame{Engine: "ren'py", Rating: "teen"}

	_, err := resolver.Resolve(rec, zap.NewNop())
	require.ErrorIs(t, err, ErrUnresolvedRating)
}

func TestAuthorIDs(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(testTaxonomy())
	require.Equal(t, map[string]int{"jane_doe": 77}, resolver.AuthorIDs())
}
