package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"tfgs-backend/internal/catalog"
)

// Reference resolution failures that exclude a game from the run. A game
// cannot exist without its engine and content rating.
var (
	ErrUnresolvedEngine = errors.New("unresolved engine")
	ErrUnresolvedRating = errors.New("unresolved rating")
)

// Resolver maps natural-key names to taxonomy row ids. It is built once
// per run, after the taxonomy has been loaded, and passed by value with no
// ambient state.
type Resolver struct {
	engines    map[string]int
	ratings    map[string]int
	adult      map[string]int
	tf         map[string]int
	multimedia map[string]int
	authors    map[string]int
}

// NewResolver builds a Resolver from the run's taxonomy sets.
func NewResolver(taxonomy map[catalog.TaxonomyKind][]catalog.TaxonomyEntry) Resolver {
	index := func(kind catalog.TaxonomyKind) map[string]int {
		entries := taxonomy[kind]
		m := make(map[string]int, len(entries))
		for _, e := range entries {
			m[e.Name] = e.ID
		}
		return m
	}
	return Resolver{
		engines:    index(catalog.KindEngine),
		ratings:    index(catalog.KindRating),
		adult:      index(catalog.KindAdultTheme),
		tf:         index(catalog.KindTFTheme),
		multimedia: index(catalog.KindMultimedia),
		authors:    index(catalog.KindAuthor),
	}
}

// AuthorIDs exposes the author name→id mapping needed by the parser for
// unlinked author attributions.
func (r Resolver) AuthorIDs() map[string]int {
	return r.authors
}

// Resolve turns an intermediate record into a loadable game graph. An
// unresolved engine or rating is fatal for the game; an unresolved theme
// name is dropped individually, since a game may legitimately have zero
// themes of a kind.
func (r Resolver) Resolve(rec *catalog.ParsedGame, logger *zap.Logger) (*catalog.Game, error) {
	engineID, ok := r.engines[rec.Engine]
	if !ok {
		return nil, fmt.Errorf("engine %q: %w", rec.Engine, ErrUnresolvedEngine)
	}
	ratingID, ok := r.ratings[rec.Rating]
	if !ok {
		return nil, fmt.Errorf("rating %q: %w", rec.Rating, ErrUnresolvedRating)
	}

	game := &catalog.Game{
		ID:               rec.ID,
		Title:            rec.Title,
		EngineID:         engineID,
		RatingID:         ratingID,
		Language:         rec.Language,
		ReleaseDate:      rec.ReleaseDate,
		LastUpdate:       rec.LastUpdate,
		Version:          rec.Version,
		DevelopmentStage: rec.DevelopmentStage,
		Likes:            rec.Likes,
		Contest:          rec.Contest,
		OrigPCGender:     rec.OrigPCGender,
		Thread:           rec.Thread,
		PlayOnline:       rec.PlayOnline,
		Synopsis:         rec.Synopsis,
		Plot:             rec.Plot,
		Characters:       rec.Characters,
		Walkthrough:      rec.Walkthrough,
		Changelog:        rec.Changelog,
	}
	if game.Version == "" {
		game.Version = "1.0.0"
	}

	for _, id := range rec.Authors {
		game.AuthorIDs = append(game.AuthorIDs, id)
	}
	sort.Ints(game.AuthorIDs)

	game.AdultThemeIDs = r.resolveThemes(rec.ID, rec.AdultThemes, r.adult, logger)
	game.TFThemeIDs = r.resolveThemes(rec.ID, rec.TFThemes, r.tf, logger)
	game.MultimediaIDs = r.resolveThemes(rec.ID, rec.Multimedia, r.multimedia, logger)

	for _, v := range rec.Versions {
		version := catalog.Version{Label: v.Label}
		for _, d := range v.Downloads {
			version.Downloads = append(version.Downloads, catalog.Download(d))
		}
		game.Versions = append(game.Versions, version)
	}

	for _, rev := range rec.Reviews {
		game.Reviews = append(game.Reviews, catalog.Review(rev))
	}

	return game, nil
}

func (r Resolver) resolveThemes(gameID int, names []string, index map[string]int, logger *zap.Logger) []int {
	var ids []int
	for _, name := range names {
		id, ok := index[name]
		if !ok {
			logger.Debug("dropping unresolved theme",
				zap.Int("game_id", gameID),
				zap.String("theme", name),
			)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
