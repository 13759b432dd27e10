package scrape

import (
	"fmt"
	"net/url"

	"tfgs-backend/internal/catalog"
)

// DiscoveryPayload is the fixed form-encoded search filter that returns the
// full catalog (every development stage, no like-count bounds).
const DiscoveryPayload = "module=search&search=1&likesmin=0&likesmax=0" +
	"&development%5B%5D=11&development%5B%5D=12&development%5B%5D=18" +
	"&development%5B%5D=41&development%5B%5D=46&development%5B%5D=47"

// taxonomyParams maps each taxonomy kind to the browse-by query parameter
// used both in the listing URL and in the entry links' href.
var taxonomyParams = map[catalog.TaxonomyKind]string{
	catalog.KindEngine:     "engine",
	catalog.KindRating:     "rating",
	catalog.KindAdultTheme: "adult",
	catalog.KindTFTheme:    "transformation",
	catalog.KindMultimedia: "multimedia",
	catalog.KindAuthor:     "author",
}

// TaxonomyParam returns the browse-by parameter for a taxonomy kind.
func TaxonomyParam(kind catalog.TaxonomyKind) string {
	return taxonomyParams[kind]
}

// TaxonomyURL returns the listing page URL for one taxonomy kind.
func TaxonomyURL(base string, kind catalog.TaxonomyKind) string {
	return fmt.Sprintf("%s/?module=browse&by=%s", base, taxonomyParams[kind])
}

// SearchURL returns the endpoint receiving the discovery POST.
func SearchURL(base string) string {
	return base + "/index.php"
}

// ReviewsURL returns the reviews document URL for a game.
func ReviewsURL(base string, gameID int) string {
	return fmt.Sprintf("%s/modules/viewgame/viewreviews.php?id=%d", base, gameID)
}

// resolveRef resolves a possibly relative href against the base URL. A
// malformed href is returned unchanged.
func resolveRef(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
