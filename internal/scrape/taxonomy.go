package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tfgs-backend/internal/catalog"
)

// ParseTaxonomy extracts (source id, normalized name) pairs from a
// browse-by listing page. Entries whose link lacks a parseable id are
// skipped.
func ParseTaxonomy(body []byte, kind catalog.TaxonomyKind) ([]catalog.TaxonomyEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s taxonomy page: %w", kind, err)
	}

	param := TaxonomyParam(kind)
	var entries []catalog.TaxonomyEntry
	doc.Find("div.browsecontainer").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		id, ok := idFromHref(link.AttrOr("href", ""), param)
		if !ok {
			return
		}
		entries = append(entries, catalog.TaxonomyEntry{
			ID:   id,
			Name: NormalizeName(link.Text()),
		})
	})
	return entries, nil
}

// GameRef is one discovered game: its source id and detail-page URL.
type GameRef struct {
	ID  int
	URL string
}

// ParseGameList reads the discovery result table and returns the detail
// page references it links to. Malformed rows are skipped, not fatal.
func ParseGameList(body []byte, baseURL string) ([]GameRef, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse discovery page: %w", err)
	}

	var refs []GameRef
	doc.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() == 0 {
			return
		}
		href := cols.First().Find("a").First().AttrOr("href", "")
		if href == "" {
			return
		}
		id, ok := idFromHref(href, "id")
		if !ok {
			return
		}
		if !strings.HasPrefix(href, "/") {
			href = "/" + href
		}
		refs = append(refs, GameRef{ID: id, URL: resolveRef(baseURL, href)})
	})
	return refs, nil
}
