package scrape

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tfgs-backend/internal/catalog"
)

// ErrUnresolvedAuthor marks a game whose only author attribution is a bare
// name absent from the author taxonomy. Without an author id the
// relational write cannot proceed, so the game is skipped for the run.
var ErrUnresolvedAuthor = errors.New("unresolved author")

// NormalizeName lowercases a display name and replaces spaces with
// underscores, matching the form taxonomy names are stored in.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// idFromHref extracts the integer following "<param>=" in an href.
func idFromHref(href, param string) (int, bool) {
	_, rest, found := strings.Cut(href, param+"=")
	if !found {
		return 0, false
	}
	if i := strings.IndexAny(rest, "&#"); i >= 0 {
		rest = rest[:i]
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseGamePage turns a game's detail and reviews documents into an
// intermediate record. authorIDs is the taxonomy-derived name→id mapping
// used when the page shows an unlinked author name; an unknown name
// returns ErrUnresolvedAuthor. A non-numeric likes value is fatal for the
// game; unparseable dates degrade to unset.
func ParseGamePage(gameID int, detail, reviews []byte, authorIDs map[string]int, baseURL string) (*catalog.ParsedGame, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(detail))
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}

	rec := &catalog.ParsedGame{
		ID:      gameID,
		Authors: make(map[string]int),
	}

	rec.Title = strings.TrimSpace(doc.Find(".viewgamecontenttitle").First().Text())

	if err := parseAuthors(doc, rec, authorIDs); err != nil {
		return nil, err
	}
	if err := parseInfoRows(doc, rec); err != nil {
		return nil, err
	}
	parseDownloads(doc, rec, baseURL)
	parseTabs(doc, rec)

	if play := doc.Find("#play").First(); play.Length() > 0 {
		rec.PlayOnline = play.Find("form").First().AttrOr("action", "")
	}

	rec.Reviews, err = ParseReviews(reviews)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func parseAuthors(doc *goquery.Document, rec *catalog.ParsedGame, authorIDs map[string]int) error {
	container := doc.Find(".viewgamecontentauthor").First()
	links := container.Find("a")

	if links.Length() > 0 {
		links.Each(func(_ int, link *goquery.Selection) {
			id, ok := idFromHref(link.AttrOr("href", ""), "u")
			if !ok {
				return
			}
			rec.Authors[NormalizeName(link.Text())] = id
		})
		return nil
	}

	// No links: the page shows a bare "by Name" attribution, resolvable
	// only through the author taxonomy.
	name := strings.TrimSpace(container.Text())
	name = NormalizeName(strings.TrimSpace(strings.TrimPrefix(name, "by")))
	id, ok := authorIDs[name]
	if !ok {
		return fmt.Errorf("author %q: %w", name, ErrUnresolvedAuthor)
	}
	rec.Authors[name] = id
	return nil
}

// Labeled info rows are matched by left-hand label text against a fixed
// vocabulary; unrecognized labels are ignored.
func parseInfoRows(doc *goquery.Document, rec *catalog.ParsedGame) error {
	var likesErr error

	info := doc.Find(".viewgamesidecontainer > .viewgameanothercontainer").First()
	info.Find(".viewgameinfo").Each(func(_ int, box *goquery.Selection) {
		label := strings.TrimSpace(box.Find(".viewgameitemleft").Text())
		right := box.Find(".viewgameitemright")
		value := strings.TrimSpace(right.Text())

		switch label {
		case "Engine":
			rec.Engine = NormalizeName(value)
		case "Rating":
			rec.Rating = NormalizeName(value)
		case "Language":
			rec.Language = value
		case "Release Date":
			if t, ok := parseDate(value, detailDateLayouts); ok {
				rec.ReleaseDate = &t
			}
		case "Last Update":
			if t, ok := parseDate(value, detailDateLayouts); ok {
				rec.LastUpdate = &t
			}
		case "Version":
			rec.Version = value
		case "Development":
			rec.DevelopmentStage = value
		case "Likes":
			n, err := strconv.Atoi(value)
			if err != nil {
				likesErr = fmt.Errorf("parse likes %q: %w", value, err)
				return
			}
			rec.Likes = n
		case "Contest":
			if value != "None" {
				rec.Contest = value
			}
		case "Orig PC Gender":
			rec.OrigPCGender = value
		case "Adult Themes":
			rec.AdultThemes = themeNames(right)
		case "TF Themes":
			rec.TFThemes = themeNames(right)
		case "Multimedia":
			rec.Multimedia = themeNames(right)
		case "Discussion/Help":
			rec.Thread = right.Find("a").First().AttrOr("href", "")
		}
	})

	return likesErr
}

func themeNames(right *goquery.Selection) []string {
	var names []string
	right.Find("a").Each(func(_ int, link *goquery.Selection) {
		if name := NormalizeName(link.Text()); name != "" {
			names = append(names, name)
		}
	})
	return names
}

// Downloads are grouped under the most recently seen version header; an
// entry preceding any header belongs to the game's top-level version.
func parseDownloads(doc *goquery.Document, rec *catalog.ParsedGame, baseURL string) {
	byLabel := make(map[string]int)
	current := ""

	doc.Find("#downloads").First().Children().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "center":
			current = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(node.Text()), "Version:"))
		case "div":
			link := node.Find(".dltext a").First().AttrOr("href", "")
			if link == "" {
				return
			}
			dl := catalog.ParsedDownload{
				Link:     link,
				Note:     node.Find(".dlnotes img").First().AttrOr("title", ""),
				DeadLink: node.Find(".dldeadlink a").First().AttrOr("href", ""),
			}
			if report := node.Find(".dlreportdeadlink a").First().AttrOr("href", ""); report != "" {
				dl.Report = resolveRef(baseURL, report)
			}

			label := current
			if label == "" {
				label = rec.Version
			}
			idx, ok := byLabel[label]
			if !ok {
				idx = len(rec.Versions)
				byLabel[label] = idx
				rec.Versions = append(rec.Versions, catalog.ParsedVersion{Label: label})
			}
			rec.Versions[idx].Downloads = append(rec.Versions[idx].Downloads, dl)
		}
	})
}

// Long-form content sections sit in tabs 1..5; each tab's title link names
// the section it holds.
func parseTabs(doc *goquery.Document, rec *catalog.ParsedGame) {
	for i := 1; i <= 5; i++ {
		tab := doc.Find(fmt.Sprintf("#tabs-%d", i)).First()
		if tab.Length() == 0 {
			continue
		}
		title := doc.Find(fmt.Sprintf(`a[href="#tabs-%d"]`, i)).First().Text()

		html, err := goquery.OuterHtml(tab)
		if err != nil {
			continue
		}
		section := catalog.Section{
			Text: strings.TrimSpace(tab.Text()),
			HTML: strings.TrimSpace(html),
		}

		switch strings.ToLower(strings.TrimSpace(title)) {
		case "synopsis":
			rec.Synopsis = section
		case "plot":
			rec.Plot = section
		case "characters":
			rec.Characters = section
		case "walkthrough":
			rec.Walkthrough = section
		case "changelog":
			rec.Changelog = section
		}
	}
}
