package scrape

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tfgs-backend/internal/catalog"
)

const reviewMarker = "Review by"

var reviewHeaderRe = regexp.MustCompile(`^Version reviewed: (.+) on (.*)$`)

// ParseReviews extracts well-formed review blocks from a reviews document.
// A block must open with a "Review by" line followed by a
// "Version reviewed: <version> on <date>" line; anything else is skipped.
// Blocks are returned oldest-first so assigned ids stay stable run to run.
func ParseReviews(body []byte) ([]catalog.ParsedReview, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse reviews page: %w", err)
	}

	blocks := doc.Find(".reviewcontent")
	reviews := make([]catalog.ParsedReview, 0, blocks.Length())

	// The page lists newest first; walk in reverse document order.
	nodes := blocks.Nodes
	for i := len(nodes) - 1; i >= 0; i-- {
		block := goquery.NewDocumentFromNode(nodes[i]).Selection
		if review, ok := parseReviewBlock(block.Text()); ok {
			reviews = append(reviews, review)
		}
	}
	return reviews, nil
}

func parseReviewBlock(text string) (catalog.ParsedReview, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) < 2 {
		return catalog.ParsedReview{}, false
	}

	idx := strings.Index(lines[0], reviewMarker)
	if idx < 0 {
		return catalog.ParsedReview{}, false
	}
	author := strings.TrimSpace(lines[0][idx+len(reviewMarker):])

	m := reviewHeaderRe.FindStringSubmatch(lines[1])
	if m == nil {
		return catalog.ParsedReview{}, false
	}

	date, ok := parseDate(m[2], reviewDateLayouts)
	if !ok {
		return catalog.ParsedReview{}, false
	}

	body := strings.Join(lines[2:], "\n")
	if body == "" {
		return catalog.ParsedReview{}, false
	}

	return catalog.ParsedReview{
		Author:  author,
		Version: m[1],
		Date:    date,
		Text:    body,
	}, true
}
