package scrape

import (
	"strings"
	"time"
)

// Date layouts observed on the origin site. Detail pages use either the
// long "|02 Jan 2006|, 15:04" form or a bare US date; review headers use
// ISO datetimes with a US fallback.
var (
	detailDateLayouts = []string{
		"|02 Jan 2006|, 15:04",
		"01/02/2006",
	}
	reviewDateLayouts = []string{
		"2006-01-02 15:04:05",
		"01/02/2006 15:04:05",
	}
)

// parseDate tries each layout in order and reports whether any matched.
// An unmatched value degrades to unset rather than failing the record.
func parseDate(value string, layouts []string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
