package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDateDetailLayouts(t *testing.T) {
	t.Parallel()

	got, ok := parseDate("|03 Feb 2021|, 14:30", detailDateLayouts)
	require.True(t, ok)
	require.Equal(t, time.Date(2021, time.February, 3, 14, 30, 0, 0, time.UTC), got)

	got, ok = parseDate("02/03/2021", detailDateLayouts)
	require.True(t, ok)
	require.Equal(t, time.Date(2021, time.February, 3, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateReviewLayouts(t *testing.T) {
	t.Parallel()

	got, ok := parseDate("2023-05-01 10:00:00", reviewDateLayouts)
	require.True(t, ok)
	require.Equal(t, time.Date(2023, time.May, 1, 10, 0, 0, 0, time.UTC), got)

	got, ok = parseDate("05/01/2023 10:00:00", reviewDateLayouts)
	require.True(t, ok)
	require.Equal(t, time.May, got.Month())
}

func TestParseDateUnknownLayout(t *testing.T) {
	t.Parallel()

	_, ok := parseDate("sometime in 2021", detailDateLayouts)
	require.False(t, ok)

	_, ok = parseDate("", reviewDateLayouts)
	require.False(t, ok)
}

func TestParseDateTrimsWhitespace(t *testing.T) {
	t.Parallel()

	_, ok := parseDate("  02/03/2021  ", detailDateLayouts)
	require.True(t, ok)
}
