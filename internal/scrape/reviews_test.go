package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseReviewsSkipsMalformedBlocks(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="reviewcontent">
  <div>Review by Carol</div>
  <div>Version reviewed: 2.0 on not a date</div>
  <div>This block has a bad date.</div>
</div>
<div class="reviewcontent">
  <div>Some unrelated text</div>
  <div>Version reviewed: 2.0 on 2023-05-03 12:00:00</div>
  <div>No review marker.</div>
</div>
<div class="reviewcontent">
  <div>Review by Dave</div>
  <div>Version reviewed: 2.0 on 2023-05-03 12:00:00</div>
</div>
<div class="reviewcontent">
  <div>Review by Alice</div>
  <div>Version reviewed: 1.0 on 2023-05-01 10:00:00</div>
  <div>Great game.</div>
</div>
</body></html>`

	reviews, err := ParseReviews([]byte(page))
	require.NoError(t, err)
	// Bad date, missing marker and empty body are all dropped.
	require.Len(t, reviews, 1)
	require.Equal(t, "Alice", reviews[0].Author)
	require.Equal(t, "1.0", reviews[0].Version)
}

func TestParseReviewsEmptyDocument(t *testing.T) {
	t.Parallel()

	reviews, err := ParseReviews(nil)
	require.NoError(t, err)
	require.Empty(t, reviews)
}

func TestParseReviewsMarkerMidLine(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="reviewcontent">
  <div>Latest Review by Eve</div>
  <div>Version reviewed: 3.0 on 2023-05-04 08:00:00</div>
  <div>Still counts.</div>
</div>
</body></html>`

	reviews, err := ParseReviews([]byte(page))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, "Eve", reviews[0].Author)
}
