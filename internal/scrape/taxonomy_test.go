package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tfgs-backend/internal/catalog"
)

func TestParseTaxonomy(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="browsecontainer"><a href="/?module=search&engine=3">Ren'Py</a></div>
<div class="browsecontainer"><a href="/?module=search&engine=7">RPG Maker</a></div>
<div class="browsecontainer"><a href="/about">No id here</a></div>
</body></html>`

	entries, err := ParseTaxonomy([]byte(page), catalog.KindEngine)
	require.NoError(t, err)
	require.Equal(t, []catalog.TaxonomyEntry{
		{ID: 3, Name: "ren'py"},
		{ID: 7, Name: "rpg_maker"},
	}, entries)
}

func TestParseTaxonomyEmptyPage(t *testing.T) {
	t.Parallel()

	entries, err := ParseTaxonomy([]byte("<html><body></body></html>"), catalog.KindAuthor)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestParseGameList(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<table>
<tr><th>Name</th><th>Likes</th></tr>
<tr><td><a href="index.php?module=viewgame&id=15">Game A</a></td><td>3</td></tr>
<tr><td><a href="/index.php?module=viewgame&id=99">Game B</a></td><td>0</td></tr>
<tr><td>no link</td><td>0</td></tr>
<tr><td><a href="index.php?module=viewgame">no id</a></td><td>0</td></tr>
</table>
</body></html>`

	refs, err := ParseGameList([]byte(page), "https://tfgames.site")
	require.NoError(t, err)
	require.Equal(t, []GameRef{
		{ID: 15, URL: "https://tfgames.site/index.php?module=viewgame&id=15"},
		{ID: 99, URL: "https://tfgames.site/index.php?module=viewgame&id=99"},
	}, refs)
}

func TestTaxonomyURLs(t *testing.T) {
	t.Parallel()

	base := "https://tfgames.site"
	require.Equal(t, "https://tfgames.site/?module=browse&by=engine", TaxonomyURL(base, catalog.KindEngine))
	require.Equal(t, "https://tfgames.site/index.php", SearchURL(base))
	require.Equal(t, "https://tfgames.site/modules/viewgame/viewreviews.php?id=15", ReviewsURL(base, 15))
}
