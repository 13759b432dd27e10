package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const detailFixture = `<html><body>
<div class="viewgamecontenttitle">Shapeshifter Saga</div>
<div class="viewgamecontentauthor">
  by <a href="index.php?module=search&u=77">Jane Doe</a>
</div>
<div class="viewgamesidecontainer">
  <div class="viewgameanothercontainer">
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Engine</div>
      <div class="viewgameitemright">Ren'Py</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Rating</div>
      <div class="viewgameitemright">Adult</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Language</div>
      <div class="viewgameitemright">English</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Release Date</div>
      <div class="viewgameitemright">|03 Feb 2021|, 14:30</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Last Update</div>
      <div class="viewgameitemright">not a date</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Version</div>
      <div class="viewgameitemright">2.1</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Development</div>
      <div class="viewgameitemright">Complete</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Likes</div>
      <div class="viewgameitemright">42</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Contest</div>
      <div class="viewgameitemright">None</div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Adult Themes</div>
      <div class="viewgameitemright">
        <a href="/?module=browse&by=adult&adult=3">Mind Control</a>
        <a href="/?module=browse&by=adult&adult=7">Hypnosis</a>
      </div>
    </div>
    <div class="viewgameinfo">
      <div class="viewgameitemleft">Discussion/Help</div>
      <div class="viewgameitemright"><a href="https://forum.example/thread/9">Thread</a></div>
    </div>
  </div>
</div>
<div id="downloads">
  <center>Version: 2.1</center>
  <div>
    <span class="dltext"><a href="https://mirror.example/game-2.1.zip">zip</a></span>
    <span class="dlnotes"><img title="Windows build"></span>
    <span class="dlreportdeadlink"><a href="/report?id=5">report</a></span>
  </div>
  <div>
    <span class="dltext"><a href="https://mirror.example/game-2.1.tar.gz">tar</a></span>
  </div>
  <center>Version: 1.0</center>
  <div>
    <span class="dltext"><a href="https://mirror.example/game-1.0.zip">zip</a></span>
    <span class="dldeadlink"><a href="https://mirror.example/old.zip">dead</a></span>
  </div>
  <div>
    <span class="dltext"></span>
  </div>
</div>
<ul>
  <li><a href="#tabs-1">Synopsis</a></li>
  <li><a href="#tabs-2">Plot</a></li>
  <li><a href="#tabs-5">Changelog</a></li>
</ul>
<div id="tabs-1"><p>A transformation story.</p></div>
<div id="tabs-2"><p>The plot thickens.</p></div>
<div id="tabs-5"><p>2.1: fixed endings</p></div>
<div id="play"><form action="https://play.example/launch?id=1500"></form></div>
</body></html>`

const reviewsFixture = `<html><body>
<div class="reviewcontent">
  <div>Review by Bob</div>
  <div>Version reviewed: 2.1 on 2023-05-02 09:30:00</div>
  <div>Even better now.</div>
</div>
<div class="reviewcontent">
  <div>Review by Alice</div>
  <div>Version reviewed: 1.0 on 2023-05-01 10:00:00</div>
  <div>Great game.</div>
  <div>Played it twice.</div>
</div>
</body></html>`

func TestParseGamePage(t *testing.T) {
	t.Parallel()

	rec, err := ParseGamePage(1500, []byte(detailFixture), []byte(reviewsFixture), nil, "https://tfgames.site")
	require.NoError(t, err)

	require.Equal(t, 1500, rec.ID)
	require.Equal(t, "Shapeshifter Saga", rec.Title)
	require.Equal(t, map[string]int{"jane_doe": 77}, rec.Authors)
	require.Equal(t, "ren'py", rec.Engine)
	require.Equal(t, "adult", rec.Rating)
	require.Equal(t, "English", rec.Language)
	require.Equal(t, "2.1", rec.Version)
	require.Equal(t, "Complete", rec.DevelopmentStage)
	require.Equal(t, 42, rec.Likes)
	require.Equal(t, "https://forum.example/thread/9", rec.Thread)
	require.Equal(t, "https://play.example/launch?id=1500", rec.PlayOnline)

	require.NotNil(t, rec.ReleaseDate)
	require.Equal(t, time.Date(2021, time.February, 3, 14, 30, 0, 0, time.UTC), *rec.ReleaseDate)
	// "not a date" degrades to unset, never an error.
	require.Nil(t, rec.LastUpdate)

	// Contest "None" means no contest.
	require.Empty(t, rec.Contest)

	require.Equal(t, []string{"mind_control", "hypnosis"}, rec.AdultThemes)

	require.Len(t, rec.Versions, 2)
	require.Equal(t, "2.1", rec.Versions[0].Label)
	require.Len(t, rec.Versions[0].Downloads, 2)
	first := rec.Versions[0].Downloads[0]
	require.Equal(t, "https://mirror.example/game-2.1.zip", first.Link)
	require.Equal(t, "Windows build", first.Note)
	require.Equal(t, "https://tfgames.site/report?id=5", first.Report)
	require.Equal(t, "1.0", rec.Versions[1].Label)
	// The linkless entry is dropped.
	require.Len(t, rec.Versions[1].Downloads, 1)
	require.Equal(t, "https://mirror.example/old.zip", rec.Versions[1].Downloads[0].DeadLink)

	require.Equal(t, "A transformation story.", rec.Synopsis.Text)
	require.Contains(t, rec.Synopsis.HTML, "<p>A transformation story.</p>")
	require.Equal(t, "The plot thickens.", rec.Plot.Text)
	require.Equal(t, "2.1: fixed endings", rec.Changelog.Text)
	require.Empty(t, rec.Characters.Text)

	// Reviews come back oldest first.
	require.Len(t, rec.Reviews, 2)
	require.Equal(t, "Alice", rec.Reviews[0].Author)
	require.Equal(t, "1.0", rec.Reviews[0].Version)
	require.Equal(t, "Great game.\nPlayed it twice.", rec.Reviews[0].Text)
	require.Equal(t, "Bob", rec.Reviews[1].Author)
}

func TestParseGamePageDeterministic(t *testing.T) {
	t.Parallel()

	a, err := ParseGamePage(1500, []byte(detailFixture), []byte(reviewsFixture), nil, "https://tfgames.site")
	require.NoError(t, err)
	b, err := ParseGamePage(1500, []byte(detailFixture), []byte(reviewsFixture), nil, "https://tfgames.site")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestParseGamePageUnlinkedAuthor(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="viewgamecontenttitle">Orphan Work</div>
<div class="viewgamecontentauthor">by Jane Doe</div>
</body></html>`

	// Known from the author taxonomy: resolvable.
	rec, err := ParseGamePage(7, []byte(page), nil, map[string]int{"jane_doe": 77}, "https://tfgames.site")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"jane_doe": 77}, rec.Authors)

	// Unknown name: the game is skipped.
	_, err = ParseGamePage(7, []byte(page), nil, map[string]int{}, "https://tfgames.site")
	require.ErrorIs(t, err, ErrUnresolvedAuthor)
}

func TestParseGamePageBadLikes(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="viewgamecontentauthor"><a href="?u=1">A</a></div>
<div class="viewgamesidecontainer"><div class="viewgameanothercontainer">
  <div class="viewgameinfo">
    <div class="viewgameitemleft">Likes</div>
    <div class="viewgameitemright">lots</div>
  </div>
</div></div>
</body></html>`

	_, err := ParseGamePage(7, []byte(page), nil, nil, "https://tfgames.site")
	require.Error(t, err)
	require.Contains(t, err.Error(), "likes")
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "jane_doe", NormalizeName("  Jane Doe "))
	require.Equal(t, "ren'py", NormalizeName("Ren'Py"))
	require.Equal(t, "", NormalizeName(""))
}

func TestIDFromHref(t *testing.T) {
	t.Parallel()

	id, ok := idFromHref("index.php?module=search&u=77", "u")
	require.True(t, ok)
	require.Equal(t, 77, id)

	id, ok = idFromHref("/?module=browse&by=adult&adult=3&page=2", "adult")
	require.True(t, ok)
	require.Equal(t, 3, id)

	id, ok = idFromHref("/game?id=15#downloads", "id")
	require.True(t, ok)
	require.Equal(t, 15, id)

	_, ok = idFromHref("/game?id=abc", "id")
	require.False(t, ok)

	_, ok = idFromHref("/game", "id")
	require.False(t, ok)
}
