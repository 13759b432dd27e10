package store

// Schema for the TFGS dataset. Identities for games and taxonomy rows come
// from the source site; version, download and review ids are assigned per
// ingestion run. Optional text columns default to empty string, not NULL.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS engines (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS content_ratings (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS adult_themes (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transformation_themes (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS multimedia_themes (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS authors (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id                BIGINT PRIMARY KEY,
	title             TEXT NOT NULL,
	engine_id         BIGINT NOT NULL REFERENCES engines(id),
	content_rating_id BIGINT NOT NULL REFERENCES content_ratings(id),
	language          TEXT NOT NULL DEFAULT '',
	release_date      TIMESTAMPTZ,
	last_update       TIMESTAMPTZ,
	version           TEXT NOT NULL DEFAULT '',
	development_stage TEXT NOT NULL DEFAULT '',
	likes             INTEGER NOT NULL DEFAULT 0,
	contest           TEXT NOT NULL DEFAULT '',
	orig_pc_gender    TEXT NOT NULL DEFAULT '',
	thread            TEXT NOT NULL DEFAULT '',
	play_online       TEXT NOT NULL DEFAULT '',
	synopsis_text     TEXT NOT NULL DEFAULT '',
	synopsis_html     TEXT NOT NULL DEFAULT '',
	plot_text         TEXT NOT NULL DEFAULT '',
	plot_html         TEXT NOT NULL DEFAULT '',
	characters_text   TEXT NOT NULL DEFAULT '',
	characters_html   TEXT NOT NULL DEFAULT '',
	walkthrough_text  TEXT NOT NULL DEFAULT '',
	walkthrough_html  TEXT NOT NULL DEFAULT '',
	changelog_text    TEXT NOT NULL DEFAULT '',
	changelog_html    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS game_versions (
	id      BIGINT PRIMARY KEY,
	game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	version TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS downloads (
	id         BIGINT PRIMARY KEY,
	version_id BIGINT NOT NULL REFERENCES game_versions(id) ON DELETE CASCADE,
	link       TEXT NOT NULL,
	report     TEXT NOT NULL DEFAULT '',
	note       TEXT NOT NULL DEFAULT '',
	dead_link  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS reviews (
	id          BIGINT PRIMARY KEY,
	game_id     BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	author      TEXT NOT NULL,
	version     TEXT NOT NULL DEFAULT '',
	review_date TIMESTAMPTZ,
	body        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS game_authors (
	game_id   BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	author_id BIGINT NOT NULL REFERENCES authors(id),
	PRIMARY KEY (game_id, author_id)
);

CREATE TABLE IF NOT EXISTS game_adult_themes (
	game_id  BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	theme_id BIGINT NOT NULL REFERENCES adult_themes(id),
	PRIMARY KEY (game_id, theme_id)
);

CREATE TABLE IF NOT EXISTS game_transformation_themes (
	game_id  BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	theme_id BIGINT NOT NULL REFERENCES transformation_themes(id),
	PRIMARY KEY (game_id, theme_id)
);

CREATE TABLE IF NOT EXISTS game_multimedia_themes (
	game_id  BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	theme_id BIGINT NOT NULL REFERENCES multimedia_themes(id),
	PRIMARY KEY (game_id, theme_id)
);

CREATE INDEX IF NOT EXISTS idx_games_release_date ON games (release_date DESC);
CREATE INDEX IF NOT EXISTS idx_games_last_update ON games (last_update DESC);
CREATE INDEX IF NOT EXISTS idx_game_versions_game ON game_versions (game_id);
CREATE INDEX IF NOT EXISTS idx_downloads_version ON downloads (version_id);
CREATE INDEX IF NOT EXISTS idx_reviews_game ON reviews (game_id);
`
