package store

// Table names shared by the SQLite schema and callers.
const (
	TablePosts       = "posts"
	TablePostMetrics = "post_metrics"
)

const schemaVersion = 1

// schemaV1 mirrors the managed backend's columns for the two content tables.
// Timestamps are TEXT so the driver hands back the stored ISO string
// untouched.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id            TEXT PRIMARY KEY,
	title         TEXT,
	content       TEXT,
	platform      TEXT NOT NULL DEFAULT 'x',
	status        TEXT NOT NULL DEFAULT 'draft',
	scheduled_for TEXT,
	created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	updated_at    TEXT,
	feedback      TEXT,
	feedback_note TEXT
);

CREATE TABLE IF NOT EXISTS post_metrics (
	tweet_id        TEXT PRIMARY KEY,
	platform        TEXT NOT NULL DEFAULT 'x',
	content         TEXT,
	created_at      TEXT,
	impressions     INTEGER NOT NULL DEFAULT 0,
	likes           INTEGER NOT NULL DEFAULT 0,
	retweets        INTEGER NOT NULL DEFAULT 0,
	replies_count   INTEGER NOT NULL DEFAULT 0,
	bookmarks       INTEGER NOT NULL DEFAULT 0,
	engagement_rate REAL NOT NULL DEFAULT 0,
	feedback        TEXT,
	feedback_note   TEXT
);

CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
CREATE INDEX IF NOT EXISTS idx_post_metrics_created_at ON post_metrics(created_at);
`
