package store

const schema = `
CREATE TABLE IF NOT EXISTS sources (
    domain               TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    newsguard_score      REAL,
    newsguard_rating     TEXT NOT NULL DEFAULT '',
    criteria_json        TEXT NOT NULL DEFAULT '',
    political_lean       INTEGER,
    political_lean_label TEXT NOT NULL DEFAULT '',
    source_type          TEXT NOT NULL DEFAULT 'unknown',
    description          TEXT NOT NULL DEFAULT '',
    ownership_summary    TEXT NOT NULL DEFAULT '',
    created_at           DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sources_lean ON sources(political_lean);
CREATE INDEX IF NOT EXISTS idx_sources_score ON sources(newsguard_score);
CREATE INDEX IF NOT EXISTS idx_sources_type ON sources(source_type);

CREATE TABLE IF NOT EXISTS api_usage_log (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    api_name           TEXT NOT NULL,
    endpoint           TEXT NOT NULL DEFAULT '',
    model_used         TEXT NOT NULL DEFAULT '',
    input_tokens       INTEGER NOT NULL DEFAULT 0,
    output_tokens      INTEGER NOT NULL DEFAULT 0,
    estimated_cost_usd REAL NOT NULL DEFAULT 0,
    url                TEXT NOT NULL DEFAULT '',
    success            BOOLEAN NOT NULL DEFAULT 1,
    error_message      TEXT NOT NULL DEFAULT '',
    timestamp          DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON api_usage_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_usage_model ON api_usage_log(model_used);
`
