package store

const SchemaVersion = 1

const schemaSQL = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- Latest generation summary per spec
CREATE TABLE IF NOT EXISTS snapshots (
    spec TEXT PRIMARY KEY,
    generation INTEGER NOT NULL,
    total_rules INTEGER NOT NULL,
    covered_rules INTEGER NOT NULL,
    orphaned_rules INTEGER NOT NULL,
    invalid_refs INTEGER NOT NULL,
    coverage_percent REAL NOT NULL,
    reference_count INTEGER NOT NULL,
    built_at DATETIME NOT NULL,
    duration_ms INTEGER NOT NULL
);

-- References of the latest generation, replaced wholesale on save
CREATE TABLE IF NOT EXISTS refs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    spec TEXT NOT NULL,
    rule_id TEXT NOT NULL,
    verb TEXT NOT NULL,
    file TEXT NOT NULL,
    line INTEGER NOT NULL,
    col INTEGER,
    raw TEXT
);

CREATE INDEX IF NOT EXISTS idx_refs_spec ON refs(spec);
CREATE INDEX IF NOT EXISTS idx_refs_rule ON refs(spec, rule_id);
CREATE INDEX IF NOT EXISTS idx_refs_file ON refs(spec, file, line);
`

func GetSchema() string {
	return schemaSQL
}

func GetSchemaVersion() int {
	return SchemaVersion
}
