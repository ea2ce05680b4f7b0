package history

// Schema DDL. The database is rebuilt from the JSONL journal on every Open,
// so there is no migration path.
const (
	createEvents = `CREATE TABLE events (
    event_id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    ledger_path TEXT NOT NULL,
    selection TEXT NOT NULL,
    total INTEGER NOT NULL,
    before_completed INTEGER NOT NULL,
    after_completed INTEGER NOT NULL,
    flipped TEXT NOT NULL,
    validated INTEGER NOT NULL,
    recorded_at TEXT NOT NULL
);`

	idxEventsProject = `CREATE INDEX idx_events_project ON events(project_id, recorded_at);`
)

// eventColumns is the column order shared by inserts and the JSONL loader.
var eventColumns = []string{
	"event_id", "project_id", "ledger_path", "selection", "total",
	"before_completed", "after_completed", "flipped", "validated", "recorded_at",
}

var schemaDDL = []string{createEvents, idxEventsProject}
