package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// load inserts journal records in one transaction. Lines that do not decode
// or violate a constraint are skipped so one bad line never hides the rest.
func load(db *sql.DB, records []json.RawMessage) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, raw := range records {
		var rec eventJSON
		if err := json.Unmarshal(raw, &rec); err != nil || rec.EventID == "" {
			continue
		}
		_ = insert(tx, rec)
	}
	return tx.Commit()
}

func insert(tx *sql.Tx, rec eventJSON) error {
	flipped, err := json.Marshal(rec.Flipped)
	if err != nil {
		return fmt.Errorf("encode flipped positions: %w", err)
	}
	if rec.Flipped == nil {
		flipped = []byte("[]")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(eventColumns)), ", ")
	query := fmt.Sprintf("INSERT INTO events (%s) VALUES (%s)", strings.Join(eventColumns, ", "), placeholders)

	validated := 0
	if rec.Validated {
		validated = 1
	}
	_, err = tx.Exec(query,
		rec.EventID, rec.ProjectID, rec.LedgerPath, rec.Selection, rec.Total,
		rec.BeforeCompleted, rec.AfterCompleted, string(flipped), validated, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", rec.EventID, err)
	}
	return nil
}
