package store

import "fmt"

// RebuildMessagesFTS drops and repopulates messages_fts from messages inside
// one transaction. Operator recovery path only; never called from the sync
// path (spec.md §4.A).
func (db *DB) RebuildMessagesFTS() error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO messages_fts(messages_fts) VALUES ('rebuild')`); err != nil {
		return fmt.Errorf("rebuild messages_fts: %w", err)
	}
	return tx.Commit()
}

// RebuildEventFTS is the calendar.db equivalent of RebuildMessagesFTS.
func (db *DB) RebuildEventFTS() error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO event_fts(event_fts) VALUES ('rebuild')`); err != nil {
		return fmt.Errorf("rebuild event_fts: %w", err)
	}
	return tx.Commit()
}
