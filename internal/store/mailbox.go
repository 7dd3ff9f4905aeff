package store

import "database/sql"

// UpsertMailbox inserts or updates a mailbox row keyed by its public ID.
// Idempotent: replaying the same input yields the same row content modulo
// SyncedAt.
func (db *DB) UpsertMailbox(m Mailbox) error {
	_, err := db.Exec(`
		INSERT INTO mailboxes (id, account, name, path, message_count, synced_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account = excluded.account,
			name = excluded.name,
			path = excluded.path,
			message_count = excluded.message_count,
			synced_at = excluded.synced_at
	`, m.ID, m.Account, m.Name, m.Path, m.MessageCount, toUnix(m.SyncedAt))
	if err != nil {
		return classifySQLiteErr(err)
	}
	return nil
}

// GetMailbox fetches one mailbox by public ID.
func (db *DB) GetMailbox(id string) (*Mailbox, error) {
	row := db.QueryRow(`SELECT id, account, name, path, message_count, synced_at FROM mailboxes WHERE id = ?`, id)
	m, err := scanMailbox(row)
	if err == sql.ErrNoRows {
		return nil, &StoreError{Kind: ErrNotFound, Cause: err}
	}
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	return m, nil
}

// ListMailboxes returns every mirrored mailbox, stable-ordered by account
// then name.
func (db *DB) ListMailboxes() ([]Mailbox, error) {
	rows, err := db.Query(`SELECT id, account, name, path, message_count, synced_at FROM mailboxes ORDER BY account, name`)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer rows.Close()

	var out []Mailbox
	for rows.Next() {
		var m Mailbox
		var synced int64
		if err := rows.Scan(&m.ID, &m.Account, &m.Name, &m.Path, &m.MessageCount, &synced); err != nil {
			return nil, classifySQLiteErr(err)
		}
		m.SyncedAt = fromUnix(synced)
		out = append(out, m)
	}
	return out, nil
}

// DeleteMailboxesNotIn removes mailboxes for account not present in ids —
// the mail-side analogue of the calendar deletion sweep, used when the
// Source Provider stops enumerating a mailbox. Cascades to its messages.
func (db *DB) DeleteMailboxesNotIn(account string, ids map[string]bool) (int, error) {
	rows, err := db.Query(`SELECT id FROM mailboxes WHERE account = ?`, account)
	if err != nil {
		return 0, classifySQLiteErr(err)
	}
	var toDelete []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, classifySQLiteErr(err)
		}
		if !ids[id] {
			toDelete = append(toDelete, id)
		}
	}
	rows.Close()

	if len(toDelete) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, classifySQLiteErr(err)
	}
	defer tx.Rollback()

	for _, id := range toDelete {
		if _, err := tx.Exec(`DELETE FROM mailboxes WHERE id = ?`, id); err != nil {
			return 0, classifySQLiteErr(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, classifySQLiteErr(err)
	}
	return len(toDelete), nil
}

func scanMailbox(row *sql.Row) (*Mailbox, error) {
	var m Mailbox
	var synced int64
	if err := row.Scan(&m.ID, &m.Account, &m.Name, &m.Path, &m.MessageCount, &synced); err != nil {
		return nil, err
	}
	m.SyncedAt = fromUnix(synced)
	return &m, nil
}
