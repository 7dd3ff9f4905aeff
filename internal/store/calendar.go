package store

import "database/sql"

// UpsertCalendar inserts or updates a calendar row keyed by public ID.
func (db *DB) UpsertCalendar(c Calendar) error {
	_, err := db.Exec(`
		INSERT INTO calendars (id, upstream_id, title, source_type, color, is_subscribed, is_immutable, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			upstream_id = excluded.upstream_id,
			title = excluded.title,
			source_type = excluded.source_type,
			color = excluded.color,
			is_subscribed = excluded.is_subscribed,
			is_immutable = excluded.is_immutable,
			synced_at = excluded.synced_at
	`, c.ID, c.UpstreamID, c.Title, c.SourceType, c.Color, boolToInt(c.IsSubscribed), boolToInt(c.IsImmutable), toUnix(c.SyncedAt))
	if err != nil {
		return classifySQLiteErr(err)
	}
	return nil
}

// GetCalendar fetches one calendar by public ID.
func (db *DB) GetCalendar(id string) (*Calendar, error) {
	row := db.QueryRow(`SELECT id, upstream_id, title, source_type, color, is_subscribed, is_immutable, synced_at FROM calendars WHERE id = ?`, id)
	var c Calendar
	var subscribed, immutable, synced int64
	err := row.Scan(&c.ID, &c.UpstreamID, &c.Title, &c.SourceType, &c.Color, &subscribed, &immutable, &synced)
	if err == sql.ErrNoRows {
		return nil, &StoreError{Kind: ErrNotFound, Cause: err}
	}
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	c.IsSubscribed = intToBool(subscribed)
	c.IsImmutable = intToBool(immutable)
	c.SyncedAt = fromUnix(synced)
	return &c, nil
}

// ListCalendars returns every mirrored calendar.
func (db *DB) ListCalendars() ([]Calendar, error) {
	rows, err := db.Query(`SELECT id, upstream_id, title, source_type, color, is_subscribed, is_immutable, synced_at FROM calendars ORDER BY title`)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer rows.Close()

	var out []Calendar
	for rows.Next() {
		var c Calendar
		var subscribed, immutable, synced int64
		if err := rows.Scan(&c.ID, &c.UpstreamID, &c.Title, &c.SourceType, &c.Color, &subscribed, &immutable, &synced); err != nil {
			return nil, classifySQLiteErr(err)
		}
		c.IsSubscribed = intToBool(subscribed)
		c.IsImmutable = intToBool(immutable)
		c.SyncedAt = fromUnix(synced)
		out = append(out, c)
	}
	return out, nil
}

// DeleteCalendarsNotIn removes calendars not present in ids. Cascades to
// their events, attendees and reminders.
func (db *DB) DeleteCalendarsNotIn(ids map[string]bool) (int, error) {
	rows, err := db.Query(`SELECT id FROM calendars`)
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
		if _, err := tx.Exec(`DELETE FROM calendars WHERE id = ?`, id); err != nil {
			return 0, classifySQLiteErr(err)
		}
	}
	return len(toDelete), classifySQLiteErr(tx.Commit())
}
