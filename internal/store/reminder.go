package store

import "database/sql"

// UpsertReminder inserts or updates a reminder keyed by public ID. Reminders
// are not covered by the calendar deletion sweep (spec.md §9 open question:
// "source does not sweep reminders; spec follows suit").
func (db *DB) UpsertReminder(r Reminder) error {
	_, err := db.Exec(`
		INSERT INTO reminders (id, upstream_id, calendar_id, title, notes, due_utc, priority, is_completed, completed_utc, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			upstream_id = excluded.upstream_id,
			calendar_id = excluded.calendar_id,
			title = excluded.title,
			notes = excluded.notes,
			due_utc = excluded.due_utc,
			priority = excluded.priority,
			is_completed = excluded.is_completed,
			completed_utc = excluded.completed_utc,
			synced_at = excluded.synced_at
	`, r.ID, r.UpstreamID, r.CalendarID, r.Title, r.Notes, toUnixPtr(r.DueUTC), r.Priority,
		boolToInt(r.IsCompleted), toUnixPtr(r.CompletedUTC), toUnix(r.SyncedAt))
	if err != nil {
		return classifySQLiteErr(err)
	}
	return nil
}

// GetReminder fetches one reminder by public ID.
func (db *DB) GetReminder(id string) (*Reminder, error) {
	row := db.QueryRow(`
		SELECT id, upstream_id, calendar_id, title, notes, due_utc, priority, is_completed, completed_utc, synced_at
		FROM reminders WHERE id = ?
	`, id)
	var r Reminder
	var due, completed sql.NullInt64
	var completedFlag int64
	var synced int64
	err := row.Scan(&r.ID, &r.UpstreamID, &r.CalendarID, &r.Title, &r.Notes, &due, &r.Priority, &completedFlag, &completed, &synced)
	if err == sql.ErrNoRows {
		return nil, &StoreError{Kind: ErrNotFound, Cause: err}
	}
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	r.IsCompleted = intToBool(completedFlag)
	r.SyncedAt = fromUnix(synced)
	if due.Valid {
		r.DueUTC = fromUnixPtr(&due.Int64)
	}
	if completed.Valid {
		r.CompletedUTC = fromUnixPtr(&completed.Int64)
	}
	return &r, nil
}

// ListRemindersInCalendar returns every reminder in a calendar.
func (db *DB) ListRemindersInCalendar(calendarID string) ([]Reminder, error) {
	rows, err := db.Query(`
		SELECT id, upstream_id, calendar_id, title, notes, due_utc, priority, is_completed, completed_utc, synced_at
		FROM reminders WHERE calendar_id = ? ORDER BY due_utc
	`, calendarID)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var r Reminder
		var due, completed sql.NullInt64
		var completedFlag int64
		var synced int64
		if err := rows.Scan(&r.ID, &r.UpstreamID, &r.CalendarID, &r.Title, &r.Notes, &due, &r.Priority, &completedFlag, &completed, &synced); err != nil {
			return nil, classifySQLiteErr(err)
		}
		r.IsCompleted = intToBool(completedFlag)
		r.SyncedAt = fromUnix(synced)
		if due.Valid {
			r.DueUTC = fromUnixPtr(&due.Int64)
		}
		if completed.Valid {
			r.CompletedUTC = fromUnixPtr(&completed.Int64)
		}
		out = append(out, r)
	}
	return out, nil
}
