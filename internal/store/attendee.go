package store

// ReplaceAttendees performs delete-all + insert-all for eventID atomically,
// since upstream gives no stable per-attendee key (spec.md §4.C).
func (db *DB) ReplaceAttendees(eventID string, attendees []Attendee) error {
	tx, err := db.Begin()
	if err != nil {
		return classifySQLiteErr(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM attendees WHERE event_id = ?`, eventID); err != nil {
		return classifySQLiteErr(err)
	}

	for _, a := range attendees {
		if _, err := tx.Exec(`
			INSERT INTO attendees (event_id, name, email, response_status, is_organizer, is_optional)
			VALUES (?, ?, ?, ?, ?, ?)
		`, eventID, a.Name, a.Email, a.ResponseStatus, boolToInt(a.IsOrganizer), boolToInt(a.IsOptional)); err != nil {
			return classifySQLiteErr(err)
		}
	}

	return classifySQLiteErr(tx.Commit())
}

// GetAttendees returns the attendees of one event, organizer first.
func (db *DB) GetAttendees(eventID string) ([]Attendee, error) {
	rows, err := db.Query(`
		SELECT row_id, event_id, name, email, response_status, is_organizer, is_optional
		FROM attendees WHERE event_id = ?
		ORDER BY is_organizer DESC, name
	`, eventID)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer rows.Close()

	var out []Attendee
	for rows.Next() {
		var a Attendee
		var organizer, optional int64
		if err := rows.Scan(&a.RowID, &a.EventID, &a.Name, &a.Email, &a.ResponseStatus, &organizer, &optional); err != nil {
			return nil, classifySQLiteErr(err)
		}
		a.IsOrganizer = intToBool(organizer)
		a.IsOptional = intToBool(optional)
		out = append(out, a)
	}
	return out, nil
}
