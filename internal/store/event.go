package store

import "database/sql"

var eventColumnNames = []string{
	"id", "upstream_event_id", "external_id", "calendar_id", "summary", "description", "location", "url",
	"start_utc", "end_utc", "start_tz", "end_tz", "is_all_day", "recurrence_rule", "master_event_id",
	"occurrence_date_utc", "status", "created_utc", "updated_utc", "synced_at",
}

// UpsertEvent inserts a new event row or updates the mutable fields of an
// existing one keyed by public ID. Idempotent.
func (db *DB) UpsertEvent(e Event) error {
	var masterID any
	if e.MasterEventID != "" {
		masterID = e.MasterEventID
	}

	_, err := db.Exec(`
		INSERT INTO events (`+joinCols(eventColumnNames)+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			upstream_event_id = excluded.upstream_event_id,
			external_id = excluded.external_id,
			calendar_id = excluded.calendar_id,
			summary = excluded.summary,
			description = excluded.description,
			location = excluded.location,
			url = excluded.url,
			start_utc = excluded.start_utc,
			end_utc = excluded.end_utc,
			start_tz = excluded.start_tz,
			end_tz = excluded.end_tz,
			is_all_day = excluded.is_all_day,
			recurrence_rule = excluded.recurrence_rule,
			master_event_id = excluded.master_event_id,
			occurrence_date_utc = excluded.occurrence_date_utc,
			status = excluded.status,
			updated_utc = excluded.updated_utc,
			synced_at = excluded.synced_at
	`,
		e.ID, e.UpstreamEventID, e.ExternalID, e.CalendarID, e.Summary, e.Description, e.Location, e.URL,
		toUnix(e.StartUTC), toUnix(e.EndUTC), e.StartTZ, e.EndTZ, boolToInt(e.IsAllDay), e.RecurrenceRule, masterID,
		toUnixPtr(e.OccurrenceDateUTC), e.Status, toUnix(e.CreatedUTC), toUnix(e.UpdatedUTC), toUnix(e.SyncedAt),
	)
	if err != nil {
		return classifySQLiteErr(err)
	}
	return nil
}

// GetEvent fetches one event by public ID.
func (db *DB) GetEvent(id string) (*Event, error) {
	row := db.QueryRow(`SELECT `+joinCols(eventColumnNames)+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, &StoreError{Kind: ErrNotFound, Cause: err}
	}
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	return e, nil
}

// EventFilter narrows ListEventsInCalendar/GetEvents.
type EventFilter struct {
	CalendarID    string
	SummaryLike   string
	LocationLike  string
	AttendeeLike  string
	AfterUTC      *int64
	BeforeUTC     *int64
	FTSMatch      string
}

// GetEvents applies filter and returns at most limit rows ordered by
// start_utc ascending, or by BM25 when FTSMatch is set.
func (db *DB) GetEvents(filter EventFilter, limit int) ([]Event, error) {
	where := "WHERE 1=1"
	var args []any

	if filter.CalendarID != "" {
		where += " AND e.calendar_id = ?"
		args = append(args, filter.CalendarID)
	}
	if filter.SummaryLike != "" {
		where += " AND e.summary LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(filter.SummaryLike)+"%")
	}
	if filter.LocationLike != "" {
		where += " AND e.location LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(filter.LocationLike)+"%")
	}
	if filter.AttendeeLike != "" {
		where += ` AND EXISTS (SELECT 1 FROM attendees a WHERE a.event_id = e.id AND (a.name LIKE ? ESCAPE '\' OR a.email LIKE ? ESCAPE '\'))`
		like := "%" + escapeLike(filter.AttendeeLike) + "%"
		args = append(args, like, like)
	}
	if filter.AfterUTC != nil {
		where += " AND e.start_utc >= ?"
		args = append(args, *filter.AfterUTC)
	}
	if filter.BeforeUTC != nil {
		where += " AND e.start_utc < ?"
		args = append(args, *filter.BeforeUTC)
	}

	selectCols := qualifyColumns("e", eventColumnNames)

	var query string
	if filter.FTSMatch == "" {
		query = "SELECT " + selectCols + " FROM events e " + where + " ORDER BY e.start_utc ASC LIMIT ?"
		args = append(args, limit)
	} else {
		query = `
			SELECT ` + selectCols + `
			FROM event_fts f
			JOIN events e ON e.rowid = f.rowid
			` + where + ` AND event_fts MATCH ?
			ORDER BY bm25(event_fts)
			LIMIT ?
		`
		args = append(args, filter.FTSMatch, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, classifySQLiteErr(err)
		}
		out = append(out, *e)
	}
	return out, nil
}

// ListEventsInCalendar returns every event row in a calendar, used to build
// the "seen" set comparisons in tests and by the deletion sweep's callers.
func (db *DB) ListEventsInCalendar(calendarID string) ([]Event, error) {
	return db.GetEvents(EventFilter{CalendarID: calendarID}, 1<<30)
}

// DeleteEventsNotIn removes events in calendarID whose public ID is not in
// keepIDs, returning the count deleted. Calendar-local: no row whose
// calendar_id differs from calendarID is ever touched (spec.md §4.C, tested
// property 5).
func (db *DB) DeleteEventsNotIn(calendarID string, keepIDs map[string]bool) (int, error) {
	rows, err := db.Query(`SELECT id FROM events WHERE calendar_id = ?`, calendarID)
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
		if !keepIDs[id] {
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
		if _, err := tx.Exec(`DELETE FROM events WHERE id = ? AND calendar_id = ?`, id, calendarID); err != nil {
			return 0, classifySQLiteErr(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, classifySQLiteErr(err)
	}
	return len(toDelete), nil
}

func scanEvent(s rowScanner) (*Event, error) {
	var e Event
	var start, end, created, updated, synced int64
	var allDay int64
	var masterID sql.NullString
	var occurrence sql.NullInt64
	if err := s.Scan(&e.ID, &e.UpstreamEventID, &e.ExternalID, &e.CalendarID, &e.Summary, &e.Description,
		&e.Location, &e.URL, &start, &end, &e.StartTZ, &e.EndTZ, &allDay, &e.RecurrenceRule, &masterID,
		&occurrence, &e.Status, &created, &updated, &synced); err != nil {
		return nil, err
	}
	e.StartUTC = fromUnix(start)
	e.EndUTC = fromUnix(end)
	e.IsAllDay = intToBool(allDay)
	e.CreatedUTC = fromUnix(created)
	e.UpdatedUTC = fromUnix(updated)
	e.SyncedAt = fromUnix(synced)
	if masterID.Valid {
		e.MasterEventID = masterID.String
	}
	if occurrence.Valid {
		e.OccurrenceDateUTC = fromUnixPtr(&occurrence.Int64)
	}
	return &e, nil
}

func joinCols(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
