package store

// CalendarMigrations is the linearly-ordered migration set for calendar.db.
var CalendarMigrations = []Migration{
	{
		Name: "0001_calendars",
		SQL: `
			CREATE TABLE calendars (
				id TEXT PRIMARY KEY,
				upstream_id TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				source_type TEXT NOT NULL DEFAULT '',
				color TEXT NOT NULL DEFAULT '',
				is_subscribed INTEGER NOT NULL DEFAULT 0,
				is_immutable INTEGER NOT NULL DEFAULT 0,
				synced_at INTEGER NOT NULL
			);
			CREATE UNIQUE INDEX idx_calendars_upstream ON calendars(upstream_id);
		`,
	},
	{
		Name: "0002_events",
		SQL: `
			CREATE TABLE events (
				id TEXT PRIMARY KEY,
				upstream_event_id TEXT NOT NULL DEFAULT '',
				external_id TEXT NOT NULL DEFAULT '',
				calendar_id TEXT NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
				summary TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				location TEXT NOT NULL DEFAULT '',
				url TEXT NOT NULL DEFAULT '',
				start_utc INTEGER NOT NULL,
				end_utc INTEGER NOT NULL,
				start_tz TEXT NOT NULL DEFAULT '',
				end_tz TEXT NOT NULL DEFAULT '',
				is_all_day INTEGER NOT NULL DEFAULT 0,
				recurrence_rule TEXT NOT NULL DEFAULT '',
				master_event_id TEXT REFERENCES events(id) ON DELETE CASCADE,
				occurrence_date_utc INTEGER,
				status TEXT NOT NULL DEFAULT '',
				created_utc INTEGER NOT NULL,
				updated_utc INTEGER NOT NULL,
				synced_at INTEGER NOT NULL
			);
			CREATE INDEX idx_events_calendar ON events(calendar_id);
			CREATE INDEX idx_events_start ON events(start_utc);
			CREATE INDEX idx_events_master ON events(master_event_id);
		`,
	},
	{
		Name: "0003_attendees",
		SQL: `
			CREATE TABLE attendees (
				row_id INTEGER PRIMARY KEY AUTOINCREMENT,
				event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
				name TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				response_status TEXT NOT NULL DEFAULT '',
				is_organizer INTEGER NOT NULL DEFAULT 0,
				is_optional INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX idx_attendees_event ON attendees(event_id);
		`,
	},
	{
		Name: "0004_reminders",
		SQL: `
			CREATE TABLE reminders (
				id TEXT PRIMARY KEY,
				upstream_id TEXT NOT NULL DEFAULT '',
				calendar_id TEXT NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
				title TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				due_utc INTEGER,
				priority INTEGER NOT NULL DEFAULT 0,
				is_completed INTEGER NOT NULL DEFAULT 0,
				completed_utc INTEGER,
				synced_at INTEGER NOT NULL
			);
			CREATE INDEX idx_reminders_calendar ON reminders(calendar_id);
		`,
	},
	{
		// External-content FTS5 table mirroring the searchable columns of
		// events: same three-trigger shape as messages_fts in mail.db.
		Name: "0005_events_fts",
		SQL: `
			CREATE VIRTUAL TABLE event_fts USING fts5(
				summary,
				description,
				location,
				content='events',
				content_rowid='rowid'
			);

			CREATE TRIGGER events_fts_insert AFTER INSERT ON events BEGIN
				INSERT INTO event_fts(rowid, summary, description, location)
				VALUES (NEW.rowid, NEW.summary, NEW.description, NEW.location);
			END;

			CREATE TRIGGER events_fts_delete AFTER DELETE ON events BEGIN
				INSERT INTO event_fts(event_fts, rowid, summary, description, location)
				VALUES ('delete', OLD.rowid, OLD.summary, OLD.description, OLD.location);
			END;

			CREATE TRIGGER events_fts_update AFTER UPDATE ON events BEGIN
				INSERT INTO event_fts(event_fts, rowid, summary, description, location)
				VALUES ('delete', OLD.rowid, OLD.summary, OLD.description, OLD.location);
				INSERT INTO event_fts(rowid, summary, description, location)
				VALUES (NEW.rowid, NEW.summary, NEW.description, NEW.location);
			END;
		`,
	},
	{
		Name: "0006_sync_status",
		SQL: `
			CREATE TABLE sync_status (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);
		`,
	},
}
