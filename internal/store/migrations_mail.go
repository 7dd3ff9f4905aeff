package store

// MailMigrations is the linearly-ordered migration set for mail.db.
var MailMigrations = []Migration{
	{
		Name: "0001_mailboxes",
		SQL: `
			CREATE TABLE mailboxes (
				id TEXT PRIMARY KEY,
				account TEXT NOT NULL,
				name TEXT NOT NULL,
				path TEXT NOT NULL,
				message_count INTEGER NOT NULL DEFAULT 0,
				synced_at INTEGER NOT NULL
			);
			CREATE UNIQUE INDEX idx_mailboxes_account_path ON mailboxes(account, path);
		`,
	},
	{
		Name: "0002_messages",
		SQL: `
			CREATE TABLE messages (
				id TEXT PRIMARY KEY,
				upstream_rowid TEXT NOT NULL,
				message_id_header TEXT NOT NULL DEFAULT '',
				subject TEXT NOT NULL DEFAULT '',
				sender_name TEXT NOT NULL DEFAULT '',
				sender_email TEXT NOT NULL DEFAULT '',
				date_sent_utc INTEGER NOT NULL,
				mailbox_id TEXT NOT NULL REFERENCES mailboxes(id) ON DELETE CASCADE,
				is_read INTEGER NOT NULL DEFAULT 0,
				is_flagged INTEGER NOT NULL DEFAULT 0,
				has_attachments INTEGER NOT NULL DEFAULT 0,
				body_text TEXT NOT NULL DEFAULT '',
				body_html TEXT NOT NULL DEFAULT '',
				source_file_path TEXT NOT NULL DEFAULT '',
				export_path TEXT NOT NULL DEFAULT '',
				synced_at INTEGER NOT NULL
			);
			CREATE INDEX idx_messages_mailbox ON messages(mailbox_id);
			CREATE INDEX idx_messages_date ON messages(date_sent_utc);
			CREATE UNIQUE INDEX idx_messages_upstream ON messages(mailbox_id, upstream_rowid);
		`,
	},
	{
		// External-content FTS5 table mirroring the searchable columns of
		// messages, kept in lockstep by three triggers. Grounded in the
		// teacher's messages_fts (version 14 migration).
		Name: "0003_messages_fts",
		SQL: `
			CREATE VIRTUAL TABLE messages_fts USING fts5(
				subject,
				sender_name,
				sender_email,
				body_text,
				content='messages',
				content_rowid='rowid'
			);

			CREATE TRIGGER messages_fts_insert AFTER INSERT ON messages BEGIN
				INSERT INTO messages_fts(rowid, subject, sender_name, sender_email, body_text)
				VALUES (NEW.rowid, NEW.subject, NEW.sender_name, NEW.sender_email, NEW.body_text);
			END;

			CREATE TRIGGER messages_fts_delete AFTER DELETE ON messages BEGIN
				INSERT INTO messages_fts(messages_fts, rowid, subject, sender_name, sender_email, body_text)
				VALUES ('delete', OLD.rowid, OLD.subject, OLD.sender_name, OLD.sender_email, OLD.body_text);
			END;

			CREATE TRIGGER messages_fts_update AFTER UPDATE ON messages BEGIN
				INSERT INTO messages_fts(messages_fts, rowid, subject, sender_name, sender_email, body_text)
				VALUES ('delete', OLD.rowid, OLD.subject, OLD.sender_name, OLD.sender_email, OLD.body_text);
				INSERT INTO messages_fts(rowid, subject, sender_name, sender_email, body_text)
				VALUES (NEW.rowid, NEW.subject, NEW.sender_name, NEW.sender_email, NEW.body_text);
			END;
		`,
	},
	{
		Name: "0004_sync_status",
		SQL: `
			CREATE TABLE sync_status (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);
		`,
	},
	{
		// Recipient addresses, needed for the "to:" query filter (spec.md
		// §4.D), which compiles to a LIKE clause on messages.recipients. Also
		// folded into messages_fts so free-text search matches recipient
		// addresses alongside sender/subject/body.
		Name: "0005_message_recipients",
		SQL: `
			ALTER TABLE messages ADD COLUMN recipients TEXT NOT NULL DEFAULT '';

			DROP TRIGGER messages_fts_insert;
			DROP TRIGGER messages_fts_delete;
			DROP TRIGGER messages_fts_update;
			DROP TABLE messages_fts;

			CREATE VIRTUAL TABLE messages_fts USING fts5(
				subject,
				sender_name,
				sender_email,
				recipients,
				body_text,
				content='messages',
				content_rowid='rowid'
			);

			INSERT INTO messages_fts(rowid, subject, sender_name, sender_email, recipients, body_text)
				SELECT rowid, subject, sender_name, sender_email, recipients, body_text FROM messages;

			CREATE TRIGGER messages_fts_insert AFTER INSERT ON messages BEGIN
				INSERT INTO messages_fts(rowid, subject, sender_name, sender_email, recipients, body_text)
				VALUES (NEW.rowid, NEW.subject, NEW.sender_name, NEW.sender_email, NEW.recipients, NEW.body_text);
			END;

			CREATE TRIGGER messages_fts_delete AFTER DELETE ON messages BEGIN
				INSERT INTO messages_fts(messages_fts, rowid, subject, sender_name, sender_email, recipients, body_text)
				VALUES ('delete', OLD.rowid, OLD.subject, OLD.sender_name, OLD.sender_email, OLD.recipients, OLD.body_text);
			END;

			CREATE TRIGGER messages_fts_update AFTER UPDATE ON messages BEGIN
				INSERT INTO messages_fts(messages_fts, rowid, subject, sender_name, sender_email, recipients, body_text)
				VALUES ('delete', OLD.rowid, OLD.subject, OLD.sender_name, OLD.sender_email, OLD.recipients, OLD.body_text);
				INSERT INTO messages_fts(rowid, subject, sender_name, sender_email, recipients, body_text)
				VALUES (NEW.rowid, NEW.subject, NEW.sender_name, NEW.sender_email, NEW.recipients, NEW.body_text);
			END;
		`,
	},
}
