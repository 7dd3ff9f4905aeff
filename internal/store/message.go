package store

import "database/sql"

const messageColumns = `id, upstream_rowid, message_id_header, subject, sender_name, sender_email, recipients,
	date_sent_utc, mailbox_id, is_read, is_flagged, has_attachments, body_text, body_html,
	source_file_path, export_path, synced_at`

// messageColumnNames lists the same columns as messageColumns for building
// alias-qualified SELECT clauses (needed once the query joins against
// messages_fts, whose shadow columns share names with messages).
var messageColumnNames = []string{
	"id", "upstream_rowid", "message_id_header", "subject", "sender_name", "sender_email", "recipients",
	"date_sent_utc", "mailbox_id", "is_read", "is_flagged", "has_attachments", "body_text", "body_html",
	"source_file_path", "export_path", "synced_at",
}

// UpsertMessage inserts a new message row or updates the mutable fields of
// an existing one keyed by public ID. One transaction, idempotent.
func (db *DB) UpsertMessage(m MailMessage) error {
	tx, err := db.Begin()
	if err != nil {
		return classifySQLiteErr(err)
	}
	defer tx.Rollback()

	if err := upsertMessageTx(tx, m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classifySQLiteErr(err)
	}
	return nil
}

// UpsertMessages upserts a batch inside a single transaction, as required by
// spec.md §4.C ("one transaction per batch").
func (db *DB) UpsertMessages(ms []MailMessage) error {
	if len(ms) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return classifySQLiteErr(err)
	}
	defer tx.Rollback()

	for _, m := range ms {
		if err := upsertMessageTx(tx, m); err != nil {
			return err
		}
	}
	return classifySQLiteErr(tx.Commit())
}

func upsertMessageTx(tx *sql.Tx, m MailMessage) error {
	_, err := tx.Exec(`
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			upstream_rowid = excluded.upstream_rowid,
			message_id_header = excluded.message_id_header,
			subject = excluded.subject,
			sender_name = excluded.sender_name,
			sender_email = excluded.sender_email,
			recipients = excluded.recipients,
			date_sent_utc = excluded.date_sent_utc,
			mailbox_id = excluded.mailbox_id,
			is_read = excluded.is_read,
			is_flagged = excluded.is_flagged,
			has_attachments = excluded.has_attachments,
			body_text = CASE WHEN excluded.body_text != '' THEN excluded.body_text ELSE messages.body_text END,
			body_html = CASE WHEN excluded.body_html != '' THEN excluded.body_html ELSE messages.body_html END,
			source_file_path = excluded.source_file_path,
			synced_at = excluded.synced_at
	`,
		m.ID, m.UpstreamRowID, m.MessageIDHeader, m.Subject, m.SenderName, m.SenderEmail, m.Recipients,
		toUnix(m.DateSentUTC), m.MailboxID, boolToInt(m.IsRead), boolToInt(m.IsFlagged), boolToInt(m.HasAttachments),
		m.BodyText, m.BodyHTML, m.SourceFilePath, m.ExportPath, toUnix(m.SyncedAt),
	)
	if err != nil {
		return classifySQLiteErr(err)
	}
	return nil
}

// GetMessage fetches one message by public ID.
func (db *DB) GetMessage(id string) (*MailMessage, error) {
	row := db.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, &StoreError{Kind: ErrNotFound, Cause: err}
	}
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	return m, nil
}

// MessageFilter narrows GetMessages; zero values mean "no filter" on that
// dimension. This is the typed counterpart compiled from internal/query.
type MessageFilter struct {
	MailboxID      string
	IsRead         *bool
	IsFlagged      *bool
	HasAttachments *bool
	SenderLike     string
	SubjectLike    string
	RecipientLike  string
	AfterUTC       *int64
	BeforeUTC      *int64
	FTSMatch       string // FTS5 MATCH expression; empty means no free-text
}

// GetMessages applies filter and returns at most limit rows. When
// filter.FTSMatch is empty it orders by date_sent_utc DESC (no FTS call);
// otherwise it joins messages_fts and orders by BM25.
func (db *DB) GetMessages(filter MessageFilter, limit int) ([]MailMessage, error) {
	where := "WHERE 1=1"
	var args []any

	if filter.MailboxID != "" {
		where += " AND m.mailbox_id = ?"
		args = append(args, filter.MailboxID)
	}
	if filter.IsRead != nil {
		where += " AND m.is_read = ?"
		args = append(args, boolToInt(*filter.IsRead))
	}
	if filter.IsFlagged != nil {
		where += " AND m.is_flagged = ?"
		args = append(args, boolToInt(*filter.IsFlagged))
	}
	if filter.HasAttachments != nil {
		where += " AND m.has_attachments = ?"
		args = append(args, boolToInt(*filter.HasAttachments))
	}
	if filter.SenderLike != "" {
		where += " AND (m.sender_name LIKE ? ESCAPE '\\' OR m.sender_email LIKE ? ESCAPE '\\')"
		like := "%" + escapeLike(filter.SenderLike) + "%"
		args = append(args, like, like)
	}
	if filter.SubjectLike != "" {
		where += " AND m.subject LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(filter.SubjectLike)+"%")
	}
	if filter.RecipientLike != "" {
		where += " AND m.recipients LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(filter.RecipientLike)+"%")
	}
	if filter.AfterUTC != nil {
		where += " AND m.date_sent_utc >= ?"
		args = append(args, *filter.AfterUTC)
	}
	if filter.BeforeUTC != nil {
		where += " AND m.date_sent_utc < ?"
		args = append(args, *filter.BeforeUTC)
	}

	selectCols := qualifyColumns("m", messageColumnNames)

	var query string
	if filter.FTSMatch == "" {
		query = "SELECT " + selectCols + " FROM messages m " + where + " ORDER BY m.date_sent_utc DESC LIMIT ?"
		args = append(args, limit)
	} else {
		query = `
			SELECT ` + selectCols + `
			FROM messages_fts f
			JOIN messages m ON m.rowid = f.rowid
			` + where + ` AND messages_fts MATCH ?
			ORDER BY bm25(messages_fts)
			LIMIT ?
		`
		args = append(args, filter.FTSMatch, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer rows.Close()

	var out []MailMessage
	for rows.Next() {
		m, err := scanMessageRows(rows)
		if err != nil {
			return nil, classifySQLiteErr(err)
		}
		out = append(out, *m)
	}
	return out, nil
}

// UpdateExportPath records where a message was last exported to, per
// spec.md §4.C.
func (db *DB) UpdateExportPath(id, path string) error {
	res, err := db.Exec(`UPDATE messages SET export_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return classifySQLiteErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &StoreError{Kind: ErrNotFound, Cause: sql.ErrNoRows}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(s rowScanner) (*MailMessage, error) {
	var m MailMessage
	var date, synced int64
	var isRead, isFlagged, hasAtt int64
	if err := s.Scan(&m.ID, &m.UpstreamRowID, &m.MessageIDHeader, &m.Subject, &m.SenderName, &m.SenderEmail, &m.Recipients,
		&date, &m.MailboxID, &isRead, &isFlagged, &hasAtt, &m.BodyText, &m.BodyHTML,
		&m.SourceFilePath, &m.ExportPath, &synced); err != nil {
		return nil, err
	}
	m.DateSentUTC = fromUnix(date)
	m.SyncedAt = fromUnix(synced)
	m.IsRead = intToBool(isRead)
	m.IsFlagged = intToBool(isFlagged)
	m.HasAttachments = intToBool(hasAtt)
	return &m, nil
}

func scanMessageRows(rows *sql.Rows) (*MailMessage, error) { return scanMessage(rows) }

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

// qualifyColumns prefixes each column name with "alias." — needed once a
// query joins against an FTS shadow table whose column names collide with
// the content table's.
func qualifyColumns(alias string, cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + c
	}
	return out
}
