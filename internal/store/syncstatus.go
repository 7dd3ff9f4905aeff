package store

import (
	"database/sql"
	"strconv"
	"time"
)

// Well-known sync_status keys (spec.md §3).
const (
	KeyState           = "state"
	KeyLastSyncTime    = "last_sync_time"
	KeyLastSyncError   = "last_sync_error"
	KeyEventsAdded     = "events_added"
	KeyEventsUpdated   = "events_updated"
	KeyEventsDeleted   = "events_deleted"
	KeyDateRangeStart  = "date_range_start"
	KeyDateRangeEnd    = "date_range_end"
	KeySyncDuration    = "sync_duration"
)

// GetSyncStatus returns the raw string value for key, or ("", false) if
// unset.
func (db *DB) GetSyncStatus(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM sync_status WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, classifySQLiteErr(err)
	}
	return value, true, nil
}

// SetSyncStatus is atomic; every call updates updated_at (spec.md §4.C).
func (db *DB) SetSyncStatus(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO sync_status (key, value, updated_at) VALUES (?, ?, strftime('%s','now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return classifySQLiteErr(err)
	}
	return nil
}

// SetSyncStatusInt is a convenience wrapper for integer-valued keys
// (counters, unix timestamps).
func (db *DB) SetSyncStatusInt(key string, value int64) error {
	return db.SetSyncStatus(key, strconv.FormatInt(value, 10))
}

// GetSyncStatusInt parses an integer-valued key, returning 0 if unset or
// unparseable.
func (db *DB) GetSyncStatusInt(key string) (int64, error) {
	s, ok, err := db.GetSyncStatus(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n, nil
}

// AllSyncStatus returns every key/value pair, used by the daemon's status()
// surface (spec.md §4.G).
func (db *DB) AllSyncStatus() (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM sync_status`)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, classifySQLiteErr(err)
		}
		out[k] = v
	}
	return out, nil
}

// SetState records the well-known "state" key with the current timestamp,
// following the idle -> running -> {success|failed} -> idle cycle.
func (db *DB) SetState(state SyncState) error {
	return db.SetSyncStatus(KeyState, string(state))
}

// State returns the current sync state, defaulting to SyncIdle when unset.
func (db *DB) State() (SyncState, error) {
	s, ok, err := db.GetSyncStatus(KeyState)
	if err != nil {
		return "", err
	}
	if !ok {
		return SyncIdle, nil
	}
	return SyncState(s), nil
}

// RecordSyncTime sets last_sync_time to t (seconds since epoch UTC).
func (db *DB) RecordSyncTime(t time.Time) error {
	return db.SetSyncStatusInt(KeyLastSyncTime, toUnix(t))
}
