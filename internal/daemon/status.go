package daemon

import (
	"time"

	"github.com/kestrelvault/mirror/internal/store"
)

// Status is the daemon's observable state surface (spec.md §4.G
// "status() returns {running, pid?, last_sync_time?, last_sync_state,
// last_sync_duration?, counters, last_error?}").
type Status struct {
	Running          bool
	PID              int
	LastSyncTime     *time.Time
	LastSyncState    store.SyncState
	LastSyncDuration *time.Duration
	Counters         map[string]int64
	LastError        string
}

// countersKeys lists which sync_status keys are surfaced as Counters,
// excluding the well-known non-counter keys (state, timestamps, error).
var countersKeys = []string{
	store.KeyEventsAdded, store.KeyEventsUpdated, store.KeyEventsDeleted,
}

// ReadStatus assembles Status from the mirror's sync_status table and a
// PID file maintained by WritePIDFile. db may be nil only in tests that
// exercise process discovery alone.
func ReadStatus(db *store.DB, pidFilePath string) (Status, error) {
	pid, running := ReadPIDFile(pidFilePath)
	st := Status{Running: running, PID: pid, Counters: make(map[string]int64)}

	if db == nil {
		return st, nil
	}

	state, err := db.State()
	if err != nil {
		return st, err
	}
	st.LastSyncState = state

	if ts, err := db.GetSyncStatusInt(store.KeyLastSyncTime); err == nil && ts > 0 {
		t := time.Unix(ts, 0).UTC()
		st.LastSyncTime = &t
	}
	if secs, err := db.GetSyncStatusInt(store.KeySyncDuration); err == nil && secs > 0 {
		d := time.Duration(secs) * time.Second
		st.LastSyncDuration = &d
	}
	if msg, ok, err := db.GetSyncStatus(store.KeyLastSyncError); err == nil && ok {
		st.LastError = msg
	}
	for _, key := range countersKeys {
		if n, err := db.GetSyncStatusInt(key); err == nil {
			st.Counters[key] = n
		}
	}

	return st, nil
}
