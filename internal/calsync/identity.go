package calsync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// publicReminderID derives Reminder's stable public ID. Reminders are not
// named by spec.md §4.B's event identity rules, but they do carry a stable
// per-reminder upstream identifier (unlike events, which may not), so the
// ID is simply a hash of calendar+upstream id rather than a content hash.
func publicReminderID(calendarID, upstreamID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("cal:%s|reminder:%s", calendarID, upstreamID)))
	return hex.EncodeToString(sum[:16])
}
