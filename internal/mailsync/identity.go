package mailsync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// PublicMessageID derives MailMessage's stable public ID. Unlike events
// (spec.md §4.B), mail messages carry one well-known stable identifier —
// the Message-ID header — so the public ID prefers that over the upstream
// row identifier, which is only a fast local lookup key that can be
// invalidated by a store rebuild.
func PublicMessageID(mailboxUpstreamID, upstreamRowID, messageIDHeader string) string {
	header := strings.TrimSpace(messageIDHeader)
	if header != "" {
		return hash128(fmt.Sprintf("msgid:%s", strings.ToLower(header)))
	}
	return hash128(fmt.Sprintf("mailbox:%s|row:%s", mailboxUpstreamID, upstreamRowID))
}

func hash128(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}
