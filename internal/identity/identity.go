// Package identity implements the stable public-ID strategy of spec.md
// §4.B: it derives a deterministic public ID per entity and classifies how
// an entity's upstream identifiers have drifted between syncs, without ever
// rewriting the public ID once chosen.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Triple is the identity triple named in the glossary:
// (local_upstream_id?, external_upstream_id?, calendar_upstream_id).
type Triple struct {
	LocalID    string
	ExternalID string
	CalendarID string
}

// EventIdentity carries everything PublicEventID needs to compute the
// canonical hash when no external identifier is available.
type EventIdentity struct {
	Triple
	Summary        string
	StartUTC       time.Time
	OccurrenceUTC  *time.Time // nil for a master event or non-recurring event
}

// PublicEventID chooses the public ID by priority: the normalized external
// identifier if present and non-empty, else SHA-256 of the canonical string
// `cal:<calendar_id>|sum:<summary>|start:<start_utc>[|occ:<occurrence_utc>]`
// truncated to 128 bits of hex (spec.md §4.B rule 1).
//
// When an occurrence timestamp is present and an external identifier is
// also present, the external identifier is combined with the occurrence
// under the same hash function so each instance is distinct but
// deterministic (rule 2).
func PublicEventID(id EventIdentity) string {
	ext := NormalizeExternalID(id.ExternalID)
	if ext != "" {
		if id.OccurrenceUTC != nil {
			return hash128(fmt.Sprintf("ext:%s|occ:%d", ext, id.OccurrenceUTC.UTC().Unix()))
		}
		return ext
	}

	canon := fmt.Sprintf("cal:%s|sum:%s|start:%d", id.CalendarID, NormalizeSummary(id.Summary), id.StartUTC.UTC().Unix())
	if id.OccurrenceUTC != nil {
		canon += fmt.Sprintf("|occ:%d", id.OccurrenceUTC.UTC().Unix())
	}
	return hash128(canon)
}

func hash128(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}

// NormalizeExternalID trims and lowercases an upstream external identifier
// so trivial case/whitespace drift does not count as a change of identity.
func NormalizeExternalID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSummary NFC-normalizes and lowercase-folds a summary/subject
// before hashing or content-match comparison, so diacritic or
// precomposed/decomposed Unicode variants agree.
func NormalizeSummary(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Classification is the result of Reconcile (spec.md §4.B rule 3).
type Classification string

const (
	Match             Classification = "match"
	ExternalIDChanged Classification = "external_id_changed"
	LocalIDChanged    Classification = "local_id_changed"
	BothChanged       Classification = "both_changed"
	New               Classification = "new"
	NotFound          Classification = "not_found"
)

// Reconcile classifies the relationship between a previously stored
// identity triple and the current one read from upstream. The caller is
// responsible for updating the stored triple when the classification is
// anything other than Match or NotFound; the public ID itself is never
// recomputed from this result.
func Reconcile(stored *Triple, current *Triple) Classification {
	if current == nil {
		return NotFound
	}
	if stored == nil {
		return New
	}

	localChanged := stored.LocalID != "" && current.LocalID != "" && stored.LocalID != current.LocalID
	externalChanged := stored.ExternalID != "" && current.ExternalID != "" &&
		NormalizeExternalID(stored.ExternalID) != NormalizeExternalID(current.ExternalID)

	switch {
	case localChanged && externalChanged:
		return BothChanged
	case externalChanged:
		return ExternalIDChanged
	case localChanged:
		return LocalIDChanged
	default:
		return Match
	}
}

// ContentMatchTolerance is the default window (spec.md §4.B rule 4) used
// when no identifier on either side matches.
const ContentMatchTolerance = 60 * time.Second

// ContentMatch reports whether two events should be treated as the same
// entity purely by content: normalized lowercase summary equality and a
// start-time difference within tolerance. Used only as a fallback when
// Reconcile cannot find any identifier agreement, protecting against the
// upstream swapping every identifier at once (e.g. first server sync).
func ContentMatch(storedSummary string, storedStart time.Time, currentSummary string, currentStart time.Time, tolerance time.Duration) bool {
	if NormalizeSummary(storedSummary) != NormalizeSummary(currentSummary) {
		return false
	}
	diff := storedStart.Sub(currentStart)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
