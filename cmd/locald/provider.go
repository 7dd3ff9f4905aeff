package main

import (
	"fmt"

	"github.com/kestrelvault/mirror/internal/calsync"
)

// newSourceProvider is the integration seam spec.md §1/§6 leaves external to
// this module: the core consumes a calendar Source Provider, it never
// implements the upstream calendar store (EventKit, CalDAV, an OS calendar
// database) itself. A real deployment links a concrete calsync.Provider here
// before building.
func newSourceProvider() (calsync.Provider, error) {
	return nil, fmt.Errorf("no calendar source provider wired; link a calsync.Provider implementation in cmd/locald")
}
