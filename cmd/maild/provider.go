package main

import (
	"fmt"

	"github.com/kestrelvault/mirror/internal/mailsync"
)

// newSourceProvider is the integration seam spec.md §1/§6 leaves external to
// this module: the core consumes a Source Provider, it never implements the
// upstream mail store (IMAP, EWS, an OS mail database) itself. A real
// deployment links a concrete mailsync.Provider here before building.
func newSourceProvider() (mailsync.Provider, error) {
	return nil, fmt.Errorf("no mail source provider wired; link a mailsync.Provider implementation in cmd/maild")
}
