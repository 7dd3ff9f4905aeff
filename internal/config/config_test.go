package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveCreatesExpectedLayout(t *testing.T) {
	root := t.TempDir()

	v, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	for _, dir := range []string{v.LogDir(), v.ExportDir("mail"), v.ExportDir("calendar")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist, err=%v", dir, err)
		}
	}

	if want := filepath.Join(root, "Swiftea", "mail.db"); v.MailDBPath() != want {
		t.Fatalf("MailDBPath = %q, want %q", v.MailDBPath(), want)
	}
	if want := filepath.Join(root, "Swiftea", "calendar.db"); v.CalendarDBPath() != want {
		t.Fatalf("CalendarDBPath = %q, want %q", v.CalendarDBPath(), want)
	}
	if want := filepath.Join(root, "Swiftea", "logs", "maild.pid"); v.PIDPath("maild") != want {
		t.Fatalf("PIDPath = %q, want %q", v.PIDPath("maild"), want)
	}
}
