package mailsync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kestrelvault/mirror/internal/logging"
	"github.com/kestrelvault/mirror/internal/retry"
	"github.com/kestrelvault/mirror/internal/store"
)

// Result carries the outcome of one sync pass (spec.md §4.E). Per-message
// failures are collected into Warnings and never abort the pass.
type Result struct {
	Added              int
	Updated            int
	MailboxesProcessed int
	Duration           time.Duration
	Warnings           []string
}

// Engine drives the Mail Sync Engine's full and incremental algorithms
// against one Provider and one mirror database.
type Engine struct {
	DB       *store.DB
	Provider Provider
	// ExtractBodies controls whether attachments/body extraction is
	// attempted for messages with HasAttachments set (spec.md §4.E step 3).
	ExtractBodies bool
	// Daemon marks whether Sync should retry StoreError{Busy} with backoff
	// (daemon mode) or fail fast (interactive mode), per spec.md §4.E.
	Daemon      bool
	RetryPolicy retry.Policy
}

// NewEngine builds an Engine with the default retry policy.
func NewEngine(db *store.DB, p Provider) *Engine {
	return &Engine{DB: db, Provider: p, ExtractBodies: true, RetryPolicy: retry.Default()}
}

// Sync runs a full sync if the mirror has no messages yet, otherwise an
// incremental sync since the last recorded sync time (spec.md §4.G
// lifecycle: "full if the mirror is empty, incremental otherwise").
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	log := logging.WithComponent("mailsync")

	empty, err := e.isEmpty()
	if err != nil {
		return Result{}, err
	}

	var since *time.Time
	if !empty {
		ts, err := e.DB.GetSyncStatusInt(store.KeyLastSyncTime)
		if err != nil {
			return Result{}, err
		}
		if ts > 0 {
			t := time.Unix(ts, 0).UTC()
			since = &t
		}
	}

	log.Info().Bool("full", since == nil).Msg("starting mail sync")
	return e.sync(ctx, since)
}

func (e *Engine) isEmpty() (bool, error) {
	var count int
	row := e.DB.QueryRow(`SELECT COUNT(*) FROM messages`)
	if err := row.Scan(&count); err != nil {
		return false, &store.StoreError{Kind: store.ErrIO, Cause: err}
	}
	return count == 0, nil
}

func (e *Engine) sync(ctx context.Context, sinceUTC *time.Time) (Result, error) {
	log := logging.WithComponent("mailsync")
	start := time.Now()

	if err := e.DB.SetState(store.SyncRunning); err != nil {
		return Result{}, err
	}
	if err := e.DB.SetSyncStatusInt("last_sync_start", start.UTC().Unix()); err != nil {
		return Result{}, err
	}

	access, err := e.Provider.RequestAccess(ctx)
	if err != nil || !access.Granted {
		e.fail(fmt.Sprintf("permission denied: %v", access.Error))
		return Result{}, &PermissionError{Cause: access.Error}
	}

	mailboxes, err := e.Provider.ListMailboxes(ctx)
	if err != nil {
		e.fail(err.Error())
		return Result{}, err
	}

	var result Result
	for _, mb := range mailboxes {
		if err := e.syncMailbox(ctx, mb, sinceUTC, &result); err != nil {
			e.fail(err.Error())
			return result, err
		}
		result.MailboxesProcessed++
	}

	result.Duration = time.Since(start)
	if err := e.DB.SetState(store.SyncSuccess); err != nil {
		return result, err
	}
	if err := e.DB.RecordSyncTime(time.Now()); err != nil {
		return result, err
	}
	_ = e.DB.SetSyncStatusInt("sync_duration", int64(result.Duration.Seconds()))
	_ = e.DB.SetSyncStatus(store.KeyLastSyncError, "")

	log.Info().Int("added", result.Added).Int("updated", result.Updated).
		Int("mailboxes", result.MailboxesProcessed).Dur("duration", result.Duration).
		Int("warnings", len(result.Warnings)).Msg("mail sync complete")

	return result, nil
}

func (e *Engine) syncMailbox(ctx context.Context, mb MailboxSnapshot, sinceUTC *time.Time, result *Result) error {
	mailboxID := mb.UpstreamID

	if err := e.withRetry(ctx, func() error {
		return e.DB.UpsertMailbox(store.Mailbox{
			ID: mailboxID, Account: mb.Account, Name: mb.Name, Path: mb.Path,
			MessageCount: mb.MessageCount, SyncedAt: time.Now(),
		})
	}); err != nil {
		return err
	}

	return e.Provider.IterMessages(ctx, mailboxID, sinceUTC, func(snap MailSnapshot) error {
		m := store.MailMessage{
			ID:              PublicMessageID(mailboxID, snap.UpstreamRowID, snap.MessageIDHeader),
			UpstreamRowID:   snap.UpstreamRowID,
			MessageIDHeader: snap.MessageIDHeader,
			Subject:         snap.Subject,
			SenderName:      snap.SenderName,
			SenderEmail:     snap.SenderEmail,
			Recipients:      snap.Recipients,
			DateSentUTC:     snap.DateSentUTC,
			MailboxID:       mailboxID,
			IsRead:          snap.IsRead,
			IsFlagged:       snap.IsFlagged,
			HasAttachments:  snap.HasAttachments,
			SourceFilePath:  snap.SourceFilePath,
			SyncedAt:        time.Now(),
		}

		if e.ExtractBodies && snap.HasAttachments && !strings.HasPrefix(snap.SourceFilePath, "ews:") && snap.SourceFilePath != "" {
			body, err := e.Provider.ReadMessageBody(ctx, snap.SourceFilePath)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: body extraction failed: %v", m.ID, err))
			} else {
				m.BodyText = body.Text
				m.BodyHTML = body.HTML
			}
		}

		_, existed := e.getExisting(m.ID)

		if err := e.withRetry(ctx, func() error { return e.DB.UpsertMessage(m) }); err != nil {
			if isFatalStoreErr(err) {
				return err
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", m.ID, err))
			return nil
		}

		if existed {
			result.Updated++
		} else {
			result.Added++
		}
		return nil
	})
}

func (e *Engine) getExisting(id string) (*store.MailMessage, bool) {
	m, err := e.DB.GetMessage(id)
	if err != nil {
		return nil, false
	}
	return m, true
}

func (e *Engine) withRetry(ctx context.Context, op func() error) error {
	if !e.Daemon {
		return op()
	}
	_, err := retry.Do(ctx, e.RetryPolicy, nil, func(int) error { return op() })
	return err
}

func isFatalStoreErr(err error) bool {
	se, ok := err.(*store.StoreError)
	return ok && se.Kind != store.ErrBusy
}

func (e *Engine) fail(msg string) {
	_ = e.DB.SetState(store.SyncFailed)
	_ = e.DB.SetSyncStatus(store.KeyLastSyncError, msg)
}

// PermissionError wraps a Source Provider access denial (spec.md §7).
type PermissionError struct {
	Cause error
}

func (e *PermissionError) Error() string {
	if e.Cause != nil {
		return "permission denied: " + e.Cause.Error()
	}
	return "permission denied"
}

func (e *PermissionError) Unwrap() error { return e.Cause }
