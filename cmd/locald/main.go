// Command locald is the long-running daemon that drives the Calendar Sync
// Engine (spec.md §4.G): one controller, one mirror database, wake-from-
// sleep rearm and upstream-change debounce, until SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/kestrelvault/mirror/internal/calsync"
	"github.com/kestrelvault/mirror/internal/config"
	"github.com/kestrelvault/mirror/internal/daemon"
	"github.com/kestrelvault/mirror/internal/lockfile"
	"github.com/kestrelvault/mirror/internal/logging"
	"github.com/kestrelvault/mirror/internal/platform"
	"github.com/kestrelvault/mirror/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		logging.InitConsole(zerolog.InfoLevel)
		logging.WithComponent("locald").Fatal().Msg("usage: locald <vault-root>")
	}

	vault, err := config.Resolve(os.Args[1])
	if err != nil {
		logging.InitConsole(zerolog.InfoLevel)
		logging.WithComponent("locald").Fatal().Err(err).Msg("resolve vault")
	}

	logFile, err := os.OpenFile(vault.LogPath("locald"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logging.InitConsole(zerolog.InfoLevel)
		logging.WithComponent("locald").Fatal().Err(err).Msg("open log file")
	}
	defer logFile.Close()
	logging.InitFile(logFile, zerolog.InfoLevel)
	log := logging.WithComponent("locald")

	lock := lockfile.New(vault.LockPath("locald"))
	acquired, err := lock.TryLock()
	if err != nil {
		log.Fatal().Err(err).Msg("acquire calendar mirror lock")
	}
	if !acquired {
		log.Fatal().Msg("another locald instance already holds the calendar mirror lock")
	}
	defer lock.Unlock()

	pidPath := vault.PIDPath("locald")
	if err := daemon.WritePIDFile(pidPath); err != nil {
		log.Fatal().Err(err).Msg("write pid file")
	}
	defer daemon.RemovePIDFile(pidPath)

	db, err := store.Open(vault.CalendarDBPath(), store.CalendarMigrations)
	if err != nil {
		log.Fatal().Err(err).Msg("open calendar database")
	}
	defer db.Close()

	provider, err := newSourceProvider()
	if err != nil {
		log.Fatal().Err(err).Msg("construct calendar source provider")
	}

	engine := calsync.NewEngine(db, provider)
	engine.Daemon = true
	ctrl := daemon.NewController("locald", db, func(ctx context.Context) error {
		_, err := engine.Sync(ctx)
		return err
	})
	ctrl.SleepWake = platform.NewManualMonitor()

	provider.SubscribeChangeNotifications(ctrl.TriggerChange)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info().Str("vault_root", vault.Root).Msg("locald starting")
	if err := ctrl.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("controller stopped with error")
	}
	log.Info().Msg("locald stopped")
}
