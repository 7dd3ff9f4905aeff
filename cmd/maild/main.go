// Command maild is the long-running daemon that drives the Mail Sync Engine
// (spec.md §4.G): one controller, one mirror database, one log file, woken
// by a periodic timer until the process receives SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/kestrelvault/mirror/internal/config"
	"github.com/kestrelvault/mirror/internal/daemon"
	"github.com/kestrelvault/mirror/internal/lockfile"
	"github.com/kestrelvault/mirror/internal/logging"
	"github.com/kestrelvault/mirror/internal/mailsync"
	"github.com/kestrelvault/mirror/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		logging.InitConsole(zerolog.InfoLevel)
		logging.WithComponent("maild").Fatal().Msg("usage: maild <vault-root>")
	}

	vault, err := config.Resolve(os.Args[1])
	if err != nil {
		logging.InitConsole(zerolog.InfoLevel)
		logging.WithComponent("maild").Fatal().Err(err).Msg("resolve vault")
	}

	logFile, err := os.OpenFile(vault.LogPath("maild"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logging.InitConsole(zerolog.InfoLevel)
		logging.WithComponent("maild").Fatal().Err(err).Msg("open log file")
	}
	defer logFile.Close()
	logging.InitFile(logFile, zerolog.InfoLevel)
	log := logging.WithComponent("maild")

	lock := lockfile.New(vault.LockPath("maild"))
	acquired, err := lock.TryLock()
	if err != nil {
		log.Fatal().Err(err).Msg("acquire mail mirror lock")
	}
	if !acquired {
		log.Fatal().Msg("another maild instance already holds the mail mirror lock")
	}
	defer lock.Unlock()

	pidPath := vault.PIDPath("maild")
	if err := daemon.WritePIDFile(pidPath); err != nil {
		log.Fatal().Err(err).Msg("write pid file")
	}
	defer daemon.RemovePIDFile(pidPath)

	db, err := store.Open(vault.MailDBPath(), store.MailMigrations)
	if err != nil {
		log.Fatal().Err(err).Msg("open mail database")
	}
	defer db.Close()

	provider, err := newSourceProvider()
	if err != nil {
		log.Fatal().Err(err).Msg("construct mail source provider")
	}

	engine := mailsync.NewEngine(db, provider)
	engine.Daemon = true
	ctrl := daemon.NewController("maild", db, func(ctx context.Context) error {
		_, err := engine.Sync(ctx)
		return err
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info().Str("vault_root", vault.Root).Msg("maild starting")
	if err := ctrl.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("controller stopped with error")
	}
	log.Info().Msg("maild stopped")
}
