package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kakeibo/internal/backend"
	"kakeibo/internal/cache"
	"kakeibo/internal/cli"
	"kakeibo/internal/cloudsync"
	"kakeibo/internal/config"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
	"kakeibo/internal/services"
)

var version = "dev"

// app is the ledger opened for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	tracker *services.Tracker
	cleanup backend.CleanupFunc
}

func (a *app) close() error {
	if a == nil {
		return nil
	}
	a.tracker.Close()
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	v.SetDefault("LOG_LEVEL", "warn")

	root := &cobra.Command{
		Use:           "kakeibo",
		Short:         "家計簿 - household expense ledger",
		Long:          "kakeibo records daily expenses, filters them by period and category,\nand summarises them by category and month.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	flags := root.PersistentFlags()
	flags.String("storage", "", "storage backend (memory, file, sqlite, postgres)")
	flags.String("file", "", "ledger file for the file backend")
	flags.String("sqlite", "", "database path for the sqlite backend")
	flags.String("sync", "", "sync transport (none, http, amqp)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	// Only flags set on the command line override the environment.
	_ = v.BindPFlag("STORAGE_BACKEND", flags.Lookup("storage"))
	_ = v.BindPFlag("LEDGER_FILE_PATH", flags.Lookup("file"))
	_ = v.BindPFlag("SQLITE_DB_PATH", flags.Lookup("sqlite"))
	_ = v.BindPFlag("SYNC_BACKEND", flags.Lookup("sync"))
	_ = v.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))

	open := func(cmd *cobra.Command) (*app, error) {
		return openApp(cmd.Context(), v, cmd.ErrOrStderr())
	}

	root.AddCommand(
		addCmd(open),
		deleteCmd(open),
		listCmd(open),
		summaryCmd(open),
		chartCmd(open),
		categoriesCmd(),
	)
	return root
}

// opener opens the configured ledger.
type opener func(cmd *cobra.Command) (*app, error)

// withApp runs fn against a freshly opened ledger and closes it afterwards,
// waiting for any upload the command started.
func withApp(open opener, fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := open(cmd)
		if err != nil {
			return err
		}
		return errors.Join(fn(cmd, args, a), a.close())
	}
}

func openApp(ctx context.Context, v *viper.Viper, stderr io.Writer) (*app, error) {
	cfg := config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Component = log.ComponentCLI
	logCfg.Output = stderr
	logger := log.New(logCfg)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	store := ledger.NewStore(res.Slot, ledger.WithLogger(logger))
	dispatcher := cloudsync.NewDispatcher(res.Publisher, cli.SyncOptions(cfg, logger))
	views := cache.NewLRUCache[*services.View](cfg.ViewCacheSize, cfg.ViewCacheTTL)
	tracker := services.NewTracker(store, dispatcher, views, logger)

	if result := tracker.Start(ctx); result == ledger.LoadRecoveredCorrupt {
		fmt.Fprintln(stderr, warningStyle.Render("保存データが破損していたため、初期化しました。"))
	}

	return &app{cfg: cfg, logger: logger, tracker: tracker, cleanup: res.Cleanup}, nil
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
