package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/listenupapp/listenup-flags/internal/auth"
	"github.com/listenupapp/listenup-flags/internal/config"
	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/logger"
	"github.com/listenupapp/listenup-flags/internal/rules"
	"github.com/listenupapp/listenup-flags/internal/service"
	"github.com/listenupapp/listenup-flags/internal/store"
	"github.com/listenupapp/listenup-flags/internal/store/kv"
	"github.com/listenupapp/listenup-flags/internal/store/sqlite"
)

// Options holds the global flags and lazily opened resources shared by every
// subcommand.
type Options struct {
	ctx context.Context

	DataPath      string
	Driver        string
	LogLevel      string
	TokenDuration time.Duration
	NoColor       bool

	log   *logger.Logger
	store store.Store
	flags *service.FlagService
}

// NewOptions creates options bound to ctx.
func NewOptions(ctx context.Context) *Options {
	return &Options{ctx: ctx}
}

// NewRootCommand builds the flagctl command tree. Callers release opened
// resources with o.Close once the command returns.
func NewRootCommand(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flagctl",
		Short: "Manage flags, entities and flaggings",
		Long: `flagctl works directly on the data directory of a ListenUp flags
server. Stop the server before using it with the badger store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setNoColor(o.NoColor)
		},
	}

	cmd.PersistentFlags().StringVar(&o.DataPath, "data-path", defaultDataPath(), "directory holding the database and keys")
	cmd.PersistentFlags().StringVar(&o.Driver, "store", envOr("STORE_DRIVER", config.DriverSQLite), "store driver: sqlite or badger")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "warn", "log level for store diagnostics")
	cmd.PersistentFlags().DurationVar(&o.TokenDuration, "token-duration", 24*time.Hour, "lifetime of minted access tokens")
	cmd.PersistentFlags().BoolVar(&o.NoColor, "no-color", false, "disable colorized output")

	cmd.AddCommand(
		NewFlagsCommand(o),
		NewEntityCommand(o),
		NewFlagCommand(o),
		NewUnflagCommand(o),
		NewTokenCommand(o),
		NewActionsCommand(o),
	)

	return cmd
}

func defaultDataPath() string {
	if p := os.Getenv("DATA_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "flags")
	}
	return filepath.Join(home, "ListenUp", "flags")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Context returns the command context.
func (o *Options) Context() context.Context {
	if o.ctx == nil {
		return context.Background()
	}
	return o.ctx
}

// Logger returns the diagnostics logger, writing to stderr.
func (o *Options) Logger() *logger.Logger {
	if o.log == nil {
		o.log = logger.New(logger.Config{
			Writer:  os.Stderr,
			Format:  logger.FormatPretty,
			Level:   logger.ParseLevel(o.LogLevel),
			NoColor: o.NoColor,
		})
	}
	return o.log
}

// Store opens the configured store on first use.
func (o *Options) Store() (store.Store, error) {
	if o.store != nil {
		return o.store, nil
	}
	if err := os.MkdirAll(o.DataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	log := o.Logger().Component("store")
	var (
		s   store.Store
		err error
	)
	switch o.Driver {
	case config.DriverSQLite:
		s, err = sqlite.Open(filepath.Join(o.DataPath, "flags.db"), log)
	case config.DriverBadger:
		s, err = kv.Open(filepath.Join(o.DataPath, "flags.badger"), log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", o.Driver)
	}
	if err != nil {
		return nil, err
	}
	o.store = s
	return s, nil
}

// FlagService returns a flag service over the configured store.
// Events are not emitted; connected clients of a running server do not see
// changes made here.
func (o *Options) FlagService() (*service.FlagService, error) {
	if o.flags != nil {
		return o.flags, nil
	}
	s, err := o.Store()
	if err != nil {
		return nil, err
	}
	o.flags = service.NewFlagService(s, nil, o.Logger().Component("flags"))
	return o.flags, nil
}

// Actions returns the workflow action manager.
func (o *Options) Actions() (*rules.Manager, error) {
	flags, err := o.FlagService()
	if err != nil {
		return nil, err
	}
	return rules.NewManager(rules.NewDefaultRegistry(flags)), nil
}

// TokenService loads the server key from the data directory.
func (o *Options) TokenService() (*auth.TokenService, error) {
	key, err := auth.LoadOrGenerateKey(o.DataPath)
	if err != nil {
		return nil, err
	}
	return auth.NewTokenService(key, o.TokenDuration)
}

// Close releases the store if it was opened.
func (o *Options) Close() error {
	if o.store == nil {
		return nil
	}
	err := o.store.Close()
	o.store = nil
	o.flags = nil
	return err
}

// actorFlags registers --user and --session on cmd.
func actorFlags(cmd *cobra.Command, a *domain.Actor) {
	cmd.Flags().StringVar(&a.UserID, "user", "", "user id performing the operation")
	cmd.Flags().StringVar(&a.SessionID, "session", "", "anonymous session id performing the operation")
}

// resolve loads the flag and the entity it would apply to.
func resolve(ctx context.Context, flags *service.FlagService, flagID, entityArg string) (*domain.Flag, *domain.Entity, error) {
	entityID, err := parseEntityID(entityArg)
	if err != nil {
		return nil, nil, err
	}
	flag, err := flags.GetFlagByID(ctx, flagID)
	if err != nil {
		return nil, nil, err
	}
	entity, err := flags.GetFlaggableByID(ctx, flag, entityID)
	if err != nil {
		return nil, nil, err
	}
	return flag, entity, nil
}
