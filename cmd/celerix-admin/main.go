package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/celerix-dev/celerix-admin/internal/config"
	"github.com/celerix-dev/celerix-admin/internal/engine"
	"github.com/celerix-dev/celerix-admin/internal/logging"
	"github.com/celerix-dev/celerix-admin/pkg/sdk"
)

// app carries the state shared by every command of one invocation.
type app struct {
	cfg     config.Config
	logData *logging.LogData
	log     zerolog.Logger
	store   sdk.AdminStore
	verbose bool
}

func main() {
	a := newApp()
	if err := a.execute(a.rootCmd()); err != nil {
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{log: zerolog.Nop()}
}

// execute runs root and releases the store and the log file afterwards,
// whether or not the command failed.
func (a *app) execute(root *cobra.Command) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {

	root := &cobra.Command{
		Use:   "celerix-admin",
		Short: "Browse and export the admin panel data",
		Long: `celerix-admin reads the admin panel collections, dashboard and settings.

It talks to a running celerix-admind when CELERIX_STORE_ADDR (or store_addr in
the config file) is set and reachable, and opens the data directory directly
otherwise.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := cfg.Log.Level
			if a.verbose {
				level = "debug"
			}
			build := logging.New().Level(level).Pretty(cfg.Log.Pretty)
			if cfg.Log.Path != "" {
				build = build.FromPath(cfg.Log.Path)
			} else {
				build = build.FromBuffer(cmd.ErrOrStderr())
			}
			a.logData, err = build.Make()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log = a.logData.Logger
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.optionsCmd(),
		a.boardCmd(),
		a.dashboardCmd(),
		a.exportCmd(),
		a.settingsCmd(),
		a.backupCmd(),
		a.tuiCmd(),
		a.pingCmd(),
		a.configCmd(),
	)
	return root
}

// open returns the configured store, remote or embedded.
func (a *app) open() (sdk.AdminStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := sdk.Open(sdk.Options{
		Addr:       a.cfg.StoreAddr,
		DisableTLS: a.cfg.DisableTLS,
		DataDir:    a.cfg.DataDir,
		Logger:     a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = s
	return s, nil
}

// openLocal opens the data directory directly, for commands that need the
// stateful list pages only the embedded catalog offers.
func (a *app) openLocal() (*engine.Catalog, error) {
	p, err := engine.NewPersistence(a.cfg.DataDir, a.log)
	if err != nil {
		return nil, err
	}
	c, err := engine.Open(p, a.log)
	if err != nil {
		return nil, err
	}
	a.store = c
	return c, nil
}

func (a *app) close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.logData != nil {
		if cerr := a.logData.Close(); err == nil {
			err = cerr
		}
		a.logData = nil
	}
	return err
}
