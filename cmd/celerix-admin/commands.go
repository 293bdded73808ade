package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"

	"github.com/celerix-dev/celerix-admin/internal/config"
	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/internal/engine"
	"github.com/celerix-dev/celerix-admin/internal/export"
	"github.com/celerix-dev/celerix-admin/internal/tui"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
	"github.com/celerix-dev/celerix-admin/pkg/sdk"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// queryFlags binds --query and repeated --filter name=value flags.
func queryFlags(cmd *cobra.Command, q *listing.Query) {
	cmd.Flags().StringVarP(&q.Text, "query", "q", "", "search text")
	cmd.Flags().StringToStringVarP(&q.Filters, "filter", "f", nil, "filter as name=value, repeatable")
}

func (a *app) listCmd() *cobra.Command {
	var q listing.Query
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Print the records of a collection passing the search and filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			records, err := s.List(args[0], q)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), records); err != nil {
				return err
			}
			if q.Text != "" && isEmpty(records) {
				if hint, err := s.Suggest(args[0], q.Text); err == nil && hint != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Возможно, вы искали: %s\n", hint)
				}
			}
			return nil
		},
	}
	queryFlags(cmd, &q)
	return cmd
}

// isEmpty reports whether a List result holds no records, whatever its
// element type.
func isEmpty(records any) bool {
	b, err := json.Marshal(records)
	return err == nil && string(b) == "[]"
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <collection> <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			rec, err := s.Get(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func (a *app) optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options <collection> <filter>",
		Short: "List the selectable values of a filter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			opts, err := s.Options(args[0], args[1])
			if err != nil {
				return err
			}
			for _, o := range opts {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		},
	}
}

func (a *app) boardCmd() *cobra.Command {
	var q listing.Query
	var field string
	cmd := &cobra.Command{
		Use:   "board [collection]",
		Short: "Group records into board columns, tasks by status by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := schema.TasksCollection
			if len(args) == 1 {
				collection = args[0]
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			groups, err := sdk.Board[map[string]any](s, collection, field, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range groups {
				heading := g.Key
				if collection == schema.TasksCollection && field == "status" {
					heading = schema.TaskStatusLabel(g.Key)
				}
				fmt.Fprintf(out, "%s (%d)\n", heading, len(g.Records))
				for _, r := range g.Records {
					fmt.Fprintf(out, "  %v %v\n", r["id"], title(r))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "by", "status", "filter to group by")
	queryFlags(cmd, &q)
	return cmd
}

// title is the display name of a generic record.
func title(r map[string]any) any {
	if t, ok := r["title"]; ok {
		return t
	}
	return r["name"]
}

func (a *app) dashboardCmd() *cobra.Command {
	var f dashboard.Filter
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard for a period and breakdown filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			view, err := s.Dashboard(f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
	dashboardFlags(cmd, &f)
	return cmd
}

func dashboardFlags(cmd *cobra.Command, f *dashboard.Filter) {
	cmd.Flags().StringVar(&f.From, "from", "", "period start, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.To, "to", "", "period end, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.City, "city", "", "city breakdown filter")
	cmd.Flags().StringVar(&f.Service, "service", "", "service type filter")
	cmd.Flags().StringVar(&f.ClientType, "client-type", "", "client type filter")
}

func (a *app) exportCmd() *cobra.Command {
	var q listing.Query
	var f dashboard.Filter
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <collection|dashboard>",
		Short: "Export a filtered collection or the dashboard report",
		Long: fmt.Sprintf(`Export writes the rows of a collection, or the dashboard report, as one of
%v. Without --out the file is named after the collection and today's date.
Use --out - for stdout.`, export.Formats()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := export.Lookup(format)
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}

			var t export.Table
			var base string
			if args[0] == engine.DashboardFile {
				view, err := s.Dashboard(f)
				if err != nil {
					return err
				}
				t, base = dashboard.Report(view.Dataset, time.Now())
			} else {
				t, err = s.Table(args[0], q)
				if err != nil {
					return err
				}
				base = args[0] + "-" + time.Now().Format(time.DateOnly)
			}

			if out == "-" {
				return w.Write(cmd.OutOrStdout(), t)
			}
			if out == "" {
				out = export.Filename(base, w)
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := w.Write(file, t); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			a.log.Info().Str("file", out).Int("rows", len(t.Rows)).Msg("exported")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "output format")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	queryFlags(cmd, &q)
	dashboardFlags(cmd, &f)
	return cmd
}

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show, replace or reset the administrator settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.open()
				if err != nil {
					return err
				}
				settings, err := s.Settings()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), settings)
			},
		},
		&cobra.Command{
			Use:   "set <json>",
			Short: "Replace the settings with a validated JSON document",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var settings schema.Settings
				if err := json.Unmarshal([]byte(args[0]), &settings); err != nil {
					return fmt.Errorf("invalid settings json: %w", err)
				}
				if err := binding.Validator.ValidateStruct(&settings); err != nil {
					return err
				}
				s, err := a.open()
				if err != nil {
					return err
				}
				if err := s.SaveSettings(settings); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the factory settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.open()
				if err != nil {
					return err
				}
				settings, err := s.ResetSettings()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), settings)
			},
		},
	)
	return cmd
}

func (a *app) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dir>",
		Short: "Copy every collection, the dashboard and the settings into dir",
		Long: `Backup writes one JSON file per collection, dashboard.json and settings.json.
The directory can be used as the data_dir of an offline catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			p, err := engine.NewPersistence(args[0], a.log)
			if err != nil {
				return err
			}
			if err := engine.Backup(s, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", args[0])
			return nil
		},
	}
}

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the collections in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openLocal()
			if err != nil {
				return err
			}
			return tui.Run(c)
		},
	}
}

func (a *app) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured daemon answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.StoreAddr == "" {
				return errors.New("store_addr is not configured")
			}
			client, err := sdk.Dial(sdk.Options{Addr: a.cfg.StoreAddr, DisableTLS: a.cfg.DisableTLS, Logger: a.log})
			if err != nil {
				return err
			}
			a.store = client
			if err := client.Ping(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PONG")
			return nil
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", config.Path())
				return printJSON(cmd.OutOrStdout(), a.cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the effective configuration to the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path := config.Path()
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists", path)
				}
				if err := config.Save(a.cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), filepath.Clean(path))
				return nil
			},
		},
	)
	return cmd
}
