// Package cli implements clinicctl, a terminal front end that drives the
// same scheduling controller as the HTTP API.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jwalitptl/clinic-calendar/config"
	"github.com/jwalitptl/clinic-calendar/internal/app"
	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/internal/service/calendar"
	"github.com/jwalitptl/clinic-calendar/internal/service/scheduling"
	"github.com/jwalitptl/clinic-calendar/internal/worker"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/security"
)

// RootOptions are the flags shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// FilterOptions select which appointments are shown.
type FilterOptions struct {
	Doctor  string
	Patient string
}

func (o *FilterOptions) criteria() (model.FilterCriteria, error) {
	switch {
	case o.Doctor != "" && o.Patient != "":
		return model.FilterCriteria{}, errors.New("--doctor and --patient are mutually exclusive")
	case o.Doctor != "":
		return model.FilterCriteria{Kind: model.FilterDoctor, Value: o.Doctor}, nil
	case o.Patient != "":
		return model.FilterCriteria{Kind: model.FilterPatient, Value: o.Patient}, nil
	default:
		return model.FilterCriteria{Kind: model.FilterAll}, nil
	}
}

func addFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVar(&o.Doctor, "doctor", "", "Only show appointments whose doctor contains this text.")
	cmd.Flags().StringVar(&o.Patient, "patient", "", "Only show appointments whose patient contains this text.")
}

// AppointmentOptions carry form fields.
type AppointmentOptions struct {
	Patient string
	Doctor  string
	Time    string
}

func addAppointmentArgs(cmd *cobra.Command, o *AppointmentOptions) {
	cmd.Flags().StringVarP(&o.Patient, "patient", "p", "", "Patient name.")
	cmd.Flags().StringVarP(&o.Doctor, "doctor", "d", "", "Doctor name.")
	cmd.Flags().StringVarP(&o.Time, "time", "t", "", "Time as HH:MM.")
}

// New returns the clinicctl root command.
func New() *cobra.Command {
	ro := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "clinicctl",
		Short:         "Manage clinic appointments from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&ro.ConfigPath, "config", "", "Path to config.yaml.")
	cmd.PersistentFlags().BoolVarP(&ro.Verbose, "verbose", "v", false, "Log debug output to stderr.")

	addAdd(cmd, ro)
	addEdit(cmd, ro)
	addRm(cmd, ro)
	addList(cmd, ro)
	addGrid(cmd, ro)
	addExport(cmd, ro)
	addDirectory(cmd, ro)
	addBackup(cmd, ro)
	addRestore(cmd, ro)
	addConfig(cmd)
	addHashPassword(cmd)
	return cmd
}

// open loads configuration and the appointment collection.
func open(cmd *cobra.Command, ro *RootOptions) (*app.App, error) {
	cfg, err := config.Load(ro.ConfigPath)
	if err != nil {
		return nil, err
	}
	level := logger.WarnLevel
	if ro.Verbose {
		level = logger.DebugLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.Kitchen,
		Output:     cmd.ErrOrStderr(),
		Pretty:     true,
	})
	return app.New(cmd.Context(), cfg, log)
}

func withApp(cmd *cobra.Command, ro *RootOptions, fn func(ctx context.Context, a *app.App) error) error {
	a, err := open(cmd, ro)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, a)
}

func dispatch(ctx context.Context, ctrl *scheduling.Controller, intents ...scheduling.Intent) error {
	for _, in := range intents {
		if err := ctrl.Dispatch(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || !model.ValidDay(day) {
		return 0, fmt.Errorf("invalid day %q, want %d-%d", s, model.MinDay, model.MaxDay)
	}
	return day, nil
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return index, nil
}

func addAdd(topLevel *cobra.Command, ro *RootOptions) {
	ao := &AppointmentOptions{}

	cmd := &cobra.Command{
		Use:   "add DAY",
		Short: "Add an appointment to a day of the month.",
		Example: `
clinicctl add 14 --patient "Jo Bloggs" --doctor "Dr. Lee" --time 09:30
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, ro, func(ctx context.Context, a *app.App) error {
				err := dispatch(ctx, a.Controller,
					scheduling.Intent{Kind: scheduling.IntentOpenCreate, Day: day},
					scheduling.Intent{Kind: scheduling.IntentSubmit, Appointment: model.Appointment{
						Patient: ao.Patient, Doctor: ao.Doctor, Time: ao.Time,
					}},
				)
				if err != nil {
					return err
				}
				p := &Printer{Out: cmd.OutOrStdout()}
				p.Day(day, a.Controller.Day(day))
				return nil
			})
		},
	}
	addAppointmentArgs(cmd, ao)
	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command, ro *RootOptions) {
	ao := &AppointmentOptions{}

	cmd := &cobra.Command{
		Use:   "edit DAY INDEX",
		Short: "Change an appointment. Fields not given keep their value.",
		Example: `
clinicctl edit 14 0 --time 10:00
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, ro, func(ctx context.Context, a *app.App) error {
				err := dispatch(ctx, a.Controller, scheduling.Intent{Kind: scheduling.IntentOpenEdit, Day: day, Index: index})
				if err != nil {
					return err
				}

				draft := a.Controller.State().Draft
				if cmd.Flags().Changed("patient") {
					draft.Patient = ao.Patient
				}
				if cmd.Flags().Changed("doctor") {
					draft.Doctor = ao.Doctor
				}
				if cmd.Flags().Changed("time") {
					draft.Time = ao.Time
				}

				if err := dispatch(ctx, a.Controller, scheduling.Intent{Kind: scheduling.IntentSubmit, Appointment: draft}); err != nil {
					return err
				}
				p := &Printer{Out: cmd.OutOrStdout()}
				p.Day(day, a.Controller.Day(day))
				return nil
			})
		},
	}
	addAppointmentArgs(cmd, ao)
	topLevel.AddCommand(cmd)
}

func addRm(topLevel *cobra.Command, ro *RootOptions) {
	cmd := &cobra.Command{
		Use:     "rm DAY INDEX",
		Aliases: []string{"delete"},
		Short:   "Remove an appointment.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, ro, func(ctx context.Context, a *app.App) error {
				if err := dispatch(ctx, a.Controller, scheduling.Intent{Kind: scheduling.IntentDelete, Day: day, Index: index}); err != nil {
					return err
				}
				p := &Printer{Out: cmd.OutOrStdout()}
				p.Day(day, a.Controller.Day(day))
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addList(topLevel *cobra.Command, ro *RootOptions) {
	fo := &FilterOptions{}

	cmd := &cobra.Command{
		Use:     "list [DAY]",
		Aliases: []string{"ls"},
		Short:   "List appointments of one day, or of every day that has some.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := fo.criteria()
			if err != nil {
				return err
			}
			var days []int
			if len(args) == 1 {
				day, err := parseDay(args[0])
				if err != nil {
					return err
				}
				days = []int{day}
			}
			return withApp(cmd, ro, func(ctx context.Context, a *app.App) error {
				if err := dispatch(ctx, a.Controller, scheduling.Intent{Kind: scheduling.IntentFilterChanged, Filter: criteria}); err != nil {
					return err
				}
				if days == nil {
					days = a.Controller.Snapshot().Days()
				}
				p := &Printer{Out: cmd.OutOrStdout()}
				for _, day := range days {
					list := a.Controller.Day(day)
					if len(args) == 0 && len(list) == 0 {
						continue
					}
					p.Day(day, list)
				}
				return nil
			})
		},
	}
	addFilterArgs(cmd, fo)
	topLevel.AddCommand(cmd)
}

func addGrid(topLevel *cobra.Command, ro *RootOptions) {
	fo := &FilterOptions{}
	var month string

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the month grid, marking days with appointments.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := fo.criteria()
			if err != nil {
				return err
			}
			return withApp(cmd, ro, func(ctx context.Context, a *app.App) error {
				anchor, err := calendar.ParseMonth(month, a.Builder.Now())
				if err != nil {
					return err
				}
				if err := dispatch(ctx, a.Controller, scheduling.Intent{Kind: scheduling.IntentFilterChanged, Filter: criteria}); err != nil {
					return err
				}
				p := &Printer{Out: cmd.OutOrStdout()}
				p.Month(a.Controller.MonthView(anchor))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM. Defaults to the current month.")
	addFilterArgs(cmd, fo)
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command, ro *RootOptions) {
	var month, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a month of appointments as an iCalendar file.",
		Example: `
clinicctl export --month 2026-10 -o october.ics
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, ro, func(ctx context.Context, a *app.App) error {
				anchor, err := calendar.ParseMonth(month, a.Builder.Now())
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := a.Exporter.Month(&buf, anchor, a.Controller.Snapshot()); err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = io.Copy(cmd.OutOrStdout(), &buf)
					return err
				}
				path, err := homedir.Expand(output)
				if err != nil {
					return err
				}
				return os.WriteFile(path, buf.Bytes(), 0o600)
			})
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM. Defaults to the current month.")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write. Defaults to stdout.")
	topLevel.AddCommand(cmd)
}

func addDirectory(topLevel *cobra.Command, ro *RootOptions) {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Show the configured patients and doctors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, ro, func(_ context.Context, a *app.App) error {
				p := &Printer{Out: cmd.OutOrStdout()}
				p.Directory(a.Directory())
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addBackup(topLevel *cobra.Command, ro *RootOptions) {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the persisted appointments to the backup slot.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, ro, func(ctx context.Context, a *app.App) error {
				if err := worker.Backup(ctx, a.Slot, a.Adapter.Key()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "backed up %s to %s\n", a.Adapter.Key(), worker.BackupKey(a.Adapter.Key()))
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addRestore(topLevel *cobra.Command, ro *RootOptions) {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the persisted appointments with the backup slot.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, ro, func(ctx context.Context, a *app.App) error {
				if err := worker.Restore(ctx, a.Slot, a.Adapter.Key()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "restored %s from %s\n", a.Adapter.Key(), worker.BackupKey(a.Adapter.Key()))
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addConfig(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file.",
	}

	initCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the default configuration. Defaults to ~/.clinic-calendar/config.yaml.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join("~", ".clinic-calendar", "config.yaml")
			if len(args) == 1 {
				path = args[0]
			}
			expanded, err := homedir.Expand(path)
			if err != nil {
				return err
			}
			if err := config.WriteDefault(expanded); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", expanded)
			return nil
		},
	}
	cmd.AddCommand(initCmd)
	topLevel.AddCommand(cmd)
}

func addHashPassword(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password and print the bcrypt hash for auth.password_hash.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			hash, err := security.NewBcryptHasher(0).Hash(password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1024))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	line, _, _ := strings.Cut(string(b), "\n")
	return strings.TrimRight(line, "\r"), nil
}
