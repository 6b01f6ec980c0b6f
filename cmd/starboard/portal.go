package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dtroode/starboard/internal/datasync"
	"github.com/dtroode/starboard/internal/model"
	"github.com/dtroode/starboard/internal/service"
	"github.com/dtroode/starboard/internal/storage/cache"
)

func reportSave(cmd *cobra.Command, a *app, msg string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, color.GreenString("✓")+" "+msg)
	if a.orch.Status().LocalOnly() {
		fmt.Fprintln(out, color.YellowString("  saved locally only, remote tiers unreachable"))
	}
}

func newLoginCmd(getApp func() *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:     "login <username>",
		GroupID: "portal",
		Short:   "Log in to the teacher portal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			pw, err := a.secret(cmd, password, "Password: ")
			if err != nil {
				return err
			}

			tok, err := a.classroom.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if err := a.kv.Set(cache.SessionKey, tok); err != nil {
				return fmt.Errorf("failed to store session: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in as %s\n", color.GreenString("✓"), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		GroupID: "portal",
		Short:   "End the portal session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := getApp().kv.Delete(cache.SessionKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newClassCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "class",
		GroupID: "portal",
		Short:   "Manage classes",
	}

	var description string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a class",
		Args:  cobra.ExactArgs(1),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			if err := a.classroom.AddClass(cmd.Context(), args[0], description); err != nil {
				return err
			}
			reportSave(cmd, a, fmt.Sprintf("Class %q created", strings.TrimSpace(args[0])))
			return nil
		}),
	}
	add.Flags().StringVarP(&description, "description", "d", "", "class description")

	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a class and its students",
		Args:  cobra.ExactArgs(1),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			if err := a.classroom.RemoveClass(cmd.Context(), args[0]); err != nil {
				return err
			}
			reportSave(cmd, a, fmt.Sprintf("Class %q removed", args[0]))
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			classes := getApp().classroom.Classes()
			if len(classes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No classes yet.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CLASS\tSTUDENTS\tSTARS\tDESCRIPTION")
			for _, c := range classes {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", c.Name, c.Students, c.Stars, c.Description)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}

func newStudentCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "student",
		GroupID: "portal",
		Short:   "Manage students",
	}

	add := &cobra.Command{
		Use:   "add <class> <name>",
		Short: "Add a student to a class",
		Args:  cobra.ExactArgs(2),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			id, err := a.classroom.AddStudent(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			reportSave(cmd, a, fmt.Sprintf("Student added with id %s", id))
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "remove <class> <student-id>",
		Short: "Remove a student",
		Args:  cobra.ExactArgs(2),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			if err := a.classroom.RemoveStudent(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			reportSave(cmd, a, "Student removed")
			return nil
		}),
	}

	rename := &cobra.Command{
		Use:   "rename <class> <student-id> <name>",
		Short: "Rename a student",
		Args:  cobra.ExactArgs(3),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			if err := a.classroom.RenameStudent(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			reportSave(cmd, a, "Student renamed")
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list <class>",
		Short: "List the students of a class with their ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			standings, err := getApp().classroom.Leaderboard(args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTARS")
			for _, s := range standings {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", s.ID, s.Name, s.Stars)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, remove, rename, list)
	return cmd
}

func parseAmount(args []string) (int, error) {
	if len(args) < 3 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[2])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: amount must be a positive whole number", service.ErrInput)
	}
	return n, nil
}

func newStarsCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stars",
		GroupID: "portal",
		Short:   "Award or take away stars",
	}

	adjust := func(sign int) func(*cobra.Command, []string, *app, string) error {
		return func(cmd *cobra.Command, args []string, a *app, _ string) error {
			n, err := parseAmount(args)
			if err != nil {
				return err
			}
			stars, err := a.classroom.AdjustStars(cmd.Context(), args[0], args[1], sign*n)
			if err != nil {
				return err
			}
			reportSave(cmd, a, fmt.Sprintf("Stars now %d", stars))
			return nil
		}
	}

	add := &cobra.Command{
		Use:   "add <class> <student-id> [amount]",
		Short: "Award stars (default 1)",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  portal(getApp, adjust(1)),
	}
	remove := &cobra.Command{
		Use:   "remove <class> <student-id> [amount]",
		Short: "Take away stars (never below zero)",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  portal(getApp, adjust(-1)),
	}
	reset := &cobra.Command{
		Use:   "reset <class>",
		Short: "Set every student of a class to zero stars",
		Args:  cobra.ExactArgs(1),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			if err := a.classroom.ResetStars(cmd.Context(), args[0]); err != nil {
				return err
			}
			reportSave(cmd, a, fmt.Sprintf("Stars of %q reset", args[0]))
			return nil
		}),
	}

	cmd.AddCommand(add, remove, reset)
	return cmd
}

func newTeacherCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "teacher",
		GroupID: "portal",
		Short:   "Manage teacher accounts",
	}

	var password, confirmPassword string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a teacher account",
		Args:  cobra.ExactArgs(1),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			pw, err := a.secret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			confirmed, err := a.secret(cmd, confirmPassword, "Confirm password: ")
			if err != nil {
				return err
			}
			if err := a.classroom.AddTeacher(cmd.Context(), args[0], pw, confirmed); err != nil {
				return err
			}
			reportSave(cmd, a, fmt.Sprintf("Teacher %q added", args[0]))
			return nil
		}),
	}
	add.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	add.Flags().StringVar(&confirmPassword, "confirm", "", "password confirmation (prompted when omitted)")

	var oldPassword, newPassword, confirmNew string
	passwd := &cobra.Command{
		Use:   "passwd [username]",
		Short: "Change a password (defaults to the logged in teacher)",
		Args:  cobra.MaximumNArgs(1),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, username string) error {
			if len(args) == 1 {
				username = args[0]
			}
			current, err := a.secret(cmd, oldPassword, "Current password: ")
			if err != nil {
				return err
			}
			next, err := a.secret(cmd, newPassword, "New password: ")
			if err != nil {
				return err
			}
			confirmed, err := a.secret(cmd, confirmNew, "Confirm new password: ")
			if err != nil {
				return err
			}
			if err := a.classroom.ChangePassword(cmd.Context(), username, current, next, confirmed); err != nil {
				return err
			}
			reportSave(cmd, a, "Password changed")
			return nil
		}),
	}
	passwd.Flags().StringVar(&oldPassword, "old", "", "current password")
	passwd.Flags().StringVar(&newPassword, "new", "", "new password")
	passwd.Flags().StringVar(&confirmNew, "confirm", "", "new password confirmation")

	remove := &cobra.Command{
		Use:   "remove <username>",
		Short: "Delete a teacher account",
		Args:  cobra.ExactArgs(1),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, username string) error {
			if err := a.classroom.RemoveTeacher(cmd.Context(), args[0]); err != nil {
				return err
			}
			if args[0] == username {
				_ = a.kv.Delete(cache.SessionKey)
			}
			reportSave(cmd, a, fmt.Sprintf("Teacher %q removed", args[0]))
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List teacher usernames",
		Args:  cobra.NoArgs,
		RunE: portal(getApp, func(cmd *cobra.Command, _ []string, a *app, _ string) error {
			for _, name := range a.classroom.Teachers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}),
	}

	cmd.AddCommand(add, passwd, remove, list)
	return cmd
}

func newExportCmd(getApp func() *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "portal",
		Short:   "Write the whole document as JSON",
		Args:    cobra.NoArgs,
		RunE: portal(getApp, func(cmd *cobra.Command, _ []string, a *app, _ string) error {
			if out == "" || out == "-" {
				return a.classroom.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := a.classroom.Export(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", out)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when omitted)")
	return cmd
}

func newImportCmd(getApp func() *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "import <file>",
		GroupID: "portal",
		Short:   "Replace all data with a JSON export",
		Args:    cobra.ExactArgs(1),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			if !yes {
				ok, err := a.confirm(cmd, "This replaces all classes, teachers and settings. Continue?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
					return nil
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			if err := a.classroom.Import(cmd.Context(), f); err != nil {
				if errors.Is(err, model.ErrInvalidDocument) {
					return fmt.Errorf("import rejected: %w", err)
				}
				return err
			}
			reportSave(cmd, a, "Data imported")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newResetCmd(getApp func() *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "reset",
		GroupID: "portal",
		Short:   "Replace all data with the defaults",
		Args:    cobra.NoArgs,
		RunE: portal(getApp, func(cmd *cobra.Command, _ []string, a *app, _ string) error {
			if !yes {
				ok, err := a.confirm(cmd, "This deletes every class and teacher account. Continue?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled")
					return nil
				}
			}
			if err := a.classroom.Reset(cmd.Context()); err != nil {
				return err
			}
			_ = a.kv.Delete(cache.SessionKey)
			reportSave(cmd, a, "Data reset to defaults")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

// parseSettingValue turns command line text into a bool, an int or a string.
func parseSettingValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func newSettingsCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		GroupID: "portal",
		Short:   "Show or change settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc := getApp().orch.Data()
			a := doc.Settings.Achievements()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "theme:        %s\n", doc.Settings.String(model.SettingTheme, "light"))
			fmt.Fprintf(out, "soundEnabled: %t\n", doc.Settings.Bool(model.SettingSound, true))
			fmt.Fprintf(out, "autoBackup:   %t\n", doc.Settings.Bool(model.SettingAutoBackup, false))
			fmt.Fprintf(out, "achievements: bronze %d, silver %d, gold %d\n", a.Bronze, a.Silver, a.Gold)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Args:  cobra.ExactArgs(2),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			if err := a.classroom.UpdateSettings(cmd.Context(), args[0], parseSettingValue(args[1])); err != nil {
				return err
			}
			reportSave(cmd, a, fmt.Sprintf("%s updated", args[0]))
			return nil
		}),
	}

	achievements := &cobra.Command{
		Use:   "achievements <bronze> <silver> <gold>",
		Short: "Set the badge thresholds",
		Args:  cobra.ExactArgs(3),
		RunE: portal(getApp, func(cmd *cobra.Command, args []string, a *app, _ string) error {
			var values [3]int
			for i, raw := range args {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return fmt.Errorf("%w: thresholds must be whole numbers", service.ErrInput)
				}
				values[i] = n
			}
			err := a.classroom.UpdateAchievements(cmd.Context(), model.Achievements{
				Bronze: values[0],
				Silver: values[1],
				Gold:   values[2],
			})
			if err != nil {
				return err
			}
			reportSave(cmd, a, "Achievement thresholds updated")
			return nil
		}),
	}

	cmd.AddCommand(show, set, achievements)
	return cmd
}

func newSweepCmd(getApp func() *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:     "sweep",
		GroupID: "portal",
		Short:   "Repair data drift and write auto backups",
		Args:    cobra.NoArgs,
		RunE: portal(getApp, func(cmd *cobra.Command, _ []string, a *app, _ string) error {
			if watch {
				fmt.Fprintf(cmd.OutOrStdout(), "Sweeping every %s, press Ctrl+C to stop\n", a.cfg.SweepInterval)
				err := a.integrity.Run(cmd.Context(), a.cfg.SweepInterval)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			report, err := a.integrity.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !report.Changed() {
				fmt.Fprintln(out, "Nothing to repair")
			} else {
				fmt.Fprintf(out, "Repaired: %d timestamps, %d names, thresholds reset: %t\n",
					report.MissingTimestamps, report.TrimmedNames, report.ResetThresholds)
			}
			if report.BackupPath != "" {
				fmt.Fprintf(out, "Backup written to %s\n", report.BackupPath)
			}
			if a.orch.Status().LoadedFrom == datasync.SourceDefault {
				fmt.Fprintln(out, color.YellowString("(running on default data)"))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep sweeping on an interval")
	return cmd
}
