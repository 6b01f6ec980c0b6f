package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/starboard/internal/config"
)

type rootOptions struct {
	dataDir    string
	primaryURL string
	legacyURL  string
	backupDir  string
}

// newRootCmd builds the command tree. Commands open the app in
// PersistentPreRunE; the returned func closes it and must be called after
// Execute whether or not the command failed.
func newRootCmd() (*cobra.Command, func() error) {
	opts := &rootOptions{}
	var a *app

	root := &cobra.Command{
		Use:           "starboard",
		Short:         "Classroom star leaderboard",
		Long:          "Starboard keeps star counts for students in classes and shows a public leaderboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd == cmd.Root() {
				return nil
			}
			cfg, err := config.NewClientConfig()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, opts)

			a, err = newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			return err
		},
	}

	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "local data directory (env STARBOARD_DATA_DIR)")
	root.PersistentFlags().StringVar(&opts.primaryURL, "primary-url", "", "primary tier endpoint (env STARBOARD_PRIMARY_URL)")
	root.PersistentFlags().StringVar(&opts.legacyURL, "legacy-url", "", "legacy tier endpoint (env STARBOARD_LEGACY_URL)")
	root.PersistentFlags().StringVar(&opts.backupDir, "backup-dir", "", "snapshot directory for auto backups (env STARBOARD_BACKUP_DIR)")

	getApp := func() *app { return a }

	root.AddGroup(
		&cobra.Group{ID: "public", Title: "Public commands:"},
		&cobra.Group{ID: "portal", Title: "Teacher portal commands:"},
	)

	root.AddCommand(
		newLeaderboardCmd(getApp),
		newStatusCmd(getApp),
		newLoginCmd(getApp),
		newLogoutCmd(getApp),
		newClassCmd(getApp),
		newStudentCmd(getApp),
		newStarsCmd(getApp),
		newTeacherCmd(getApp),
		newExportCmd(getApp),
		newImportCmd(getApp),
		newResetCmd(getApp),
		newSettingsCmd(getApp),
		newSweepCmd(getApp),
	)

	closeApp := func() error {
		if a == nil {
			return nil
		}
		err := a.Close()
		a = nil
		return err
	}

	return root, closeApp
}

func applyFlags(cmd *cobra.Command, cfg *config.ClientConfig, opts *rootOptions) {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if flags.Changed("primary-url") {
		cfg.PrimaryURL = opts.primaryURL
	}
	if flags.Changed("legacy-url") {
		cfg.LegacyURL = opts.legacyURL
	}
	if flags.Changed("backup-dir") {
		cfg.BackupDir = opts.backupDir
	}
}

// portal wraps a command body so it only runs for a logged in teacher.
func portal(getApp func() *app, run func(cmd *cobra.Command, args []string, a *app, username string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := getApp()
		username, err := a.requireSession()
		if err != nil {
			return err
		}
		return run(cmd, args, a, username)
	}
}

// prompt writes label to the command output and reads one line of input.
func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	if a.input == nil {
		a.input = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := a.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) confirm(cmd *cobra.Command, question string) (bool, error) {
	answer, err := a.prompt(cmd, question+" [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// secret returns value when set, otherwise prompts for it.
func (a *app) secret(cmd *cobra.Command, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.prompt(cmd, label)
}
