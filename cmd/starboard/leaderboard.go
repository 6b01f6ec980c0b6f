package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dtroode/starboard/internal/service"
)

var badgeColors = map[string]*color.Color{
	"gold":   color.New(color.FgYellow, color.Bold),
	"silver": color.New(color.FgHiWhite),
	"bronze": color.New(color.FgRed),
}

func renderBadge(badge string) string {
	c, ok := badgeColors[badge]
	if !ok {
		return ""
	}
	return c.Sprint("★ " + badge)
}

func renderLeaderboard(w io.Writer, standings []service.Standing, showClass bool) {
	if len(standings) == 0 {
		fmt.Fprintln(w, "No students yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"RANK", "NAME", "STARS", "BADGE"}
	if showClass {
		header = append([]string{"RANK", "CLASS"}, header[1:]...)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, s := range standings {
		row := []string{fmt.Sprint(s.Rank), s.Name, fmt.Sprint(s.Stars), renderBadge(s.Badge)}
		if showClass {
			row = append([]string{fmt.Sprint(s.Rank), s.Class}, row[1:]...)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func newLeaderboardCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:     "leaderboard [class]",
		Aliases: []string{"board"},
		GroupID: "public",
		Short:   "Show students ranked by stars",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			class := ""
			if len(args) == 1 {
				class = args[0]
			}

			standings, err := a.classroom.Leaderboard(class)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderLeaderboard(out, standings, class == "")
			if a.orch.Status().LoadedLocally() {
				fmt.Fprintln(out, color.YellowString("(local data only)"))
			}
			return nil
		},
	}
}

func newStatusCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: "public",
		Short:   "Show where the data was loaded from",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			status := a.orch.Status()
			doc := a.orch.Data()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded from:   %s\n", status.LoadedFrom)
			fmt.Fprintf(out, "Version:       %s\n", doc.Metadata.Version)
			fmt.Fprintf(out, "Last modified: %s\n", doc.Metadata.LastModified.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Saves:         %d\n", doc.Metadata.BackupCount)
			fmt.Fprintf(out, "Classes:       %d\n", len(doc.Classes))
			fmt.Fprintf(out, "Data dir:      %s\n", a.cfg.DataDir)

			if username, err := a.requireSession(); err == nil {
				fmt.Fprintf(out, "Logged in as:  %s\n", username)
			}
			return nil
		},
	}
}
