package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/asksh/asksh/internal/config"
	"github.com/asksh/asksh/internal/timeline"
)

var (
	historyLimit    int
	historyCommands bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent turns and executed commands",
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries")
	historyCmd.Flags().BoolVarP(&historyCommands, "commands", "c", false, "Show executed commands instead of turns")
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	path := timelinePath(cfg)
	if path == "" {
		fmt.Fprintln(os.Stderr, "no timeline database configured")
		os.Exit(1)
	}
	tl, err := timeline.NewTimelineService(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer tl.Close()

	if historyCommands {
		printCommandHistory(tl)
		return
	}
	printTurnHistory(tl)
}

func printTurnHistory(tl *timeline.TimelineService) {
	turns, err := tl.RecentTurns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, t := range turns {
		disposition := t.Disposition
		if disposition == "" {
			disposition = "open"
		}
		fmt.Printf("%s  %s  %s\n",
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
			color.CyanString("%-17s", disposition),
			t.UserInput)
	}
}

func printCommandHistory(tl *timeline.TimelineService) {
	cmds, err := tl.RecentCommands(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, c := range cmds {
		status := color.GreenString("ok")
		if c.Failed {
			status = color.RedString("failed")
		}
		fmt.Printf("%s  %-6s  %s\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04"), status, c.Raw)
		if c.Justification != "" {
			fmt.Printf("    rerun: %s\n", c.Justification)
		}
	}
}
