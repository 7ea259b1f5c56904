package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/asksh/asksh/internal/cli.version=1.2.3"
	version = "0.9.0"
	logo    = "\n" +
		"               _        _\n" +
		"   __ _  ___ | | __ ___| |__\n" +
		"  / _` |/ __|| |/ // __| '_ \\\n" +
		" | (_| |\\__ \\|   < \\__ \\ | | |\n" +
		"  \\__,_||___/|_|\\_\\|___/_| |_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "asksh",
	Short: "asksh - AI shell assistant",
	Long:  color.CyanString(logo) + "\nAsk your terminal in plain language; it answers with vetted shell commands.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
