package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// initScript is evaluated by the user's shell rc file:
//
//	eval "$(asksh init)"
const initScript = `# Generated by asksh init
ask() {
    if ! command -v asksh >/dev/null 2>&1; then
        printf "asksh binary not found in PATH\n" >&2
        return 1
    fi
    asksh ask "$@"
}
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Print the shell function for bash/zsh integration",
	Long:  "Prints an `ask` shell function. Add `eval \"$(asksh init)\"` to your shell rc file.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(initScript)
	},
}
