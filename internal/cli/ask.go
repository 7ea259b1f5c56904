package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/asksh/asksh/internal/turn"
)

var askSessionKey string

var askCmd = &cobra.Command{
	Use:   "ask [request...]",
	Short: "Ask a one-shot question (args, or stdin when piped)",
	Args:  cobra.ArbitraryArgs,
	Run:   runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSessionKey, "session", "s", "cli:default", "Session key")
}

func runAsk(cmd *cobra.Command, args []string) {
	input, err := readRequest(args, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rt, err := newRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.close()

	sess := rt.session(askSessionKey)

	res, err := rt.controller.Run(context.Background(), sess, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printResult(res)

	if err := rt.sessions.Save(sess); err != nil {
		fmt.Fprintf(os.Stderr, "session not saved: %v\n", err)
	}
}

// readRequest resolves the request text: positional args joined when
// present, otherwise the whole of stdin. This is what lets the emitted
// shell function pipe input into the binary.
func readRequest(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", errors.New("no request given (pass arguments or pipe text on stdin)")
	}
	return input, nil
}

func printResult(res *turn.Result) {
	for _, rec := range res.Executed {
		fmt.Printf("%s %s\n", color.GreenString("$"), rec.Raw)
		if rec.Result.Stdout != "" {
			fmt.Print(rec.Result.Stdout)
			if !strings.HasSuffix(rec.Result.Stdout, "\n") {
				fmt.Println()
			}
		}
		if rec.Result.Stderr != "" {
			fmt.Fprintln(os.Stderr, strings.TrimSpace(rec.Result.Stderr))
		}
	}
	if res.Reply != "" {
		fmt.Println(res.Reply)
	}
	if res.Disposition != turn.DispositionCompleted {
		fmt.Println(color.YellowString("(%s)", res.Disposition))
	}
}
