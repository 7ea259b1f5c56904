package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatSessionKey string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Run:   runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionKey, "session", "s", "cli:default", "Session key")
}

func runChat(cmd *cobra.Command, args []string) {
	rt, err := newRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.close()

	printHeader("asksh chat (exit with /quit)")
	sess := rt.session(chatSessionKey)
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print(color.CyanString("you> "))
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			break
		}
		if input == "/clear" {
			sess.Clear()
			fmt.Println("session cleared")
			continue
		}

		res, err := rt.controller.Run(context.Background(), sess, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		printResult(res)

		if err := rt.sessions.Save(sess); err != nil {
			fmt.Fprintf(os.Stderr, "session not saved: %v\n", err)
		}
	}
}
