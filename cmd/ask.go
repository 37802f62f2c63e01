package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask --name <celebrity> <question...>",
	Short: "Ask a question about a celebrity",
	Long: `Ask the configured LLM a free-text question about a named celebrity.

Example:
  celebrity-detector ask --name "Brad Pitt" "Which movies won him an Oscar?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("name", "", "Celebrity name (required)")
	_ = askCmd.MarkFlagRequired("name")
}

func runAsk(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(mustGetString(cmd, "name"))
	if name == "" {
		return errors.New("--name must not be empty")
	}

	ctx := context.Background()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.service.Ask(ctx, name, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Println(answer)
	printUsage(a.service.Usage())
	return nil
}
