package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/celebrity-detector/internal/celebrity"
	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent identifications and questions",
	Long: `List the lookup history stored in DATABASE_URL, newest first.

Example:
  celebrity-detector history
  celebrity-detector history --name "Brad Pitt" --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("name", "", "Only show lookups of this celebrity")
	historyCmd.Flags().Int("limit", constants.DefaultHistoryLimit, "Maximum entries per section")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	hist, err := a.service.History(ctx, mustGetString(cmd, "name"), mustGetInt(cmd, "limit"))
	if errors.Is(err, celebrity.ErrHistoryDisabled) {
		return errors.New("DATABASE_URL environment variable is required for history")
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDENTIFIED\tNAME\tPROVIDER\tCACHED")
	for _, rec := range hist.Identifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Name, rec.Provider, rec.Cached)
	}
	w.Flush()

	if len(hist.Questions) == 0 {
		return nil
	}
	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ASKED\tNAME\tQUESTION\tANSWERED")
	for _, rec := range hist.Questions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Name, rec.Question, rec.Answered)
	}
	return w.Flush()
}
