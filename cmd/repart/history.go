package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCfg struct {
	schema string
	limit  int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect persisted run reports",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs for a schema",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run report with per-table outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run report",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	historyListCmd.Flags().StringVar(&historyCfg.schema, "schema", "", "schema owner (required)")
	historyListCmd.Flags().IntVar(&historyCfg.limit, "limit", 20, "maximum runs to list")
	historyListCmd.MarkFlagRequired("schema")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	history, closeHistory, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer closeHistory()
	if history == nil {
		return fmt.Errorf("no history backend configured; set --history-driver")
	}

	reports, err := history.ListRuns(cmd.Context(), historyCfg.schema, historyCfg.limit)
	if err != nil {
		return err
	}
	for _, report := range reports {
		fmt.Printf("%s  %s  started %s  took %s\n",
			report.ID, report.Schema,
			report.StartedAt.Format("2006-01-02 15:04:05"),
			report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	history, closeHistory, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer closeHistory()
	if history == nil {
		return fmt.Errorf("no history backend configured; set --history-driver")
	}

	report, err := history.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run %s  schema %s  status %s\n", report.ID, report.Schema, report.Status())
	for _, outcome := range report.Outcomes {
		fmt.Printf("  %-9s %s.%s\n", outcome.Status, outcome.Owner, outcome.TableName)
		for _, res := range outcome.Results {
			fmt.Printf("    %-9s %s\n", res.Status, res.Message)
		}
		if outcome.Err != "" {
			fmt.Printf("    error: %s\n", outcome.Err)
		}
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	history, closeHistory, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer closeHistory()
	if history == nil {
		return fmt.Errorf("no history backend configured; set --history-driver")
	}

	if err := history.DeleteRun(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Println("deleted", args[0])
	return nil
}
