package main

import (
	"fmt"
	"os"

	"github.com/dbops/repart/plan"
	"github.com/dbops/repart/swap"
	"github.com/spf13/cobra"
)

var classifyCfg struct {
	config string
	table  string
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the swap state of each table and recommend recovery",
	Long: `Checks which of the original, backup and rebuilt tables exist in the
catalog and classifies the swap state: not started, successful,
interrupted, or one needing manual review. Renames auto-commit, so an
interrupted swap cannot be rolled back; this command tells the
operator where the sequence stopped. Exits 0 for healthy states and 2
for states that need attention.`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyCfg.config, "config", "c", "repart-plan.yml", "plan document path")
	classifyCmd.Flags().StringVarP(&classifyCfg.table, "table", "t", "", "restrict to a single table name")
}

func runClassify(cmd *cobra.Command, args []string) error {
	doc, err := plan.LoadDocument(classifyCfg.config)
	if err != nil {
		return err
	}

	cat, db, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	exitCode := 0
	for _, table := range doc.Tables {
		if !table.Enabled {
			continue
		}
		if classifyCfg.table != "" && table.TableName != classifyCfg.table {
			continue
		}

		existsOriginal, err := cat.TableExists(cmd.Context(), table.Owner, table.TableName)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", table.QualifiedName(), err)
		}
		existsBackup, err := cat.TableExists(cmd.Context(), table.Owner, table.BackupName())
		if err != nil {
			return fmt.Errorf("failed to check %s.%s: %w", table.Owner, table.BackupName(), err)
		}
		existsNew, err := cat.TableExists(cmd.Context(), table.Owner, table.NewName())
		if err != nil {
			return fmt.Errorf("failed to check %s.%s: %w", table.Owner, table.NewName(), err)
		}

		c := swap.Classify(existsOriginal, existsBackup, existsNew)
		fmt.Printf("%-40s %-15s %s\n", table.QualifiedName(), c.State, c.RecommendedAction)
		if code := c.State.ExitCode(); code > exitCode {
			exitCode = code
		}
	}

	os.Exit(exitCode)
	return nil
}
