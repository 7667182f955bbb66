package main

import (
	"fmt"
	"os"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
	"github.com/dbops/repart/plan"
	"github.com/dbops/repart/validate"
	"github.com/spf13/cobra"
)

var validateCfg struct {
	config     string
	staticOnly bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a plan document statically and against the live catalog",
	Long: `Runs structural validation over every enabled table in the plan
document, then checks the plan against the live catalog unless
--static-only is given. Exits 0 when all tables pass, 1 on any
failure, 2 on warnings only.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateCfg.config, "config", "c", "repart-plan.yml", "plan document path")
	validateCmd.Flags().BoolVar(&validateCfg.staticOnly, "static-only", false, "skip live catalog checks")
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, err := plan.LoadDocument(validateCfg.config)
	if err != nil {
		return err
	}

	var cat catalog.Catalog
	if !validateCfg.staticOnly {
		c, db, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		cat = c
	}

	var results []repart.ValidationResult
	for _, table := range doc.Tables {
		if !table.Enabled {
			continue
		}
		plan.ApplyDefaults(&table)
		results = append(results, validate.Static(table)...)
		if cat != nil {
			results = append(results, validate.Dynamic(cmd.Context(), table, cat)...)
		}
	}

	printResults(results)
	os.Exit(reduceStatus(results).ExitCode())
	return nil
}

func printResults(results []repart.ValidationResult) {
	for _, res := range results {
		fmt.Printf("%-9s %-40s %s\n", res.Status, res.TableRef, res.Message)
	}
}

// reduceStatus collapses findings to one status: FAILED/ERROR dominate,
// then WARNING, then PASSED.
func reduceStatus(results []repart.ValidationResult) repart.ValidationStatus {
	status := repart.StatusPassed
	for _, res := range results {
		switch res.Status {
		case repart.StatusFailed, repart.StatusError:
			return repart.StatusFailed
		case repart.StatusWarning:
			status = repart.StatusWarning
		}
	}
	return status
}
