package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dbops/repart/pipeline"
	"github.com/dbops/repart/plan"
	"github.com/spf13/cobra"
)

var generateCfg struct {
	config      string
	out         string
	concurrency int
	offline     bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Validate the plan and generate DDL artifacts per table",
	Long: `Runs the full pipeline over the plan document: default inference,
static and dynamic validation, then DDL artifact generation. Each table
gets its own artifact directory with numbered phase scripts and an
orchestrator script. Tables that fail validation are reported and
skipped; they never block their siblings.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateCfg.config, "config", "c", "repart-plan.yml", "plan document path")
	generateCmd.Flags().StringVarP(&generateCfg.out, "out", "o", "artifacts", "artifact output directory")
	generateCmd.Flags().IntVar(&generateCfg.concurrency, "concurrency", 4, "tables processed in parallel")
	generateCmd.Flags().BoolVar(&generateCfg.offline, "offline", false, "skip live catalog checks during generation")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	doc, err := plan.LoadDocument(generateCfg.config)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		OutputDir:   generateCfg.out,
		Concurrency: generateCfg.concurrency,
		Logger:      slog.Default(),
	}

	if !generateCfg.offline {
		cat, db, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		cfg.Catalog = cat
	}

	history, closeHistory, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer closeHistory()
	cfg.Store = history

	report, err := pipeline.New(cfg).Run(cmd.Context(), doc)
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished with status %s\n", report.ID, report.Status())
	for _, outcome := range report.Outcomes {
		line := fmt.Sprintf("%-9s %s.%s", outcome.Status, outcome.Owner, outcome.TableName)
		if outcome.Err != "" {
			line += ": " + outcome.Err
		}
		fmt.Println(line)
	}

	os.Exit(report.Status().ExitCode())
	return nil
}
