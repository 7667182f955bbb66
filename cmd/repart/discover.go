package main

import (
	"fmt"
	"log/slog"
	"os/user"
	"time"

	"github.com/dbops/repart"
	"github.com/dbops/repart/discover"
	"github.com/dbops/repart/plan"
	"github.com/spf13/cobra"
)

var discoverCfg struct {
	schema      string
	include     []string
	exclude     []string
	concurrency int
	out         string
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover table metadata and write a plan document with inferred defaults",
	Long: `Reads table structure, constraints, indexes, LOB storage and statistics
from the Oracle catalog for every table in the schema, infers a target
partitioning configuration per table, and writes the result as an
editable YAML plan document.`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverCfg.schema, "schema", "", "schema owner to discover (required)")
	discoverCmd.Flags().StringSliceVar(&discoverCfg.include, "include", nil, "glob patterns of tables to include")
	discoverCmd.Flags().StringSliceVar(&discoverCfg.exclude, "exclude", nil, "glob patterns of tables to exclude")
	discoverCmd.Flags().IntVar(&discoverCfg.concurrency, "concurrency", 4, "tables discovered in parallel")
	discoverCmd.Flags().StringVarP(&discoverCfg.out, "out", "o", "repart-plan.yml", "output plan document path")
	discoverCmd.MarkFlagRequired("schema")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cat, db, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	d := discover.New(discover.Config{
		Catalog:     cat,
		Include:     discoverCfg.include,
		Exclude:     discoverCfg.exclude,
		Concurrency: discoverCfg.concurrency,
		Logger:      slog.Default(),
	})

	tables, tableErrs, err := d.Discover(cmd.Context(), discoverCfg.schema)
	if err != nil {
		return err
	}
	for _, te := range tableErrs {
		fmt.Printf("SKIPPED %s: %v\n", te.Table, te.Err)
	}

	doc := &repart.Document{
		Metadata: repart.DocumentMetadata{
			Schema:      discoverCfg.schema,
			GeneratedAt: time.Now(),
			GeneratedBy: currentUser(),
		},
		Tables: tables,
	}
	if err := plan.SaveDocument(discoverCfg.out, doc); err != nil {
		return err
	}

	fmt.Printf("discovered %d table(s), %d skipped; plan written to %s\n",
		len(tables), len(tableErrs), discoverCfg.out)
	return nil
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
