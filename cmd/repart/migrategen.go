package main

import (
	"fmt"
	"path/filepath"

	"github.com/dbops/repart/migrations"
	"github.com/spf13/cobra"
)

var migrateGenCfg struct {
	dialect string
	out     string
}

var migrateGenCmd = &cobra.Command{
	Use:   "migrate-gen",
	Short: "Generate the run history schema migration for a store backend",
	Long: `Writes the SQL migration that creates the run history tables for the
chosen backend (postgres, mysql or sqlite). Apply it with your usual
migration tooling before pointing --history-driver at the database.`,
	RunE: runMigrateGen,
}

func init() {
	rootCmd.AddCommand(migrateGenCmd)

	migrateGenCmd.Flags().StringVar(&migrateGenCfg.dialect, "dialect", "postgres", "target dialect: postgres, mysql or sqlite")
	migrateGenCmd.Flags().StringVarP(&migrateGenCfg.out, "out", "o", "migrations", "output directory")
}

func runMigrateGen(cmd *cobra.Command, args []string) error {
	config := migrations.DefaultConfig()
	config.OutputFolder = migrateGenCfg.out

	var err error
	switch migrateGenCfg.dialect {
	case "postgres":
		err = migrations.GeneratePostgres(&config)
	case "mysql":
		err = migrations.GenerateMySQL(&config)
	case "sqlite":
		err = migrations.GenerateSQLite(&config)
	default:
		return fmt.Errorf("unknown dialect %q", migrateGenCfg.dialect)
	}
	if err != nil {
		return err
	}

	fmt.Println("migration written to", filepath.Join(config.OutputFolder, config.OutputFilename))
	return nil
}
