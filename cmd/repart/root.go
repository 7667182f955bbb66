package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/dbops/repart/catalog"
	"github.com/dbops/repart/catalog/oracle"
	"github.com/dbops/repart/store"
	"github.com/dbops/repart/store/memory"
	mysqlstore "github.com/dbops/repart/store/mysql"
	pgstore "github.com/dbops/repart/store/postgres"
	sqlitestore "github.com/dbops/repart/store/sqlite"
	"github.com/spf13/cobra"

	// Database drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/sijms/go-ora/v2"
)

var (
	oracleDSN     string
	historyDriver string
	historyDSN    string
)

var rootCmd = &cobra.Command{
	Use:   "repart [command]",
	Short: "Oracle repartitioning plan compiler: discover, validate, generate, verify",
	Long: `Compiles schema repartitioning plans for Oracle tables: discovers table
metadata, infers interval/hash partitioning targets, validates plans
against the live catalog, and generates ordered DDL artifacts with an
orchestrator script. Execution of the generated DDL stays in the DBA's
hands.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&oracleDSN, "dsn", "",
		"Oracle connection string (or ORACLE_DSN env)")
	rootCmd.PersistentFlags().StringVar(&historyDriver, "history-driver", "",
		"run history backend: sqlite, postgres, mysql or memory (or REPART_HISTORY_DRIVER env)")
	rootCmd.PersistentFlags().StringVar(&historyDSN, "history-dsn", "",
		"run history connection string (or REPART_HISTORY_DSN env)")
}

// openCatalog connects to Oracle and wraps the connection in a catalog.
func openCatalog(cmd *cobra.Command) (catalog.Catalog, *sql.DB, error) {
	dsn := oracleDSN
	if dsn == "" {
		dsn = os.Getenv("ORACLE_DSN")
	}
	if dsn == "" {
		return nil, nil, fmt.Errorf("no Oracle connection configured; set --dsn or ORACLE_DSN")
	}

	db, err := sql.Open("oracle", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Oracle connection: %w", err)
	}
	if err := db.PingContext(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to reach Oracle: %w", err)
	}

	return oracle.New(db), db, nil
}

// openHistoryStore builds the run history store from the history flags.
// Returns nil without error when no history backend is configured.
func openHistoryStore(cmd *cobra.Command) (store.RunStore, func(), error) {
	driver := historyDriver
	if driver == "" {
		driver = os.Getenv("REPART_HISTORY_DRIVER")
	}
	dsn := historyDSN
	if dsn == "" {
		dsn = os.Getenv("REPART_HISTORY_DSN")
	}

	noop := func() {}
	switch driver {
	case "":
		return nil, noop, nil
	case "memory":
		return memory.New(), noop, nil
	case "sqlite":
		if dsn == "" {
			dsn = "repart-history.db"
		}
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open sqlite history: %w", err)
		}
		s := sqlitestore.New(db)
		if err := s.Init(cmd.Context()); err != nil {
			db.Close()
			return nil, noop, err
		}
		return s, func() { db.Close() }, nil
	case "postgres":
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open postgres history: %w", err)
		}
		return pgstore.New(db), func() { db.Close() }, nil
	case "mysql":
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open mysql history: %w", err)
		}
		return mysqlstore.New(db), func() { db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown history driver %q", driver)
	}
}
