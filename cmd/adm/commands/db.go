// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"civicapp/internal/database"
	"civicapp/internal/observability"
	"civicapp/internal/services"
	contextutils "civicapp/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(userService *services.UserService, logger *observability.Logger, db *sql.DB, databaseURL string) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the civic platform.

Available commands:
  stats     - Show database statistics
  migrate   - Run pending schema migrations`,
	}

	// Add subcommands
	dbCmd.AddCommand(statsCmd(userService, logger, db))
	dbCmd.AddCommand(migrateCmd(logger, db, databaseURL))

	return dbCmd
}

// statsCmd returns the stats command
func statsCmd(userService *services.UserService, logger *observability.Logger, db *sql.DB) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Show database statistics including user, issue, and feedback counts.`,
		RunE:  runStats(userService, logger, db),
	}
}

// migrateCmd returns the migrate command
func migrateCmd(logger *observability.Logger, db *sql.DB, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run pending schema migrations",
		Long:  `Apply any schema migrations that have not yet been run against the database.`,
		RunE:  runMigrate(logger, db, databaseURL),
	}
}

// runStats returns a function that shows database statistics
func runStats(userService *services.UserService, logger *observability.Logger, db *sql.DB) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		// Log diagnostic information
		logger.Info(ctx, "Diagnostic info", map[string]interface{}{"config_file": os.Getenv("CIVICAPP_CONFIG_FILE"), "database": getDatabaseInfo(db)})

		users, err := userService.GetAllUsers(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to get user statistics", err, map[string]interface{}{})
			return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to get user statistics: %v", err)
		}

		tableCounts := map[string]string{
			"issues":   "SELECT COUNT(*) FROM issues",
			"feedback": "SELECT COUNT(*) FROM feedback",
			"comments": "SELECT COUNT(*) FROM comments",
			"updates":  "SELECT COUNT(*) FROM updates",
		}

		fmt.Printf("%-15s %s\n", "Table", "Rows")
		fmt.Printf("%-15s %d\n", "users", len(users))
		for table, query := range tableCounts {
			var count int
			if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
				logger.Error(ctx, "Failed to count table rows", err, map[string]interface{}{"table": table})
				return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to count rows in %s: %v", table, err)
			}
			fmt.Printf("%-15s %d\n", table, count)
		}

		logger.Info(ctx, "Database statistics", map[string]interface{}{"total_users": len(users), "database": "PostgreSQL", "status": "Connected"})

		return nil
	}
}

// runMigrate returns a function that runs schema migrations
func runMigrate(logger *observability.Logger, db *sql.DB, databaseURL string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		// Log diagnostic information
		logger.Info(ctx, "Diagnostic info", map[string]interface{}{"config_file": os.Getenv("CIVICAPP_CONFIG_FILE"), "database": getDatabaseInfo(db)})

		dbManager := database.NewManager(logger)
		if err := dbManager.RunMigrations(db, databaseURL); err != nil {
			logger.Error(ctx, "Migrations failed", err, map[string]interface{}{"database_url": maskDatabaseURL(databaseURL)})
			return contextutils.WrapError(err, "failed to run migrations")
		}

		fmt.Println("Migrations applied successfully")
		logger.Info(ctx, "Migrations completed", map[string]interface{}{"database_url": maskDatabaseURL(databaseURL)})
		return nil
	}
}
