package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"shortlink/cmd"
	"shortlink/internal/config"
	"shortlink/internal/models"
)

// MigrateCmd creates or updates the database schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Connects to the configured sqlite database and runs GORM automatic
migrations for the links and clicks tables.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}

		db, sqlDB := openDatabase(cfg)
		defer sqlDB.Close()

		if err := db.AutoMigrate(&models.Link{}, &models.Click{}); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
