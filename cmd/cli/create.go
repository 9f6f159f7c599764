package cli

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"shortlink/cmd"
	"shortlink/internal/cache"
	"shortlink/internal/config"
	"shortlink/internal/generator"
	"shortlink/internal/repository"
	"shortlink/internal/services"
)

var (
	longURLFlag string
	aliasFlag   string
	topicFlag   string
	ownerFlag   string
)

// CreateCmd creates a short link from the command line.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a short link for a long URL",
	Long: `Shortens the given long URL and prints the resulting alias.

Example:
  shortlink create --url="https://www.example.com/some/very/long/path" --topic=marketing`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}

		db, sqlDB := openDatabase(cfg)
		defer sqlDB.Close()

		linkRepo := repository.NewLinkRepository(db)
		linkCache := cache.NewLinkCache(cache.NewMemoryStore())
		linkService := services.NewLinkService(linkRepo, linkCache, generator.New(), cfg.Server.BaseURL)

		link, err := linkService.CreateLink(context.Background(), ownerFlag, longURLFlag, aliasFlag, topicFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create short link")
		}

		fmt.Printf("Short link created:\n")
		fmt.Printf("Alias:     %s\n", link.Alias)
		fmt.Printf("Short URL: %s\n", linkService.ShortURL(link.Alias))
		fmt.Printf("Long URL:  %s\n", link.LongURL)
		if link.Topic != "" {
			fmt.Printf("Topic:     %s\n", link.Topic)
		}
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "the long URL to shorten")
	CreateCmd.Flags().StringVar(&aliasFlag, "alias", "", "optional custom alias (4-20 chars, [A-Za-z0-9_-])")
	CreateCmd.Flags().StringVar(&topicFlag, "topic", "", "optional topic label")
	CreateCmd.Flags().StringVar(&ownerFlag, "owner", "cli", "owner identifier to create the link under")
	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}

// openDatabase opens the configured sqlite database for CLI use.
func openDatabase(cfg *config.Config) (*gorm.DB, interface{ Close() error }) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get underlying SQL database")
	}
	return db, sqlDB
}
