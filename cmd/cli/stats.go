package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"shortlink/cmd"
	"shortlink/internal/cache"
	"shortlink/internal/config"
	apperrors "shortlink/internal/errors"
	"shortlink/internal/repository"
	"shortlink/internal/services"
)

// StatsCmd prints the analytics rollup for an alias.
var StatsCmd = &cobra.Command{
	Use:   "stats [alias]",
	Short: "Show click analytics for a short link",
	Long:  `Prints total clicks, unique visitors and the per-day, per-OS and per-device breakdowns for the given alias.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(_ *cobra.Command, args []string) {
	alias := args[0]

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, sqlDB := openDatabase(cfg)
	defer sqlDB.Close()

	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	rollupCache := cache.NewRollupCache(cache.NewMemoryStore())
	analytics := services.NewAnalyticsService(linkRepo, clickRepo, rollupCache, cfg.Server.BaseURL)

	rollup, err := analytics.ForAlias(context.Background(), alias)
	if err != nil {
		if err == apperrors.ErrLinkNotFound {
			fmt.Printf("Error: alias %q not found\n", alias)
		} else {
			fmt.Printf("Error retrieving analytics: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Analytics for %s\n", alias)
	fmt.Printf("Total clicks:    %d\n", rollup.TotalClicks)
	fmt.Printf("Unique visitors: %d (trailing 7 days)\n", rollup.UniqueUsers)

	if len(rollup.ClicksByDate) > 0 {
		fmt.Println("Clicks by date:")
		for _, day := range rollup.ClicksByDate {
			fmt.Printf("  %s  %d\n", day.Date, day.Clicks)
		}
	}
	if len(rollup.OSType) > 0 {
		fmt.Println("By OS:")
		for _, b := range rollup.OSType {
			fmt.Printf("  %-16s clicks=%d visitors=%d\n", b.OSName, b.UniqueClicks, b.UniqueUsers)
		}
	}
	if len(rollup.DeviceType) > 0 {
		fmt.Println("By device:")
		for _, b := range rollup.DeviceType {
			fmt.Printf("  %-16s clicks=%d visitors=%d\n", b.DeviceName, b.UniqueClicks, b.UniqueUsers)
		}
	}
}
