package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"shortlink/cmd"
	"shortlink/internal/api"
	"shortlink/internal/auth"
	"shortlink/internal/cache"
	"shortlink/internal/config"
	"shortlink/internal/enrichment"
	"shortlink/internal/generator"
	"shortlink/internal/models"
	"shortlink/internal/monitor"
	"shortlink/internal/repository"
	"shortlink/internal/services"
	"shortlink/internal/workers"
)

// RunServerCmd starts the HTTP server together with the click workers and
// the URL monitor.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Run the short-link API server and background processes",
	Long: `Initializes the database, the cache and the click workers, starts
the URL monitor and serves the HTTP API until interrupted.`,
	Run: func(_ *cobra.Command, _ []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := db.AutoMigrate(&models.Link{}, &models.Click{}); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}

		// One shared cache store for the whole process, injected into
		// every component that needs it.
		store := newCacheStore(cfg)
		linkCache := cache.NewLinkCache(store)
		rollupCache := cache.NewRollupCache(store)

		linkRepo := repository.NewLinkRepository(db)
		clickRepo := repository.NewClickRepository(db)

		linkService := services.NewLinkService(linkRepo, linkCache, generator.New(), cfg.Server.BaseURL)
		analyticsService := services.NewAnalyticsService(linkRepo, clickRepo, rollupCache, cfg.Server.BaseURL)

		geo := openGeoIP(cfg)
		defer geo.Close()

		events := make(chan models.ClickEvent, cfg.Analytics.BufferSize)
		api.ClickEventsChannel = events
		recorder := workers.NewRecorder(clickRepo, linkRepo, geo)
		workers.StartClickWorkers(cfg.Analytics.WorkerCount, events, recorder)

		ctx, stop := context.WithCancel(context.Background())
		defer stop()

		urlMonitor := monitor.NewURLMonitor(linkRepo, time.Duration(cfg.Monitor.IntervalMinutes)*time.Minute)
		go urlMonitor.Start(ctx)

		provider := auth.NewStaticTokenProvider(cfg.Auth.Tokens)

		router := gin.Default()
		api.SetupRoutes(router, linkService, analyticsService, provider, cfg.Analytics.BufferSize)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("starting server")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("server failed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}

		// Let the workers drain what is already queued.
		close(events)
		time.Sleep(2 * time.Second)

		log.Info().Msg("server stopped")
	},
}

// newCacheStore builds the shared cache backend: redis when an address is
// configured, otherwise an in-process store.
func newCacheStore(cfg *config.Config) cache.Store {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("no redis address configured, using in-process cache")
		return cache.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return cache.NewRedisStore(client)
}

// openGeoIP opens the configured GeoIP database. Failures only disable
// geolocation, they never prevent startup.
func openGeoIP(cfg *config.Config) *enrichment.GeoIPResolver {
	if cfg.Geo.DatabasePath == "" {
		return nil
	}
	geo, err := enrichment.NewGeoIPResolver(cfg.Geo.DatabasePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Geo.DatabasePath).Msg("geoip database unavailable, geolocation disabled")
		return nil
	}
	return geo
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
