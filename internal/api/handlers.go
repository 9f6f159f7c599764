// Package api wires the HTTP surface: link creation, redirection with
// asynchronous click capture, and the analytics endpoints.
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"shortlink/internal/auth"
	apperrors "shortlink/internal/errors"
	"shortlink/internal/models"
	"shortlink/internal/services"
)

const (
	visitorCookieName = "visitorId"
	// Visitor cookies live for a year; they identify browsers for
	// uniqueness counting, not users.
	visitorCookieMaxAge = 365 * 24 * 60 * 60

	ownerContextKey = "ownerID"
)

// ClickEventsChannel carries click events from the redirect handler to the
// background workers. The send is non-blocking: when the buffer is full the
// event is dropped so the redirect is never delayed.
var ClickEventsChannel chan models.ClickEvent

// timeNow is a seam for tests.
var timeNow = time.Now

// SetupRoutes configures all routes on the given engine.
func SetupRoutes(router *gin.Engine, linkService *services.LinkService, analyticsService *services.AnalyticsService, provider auth.Provider, bufferSize int) {
	if ClickEventsChannel == nil {
		ClickEventsChannel = make(chan models.ClickEvent, bufferSize)
	}

	router.GET("/health", HealthCheckHandler)

	router.POST("/shorten", AuthMiddleware(provider), CreateShortLinkHandler(linkService))

	analytics := router.Group("/analytics", AuthMiddleware(provider))
	{
		analytics.GET("/overall", GetOverallAnalyticsHandler(analyticsService))
		analytics.GET("/topic/:topic", GetTopicAnalyticsHandler(analyticsService))
		analytics.GET("/:alias", GetAliasAnalyticsHandler(analyticsService))
	}

	// Registered last, catches everything that is not a static route above.
	router.GET("/:alias", RedirectHandler(linkService))
}

// HealthCheckHandler reports service liveness.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AuthMiddleware resolves the bearer token to an owner ID and stores it in
// the request context. The owner identifier is trusted verbatim.
func AuthMiddleware(provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		ownerID, err := provider.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		c.Set(ownerContextKey, ownerID)
		c.Next()
	}
}

// CreateLinkRequest is the JSON body of POST /shorten.
type CreateLinkRequest struct {
	LongURL     string `json:"longUrl" binding:"required"`
	CustomAlias string `json:"customAlias"`
	Topic       string `json:"topic"`
}

// CreateShortLinkHandler handles POST /shorten.
func CreateShortLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		ownerID := c.GetString(ownerContextKey)
		link, err := linkService.CreateLink(c.Request.Context(), ownerID, req.LongURL, req.CustomAlias, req.Topic)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidURL),
				errors.Is(err, apperrors.ErrInvalidAlias),
				errors.Is(err, apperrors.ErrAliasConflict):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, apperrors.ErrAliasExhausted):
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			default:
				log.Error().Err(err).Msg("create short link failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create short link"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"shortUrl":  linkService.ShortURL(link.Alias),
			"longUrl":   link.LongURL,
			"alias":     link.Alias,
			"topic":     link.Topic,
			"createdAt": link.CreatedAt,
		})
	}
}

// RedirectHandler handles GET /:alias. It resolves the alias, ensures the
// visitor cookie, schedules click capture and redirects. The redirect never
// waits for the click side effects and never fails because of them.
func RedirectHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		alias := c.Param("alias")

		longURL, err := linkService.Resolve(c.Request.Context(), alias)
		if err != nil {
			if errors.Is(err, apperrors.ErrLinkNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "short URL not found"})
				return
			}
			log.Error().Err(err).Str("alias", alias).Msg("resolve failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		visitorID := ensureVisitorCookie(c)

		event := models.ClickEvent{
			Alias:     alias,
			Timestamp: timeNow(),
			UserAgent: c.GetHeader("User-Agent"),
			IPAddress: c.ClientIP(),
			VisitorID: visitorID,
		}

		select {
		case ClickEventsChannel <- event:
		default:
			// Full buffer: drop the event rather than delay the redirect.
			log.Warn().Str("alias", alias).Msg("click event buffer full, dropping event")
		}

		c.Redirect(http.StatusFound, longURL)
	}
}

// ensureVisitorCookie returns the visitor identifier from the request
// cookie, minting and setting a fresh one when absent. Stability is
// best-effort: clients that discard the cookie count as new visitors.
func ensureVisitorCookie(c *gin.Context) string {
	if visitorID, err := c.Cookie(visitorCookieName); err == nil && visitorID != "" {
		return visitorID
	}
	visitorID := uuid.NewString()
	c.SetCookie(visitorCookieName, visitorID, visitorCookieMaxAge, "/", "", false, true)
	return visitorID
}

// GetAliasAnalyticsHandler handles GET /analytics/:alias.
func GetAliasAnalyticsHandler(analyticsService *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		alias := c.Param("alias")

		rollup, err := analyticsService.ForAlias(c.Request.Context(), alias)
		if err != nil {
			if errors.Is(err, apperrors.ErrLinkNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "short URL not found"})
				return
			}
			log.Error().Err(err).Str("alias", alias).Msg("alias analytics failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, rollup)
	}
}

// GetTopicAnalyticsHandler handles GET /analytics/topic/:topic. An unknown
// topic returns an all-zero rollup, not 404.
func GetTopicAnalyticsHandler(analyticsService *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		topic := c.Param("topic")

		rollup, err := analyticsService.ForTopic(c.Request.Context(), topic)
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("topic analytics failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, rollup)
	}
}

// GetOverallAnalyticsHandler handles GET /analytics/overall for the
// authenticated owner.
func GetOverallAnalyticsHandler(analyticsService *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetString(ownerContextKey)

		rollup, err := analyticsService.ForOwner(c.Request.Context(), ownerID)
		if err != nil {
			log.Error().Err(err).Str("owner", ownerID).Msg("overall analytics failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, rollup)
	}
}
