// Package services contains the business logic layer: short-link creation,
// cache-aside resolution, and analytics aggregation.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"shortlink/internal/cache"
	apperrors "shortlink/internal/errors"
	"shortlink/internal/generator"
	"shortlink/internal/models"
	"shortlink/internal/repository"
)

// maxGenerateAttempts bounds the alias generation retry loop. Collisions at
// 62^7 keyspace are rare; exhausting the budget maps to ErrAliasExhausted.
const maxGenerateAttempts = 5

// LinkService implements creation and resolution of short links on top of a
// durable link store and an ephemeral read-through cache.
type LinkService struct {
	links   repository.LinkRepository
	cache   *cache.LinkCache
	gen     *generator.Generator
	baseURL string
}

func NewLinkService(links repository.LinkRepository, linkCache *cache.LinkCache, gen *generator.Generator, baseURL string) *LinkService {
	return &LinkService{
		links:   links,
		cache:   linkCache,
		gen:     gen,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ShortURL returns the full short URL for an alias.
func (s *LinkService) ShortURL(alias string) string {
	return s.baseURL + "/" + alias
}

// CreateLink validates the long URL, allocates an alias (custom or
// generated) and persists the link.
//
// A custom alias is used as-is after format validation; if it is taken the
// call fails with ErrAliasConflict and is not retried. Generated aliases are
// retried on conflict up to maxGenerateAttempts, relying on the store's
// unique constraint to arbitrate concurrent creators, then fail with
// ErrAliasExhausted. On success the cache is primed with the new mapping.
func (s *LinkService) CreateLink(ctx context.Context, ownerID, longURL, customAlias, topic string) (*models.Link, error) {
	normalized, err := normalizeLongURL(longURL)
	if err != nil {
		return nil, err
	}

	link := &models.Link{
		OwnerID: ownerID,
		LongURL: normalized,
		Topic:   topic,
		Active:  true,
	}

	if customAlias != "" {
		if !generator.ValidateCustomAlias(customAlias) {
			return nil, apperrors.ErrInvalidAlias
		}
		link.Alias = customAlias
		if err := s.links.Create(ctx, link); err != nil {
			return nil, err
		}
	} else {
		if err := s.createWithGeneratedAlias(ctx, link); err != nil {
			return nil, err
		}
	}

	s.cache.SetURL(ctx, link.Alias, link.LongURL)

	log.Info().
		Str("alias", link.Alias).
		Str("owner", ownerID).
		Str("topic", topic).
		Msg("short link created")
	return link, nil
}

func (s *LinkService) createWithGeneratedAlias(ctx context.Context, link *models.Link) error {
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		alias, err := s.gen.Generate(link.LongURL)
		if err != nil {
			return fmt.Errorf("alias generation failed: %w", err)
		}

		link.Alias = alias
		err = s.links.Create(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrAliasConflict) {
			return err
		}

		log.Warn().
			Str("alias", alias).
			Int("attempt", attempt).
			Int("max", maxGenerateAttempts).
			Msg("generated alias collided, retrying")
	}
	return apperrors.ErrAliasExhausted
}

// Resolve returns the long URL for an alias using the cache-aside scheme:
// cache first, then the durable store on a miss, re-priming the cache before
// returning. An unknown or inactive alias yields ErrLinkNotFound and writes
// nothing to the cache.
//
// Click capture is not handled here: the caller schedules it asynchronously
// regardless of hit or miss, and never waits for it.
func (s *LinkService) Resolve(ctx context.Context, alias string) (string, error) {
	if longURL, ok := s.cache.GetURL(ctx, alias); ok {
		return longURL, nil
	}

	link, err := s.links.FindActiveByAlias(ctx, alias)
	if err != nil {
		return "", err
	}

	s.cache.SetURL(ctx, alias, link.LongURL)
	return link.LongURL, nil
}

// Deactivate clears a link's active flag. The cache entry is intentionally
// left in place: redirects may keep working until the entry's TTL expires,
// which is the documented staleness window.
func (s *LinkService) Deactivate(ctx context.Context, alias string) error {
	return s.links.Deactivate(ctx, alias)
}

// GetLinkStats returns a link together with its total click count; used by
// the stats CLI command.
func (s *LinkService) GetLinkStats(ctx context.Context, alias string) (*models.Link, int64, error) {
	link, err := s.links.FindByAlias(ctx, alias)
	if err != nil {
		return nil, 0, err
	}
	return link, link.Clicks, nil
}

// normalizeLongURL accepts absolute http/https URLs only and returns the
// canonical form that is stored and cached.
func normalizeLongURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperrors.ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", apperrors.ErrInvalidURL
	}
	if parsed.Host == "" {
		return "", apperrors.ErrInvalidURL
	}
	return parsed.String(), nil
}
