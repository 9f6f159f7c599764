package services

import (
	"context"
	"time"

	"github.com/samber/lo"

	"shortlink/internal/cache"
	"shortlink/internal/models"
	"shortlink/internal/repository"
)

// trailingWindow is the date-bounded window for unique-visitor counts and
// the per-day click series. OS and device breakdowns are all-time.
const trailingWindow = 7 * 24 * time.Hour

// Rollup is an aggregate analytics summary for one scope (alias, topic or
// owner). TotalClicks comes from the link counters (the source of truth for
// totals); everything else is derived from the click event log. The two may
// transiently diverge: click recording is eventually consistent.
type Rollup struct {
	// TotalURLs is only populated for owner-scoped rollups.
	TotalURLs int `json:"totalUrls,omitempty"`

	TotalClicks  int64                  `json:"totalClicks"`
	UniqueUsers  int64                  `json:"uniqueUsers"`
	ClicksByDate []repository.DateCount `json:"clicksByDate"`
	OSType       []OSStat               `json:"osType"`
	DeviceType   []DeviceStat           `json:"deviceType"`

	// URLs holds per-link summaries for topic- and owner-scoped rollups.
	URLs []LinkSummary `json:"urls,omitempty"`
}

// OSStat is one OS bucket of a breakdown.
type OSStat struct {
	OSName       string `json:"osName"`
	UniqueClicks int64  `json:"uniqueClicks"`
	UniqueUsers  int64  `json:"uniqueUsers"`
}

// DeviceStat is one device-class bucket of a breakdown.
type DeviceStat struct {
	DeviceName   string `json:"deviceName"`
	UniqueClicks int64  `json:"uniqueClicks"`
	UniqueUsers  int64  `json:"uniqueUsers"`
}

// LinkSummary is the per-link line of a topic or owner rollup.
type LinkSummary struct {
	ShortURL    string `json:"shortUrl"`
	TotalClicks int64  `json:"totalClicks"`
	UniqueUsers int64  `json:"uniqueUsers"`
}

// Cache key kinds; full keys look like "analytics:url:abc1234".
const (
	scopeAlias   = "url"
	scopeTopic   = "topic"
	scopeOverall = "overall"
)

// AnalyticsService computes rollups over recorded clicks and link counters.
// Results are cached with a short TTL, and a cached rollup is served as-is:
// staleness inside the TTL is an accepted property, not a bug.
type AnalyticsService struct {
	links   repository.LinkRepository
	clicks  repository.ClickRepository
	cache   *cache.RollupCache
	baseURL string
}

func NewAnalyticsService(links repository.LinkRepository, clicks repository.ClickRepository, rollupCache *cache.RollupCache, baseURL string) *AnalyticsService {
	return &AnalyticsService{
		links:   links,
		clicks:  clicks,
		cache:   rollupCache,
		baseURL: baseURL,
	}
}

// ForAlias returns the rollup for a single alias, or ErrLinkNotFound when
// the alias does not exist. Deactivated links still report analytics.
func (s *AnalyticsService) ForAlias(ctx context.Context, alias string) (*Rollup, error) {
	var cached Rollup
	if s.cache.Get(ctx, scopeAlias, alias, &cached) {
		return &cached, nil
	}

	link, err := s.links.FindByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}

	rollup, err := s.compute(ctx, []models.Link{*link})
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, scopeAlias, alias, rollup)
	return rollup, nil
}

// ForTopic returns the rollup across every link labeled with topic,
// including the per-link summaries. An unknown topic is not an error: it
// yields an all-zero rollup.
func (s *AnalyticsService) ForTopic(ctx context.Context, topic string) (*Rollup, error) {
	var cached Rollup
	if s.cache.Get(ctx, scopeTopic, topic, &cached) {
		return &cached, nil
	}

	links, err := s.links.FindByTopic(ctx, topic)
	if err != nil {
		return nil, err
	}

	rollup, err := s.compute(ctx, links)
	if err != nil {
		return nil, err
	}
	if err := s.addLinkSummaries(ctx, rollup, links); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, scopeTopic, topic, rollup)
	return rollup, nil
}

// ForOwner returns the rollup across all of an owner's links plus the total
// link count. An owner with no links yields an all-zero rollup.
func (s *AnalyticsService) ForOwner(ctx context.Context, ownerID string) (*Rollup, error) {
	var cached Rollup
	if s.cache.Get(ctx, scopeOverall, ownerID, &cached) {
		return &cached, nil
	}

	links, err := s.links.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rollup, err := s.compute(ctx, links)
	if err != nil {
		return nil, err
	}
	rollup.TotalURLs = len(links)
	if err := s.addLinkSummaries(ctx, rollup, links); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, scopeOverall, ownerID, rollup)
	return rollup, nil
}

// compute builds the common part of a rollup over the given links.
func (s *AnalyticsService) compute(ctx context.Context, links []models.Link) (*Rollup, error) {
	aliases := lo.Map(links, func(l models.Link, _ int) string { return l.Alias })
	since := time.Now().Add(-trailingWindow)

	uniqueUsers, err := s.clicks.CountDistinctVisitors(ctx, aliases, since)
	if err != nil {
		return nil, err
	}

	byDate, err := s.clicks.ClicksByDate(ctx, aliases, since)
	if err != nil {
		return nil, err
	}

	osBuckets, err := s.clicks.OSBreakdown(ctx, aliases)
	if err != nil {
		return nil, err
	}

	deviceBuckets, err := s.clicks.DeviceBreakdown(ctx, aliases)
	if err != nil {
		return nil, err
	}

	return &Rollup{
		TotalClicks:  lo.SumBy(links, func(l models.Link) int64 { return l.Clicks }),
		UniqueUsers:  uniqueUsers,
		ClicksByDate: byDate,
		OSType: lo.Map(osBuckets, func(b repository.BucketStat, _ int) OSStat {
			return OSStat{OSName: b.Name, UniqueClicks: b.UniqueClicks, UniqueUsers: b.UniqueUsers}
		}),
		DeviceType: lo.Map(deviceBuckets, func(b repository.BucketStat, _ int) DeviceStat {
			return DeviceStat{DeviceName: b.Name, UniqueClicks: b.UniqueClicks, UniqueUsers: b.UniqueUsers}
		}),
	}, nil
}

func (s *AnalyticsService) addLinkSummaries(ctx context.Context, rollup *Rollup, links []models.Link) error {
	if len(links) == 0 {
		return nil
	}

	aliases := lo.Map(links, func(l models.Link, _ int) string { return l.Alias })
	visitors, err := s.clicks.DistinctVisitorsByAlias(ctx, aliases, time.Now().Add(-trailingWindow))
	if err != nil {
		return err
	}

	rollup.URLs = lo.Map(links, func(l models.Link, _ int) LinkSummary {
		return LinkSummary{
			ShortURL:    s.baseURL + "/" + l.Alias,
			TotalClicks: l.Clicks,
			UniqueUsers: visitors[l.Alias],
		}
	})
	return nil
}
