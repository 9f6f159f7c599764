package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shortlink/internal/models"
)

// DateCount is a per-day click total. Date is formatted YYYY-MM-DD; days
// without any clicks are simply absent.
type DateCount struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// BucketStat is one bucket of a breakdown (an OS name or a device class):
// how many clicks fell into the bucket and how many distinct visitors
// produced them.
type BucketStat struct {
	Name         string `json:"name"`
	UniqueClicks int64  `json:"uniqueClicks"`
	UniqueUsers  int64  `json:"uniqueUsers"`
}

// ClickRepository defines data access for click events, including the
// grouping queries the analytics rollups are built from.
type ClickRepository interface {
	Create(ctx context.Context, click *models.Click) error

	// CountDistinctVisitors counts distinct visitor IDs across the given
	// aliases since the cutoff.
	CountDistinctVisitors(ctx context.Context, aliases []string, since time.Time) (int64, error)

	// DistinctVisitorsByAlias returns per-alias distinct visitor counts
	// since the cutoff. Aliases without events are absent from the map.
	DistinctVisitorsByAlias(ctx context.Context, aliases []string, since time.Time) (map[string]int64, error)

	// ClicksByDate returns per-day event counts since the cutoff,
	// ascending by date.
	ClicksByDate(ctx context.Context, aliases []string, since time.Time) ([]DateCount, error)

	// OSBreakdown and DeviceBreakdown aggregate over all-time events,
	// not a trailing window.
	OSBreakdown(ctx context.Context, aliases []string) ([]BucketStat, error)
	DeviceBreakdown(ctx context.Context, aliases []string) ([]BucketStat, error)
}

// GormClickRepository implements ClickRepository on top of GORM.
type GormClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

func (r *GormClickRepository) Create(ctx context.Context, click *models.Click) error {
	if err := r.db.WithContext(ctx).Create(click).Error; err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

func (r *GormClickRepository) CountDistinctVisitors(ctx context.Context, aliases []string, since time.Time) (int64, error) {
	if len(aliases) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Click{}).
		Where("alias IN ? AND timestamp >= ?", aliases, since).
		Distinct("visitor_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct visitors: %w", err)
	}
	return count, nil
}

func (r *GormClickRepository) DistinctVisitorsByAlias(ctx context.Context, aliases []string, since time.Time) (map[string]int64, error) {
	if len(aliases) == 0 {
		return map[string]int64{}, nil
	}
	var rows []struct {
		Alias    string
		Visitors int64
	}
	err := r.db.WithContext(ctx).Model(&models.Click{}).
		Select("alias, COUNT(DISTINCT visitor_id) AS visitors").
		Where("alias IN ? AND timestamp >= ?", aliases, since).
		Group("alias").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors by alias: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Alias] = row.Visitors
	}
	return counts, nil
}

func (r *GormClickRepository) ClicksByDate(ctx context.Context, aliases []string, since time.Time) ([]DateCount, error) {
	if len(aliases) == 0 {
		return []DateCount{}, nil
	}
	var rows []DateCount
	err := r.db.WithContext(ctx).Model(&models.Click{}).
		Select("strftime('%Y-%m-%d', timestamp) AS date, COUNT(*) AS clicks").
		Where("alias IN ? AND timestamp >= ?", aliases, since).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group clicks by date: %w", err)
	}
	if rows == nil {
		rows = []DateCount{}
	}
	return rows, nil
}

func (r *GormClickRepository) OSBreakdown(ctx context.Context, aliases []string) ([]BucketStat, error) {
	return r.breakdown(ctx, aliases, "os_name")
}

func (r *GormClickRepository) DeviceBreakdown(ctx context.Context, aliases []string) ([]BucketStat, error) {
	return r.breakdown(ctx, aliases, "device_type")
}

func (r *GormClickRepository) breakdown(ctx context.Context, aliases []string, column string) ([]BucketStat, error) {
	if len(aliases) == 0 {
		return []BucketStat{}, nil
	}
	var rows []BucketStat
	err := r.db.WithContext(ctx).Model(&models.Click{}).
		Select(column + " AS name, COUNT(*) AS unique_clicks, COUNT(DISTINCT visitor_id) AS unique_users").
		Where("alias IN ?", aliases).
		Group(column).
		Order(column + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group clicks by %s: %w", column, err)
	}
	if rows == nil {
		rows = []BucketStat{}
	}
	return rows, nil
}
