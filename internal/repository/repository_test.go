package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "shortlink/internal/errors"
	"shortlink/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A pooled in-memory sqlite would open a fresh empty database per
	// connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Link{}, &models.Click{}))
	return db
}

func TestCreateDuplicateAlias(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository(newTestDB(t))

	first := &models.Link{OwnerID: "o1", LongURL: "https://example.com/a", Alias: "myalias", Active: true}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.Link{OwnerID: "o2", LongURL: "https://example.com/b", Alias: "myalias", Active: true}
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrAliasConflict)

	// The losing insert must not have touched the first link.
	got, err := repo.FindByAlias(ctx, "myalias")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.OwnerID)
	assert.Equal(t, "https://example.com/a", got.LongURL)
}

func TestFindActiveByAlias(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository(newTestDB(t))

	link := &models.Link{OwnerID: "o1", LongURL: "https://example.com", Alias: "act1234", Active: true}
	require.NoError(t, repo.Create(ctx, link))

	got, err := repo.FindActiveByAlias(ctx, "act1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.LongURL)

	_, err = repo.FindActiveByAlias(ctx, "zzzzz99")
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)

	require.NoError(t, repo.Deactivate(ctx, "act1234"))
	_, err = repo.FindActiveByAlias(ctx, "act1234")
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)

	// Still visible to analytics lookups.
	_, err = repo.FindByAlias(ctx, "act1234")
	assert.NoError(t, err)
}

func TestDeactivateUnknown(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	err := repo.Deactivate(context.Background(), "nothere")
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
}

func TestIncrementClicks(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository(newTestDB(t))

	link := &models.Link{OwnerID: "o1", LongURL: "https://example.com", Alias: "cnt1234", Active: true}
	require.NoError(t, repo.Create(ctx, link))

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementClicks(ctx, "cnt1234"))
	}

	got, err := repo.FindByAlias(ctx, "cnt1234")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Clicks)
}

func TestFindByTopicAndOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.Link{OwnerID: "o1", LongURL: "https://a.example", Alias: "aaa1111", Topic: "launch", Active: true}))
	require.NoError(t, repo.Create(ctx, &models.Link{OwnerID: "o1", LongURL: "https://b.example", Alias: "bbb2222", Topic: "launch", Active: true}))
	require.NoError(t, repo.Create(ctx, &models.Link{OwnerID: "o2", LongURL: "https://c.example", Alias: "ccc3333", Active: true}))

	byTopic, err := repo.FindByTopic(ctx, "launch")
	require.NoError(t, err)
	assert.Len(t, byTopic, 2)

	byOwner, err := repo.FindByOwner(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	none, err := repo.FindByTopic(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func seedClick(t *testing.T, repo *GormClickRepository, alias, visitor, osName, device string, ts time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Click{
		Alias:      alias,
		Timestamp:  ts,
		UserAgent:  "test-agent",
		IPAddress:  "203.0.113.7",
		OSName:     osName,
		DeviceType: device,
		VisitorID:  visitor,
	}))
}

func TestClickAggregations(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	clicks := NewClickRepository(db)

	// UTC keeps the stored timestamp text and sqlite's strftime output on
	// the same calendar day.
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)

	seedClick(t, clicks, "abc1234", "visitor-a", "iOS", "Mobile", now)
	seedClick(t, clicks, "abc1234", "visitor-b", "iOS", "Mobile", now)
	seedClick(t, clicks, "abc1234", "visitor-a", "Android", "Tablet", yesterday)
	seedClick(t, clicks, "other77", "visitor-c", "Windows", "Desktop", now)

	since := now.Add(-7 * 24 * time.Hour)

	uniq, err := clicks.CountDistinctVisitors(ctx, []string{"abc1234"}, since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), uniq)

	byDate, err := clicks.ClicksByDate(ctx, []string{"abc1234"}, since)
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	// Ascending by date, only days with events.
	assert.Equal(t, yesterday.Format("2006-01-02"), byDate[0].Date)
	assert.Equal(t, int64(1), byDate[0].Clicks)
	assert.Equal(t, now.Format("2006-01-02"), byDate[1].Date)
	assert.Equal(t, int64(2), byDate[1].Clicks)

	osStats, err := clicks.OSBreakdown(ctx, []string{"abc1234"})
	require.NoError(t, err)
	require.Len(t, osStats, 2)
	var total int64
	for _, b := range osStats {
		total += b.UniqueClicks
		assert.LessOrEqual(t, b.UniqueUsers, int64(2))
	}
	assert.Equal(t, int64(3), total)

	devStats, err := clicks.DeviceBreakdown(ctx, []string{"abc1234"})
	require.NoError(t, err)
	require.Len(t, devStats, 2)

	perAlias, err := clicks.DistinctVisitorsByAlias(ctx, []string{"abc1234", "other77"}, since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), perAlias["abc1234"])
	assert.Equal(t, int64(1), perAlias["other77"])
}

func TestClickAggregationsEmptyScope(t *testing.T) {
	ctx := context.Background()
	clicks := NewClickRepository(newTestDB(t))

	uniq, err := clicks.CountDistinctVisitors(ctx, nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, uniq)

	byDate, err := clicks.ClicksByDate(ctx, nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, byDate)

	osStats, err := clicks.OSBreakdown(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, osStats)
}

func TestWindowedVisitorCount(t *testing.T) {
	ctx := context.Background()
	clicks := NewClickRepository(newTestDB(t))

	// An old visitor outside the trailing window must not count.
	seedClick(t, clicks, "win1234", "old-visitor", "Linux", "Desktop", time.Now().Add(-10*24*time.Hour))
	seedClick(t, clicks, "win1234", "new-visitor", "Linux", "Desktop", time.Now())

	uniq, err := clicks.CountDistinctVisitors(ctx, []string{"win1234"}, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), uniq)

	// Breakdowns are all-time: both visitors appear.
	osStats, err := clicks.OSBreakdown(ctx, []string{"win1234"})
	require.NoError(t, err)
	require.Len(t, osStats, 1)
	assert.Equal(t, int64(2), osStats[0].UniqueClicks)
	assert.Equal(t, int64(2), osStats[0].UniqueUsers)
}
