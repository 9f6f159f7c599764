package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/internal/models"
	"shortlink/internal/repository"
)

type fakeClickRepo struct {
	mu      sync.Mutex
	clicks  []models.Click
	failure error
}

func (f *fakeClickRepo) Create(_ context.Context, click *models.Click) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return f.failure
	}
	f.clicks = append(f.clicks, *click)
	return nil
}

func (f *fakeClickRepo) saved() []models.Click {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Click(nil), f.clicks...)
}

func (f *fakeClickRepo) CountDistinctVisitors(context.Context, []string, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeClickRepo) DistinctVisitorsByAlias(context.Context, []string, time.Time) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (f *fakeClickRepo) ClicksByDate(context.Context, []string, time.Time) ([]repository.DateCount, error) {
	return nil, nil
}

func (f *fakeClickRepo) OSBreakdown(context.Context, []string) ([]repository.BucketStat, error) {
	return nil, nil
}

func (f *fakeClickRepo) DeviceBreakdown(context.Context, []string) ([]repository.BucketStat, error) {
	return nil, nil
}

type fakeCounterRepo struct {
	mu         sync.Mutex
	increments map[string]int
	failure    error
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{increments: map[string]int{}}
}

func (f *fakeCounterRepo) IncrementClicks(_ context.Context, alias string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return f.failure
	}
	f.increments[alias]++
	return nil
}

func (f *fakeCounterRepo) count(alias string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.increments[alias]
}

func (f *fakeCounterRepo) Create(context.Context, *models.Link) error { return nil }
func (f *fakeCounterRepo) FindByAlias(context.Context, string) (*models.Link, error) {
	return nil, nil
}
func (f *fakeCounterRepo) FindActiveByAlias(context.Context, string) (*models.Link, error) {
	return nil, nil
}
func (f *fakeCounterRepo) FindByTopic(context.Context, string) ([]models.Link, error) {
	return nil, nil
}
func (f *fakeCounterRepo) FindByOwner(context.Context, string) ([]models.Link, error) {
	return nil, nil
}
func (f *fakeCounterRepo) FindAllActive(context.Context) ([]models.Link, error) { return nil, nil }
func (f *fakeCounterRepo) Deactivate(context.Context, string) error             { return nil }

func TestRecordEnrichesAndPersists(t *testing.T) {
	clicks := &fakeClickRepo{}
	links := newFakeCounterRepo()
	rec := NewRecorder(clicks, links, nil)

	rec.Record(models.ClickEvent{
		Alias:     "abc1234",
		Timestamp: time.Now(),
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
		IPAddress: "203.0.113.7",
		VisitorID: "visitor-1",
	})

	saved := clicks.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "abc1234", saved[0].Alias)
	assert.Equal(t, "iOS", saved[0].OSName)
	assert.Equal(t, "Mobile", saved[0].DeviceType)
	assert.Equal(t, "visitor-1", saved[0].VisitorID)
	assert.Equal(t, 1, links.count("abc1234"))
}

func TestRecordFailuresAreIndependent(t *testing.T) {
	clicks := &fakeClickRepo{failure: errors.New("disk full")}
	links := newFakeCounterRepo()
	rec := NewRecorder(clicks, links, nil)

	// The insert fails; the counter increment must still happen.
	rec.Record(models.ClickEvent{Alias: "abc1234", Timestamp: time.Now(), VisitorID: "v1"})
	assert.Empty(t, clicks.saved())
	assert.Equal(t, 1, links.count("abc1234"))

	// And the other way around.
	clicks2 := &fakeClickRepo{}
	links2 := newFakeCounterRepo()
	links2.failure = errors.New("locked")
	rec2 := NewRecorder(clicks2, links2, nil)

	rec2.Record(models.ClickEvent{Alias: "abc1234", Timestamp: time.Now(), VisitorID: "v1"})
	assert.Len(t, clicks2.saved(), 1)
	assert.Zero(t, links2.count("abc1234"))
}

func TestStartClickWorkersDrainsChannel(t *testing.T) {
	clicks := &fakeClickRepo{}
	links := newFakeCounterRepo()
	rec := NewRecorder(clicks, links, nil)

	events := make(chan models.ClickEvent, 16)
	StartClickWorkers(3, events, rec)

	for i := 0; i < 10; i++ {
		events <- models.ClickEvent{Alias: "abc1234", Timestamp: time.Now(), VisitorID: "v1"}
	}
	close(events)

	require.Eventually(t, func() bool {
		return len(clicks.saved()) == 10 && links.count("abc1234") == 10
	}, 2*time.Second, 10*time.Millisecond)
}
