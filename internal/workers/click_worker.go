// Package workers implements the asynchronous click recording pipeline: a
// pool of goroutines draining the click event channel, enriching events and
// persisting them. Nothing in this package ever reports an error to the
// redirect path; failures are logged and dropped.
package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"shortlink/internal/enrichment"
	apperrors "shortlink/internal/errors"
	"shortlink/internal/models"
	"shortlink/internal/repository"
)

// recordTimeout bounds each store call made by a worker.
const recordTimeout = 5 * time.Second

// Recorder turns raw click events into persisted Click rows and counter
// increments.
type Recorder struct {
	clicks repository.ClickRepository
	links  repository.LinkRepository
	geo    *enrichment.GeoIPResolver // nil when no GeoIP database is configured
}

func NewRecorder(clicks repository.ClickRepository, links repository.LinkRepository, geo *enrichment.GeoIPResolver) *Recorder {
	return &Recorder{clicks: clicks, links: links, geo: geo}
}

// StartClickWorkers launches workerCount goroutines that drain events until
// the channel is closed.
func StartClickWorkers(workerCount int, events <-chan models.ClickEvent, rec *Recorder) {
	log.Info().Int("workers", workerCount).Msg("starting click workers")
	for i := 0; i < workerCount; i++ {
		go func() {
			for event := range events {
				rec.Record(event)
			}
		}()
	}
}

// Record enriches and persists one click event. The event insert and the
// click counter increment are independent, unordered operations: a failure
// in either is logged and does not prevent the other.
func (r *Recorder) Record(event models.ClickEvent) {
	osName, deviceType := enrichment.ParseUserAgent(event.UserAgent)

	click := models.Click{
		Alias:      event.Alias,
		Timestamp:  event.Timestamp,
		UserAgent:  event.UserAgent,
		IPAddress:  event.IPAddress,
		OSName:     osName,
		DeviceType: deviceType,
		VisitorID:  event.VisitorID,
	}

	if loc, ok := r.geo.Lookup(event.IPAddress); ok {
		click.Country = loc.Country
		click.City = loc.City
		click.Latitude = loc.Latitude
		click.Longitude = loc.Longitude
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.clicks.Create(ctx, &click); err != nil {
		log.Error().
			Err(apperrors.ErrClickRecordingFailed{Alias: event.Alias, Reason: err.Error()}).
			Msg("failed to save click event")
	}

	if err := r.links.IncrementClicks(ctx, event.Alias); err != nil {
		log.Error().Err(err).Str("alias", event.Alias).Msg("failed to increment click counter")
	}
}
