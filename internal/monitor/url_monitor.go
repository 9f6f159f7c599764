// Package monitor periodically checks that the long URLs behind active
// links are still reachable and logs state transitions. It observes only;
// it never flips a link's active flag.
package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "shortlink/internal/errors"
	"shortlink/internal/repository"
)

const checkTimeout = 5 * time.Second

// URLMonitor tracks reachability of long URLs across check rounds.
type URLMonitor struct {
	links       repository.LinkRepository
	interval    time.Duration
	mu          sync.Mutex
	knownStates map[uint]bool // link ID -> reachable
	client      *http.Client
}

func NewURLMonitor(links repository.LinkRepository, interval time.Duration) *URLMonitor {
	return &URLMonitor{
		links:       links,
		interval:    interval,
		knownStates: make(map[uint]bool),
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Start runs check rounds until ctx is cancelled. The first round runs
// immediately.
func (m *URLMonitor) Start(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Msg("starting URL monitor")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.checkAll(ctx)
	for {
		select {
		case <-ticker.C:
			m.checkAll(ctx)
		case <-ctx.Done():
			log.Info().Msg("URL monitor stopped")
			return
		}
	}
}

func (m *URLMonitor) checkAll(ctx context.Context) {
	links, err := m.links.FindAllActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load links for monitoring")
		return
	}

	for _, link := range links {
		reachable := m.isReachable(ctx, link.LongURL)

		m.mu.Lock()
		previous, seen := m.knownStates[link.ID]
		m.knownStates[link.ID] = reachable
		m.mu.Unlock()

		if !seen {
			log.Debug().
				Str("alias", link.Alias).
				Bool("reachable", reachable).
				Msg("initial link state")
			continue
		}
		if reachable != previous {
			log.Warn().
				Str("alias", link.Alias).
				Str("url", link.LongURL).
				Bool("reachable", reachable).
				Msg("link reachability changed")
		}
	}
}

// isReachable issues a HEAD request; 2xx and 3xx count as reachable.
func (m *URLMonitor) isReachable(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		log.Debug().Err(apperrors.ErrURLCheckFailed{URL: url, Reason: err.Error()}).Msg("check skipped")
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}
