package provider

import (
	"context"
	"sync/atomic"
	"time"

	"flightassist/internal/cache"
	"flightassist/internal/model"
	"flightassist/pkg/logger"
	"flightassist/pkg/metrics"
)

// refreshLead is how long before expiry a hit triggers an
// opportunistic background refresh.
const refreshLead = time.Minute

// CachedSource decorates a Source with a TTL cache keyed by scope.
// A hit close to expiry kicks off one background refresh so the next
// caller rarely pays the upstream latency. Refreshes race with
// last-write-wins semantics.
type CachedSource struct {
	src        Source
	ttl        time.Duration
	store      *cache.TTL[[]model.Flight]
	refreshing atomic.Bool
	log        logger.Logger
	metrics    *metrics.Metrics
}

// NewCachedSource wraps src; metrics may be nil
func NewCachedSource(src Source, ttl time.Duration, clock cache.Clock, log logger.Logger, m *metrics.Metrics) *CachedSource {
	return &CachedSource{
		src:     src,
		ttl:     ttl,
		store:   cache.NewTTL[[]model.Flight](ttl, 0, clock),
		log:     log,
		metrics: m,
	}
}

func (s *CachedSource) Name() string { return s.src.Name() }

func (s *CachedSource) Fetch(ctx context.Context, scope model.FlightScope) ([]model.Flight, error) {
	key := string(scope)

	if flights, ok := s.store.Get(key); ok {
		s.count(true)
		if age, found := s.store.Age(key); found && s.ttl-age < refreshLead {
			s.refreshInBackground(scope)
		}
		return flights, nil
	}
	s.count(false)

	flights, err := s.src.Fetch(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.store.Set(key, flights)
	return flights, nil
}

// refreshInBackground runs at most one refresh at a time, detached
// from the caller's context and deadline.
func (s *CachedSource) refreshInBackground(scope model.FlightScope) {
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.refreshing.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		flights, err := s.src.Fetch(ctx, scope)
		if err != nil {
			s.log.Debug("background flight refresh failed",
				"source", s.src.Name(), "error", err)
			return
		}
		s.store.Set(string(scope), flights)
		s.log.Debug("background flight refresh completed",
			"source", s.src.Name(), "count", len(flights))
	}()
}

func (s *CachedSource) count(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.WithLabelValues("flights").Inc()
	} else {
		s.metrics.CacheMisses.WithLabelValues("flights").Inc()
	}
}
