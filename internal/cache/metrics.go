package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/billinghub/internal/domain"
)

type instrumented struct {
	Store
	lookups       *prometheus.CounterVec
	invalidations prometheus.Counter
}

// WithMetrics counts lookups by result and invalidated keys.
func WithMetrics(store Store, reg prometheus.Registerer) Store {
	s := &instrumented{
		Store: store,
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billinghub_cache_lookups_total",
			Help: "Entity cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billinghub_cache_invalidations_total",
			Help: "Entity cache keys invalidated.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.lookups, s.invalidations)
	}
	return s
}

func (s *instrumented) Get(ctx context.Context, key Key) ([]domain.EntityItem, bool, error) {
	items, ok, err := s.Store.Get(ctx, key)
	switch {
	case err != nil:
		s.lookups.WithLabelValues("error").Inc()
	case ok:
		s.lookups.WithLabelValues("hit").Inc()
	default:
		s.lookups.WithLabelValues("miss").Inc()
	}
	return items, ok, err
}

func (s *instrumented) Invalidate(ctx context.Context, keys ...Key) error {
	s.invalidations.Add(float64(len(keys)))
	return s.Store.Invalidate(ctx, keys...)
}
