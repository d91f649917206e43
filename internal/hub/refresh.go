package hub

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/ambient-hub/internal/datadog"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

// runRefresher owns one mode's cadence: evaluate, report, wait, repeat.
// The wait starts after the evaluation completes, so a slow provider
// never stacks evaluations of the same mode.
func (h *Hub) runRefresher(ctx context.Context, mode int) error {
	m := h.modes[mode].Mode

	log.Info().
		Str("mode", m.Label).
		Dur("interval", m.Interval).
		Msg("Starting mode refresher")

	for {
		status, err := h.evaluate(ctx, m)

		select {
		case h.events <- event{kind: eventRefresh, mode: mode, status: status, err: err, at: time.Now()}:
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case <-time.After(m.Interval + h.jitter(m.Interval)):
		case <-ctx.Done():
			log.Info().Str("mode", m.Label).Msg("Stopping mode refresher")
			return ctx.Err()
		}
	}
}

// evaluate runs the provider under the fetch timeout and reports how
// long it took.
func (h *Hub) evaluate(ctx context.Context, m model.Mode) (model.AmbientStatus, error) {
	evalCtx := ctx
	if h.fetchTimeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, h.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	status, err := m.Provider.Evaluate(evalCtx)
	datadog.Gauge("provider.latency_seconds", time.Since(start).Seconds(), "mode:"+m.Label)
	return status, err
}

// defaultJitter spreads wakeups by up to a tenth of the interval so the
// refreshers drift apart instead of firing together after a restart.
func defaultJitter(interval time.Duration) time.Duration {
	if interval < 10 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(interval) / 10))
}
