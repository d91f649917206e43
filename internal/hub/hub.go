package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thatsimonsguy/ambient-hub/internal/datadog"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
	"github.com/thatsimonsguy/ambient-hub/internal/provider"
)

// Renderer is what the hub needs from the display sink.
type Renderer interface {
	Render(status model.AmbientStatus) error
}

// Notifier delivers degradation and recovery alerts.
type Notifier interface {
	Send(title, message string) error
}

// Journal records refresh outcomes for later inspection.
type Journal interface {
	Append(mode string, status *model.AmbientStatus, fetchErr error, at time.Time) error
}

// Deps are optional collaborators. Nil fields disable the feature.
type Deps struct {
	Notifier Notifier
	Journal  Journal
	Jitter   func(interval time.Duration) time.Duration
}

type eventKind int

const (
	eventPress eventKind = iota
	eventRefresh
)

// event is the one message type the hub loop consumes. Presses and
// refresh results share the queue so they serialize against each other.
type event struct {
	kind   eventKind
	mode   int
	status model.AmbientStatus
	err    error
	at     time.Time
}

// ModeState is the hub's record of one mode. Only the hub loop touches
// it after construction, which is the whole concurrency story here: one
// consumer goroutine, no locks.
type ModeState struct {
	Mode       model.Mode
	LastStatus *model.AmbientStatus
	LastFetch  time.Time
	LastErr    error
	Failures   int
	notified   bool
}

type Hub struct {
	modes    []*ModeState
	current  int
	renderer Renderer

	fetchTimeout     time.Duration
	failureThreshold int

	notifier Notifier
	journal  Journal
	jitter   func(time.Duration) time.Duration

	events chan event
	done   chan struct{}
}

func New(rotation []model.Mode, renderer Renderer, fetchTimeout time.Duration, failureThreshold int, deps *Deps) *Hub {
	h := &Hub{
		renderer:         renderer,
		fetchTimeout:     fetchTimeout,
		failureThreshold: failureThreshold,
		jitter:           defaultJitter,
		events:           make(chan event, 32),
		done:             make(chan struct{}),
	}
	for _, m := range rotation {
		h.modes = append(h.modes, &ModeState{Mode: m})
	}
	if deps != nil {
		h.notifier = deps.Notifier
		h.journal = deps.Journal
		if deps.Jitter != nil {
			h.jitter = deps.Jitter
		}
	}
	return h
}

// PressAt queues a button press for the hub loop. Safe to call from the
// listener goroutine; the press is dropped if the hub has stopped.
func (h *Hub) PressAt(at time.Time) {
	select {
	case h.events <- event{kind: eventPress, at: at}:
	case <-h.done:
	}
}

// Run starts one refresher per mode and serves the event queue until ctx
// is canceled. Every mode gets evaluated immediately at startup; the
// selected mode's first result renders when it arrives.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	log.Info().
		Int("modes", len(h.modes)).
		Str("selected", h.modes[h.current].Mode.Label).
		Msg("Starting hub")

	g, gctx := errgroup.WithContext(ctx)
	for i := range h.modes {
		g.Go(func() error {
			return h.runRefresher(gctx, i)
		})
	}

	h.loop(gctx)
	return g.Wait()
}

func (h *Hub) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Hub loop stopping")
			return
		case ev := <-h.events:
			h.handle(ev)
		}
	}
}

func (h *Hub) handle(ev event) {
	switch ev.kind {
	case eventPress:
		h.advance()
	case eventRefresh:
		h.applyRefresh(ev)
	}
}

// advance steps the rotation and re-renders from whatever the new mode
// last produced. No fetch happens here; a mode with no result yet shows
// the placeholder until its refresher delivers one.
func (h *Hub) advance() {
	h.current = (h.current + 1) % len(h.modes)
	selected := h.modes[h.current]

	log.Info().
		Int("index", h.current).
		Str("mode", selected.Mode.Label).
		Msg("Button press, advancing mode")
	datadog.Count("hub.button_press", 1, "mode:"+selected.Mode.Label)

	if selected.LastStatus != nil {
		h.render(*selected.LastStatus)
		return
	}
	h.render(model.NoData)
}

// applyRefresh folds a refresh result into the mode's state. Failures
// keep the previous status on screen; only a mode that has never
// succeeded falls back to the placeholder.
func (h *Hub) applyRefresh(ev event) {
	ms := h.modes[ev.mode]
	ms.LastFetch = ev.at
	selected := ev.mode == h.current

	if ev.err != nil {
		ms.LastErr = ev.err
		ms.Failures++
		log.Warn().
			Err(ev.err).
			Str("mode", ms.Mode.Label).
			Str("kind", string(provider.KindOf(ev.err))).
			Int("failures", ms.Failures).
			Msg("Mode refresh failed, keeping last status")
		datadog.Count("provider.error", 1, "mode:"+ms.Mode.Label)
		h.maybeNotifyDegraded(ms)
		h.journalAppend(ms.Mode.Label, nil, ev.err, ev.at)

		if selected && ms.LastStatus == nil {
			h.render(model.NoData)
		}
		return
	}

	ms.LastStatus = &ev.status
	ms.LastErr = nil
	h.maybeNotifyRecovered(ms)
	ms.Failures = 0
	h.journalAppend(ms.Mode.Label, &ev.status, nil, ev.at)

	if selected {
		h.render(ev.status)
	}
}

func (h *Hub) render(status model.AmbientStatus) {
	if err := h.renderer.Render(status); err != nil {
		log.Error().Err(err).Msg("Display write failed")
		datadog.Count("hub.render_error", 1)
		return
	}
	datadog.Count("hub.render", 1)
}

func (h *Hub) maybeNotifyDegraded(ms *ModeState) {
	if h.notifier == nil || ms.notified || h.failureThreshold <= 0 || ms.Failures < h.failureThreshold {
		return
	}
	ms.notified = true

	title := fmt.Sprintf("%s mode degraded", ms.Mode.Label)
	body := fmt.Sprintf("%d consecutive refresh failures, last error: %v", ms.Failures, ms.LastErr)
	if err := h.notifier.Send(title, body); err != nil {
		log.Error().Err(err).Str("mode", ms.Mode.Label).Msg("Failed to send degradation alert")
	}
}

func (h *Hub) maybeNotifyRecovered(ms *ModeState) {
	if h.notifier == nil || !ms.notified {
		return
	}
	ms.notified = false

	title := fmt.Sprintf("%s mode recovered", ms.Mode.Label)
	body := fmt.Sprintf("Refresh succeeded after %d failures", ms.Failures)
	if err := h.notifier.Send(title, body); err != nil {
		log.Error().Err(err).Str("mode", ms.Mode.Label).Msg("Failed to send recovery alert")
	}
}

func (h *Hub) journalAppend(mode string, status *model.AmbientStatus, fetchErr error, at time.Time) {
	if h.journal == nil {
		return
	}
	if err := h.journal.Append(mode, status, fetchErr, at); err != nil {
		log.Warn().Err(err).Msg("Journal append failed")
	}
}
