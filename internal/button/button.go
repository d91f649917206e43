package button

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/thatsimonsguy/ambient-hub/internal/gpio"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

// Debouncer passes the first press and swallows followers inside the
// window. Swallowed presses do not extend the window, so a long mash
// still yields one event per window rather than zero.
type Debouncer struct {
	window time.Duration
	last   time.Time
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Press reports whether a press at t should be delivered.
func (d *Debouncer) Press(t time.Time) bool {
	if !d.last.IsZero() && t.Sub(d.last) < d.window {
		return false
	}
	d.last = t
	return true
}

// Listener polls the button pin and invokes press once per debounced
// physical press. Polling is cheap at the configured rate and keeps the
// pin access on the same pinctrl path as everything else.
type Listener struct {
	pin      model.GPIOPin
	poll     time.Duration
	debounce *Debouncer
	press    func(time.Time)

	pressed atomic.Bool
	count   atomic.Int64
}

func NewListener(pin model.GPIOPin, poll, window time.Duration, press func(time.Time)) *Listener {
	return &Listener{
		pin:      pin,
		poll:     poll,
		debounce: NewDebouncer(window),
		press:    press,
	}
}

func (l *Listener) Run(ctx context.Context) error {
	log.Info().
		Int("pin", l.pin.Number).
		Dur("poll", l.poll).
		Msg("Starting button listener")

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Int64("presses", l.count.Load()).Msg("Stopping button listener")
			return ctx.Err()
		case <-ticker.C:
			l.sample(time.Now())
		}
	}
}

// sample reads the pin once and fires on the inactive-to-active edge.
func (l *Listener) sample(now time.Time) {
	level, err := gpio.ReadLevel(l.pin)
	if err != nil {
		log.Debug().Err(err).Int("pin", l.pin.Number).Msg("Button read failed")
		return
	}

	active := level == l.pin.ActiveHigh
	was := l.pressed.Swap(active)
	if was || !active {
		return
	}
	if !l.debounce.Press(now) {
		log.Debug().Int("pin", l.pin.Number).Msg("Suppressing bounce")
		return
	}

	l.count.Inc()
	log.Debug().Int("pin", l.pin.Number).Msg("Button press")
	l.press(now)
}
