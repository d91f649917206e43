package sink

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/thatsimonsguy/ambient-hub/internal/gpio"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

// WriteError wraps a hardware write failure. Callers log it and move on;
// the next render retries the device.
type WriteError struct {
	Output string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s write failed: %v", e.Output, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Backend drives the light itself. SetColor must be safe to call with
// the same color repeatedly, though Sink already filters repeats.
type Backend interface {
	SetColor(c model.Color) error
	Off() error
}

// Sink is the single owner of the display and buzzer. All renders funnel
// through it, so backends never see concurrent writes.
type Sink struct {
	backend    Backend
	buzzer     model.GPIOPin
	haveBuzzer bool

	mu   sync.Mutex
	last *model.AmbientStatus

	closed  atomic.Bool
	buzzing atomic.Bool
	renders atomic.Int64
}

func New(backend Backend, buzzer *model.GPIOPin) *Sink {
	s := &Sink{backend: backend}
	if buzzer != nil {
		s.buzzer = *buzzer
		s.haveBuzzer = true
	}
	return s
}

// Render pushes a status to the hardware. Re-rendering the status that
// is already showing is a no-op. A failed write leaves the remembered
// status untouched so the next render actually retries.
func (s *Sink) Render(status model.AmbientStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return &WriteError{Output: "display", Err: errors.New("sink is closed")}
	}
	if s.last != nil && *s.last == status {
		log.Debug().Str("message", status.Message).Msg("Display already current, skipping render")
		return nil
	}

	if err := s.backend.SetColor(status.Color); err != nil {
		return &WriteError{Output: "display", Err: err}
	}
	s.last = &status
	s.renders.Inc()

	log.Debug().
		Uint8("r", status.Color.R).
		Uint8("g", status.Color.G).
		Uint8("b", status.Color.B).
		Str("message", status.Message).
		Msg("Rendered status")

	if s.haveBuzzer && !status.Buzz.Silent() {
		s.pulse(status.Buzz)
	}
	return nil
}

// pulse beeps in the background. If a pulse is still playing the new one
// is dropped, never queued, so patterns cannot pile up behind renders.
func (s *Sink) pulse(p model.Pulse) {
	if !s.buzzing.CompareAndSwap(false, true) {
		log.Debug().Msg("Buzzer busy, dropping pulse")
		return
	}

	go func() {
		defer s.buzzing.Store(false)
		for i := 0; i < p.Count; i++ {
			if s.closed.Load() {
				return
			}
			if err := gpio.Activate(s.buzzer); err != nil {
				log.Warn().Err(err).Msg("Buzzer activate failed")
				return
			}
			time.Sleep(p.On)
			if err := gpio.Deactivate(s.buzzer); err != nil {
				log.Warn().Err(err).Msg("Buzzer deactivate failed")
				return
			}
			if i < p.Count-1 {
				time.Sleep(p.Off)
			}
		}
	}()
}

// Close blanks the display and silences the buzzer. It waits up to a
// second for an in-flight pulse to finish so the final deactivate is not
// raced by a beep.
func (s *Sink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	deadline := time.Now().Add(time.Second)
	for s.buzzing.Load() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.backend.Off()
	if s.haveBuzzer {
		if derr := gpio.Deactivate(s.buzzer); derr != nil && err == nil {
			err = derr
		}
	}
	s.last = nil

	log.Info().Int64("renders", s.renders.Load()).Msg("Display sink closed")
	return err
}
