package sink

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/thatsimonsguy/ambient-hub/internal/gpio"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

type spyBackend struct {
	colors []model.Color
	offs   int
	fail   error
}

func (b *spyBackend) SetColor(c model.Color) error {
	if b.fail != nil {
		return b.fail
	}
	b.colors = append(b.colors, c)
	return nil
}

func (b *spyBackend) Off() error {
	b.offs++
	return nil
}

func TestRender_WritesColor(t *testing.T) {
	backend := &spyBackend{}
	s := New(backend, nil)

	err := s.Render(model.AmbientStatus{Color: model.Color{R: 200}, Message: "hot"})
	require.NoError(t, err)
	require.Len(t, backend.colors, 1)
	assert.Equal(t, model.Color{R: 200}, backend.colors[0])
	assert.Equal(t, int64(1), s.renders.Load())
}

func TestRender_SkipsUnchangedStatus(t *testing.T) {
	backend := &spyBackend{}
	s := New(backend, nil)
	status := model.AmbientStatus{Color: model.Color{G: 200}, Message: "fine"}

	require.NoError(t, s.Render(status))
	require.NoError(t, s.Render(status))

	assert.Len(t, backend.colors, 1, "second render should not touch the backend")
}

func TestRender_FailedWriteRetriesNextTime(t *testing.T) {
	backend := &spyBackend{fail: errors.New("bus stuck")}
	s := New(backend, nil)
	status := model.AmbientStatus{Color: model.Color{B: 200}}

	err := s.Render(status)
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "display", werr.Output)

	// The failed status was never remembered, so the retry writes.
	backend.fail = nil
	require.NoError(t, s.Render(status))
	assert.Len(t, backend.colors, 1)
}

func TestRender_AfterClose(t *testing.T) {
	backend := &spyBackend{}
	s := New(backend, nil)
	require.NoError(t, s.Close())

	err := s.Render(model.AmbientStatus{})
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
}

func TestRender_PulsesBuzzer(t *testing.T) {
	var activations atomic.Int64
	gpio.Activate = func(pin model.GPIOPin) error {
		activations.Inc()
		return nil
	}
	gpio.Deactivate = func(pin model.GPIOPin) error { return nil }
	defer gpio.ResetGPIO()

	s := New(&spyBackend{}, &model.GPIOPin{Number: 18, ActiveHigh: true})
	status := model.AmbientStatus{
		Color: model.Color{R: 200},
		Buzz:  model.Pulse{Count: 2, On: time.Millisecond, Off: time.Millisecond},
	}

	require.NoError(t, s.Render(status))
	assert.Eventually(t, func() bool {
		return activations.Load() == 2
	}, time.Second, 5*time.Millisecond)

	// Close waits out the pulse goroutine before the mocks are restored.
	require.NoError(t, s.Close())
}

func TestPulse_DropsWhileBusy(t *testing.T) {
	var activations atomic.Int64
	gpio.Activate = func(pin model.GPIOPin) error {
		activations.Inc()
		return nil
	}
	gpio.Deactivate = func(pin model.GPIOPin) error { return nil }
	defer gpio.ResetGPIO()

	s := New(&spyBackend{}, &model.GPIOPin{Number: 18, ActiveHigh: true})
	s.buzzing.Store(true)

	s.pulse(model.Pulse{Count: 4, On: time.Millisecond, Off: time.Millisecond})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(0), activations.Load())
}

func TestClose_BlanksDisplayAndBuzzer(t *testing.T) {
	var deactivated []int
	gpio.Deactivate = func(pin model.GPIOPin) error {
		deactivated = append(deactivated, pin.Number)
		return nil
	}
	defer gpio.ResetGPIO()

	backend := &spyBackend{}
	s := New(backend, &model.GPIOPin{Number: 18, ActiveHigh: true})

	require.NoError(t, s.Close())
	assert.Equal(t, 1, backend.offs)
	assert.Contains(t, deactivated, 18)

	// Second close is a no-op.
	require.NoError(t, s.Close())
	assert.Equal(t, 1, backend.offs)
}

func TestLEDBackend_ThresholdsChannels(t *testing.T) {
	var active []int
	gpio.Activate = func(pin model.GPIOPin) error {
		active = append(active, pin.Number)
		return nil
	}
	gpio.Deactivate = func(pin model.GPIOPin) error { return nil }
	defer gpio.ResetGPIO()

	b := LEDBackend{
		Red:   model.GPIOPin{Number: 17},
		Green: model.GPIOPin{Number: 27},
		Blue:  model.GPIOPin{Number: 22},
	}

	require.NoError(t, b.SetColor(model.Color{R: 0, G: 100, B: 200}))
	assert.Equal(t, []int{22}, active, "only the blue channel crosses the threshold")

	active = nil
	require.NoError(t, b.SetColor(model.Color{R: 200}))
	assert.Equal(t, []int{17}, active)
}

func TestRGBToXY(t *testing.T) {
	x, y, bri := rgbToXY(model.Color{R: 255})
	assert.InDelta(t, 0.675, x, 0.03)
	assert.InDelta(t, 0.322, y, 0.03)
	assert.Greater(t, bri, uint8(0))

	x, y, _ = rgbToXY(model.Color{R: 255, G: 255, B: 255})
	assert.InDelta(t, 0.3227, x, 0.01)
	assert.InDelta(t, 0.329, y, 0.01)
}
