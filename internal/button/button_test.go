package button

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thatsimonsguy/ambient-hub/internal/gpio"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

func TestDebouncer(t *testing.T) {
	base := time.Now()
	d := NewDebouncer(200 * time.Millisecond)

	assert.True(t, d.Press(base), "first press always passes")
	assert.False(t, d.Press(base.Add(50*time.Millisecond)), "inside window")
	assert.False(t, d.Press(base.Add(150*time.Millisecond)), "still inside window")
	assert.True(t, d.Press(base.Add(250*time.Millisecond)), "window elapsed")
}

func TestDebouncer_SuppressedPressDoesNotExtendWindow(t *testing.T) {
	base := time.Now()
	d := NewDebouncer(200 * time.Millisecond)

	assert.True(t, d.Press(base))
	// Suppressed at 190ms; the window is anchored on the emitted press,
	// so 210ms is past it even though 190ms was only 20ms ago.
	assert.False(t, d.Press(base.Add(190*time.Millisecond)))
	assert.True(t, d.Press(base.Add(210*time.Millisecond)))
}

func TestSample_FiresOncePerHold(t *testing.T) {
	levels := []bool{true, false, false, true, false, true}
	idx := 0
	gpio.ReadLevel = func(pin model.GPIOPin) (bool, error) {
		level := levels[idx]
		idx++
		return level, nil
	}
	defer gpio.ResetGPIO()

	var presses []time.Time
	l := NewListener(model.GPIOPin{Number: 23}, 25*time.Millisecond, time.Millisecond, func(at time.Time) {
		presses = append(presses, at)
	})

	now := time.Now()
	for i := range levels {
		l.sample(now.Add(time.Duration(i) * 25 * time.Millisecond))
	}

	// Pull-up wiring: low means pressed. Two separate holds, two events.
	assert.Len(t, presses, 2)
	assert.Equal(t, int64(2), l.count.Load())
}

func TestSample_DebouncesChatter(t *testing.T) {
	// Contact chatter: rapid alternation inside one debounce window.
	levels := []bool{false, true, false, true, false}
	idx := 0
	gpio.ReadLevel = func(pin model.GPIOPin) (bool, error) {
		level := levels[idx]
		idx++
		return level, nil
	}
	defer gpio.ResetGPIO()

	var presses int
	l := NewListener(model.GPIOPin{Number: 23}, 25*time.Millisecond, 200*time.Millisecond, func(time.Time) {
		presses++
	})

	now := time.Now()
	for i := range levels {
		l.sample(now.Add(time.Duration(i) * 25 * time.Millisecond))
	}

	assert.Equal(t, 1, presses)
}

func TestSample_ReadErrorKeepsState(t *testing.T) {
	gpio.ReadLevel = func(pin model.GPIOPin) (bool, error) {
		return false, errors.New("pinctrl exploded")
	}
	defer gpio.ResetGPIO()

	var presses int
	l := NewListener(model.GPIOPin{Number: 23}, 25*time.Millisecond, time.Millisecond, func(time.Time) {
		presses++
	})

	l.sample(time.Now())
	assert.Equal(t, 0, presses)
	assert.False(t, l.pressed.Load())
}

func TestSample_ActiveHighPin(t *testing.T) {
	gpio.ReadLevel = func(pin model.GPIOPin) (bool, error) {
		return true, nil
	}
	defer gpio.ResetGPIO()

	var presses int
	l := NewListener(model.GPIOPin{Number: 23, ActiveHigh: true}, 25*time.Millisecond, time.Millisecond, func(time.Time) {
		presses++
	})

	l.sample(time.Now())
	assert.Equal(t, 1, presses)
}
