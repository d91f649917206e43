package gpio

import (
	"errors"
	"testing"

	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

func TestCurrentlyActive(t *testing.T) {
	tests := []struct {
		name       string
		activeHigh bool
		level      bool
		want       bool
	}{
		{"active-high pin at high level", true, true, true},
		{"active-high pin at low level", true, false, false},
		{"active-low pin at low level", false, false, true},
		{"active-low pin at high level", false, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ReadLevel = func(pin model.GPIOPin) (bool, error) {
				return tc.level, nil
			}
			defer ResetGPIO()

			active, err := CurrentlyActive(model.GPIOPin{Number: 17, ActiveHigh: tc.activeHigh})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if active != tc.want {
				t.Errorf("expected active=%v, got %v", tc.want, active)
			}
		})
	}
}

func TestCurrentlyActive_ReadError(t *testing.T) {
	ReadLevel = func(pin model.GPIOPin) (bool, error) {
		return false, errors.New("no pinctrl here")
	}
	defer ResetGPIO()

	if _, err := CurrentlyActive(model.GPIOPin{Number: 17}); err == nil {
		t.Fatal("expected read error to propagate")
	}
}

func TestSafeModeSkipsWrites(t *testing.T) {
	SetSafeMode(true)
	defer SetSafeMode(false)

	// these would shell out to pinctrl (absent on dev boxes) if safe mode
	// did not short-circuit the write
	if err := Activate(model.GPIOPin{Number: 18, ActiveHigh: true}); err != nil {
		t.Fatalf("activate in safe mode: %v", err)
	}
	if err := Deactivate(model.GPIOPin{Number: 18, ActiveHigh: true}); err != nil {
		t.Fatalf("deactivate in safe mode: %v", err)
	}
}
