package gpio

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/ambient-hub/internal/config"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
	"github.com/thatsimonsguy/ambient-hub/internal/pinctrl"
)

var safeMode bool

// SetSafeMode disables physical pin writes process-wide. Reads still go
// through, so the hub can be exercised on a machine with no wiring.
func SetSafeMode(enabled bool) {
	safeMode = enabled
}

// Activate drives a pin to its active level. Package vars so tests can
// swap the hardware out; restore with ResetGPIO.
var Activate = activatePin

var Deactivate = deactivatePin

// ReadLevel reports the raw logic level of a pin.
var ReadLevel = readPinLevel

// ResetGPIO restores the real pin operations after a test has swapped
// them.
func ResetGPIO() {
	Activate = activatePin
	Deactivate = deactivatePin
	ReadLevel = readPinLevel
}

func activatePin(pin model.GPIOPin) error {
	if safeMode {
		log.Debug().Int("pin", pin.Number).Msg("Safe mode: skipping activate")
		return nil
	}

	drive := "dh"
	if !pin.ActiveHigh {
		drive = "dl"
	}
	if err := pinctrl.SetPin(pin.Number, "op", "pn", drive); err != nil {
		return fmt.Errorf("failed to activate pin %d: %w", pin.Number, err)
	}
	return nil
}

func deactivatePin(pin model.GPIOPin) error {
	if safeMode {
		log.Debug().Int("pin", pin.Number).Msg("Safe mode: skipping deactivate")
		return nil
	}

	drive := "dl"
	if !pin.ActiveHigh {
		drive = "dh"
	}
	if err := pinctrl.SetPin(pin.Number, "op", "pn", drive); err != nil {
		return fmt.Errorf("failed to deactivate pin %d: %w", pin.Number, err)
	}
	return nil
}

func readPinLevel(pin model.GPIOPin) (bool, error) {
	return pinctrl.ReadLevel(pin.Number)
}

// CurrentlyActive reports whether the pin currently sits at its active
// level.
func CurrentlyActive(pin model.GPIOPin) (bool, error) {
	level, err := ReadLevel(pin)
	if err != nil {
		return false, err
	}
	return pin.ActiveHigh == level, nil
}

// ValidateStartupPins refuses to start when an output pin is already
// driven active (a crashed run may have left the buzzer on) or when the
// button pin has been claimed as an output.
func ValidateStartupPins(cfg *config.Config) error {
	outputs := []struct {
		Name string
		Pin  model.GPIOPin
	}{
		{"led_red", *cfg.GPIO.LEDRed},
		{"led_green", *cfg.GPIO.LEDGreen},
		{"led_blue", *cfg.GPIO.LEDBlue},
		{"buzzer", *cfg.GPIO.Buzzer},
	}

	for _, out := range outputs {
		active, err := CurrentlyActive(out.Pin)
		if err != nil {
			return fmt.Errorf("failed to read %s (GPIO %d): %w", out.Name, out.Pin.Number, err)
		}
		if active {
			return fmt.Errorf("%s (GPIO %d) is already active at startup", out.Name, out.Pin.Number)
		}
	}

	state, err := pinctrl.ReadPin(cfg.GPIO.Button.Number)
	if err != nil {
		return fmt.Errorf("failed to read button pin state: %w", err)
	}
	if state.Mode == "op" {
		return fmt.Errorf("button pin (GPIO %d) is configured as an output", cfg.GPIO.Button.Number)
	}

	return nil
}
