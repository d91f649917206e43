package sink

import (
	"github.com/thatsimonsguy/ambient-hub/internal/gpio"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

// Channels are binary through pinctrl, no PWM, so anything at half
// intensity or above lights the line.
const onThreshold = 128

// LEDBackend drives an RGB LED through three GPIO lines.
type LEDBackend struct {
	Red   model.GPIOPin
	Green model.GPIOPin
	Blue  model.GPIOPin
}

func (b LEDBackend) SetColor(c model.Color) error {
	if err := setChannel(b.Red, c.R); err != nil {
		return err
	}
	if err := setChannel(b.Green, c.G); err != nil {
		return err
	}
	return setChannel(b.Blue, c.B)
}

func (b LEDBackend) Off() error {
	for _, pin := range []model.GPIOPin{b.Red, b.Green, b.Blue} {
		if err := gpio.Deactivate(pin); err != nil {
			return err
		}
	}
	return nil
}

func setChannel(pin model.GPIOPin, level uint8) error {
	if level >= onThreshold {
		return gpio.Activate(pin)
	}
	return gpio.Deactivate(pin)
}
