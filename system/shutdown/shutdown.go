package shutdown

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/ambient-hub/internal/env"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
	"github.com/thatsimonsguy/ambient-hub/internal/pinctrl"
)

// Shutdown forces every output pin inactive through raw pinctrl and
// exits. It skips the gpio package on purpose: a wedged sink must not be
// able to block the lights-out write.
func Shutdown(code int) {
	if env.Cfg != nil && !env.Cfg.SafeMode {
		for _, pin := range outputPins() {
			drive := "dl"
			if !pin.ActiveHigh {
				drive = "dh"
			}
			if err := pinctrl.SetPin(pin.Number, "op", "pn", drive); err != nil {
				log.Warn().Err(err).Int("pin", pin.Number).Msg("Failed to force pin inactive")
			}
		}
		log.Info().Msg("Output pins forced inactive")
	}
	os.Exit(code)
}

func ShutdownWithError(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	Shutdown(1)
}

func outputPins() []model.GPIOPin {
	var pins []model.GPIOPin
	for _, p := range []*model.GPIOPin{
		env.Cfg.GPIO.LEDRed,
		env.Cfg.GPIO.LEDGreen,
		env.Cfg.GPIO.LEDBlue,
		env.Cfg.GPIO.Buzzer,
	} {
		if p != nil {
			pins = append(pins, *p)
		}
	}
	return pins
}
