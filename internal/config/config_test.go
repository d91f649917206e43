package config

import (
	"testing"

	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

func validConfig() Config {
	cfg := Config{
		GPIO: GPIO{
			LEDRed:   &model.GPIOPin{Number: 17},
			LEDGreen: &model.GPIOPin{Number: 27},
			LEDBlue:  &model.GPIOPin{Number: 22},
			Button:   &model.GPIOPin{Number: 23},
			Buzzer:   &model.GPIOPin{Number: 18, ActiveHigh: true},
		},
	}
	applyDefaults(&cfg)
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.validate() // should not panic
}

func TestValidate_GPIO_Missing(t *testing.T) {
	cfg := validConfig()
	cfg.GPIO.Buzzer = nil

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to missing GPIO config, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_GPIO_Conflict(t *testing.T) {
	cfg := validConfig()
	cfg.GPIO.Button = &model.GPIOPin{Number: 17} // collides with led_red

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to conflicting pin numbers, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_GPIO_OutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.GPIO.Buzzer = &model.GPIOPin{Number: 53, ActiveHigh: true}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to out-of-range pin, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_CoordsRequireEachOther(t *testing.T) {
	cfg := validConfig()
	lat := 47.61
	cfg.Latitude = &lat

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to latitude without longitude, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_EmptyModeRotation(t *testing.T) {
	cfg := validConfig()
	cfg.Modes = []string{}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to empty mode rotation, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_HueBackendNeedsBridge(t *testing.T) {
	cfg := validConfig()
	cfg.SinkBackend = "hue"

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to incomplete hue config, but got none")
		}
	}()

	cfg.validate()
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	if cfg.GPIO.LEDRed == nil || cfg.GPIO.LEDRed.Number != 17 {
		t.Errorf("unexpected led_red default: %+v", cfg.GPIO.LEDRed)
	}
	if cfg.GPIO.Buzzer == nil || !cfg.GPIO.Buzzer.ActiveHigh {
		t.Error("expected buzzer to default active-high")
	}
	if cfg.SystemIntervalSeconds != 30 || cfg.WeatherIntervalSeconds != 300 {
		t.Errorf("unexpected interval defaults: %d/%d", cfg.SystemIntervalSeconds, cfg.WeatherIntervalSeconds)
	}
	if cfg.DebounceMillis != 200 || cfg.ButtonPollMillis != 25 {
		t.Errorf("unexpected button defaults: %d/%d", cfg.DebounceMillis, cfg.ButtonPollMillis)
	}
	if cfg.SinkBackend != "gpio" {
		t.Errorf("unexpected sink backend default: %q", cfg.SinkBackend)
	}
	if cfg.DiskPath != "/" || cfg.Timezone != "auto" {
		t.Errorf("unexpected path/timezone defaults: %q/%q", cfg.DiskPath, cfg.Timezone)
	}
}
