package modes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thatsimonsguy/ambient-hub/internal/config"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
	"github.com/thatsimonsguy/ambient-hub/internal/provider"
	"github.com/thatsimonsguy/ambient-hub/internal/provider/sysstat"
	"github.com/thatsimonsguy/ambient-hub/internal/provider/weather"
)

// idleInterval is a formality: the idle provider returns a constant, so
// its refresher has nothing urgent to do.
const idleInterval = time.Hour

// Build assembles the display rotation from config. The returned order is
// the button-cycle order and holds for the life of the process.
func Build(cfg *config.Config) ([]model.Mode, error) {
	names := cfg.Modes
	if names == nil {
		names = defaultRotation(cfg)
	}
	if len(names) == 0 {
		return nil, errors.New("mode rotation is empty")
	}

	seen := map[string]bool{}
	var rotation []model.Mode

	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("mode %q listed twice", name)
		}
		seen[name] = true

		switch name {
		case "weather":
			if cfg.Latitude == nil || cfg.Longitude == nil {
				return nil, errors.New("weather mode requires latitude and longitude")
			}
			rotation = append(rotation, model.Mode{
				Label:    "weather",
				Provider: weather.New(*cfg.Latitude, *cfg.Longitude, cfg.Timezone, time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
				Interval: time.Duration(cfg.WeatherIntervalSeconds) * time.Second,
			})
		case "system":
			rotation = append(rotation, model.Mode{
				Label:    "system",
				Provider: sysstat.New(cfg.DiskPath),
				Interval: time.Duration(cfg.SystemIntervalSeconds) * time.Second,
			})
		case "idle":
			rotation = append(rotation, model.Mode{
				Label:    "idle",
				Provider: idleProvider(cfg.IdleColor),
				Interval: idleInterval,
			})
		default:
			return nil, fmt.Errorf("unknown mode %q", name)
		}
	}

	return rotation, nil
}

// defaultRotation is everything the config can support: weather when
// coordinates are present, then system health, then the idle standby.
func defaultRotation(cfg *config.Config) []string {
	var names []string
	if cfg.Latitude != nil && cfg.Longitude != nil {
		names = append(names, "weather")
	}
	return append(names, "system", "idle")
}

// idleProvider shows a fixed color, dark unless configured otherwise, so
// the button can park the display.
func idleProvider(c *model.Color) provider.Func {
	status := model.AmbientStatus{Message: "idle"}
	if c != nil {
		status.Color = *c
	}
	return func(ctx context.Context) (model.AmbientStatus, error) {
		return status, nil
	}
}
