package sysstat

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/thatsimonsguy/ambient-hub/internal/datadog"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
	"github.com/thatsimonsguy/ambient-hub/internal/provider"
)

// Collector summarizes local host health: load pressure, disk fill and
// CPU heat folded into one severity reading.
type Collector struct {
	diskPath string
}

func New(diskPath string) *Collector {
	return &Collector{diskPath: diskPath}
}

type sample struct {
	Load5        float64
	CPUs         int
	DiskUsedFrac float64
	CPUTemp      float64
	HasTemp      bool
}

func (c *Collector) Evaluate(ctx context.Context) (model.AmbientStatus, error) {
	s, err := c.sample(ctx)
	if err != nil {
		return model.AmbientStatus{}, err
	}

	sev := severity(s)
	datadog.Gauge("system.severity", sev)
	datadog.Gauge("system.load5", s.Load5)
	datadog.Gauge("system.disk_used_pct", s.DiskUsedFrac*100)
	if s.HasTemp {
		datadog.Gauge("system.cpu_temp", s.CPUTemp)
	}

	return model.AmbientStatus{
		Color:   colorForSeverity(sev),
		Message: describe(s),
		Buzz:    pulseForSeverity(sev),
	}, nil
}

func (c *Collector) sample(ctx context.Context) (sample, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return sample{}, provider.Wrap(provider.KindMetrics, fmt.Errorf("load average: %w", err))
	}

	cpus, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return sample{}, provider.Wrap(provider.KindMetrics, fmt.Errorf("cpu count: %w", err))
	}

	usage, err := disk.UsageWithContext(ctx, c.diskPath)
	if err != nil {
		return sample{}, provider.Wrap(provider.KindMetrics, fmt.Errorf("disk usage for %s: %w", c.diskPath, err))
	}

	s := sample{
		Load5:        avg.Load5,
		CPUs:         cpus,
		DiskUsedFrac: usage.UsedPercent / 100,
	}
	if temp, ok := cpuTemperature(ctx); ok {
		s.CPUTemp = temp
		s.HasTemp = true
	}
	return s, nil
}

// cpuTemperature scans sensor readings for the CPU package. Partial
// errors are fine; a board with no readable sensor just contributes
// nothing to severity.
func cpuTemperature(ctx context.Context) (float64, bool) {
	temps, _ := sensors.TemperaturesWithContext(ctx)
	if len(temps) == 0 {
		return 0, false
	}

	best, found := 0.0, false
	for _, t := range temps {
		key := strings.ToLower(t.SensorKey)
		if strings.Contains(key, "cpu") || strings.Contains(key, "coretemp") ||
			strings.Contains(key, "k10temp") || strings.Contains(key, "soc") {
			if t.Temperature > best {
				best, found = t.Temperature, true
			}
		}
	}
	if !found {
		for _, t := range temps {
			if t.Temperature > best {
				best, found = t.Temperature, true
			}
		}
	}
	return best, found
}

// severity is the worst of load pressure, disk fill and CPU heat, each
// normalized to [0, 1]. Heat runs from fine below 50°C to critical at
// 80°C.
func severity(s sample) float64 {
	cpus := s.CPUs
	if cpus < 1 {
		cpus = 1
	}
	loadRatio := clamp(s.Load5/float64(cpus), 0, 1)
	diskRatio := clamp(s.DiskUsedFrac, 0, 1)

	heatRatio := 0.0
	if s.HasTemp {
		heatRatio = clamp((s.CPUTemp-50)/30, 0, 1)
	}

	return math.Max(loadRatio, math.Max(diskRatio, heatRatio))
}

// colorForSeverity moves from soothing toward red as severity climbs,
// with blue dropping out early so the midrange reads amber.
func colorForSeverity(sev float64) model.Color {
	sev = clamp(sev, 0, 1)
	red := sev
	green := 1 - 0.4*sev
	blue := math.Max(0, 1-sev*1.2)
	return model.Color{R: channel(red), G: channel(green), B: channel(blue)}
}

// pulseForSeverity stays quiet for a healthy box and beeps faster as
// things degrade.
func pulseForSeverity(sev float64) model.Pulse {
	if sev < 0.2 {
		return model.Pulse{}
	}
	scale := clamp((sev-0.2)/0.8, 0, 1)
	return model.Pulse{
		Count: 1 + int(scale*3),
		On:    150 * time.Millisecond,
		Off:   100 * time.Millisecond,
	}
}

func describe(s sample) string {
	msg := fmt.Sprintf("5m load: %.2f, Disk used: %.0f%%", s.Load5, s.DiskUsedFrac*100)
	if s.HasTemp {
		msg += fmt.Sprintf(", CPU temp: %.1f°C", s.CPUTemp)
	}
	return msg
}

func channel(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
