package sysstat

import (
	"strings"
	"testing"

	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		name string
		s    sample
		want float64
	}{
		{"healthy box", sample{CPUs: 4}, 0},
		{"load pressure", sample{Load5: 2, CPUs: 4, DiskUsedFrac: 0.1}, 0.5},
		{"load clamps at saturation", sample{Load5: 12, CPUs: 4}, 1},
		{"disk fill dominates", sample{CPUs: 4, DiskUsedFrac: 0.9}, 0.9},
		{"cool cpu contributes nothing", sample{CPUs: 4, CPUTemp: 45, HasTemp: true}, 0},
		{"warm cpu", sample{CPUs: 4, CPUTemp: 65, HasTemp: true}, 0.5},
		{"hot cpu clamps", sample{CPUs: 4, CPUTemp: 95, HasTemp: true}, 1},
		{"zero cpu count treated as one", sample{Load5: 1}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := severity(tc.s); got != tc.want {
				t.Errorf("expected severity %v, got %v", tc.want, got)
			}
		})
	}
}

func TestColorForSeverity(t *testing.T) {
	tests := []struct {
		sev  float64
		want model.Color
	}{
		{0, model.Color{R: 0, G: 255, B: 255}},
		{0.5, model.Color{R: 128, G: 204, B: 102}},
		{1, model.Color{R: 255, G: 153, B: 0}},
	}

	for _, tc := range tests {
		if got := colorForSeverity(tc.sev); got != tc.want {
			t.Errorf("severity %v: expected %+v, got %+v", tc.sev, tc.want, got)
		}
	}
}

func TestPulseForSeverity(t *testing.T) {
	tests := []struct {
		sev       float64
		wantCount int
	}{
		{0, 0},
		{0.19, 0},
		{0.2, 1},
		{0.6, 2},
		{1, 4},
	}

	for _, tc := range tests {
		if got := pulseForSeverity(tc.sev); got.Count != tc.wantCount {
			t.Errorf("severity %v: expected %d pulses, got %d", tc.sev, tc.wantCount, got.Count)
		}
	}
}

func TestDescribe(t *testing.T) {
	s := sample{Load5: 0.42, CPUs: 4, DiskUsedFrac: 0.63, CPUTemp: 51.2, HasTemp: true}
	got := describe(s)
	want := "5m load: 0.42, Disk used: 63%, CPU temp: 51.2°C"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	s.HasTemp = false
	if got := describe(s); strings.Contains(got, "CPU temp") {
		t.Errorf("expected temp to be omitted, got %q", got)
	}
}

func TestEvaluate_ReadsRealHost(t *testing.T) {
	c := New("/")

	status, err := c.Evaluate(t.Context())
	if err != nil {
		t.Fatalf("unexpected error sampling host: %v", err)
	}
	if status.Message == "" {
		t.Error("expected a populated message")
	}
}
