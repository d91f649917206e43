package model

import (
	"context"
	"time"
)

// Color is an RGB triple, each channel in [0, 255].
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Pulse is a bounded buzzer pattern: Count beeps of On duration separated
// by Off gaps. The zero value is silence.
type Pulse struct {
	Count int
	On    time.Duration
	Off   time.Duration
}

func (p Pulse) Silent() bool {
	return p.Count <= 0
}

// Total returns the wall time the full pattern occupies.
func (p Pulse) Total() time.Duration {
	if p.Silent() {
		return 0
	}
	return time.Duration(p.Count)*p.On + time.Duration(p.Count-1)*p.Off
}

// AmbientStatus is one displayable unit of ambient information. Providers
// build a fresh value on every evaluation; nothing mutates one afterward.
type AmbientStatus struct {
	Color   Color
	Message string
	Buzz    Pulse
}

// NoData is what a mode shows before its first successful fetch. No
// provider produces magenta, so a mode stuck on it stands out.
var NoData = AmbientStatus{
	Color:   Color{R: 128, B: 128},
	Message: "no data yet",
}

// StatusProvider is the one capability a display mode binds: evaluate the
// domain and return a status, or an error the hub will log and ride out.
type StatusProvider interface {
	Evaluate(ctx context.Context) (AmbientStatus, error)
}

// Mode pairs a provider with its label and refresh cadence. Modes are
// assembled once at startup and never change for the life of the process.
type Mode struct {
	Label    string
	Provider StatusProvider
	Interval time.Duration
}

type GPIOPin struct {
	Number     int  `json:"number"`
	ActiveHigh bool `json:"active_high"`
}
