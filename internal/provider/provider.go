package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

// Kind classifies why an evaluation failed.
type Kind string

const (
	KindNetwork Kind = "network"
	KindTimeout Kind = "timeout"
	KindParse   Kind = "parse"
	KindMetrics Kind = "metrics"
	KindUnknown Kind = "unknown"
)

// FetchError wraps a provider failure with its classification. The hub
// logs the kind and keeps the previous status on display.
type FetchError struct {
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Wrap classifies err as a FetchError. Returns nil for a nil err.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Kind: kind, Err: err}
}

// KindOf extracts the classification from err.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// Func adapts a plain function to the StatusProvider interface, for modes
// whose status needs no fetcher of its own.
type Func func(ctx context.Context) (model.AmbientStatus, error)

func (f Func) Evaluate(ctx context.Context) (model.AmbientStatus, error) {
	return f(ctx)
}
