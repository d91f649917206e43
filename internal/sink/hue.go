package sink

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/amimof/huego"

	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

const hueWriteTimeout = 5 * time.Second

// HueBackend drives a single Hue light through the bridge REST API, for
// installs where the indicator is a room lamp instead of a soldered LED.
type HueBackend struct {
	light *huego.Light
}

func NewHueBackend(ctx context.Context, bridgeAddr, username string, lightID int) (*HueBackend, error) {
	bridge := huego.New(bridgeAddr, username)
	light, err := bridge.GetLightContext(ctx, lightID)
	if err != nil {
		return nil, fmt.Errorf("hue light %d on %s: %w", lightID, bridgeAddr, err)
	}
	return &HueBackend{light: light}, nil
}

func (b *HueBackend) SetColor(c model.Color) error {
	ctx, cancel := context.WithTimeout(context.Background(), hueWriteTimeout)
	defer cancel()

	if c == (model.Color{}) {
		return b.turnOff(ctx)
	}

	x, y, bri := rgbToXY(c)
	state := huego.State{On: true, Xy: []float32{x, y}, Bri: bri}
	if err := b.light.SetStateContext(ctx, state); err != nil {
		return fmt.Errorf("hue set state: %w", err)
	}
	return nil
}

func (b *HueBackend) Off() error {
	ctx, cancel := context.WithTimeout(context.Background(), hueWriteTimeout)
	defer cancel()
	return b.turnOff(ctx)
}

func (b *HueBackend) turnOff(ctx context.Context) error {
	if err := b.light.OffContext(ctx); err != nil {
		return fmt.Errorf("hue off: %w", err)
	}
	return nil
}

// rgbToXY converts sRGB to the CIE xy chromaticity plus brightness form
// the bridge expects. Gamma expansion first, then the Philips wide-gamut
// matrix.
func rgbToXY(c model.Color) (float32, float32, uint8) {
	r := gammaExpand(float64(c.R) / 255)
	g := gammaExpand(float64(c.G) / 255)
	b := gammaExpand(float64(c.B) / 255)

	x := r*0.664511 + g*0.154324 + b*0.162028
	y := r*0.283881 + g*0.668433 + b*0.047685
	z := r*0.000088 + g*0.072310 + b*0.986039

	sum := x + y + z
	if sum == 0 {
		return 0, 0, 1
	}

	bri := uint8(math.Min(y*254, 254))
	if bri < 1 {
		bri = 1
	}
	return float32(x / sum), float32(y / sum), bri
}

func gammaExpand(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}
