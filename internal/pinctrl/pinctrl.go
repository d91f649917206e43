package pinctrl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// PinState mirrors one line of `pinctrl get` output.
type PinState struct {
	Pin     int
	Mode    string // "ip", "op", "no", "a0"...
	Pull    string // "pu", "pd", "pn"
	Drive   string // "dh", "dl", empty for inputs
	Level   string // "hi", "lo", "--"
	Comment string // trailing comment, includes the GPIO name
}

var pinLineRegex = regexp.MustCompile(`^\s*(\d+):\s+(\S+)\s+(.*?)\s+\|\s+(\S+)\s+//\s+(.*GPIO(\d+).*)$`)

// ReadAllPins returns the parsed result of `pinctrl get`, keyed by GPIO
// number.
func ReadAllPins() (map[int]PinState, error) {
	out, err := exec.Command("pinctrl", "get").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute pinctrl get: %w", err)
	}
	return parsePinList(bytes.NewReader(out))
}

// ReadPin returns the state of a single GPIO pin.
func ReadPin(pin int) (*PinState, error) {
	out, err := exec.Command("pinctrl", "get", fmt.Sprint(pin)).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute pinctrl get %d: %w", pin, err)
	}
	states, err := parsePinList(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	state, ok := states[pin]
	if !ok {
		return nil, fmt.Errorf("pin %d not found in pinctrl output", pin)
	}
	return &state, nil
}

// ReadLevel performs a fast logic-level read via `pinctrl lev <pin>`.
func ReadLevel(pin int) (bool, error) {
	out, err := exec.Command("pinctrl", "lev", fmt.Sprint(pin)).Output()
	if err != nil {
		return false, fmt.Errorf("failed to read level for pin %d: %w", pin, err)
	}
	return parseLevel(string(out))
}

// SetPin applies pinctrl set options to a GPIO pin.
// Example: SetPin(18, "op", "pn", "dh") drives pin 18 high.
func SetPin(pin int, opts ...string) error {
	args := append([]string{"set", fmt.Sprint(pin)}, opts...)
	out, err := exec.Command("pinctrl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("pinctrl set failed: %s (output: %s)", err, string(out))
	}
	return nil
}

func parsePinList(r io.Reader) (map[int]PinState, error) {
	result := make(map[int]PinState)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		matches := pinLineRegex.FindStringSubmatch(scanner.Text())
		if len(matches) != 7 {
			continue
		}

		index, _ := strconv.Atoi(matches[1])
		state := PinState{
			Pin:     index,
			Mode:    matches[2],
			Level:   matches[4],
			Comment: matches[5],
		}

		for _, opt := range strings.Fields(matches[3]) {
			switch opt {
			case "pu", "pd", "pn":
				if state.Pull == "" {
					state.Pull = opt
				}
			case "dh", "dl":
				if state.Drive == "" {
					state.Drive = opt
				}
			}
		}

		result[state.Pin] = state
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning pinctrl output: %w", err)
	}
	return result, nil
}

func parseLevel(out string) (bool, error) {
	switch strings.TrimSpace(out) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected output from pinctrl lev: %q", strings.TrimSpace(out))
	}
}
