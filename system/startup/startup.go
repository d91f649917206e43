package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/thatsimonsguy/ambient-hub/internal/config"
	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

const (
	BootScriptName  = "set-ambient-pins.sh"
	GPIOUnitName    = "ambient-gpio.service"
	ServiceUnitName = "ambient-hub.service"
)

// WriteAssets generates the boot script and systemd units into dir so an
// install is a cp away from surviving reboots.
func WriteAssets(cfg *config.Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create asset dir: %w", err)
	}

	scriptPath := filepath.Join(dir, BootScriptName)
	if err := WriteBootScript(cfg, scriptPath); err != nil {
		return err
	}
	if err := WriteGPIOUnit(filepath.Join(dir, GPIOUnitName), scriptPath); err != nil {
		return err
	}
	return WriteServiceUnit(filepath.Join(dir, ServiceUnitName))
}

// WriteBootScript emits the pinctrl commands that park every pin in a
// known state before the hub starts: outputs inactive, button pulled up.
func WriteBootScript(cfg *config.Config, path string) error {
	var lines []string
	lines = append(lines, "#!/bin/bash", "", "# Ambient hub GPIO pin configuration at boot", "")

	write := func(label string, pin model.GPIOPin) {
		drive := "dl"
		if !pin.ActiveHigh {
			drive = "dh"
		}
		lines = append(lines, fmt.Sprintf("# %s", label))
		lines = append(lines, fmt.Sprintf("pinctrl set %d op pn %s", pin.Number, drive))
		lines = append(lines, "")
	}

	write("led_red", *cfg.GPIO.LEDRed)
	write("led_green", *cfg.GPIO.LEDGreen)
	write("led_blue", *cfg.GPIO.LEDBlue)
	write("buzzer", *cfg.GPIO.Buzzer)

	lines = append(lines, "# button")
	lines = append(lines, fmt.Sprintf("pinctrl set %d ip pu", cfg.GPIO.Button.Number))
	lines = append(lines, "")

	contents := strings.Join(lines, "\n")
	if err := os.WriteFile(path, []byte(contents), 0755); err != nil {
		return fmt.Errorf("failed to write boot script: %w", err)
	}
	return nil
}

func WriteGPIOUnit(path, scriptPath string) error {
	unit := fmt.Sprintf(`[Unit]
Description=Configure ambient hub GPIO pins at boot
After=network.target

[Service]
Type=oneshot
Environment=PATH=/usr/local/bin:/usr/bin:/bin
ExecStart=%s
RemainAfterExit=true

[Install]
WantedBy=multi-user.target
`, scriptPath)

	if err := os.WriteFile(path, []byte(unit), 0644); err != nil {
		return fmt.Errorf("failed to write gpio unit: %w", err)
	}
	return nil
}

func WriteServiceUnit(path string) error {
	unit := fmt.Sprintf(`[Unit]
Description=Ambient information hub
After=%s
Requires=%s

[Service]
Type=simple
Environment=PATH=/usr/local/bin:/usr/bin:/bin
ExecStart=/usr/local/bin/ambient-hub -config-file /etc/ambient-hub/config.json
Restart=on-failure
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, GPIOUnitName, GPIOUnitName)

	if err := os.WriteFile(path, []byte(unit), 0644); err != nil {
		return fmt.Errorf("failed to write service unit: %w", err)
	}
	return nil
}

// RunBootScript applies the generated pin configuration immediately.
func RunBootScript(path string) error {
	cmd := exec.Command("/bin/bash", path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
