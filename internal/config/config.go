package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	"github.com/thatsimonsguy/ambient-hub/internal/model"
)

type GPIO struct {
	LEDRed   *model.GPIOPin `json:"led_red"`
	LEDGreen *model.GPIOPin `json:"led_green"`
	LEDBlue  *model.GPIOPin `json:"led_blue"`
	Button   *model.GPIOPin `json:"button"`
	Buzzer   *model.GPIOPin `json:"buzzer"`
}

type Hue struct {
	BridgeAddr string `json:"bridge_addr"`
	Username   string `json:"username"`
	LightID    int    `json:"light_id"`
}

type Config struct {
	ConfigFile string
	LogLevel   zerolog.Level
	LogFile    string

	SafeMode bool `json:"safe_mode"`

	// Modes is the button-cycle order. Absent means "everything the rest
	// of the config can support"; explicitly empty is a startup error.
	Modes []string `json:"modes"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  string   `json:"timezone"`

	SystemIntervalSeconds  int    `json:"system_interval_seconds"`
	WeatherIntervalSeconds int    `json:"weather_interval_seconds"`
	FetchTimeoutSeconds    int    `json:"fetch_timeout_seconds"`
	DiskPath               string `json:"disk_path"`

	DebounceMillis   int `json:"debounce_millis"`
	ButtonPollMillis int `json:"button_poll_millis"`

	IdleColor *model.Color `json:"idle_color"`

	SinkBackend string `json:"sink_backend"`
	Hue         Hue    `json:"hue"`

	FailureThreshold int    `json:"failure_threshold"`
	JournalFile      string `json:"journal_file"`
	NtfyTopic        string `json:"ntfy_topic"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`

	GPIO GPIO `json:"gpio"`
}

func Load() Config {
	var configFile, logLevel, logFile string

	flag.StringVar(&configFile, "config-file", "config.json", "Path to hub config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "Log file path (empty logs to stderr only)")
	safeMode := flag.Bool("safe-mode", false, "Log pin writes without executing them")
	flag.Parse()

	cfg := LoadFile(configFile)
	cfg.ConfigFile = configFile
	cfg.LogLevel = parseLogLevel(logLevel)
	cfg.LogFile = logFile
	if *safeMode {
		cfg.SafeMode = true
	}
	return cfg
}

// LoadFile reads and validates a config file. Flag handling lives in
// Load; tools that manage their own flags call this directly.
func LoadFile(path string) Config {
	var cfg Config

	file, err := os.Open(path)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	cfg.LogLevel = zerolog.InfoLevel
	applyDefaults(&cfg)
	cfg.validate()
	return cfg
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// applyDefaults fills anything the file left out. The pin defaults match
// the stock wiring: common-cathode RGB LED driven active-low on 17/27/22,
// button to ground on 23, buzzer on 18.
func applyDefaults(cfg *Config) {
	if cfg.GPIO.LEDRed == nil {
		cfg.GPIO.LEDRed = &model.GPIOPin{Number: 17}
	}
	if cfg.GPIO.LEDGreen == nil {
		cfg.GPIO.LEDGreen = &model.GPIOPin{Number: 27}
	}
	if cfg.GPIO.LEDBlue == nil {
		cfg.GPIO.LEDBlue = &model.GPIOPin{Number: 22}
	}
	if cfg.GPIO.Button == nil {
		cfg.GPIO.Button = &model.GPIOPin{Number: 23}
	}
	if cfg.GPIO.Buzzer == nil {
		cfg.GPIO.Buzzer = &model.GPIOPin{Number: 18, ActiveHigh: true}
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "auto"
	}
	if cfg.SystemIntervalSeconds == 0 {
		cfg.SystemIntervalSeconds = 30
	}
	if cfg.WeatherIntervalSeconds == 0 {
		cfg.WeatherIntervalSeconds = 300
	}
	if cfg.FetchTimeoutSeconds == 0 {
		cfg.FetchTimeoutSeconds = 10
	}
	if cfg.DiskPath == "" {
		cfg.DiskPath = "/"
	}
	if cfg.DebounceMillis == 0 {
		cfg.DebounceMillis = 200
	}
	if cfg.ButtonPollMillis == 0 {
		cfg.ButtonPollMillis = 25
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SinkBackend == "" {
		cfg.SinkBackend = "gpio"
	}
}

func (cfg *Config) validate() {
	var (
		usedPins  = map[int]string{}
		conflicts []string
	)

	v := reflect.ValueOf(cfg.GPIO)
	t := reflect.TypeOf(cfg.GPIO)

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldName := t.Field(i).Tag.Get("json")

		if field.IsNil() {
			panic("Missing GPIO config field: gpio." + fieldName)
		}

		pin := field.Interface().(*model.GPIOPin)
		if pin.Number < 0 || pin.Number > 27 {
			panic(fmt.Sprintf("Invalid GPIO pin for gpio.%s: %d", fieldName, pin.Number))
		}
		if other, exists := usedPins[pin.Number]; exists {
			conflicts = append(conflicts, fmt.Sprintf("gpio.%s and gpio.%s both use pin %d", fieldName, other, pin.Number))
		} else {
			usedPins[pin.Number] = fieldName
		}
	}

	if len(conflicts) > 0 {
		panic("Conflicting GPIO pins: " + strings.Join(conflicts, ", "))
	}

	if (cfg.Latitude == nil) != (cfg.Longitude == nil) {
		panic("Latitude and longitude must be configured together")
	}
	if cfg.Modes != nil && len(cfg.Modes) == 0 {
		panic("Mode rotation is empty")
	}
	if cfg.SystemIntervalSeconds <= 0 || cfg.WeatherIntervalSeconds <= 0 || cfg.FetchTimeoutSeconds <= 0 {
		panic("Refresh intervals and fetch timeout must be positive")
	}
	if cfg.DebounceMillis <= 0 || cfg.ButtonPollMillis <= 0 {
		panic("Button debounce and poll intervals must be positive")
	}

	switch cfg.SinkBackend {
	case "gpio":
	case "hue":
		if cfg.Hue.BridgeAddr == "" || cfg.Hue.Username == "" || cfg.Hue.LightID == 0 {
			panic("Hue sink requires hue.bridge_addr, hue.username and hue.light_id")
		}
	default:
		panic(fmt.Sprintf("Unknown sink backend %q", cfg.SinkBackend))
	}
}
