package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bluele/gcache"

	"github.com/thatsimonsguy/ambient-hub/internal/model"
	"github.com/thatsimonsguy/ambient-hub/internal/provider"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const (
	cacheKey = "forecast"
	cacheTTL = 15 * time.Second
)

// Client fetches current conditions from Open-Meteo and maps them onto an
// ambient status. A short TTL cache absorbs back-to-back manual
// evaluations without re-hitting the endpoint.
type Client struct {
	baseURL   string
	latitude  float64
	longitude float64
	timezone  string
	http      *http.Client
	cache     gcache.Cache
}

func New(latitude, longitude float64, timezone string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		latitude:  latitude,
		longitude: longitude,
		timezone:  timezone,
		http:      &http.Client{Timeout: timeout},
		cache:     gcache.New(1).LRU().Build(),
	}
}

func (c *Client) Evaluate(ctx context.Context) (model.AmbientStatus, error) {
	if cached, err := c.cache.Get(cacheKey); err == nil {
		if obs, ok := cached.(observation); ok {
			return statusFrom(obs), nil
		}
	}

	obs, err := c.fetch(ctx)
	if err != nil {
		return model.AmbientStatus{}, err
	}
	_ = c.cache.SetWithExpire(cacheKey, obs, cacheTTL)

	return statusFrom(obs), nil
}

// observation is the slice of the forecast response the hub cares about.
type observation struct {
	Temperature   float64
	WindSpeed     float64
	WeatherCode   int
	Humidity      float64
	HasHumidity   bool
	Precipitation float64
	HasPrecip     bool
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode *int    `json:"weathercode"`
	} `json:"current_weather"`
	Hourly struct {
		Humidity      []float64 `json:"relativehumidity_2m"`
		Precipitation []float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

func (c *Client) fetch(ctx context.Context) (observation, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return observation{}, provider.Wrap(provider.KindNetwork, err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	q.Set("current_weather", "true")
	q.Set("hourly", "temperature_2m,relativehumidity_2m,precipitation_probability")
	q.Set("timezone", c.timezone)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return observation{}, provider.Wrap(provider.KindNetwork, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		kind := provider.KindNetwork
		var ue *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
			kind = provider.KindTimeout
		}
		return observation{}, provider.Wrap(kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return observation{}, provider.Wrap(provider.KindNetwork,
			fmt.Errorf("open-meteo returned status %d", resp.StatusCode))
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return observation{}, provider.Wrap(provider.KindParse, err)
	}
	if payload.CurrentWeather == nil {
		return observation{}, provider.Wrap(provider.KindParse,
			errors.New("response missing current_weather"))
	}

	obs := observation{
		Temperature: payload.CurrentWeather.Temperature,
		WindSpeed:   payload.CurrentWeather.WindSpeed,
		WeatherCode: -1,
	}
	if payload.CurrentWeather.WeatherCode != nil {
		obs.WeatherCode = *payload.CurrentWeather.WeatherCode
	}
	if n := len(payload.Hourly.Humidity); n > 0 {
		obs.Humidity = payload.Hourly.Humidity[n-1]
		obs.HasHumidity = true
	}
	if n := len(payload.Hourly.Precipitation); n > 0 {
		obs.Precipitation = payload.Hourly.Precipitation[n-1]
		obs.HasPrecip = true
	}
	return obs, nil
}

func statusFrom(obs observation) model.AmbientStatus {
	precip := 0.0
	if obs.HasPrecip {
		precip = obs.Precipitation
	}
	return model.AmbientStatus{
		Color:   colorFor(obs.Temperature, precip),
		Message: describe(obs),
		Buzz:    pulseForWind(obs.WindSpeed),
	}
}

// colorFor ramps blue (cold) to red (hot) across -10..35°C, with green
// peaking at the comfortable middle, then washes the result toward teal
// as precipitation chance rises.
func colorFor(temperatureC, precipChance float64) model.Color {
	clamped := clamp(temperatureC, -10, 35)
	n := (clamped + 10) / 45

	red := n
	blue := 1 - n
	green := 0.3 + 0.7*(1-math.Abs(n-0.5)*2)

	p := clamp(precipChance, 0, 100) / 100
	red *= 1 - p
	green = green*(1-0.3*p) + 0.3*p
	blue = math.Min(1, blue+0.7*p)

	return model.Color{R: channel(red), G: channel(green), B: channel(blue)}
}

// pulseForWind beeps more insistently as the wind picks up. Calm air is
// silent; the scale tops out at 60 km/h.
func pulseForWind(speedKmh float64) model.Pulse {
	if speedKmh <= 5 {
		return model.Pulse{}
	}
	scale := (clamp(speedKmh, 5, 60) - 5) / 55
	return model.Pulse{
		Count: 1 + int(scale*3),
		On:    150 * time.Millisecond,
		Off:   100 * time.Millisecond,
	}
}

func describe(obs observation) string {
	msg := fmt.Sprintf("Temperature: %.1f°C, Wind: %.1f km/h", obs.Temperature, obs.WindSpeed)
	if obs.HasHumidity {
		msg += fmt.Sprintf(", Humidity: %.0f%%", obs.Humidity)
	}
	if obs.HasPrecip {
		msg += fmt.Sprintf(", Precipitation chance: %.0f%%", obs.Precipitation)
	}
	if desc, ok := codeDescriptions[obs.WeatherCode]; ok {
		msg += ", " + desc
	}
	return msg
}

// codeDescriptions translates WMO weather codes as reported by Open-Meteo.
var codeDescriptions = map[int]string{
	-1: "Unknown weather",
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

func channel(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
