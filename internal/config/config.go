package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-now/internal/weather"
)

// AppConfig holds all application configuration.
type AppConfig struct {
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	Breaker     BreakerConfig     `mapstructure:"breaker"`
	Display     DisplayConfig     `mapstructure:"display"`
	Device      DeviceConfig      `mapstructure:"device"`
	Geocoder    GeocoderConfig    `mapstructure:"geocoder"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
}

type OpenWeatherConfig struct {
	APIKey      string        `mapstructure:"api_key" validate:"required"`
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	// RatePerSecond caps outgoing calls; zero disables the limiter.
	RatePerSecond float64 `mapstructure:"rate_per_second" validate:"gte=0"`
	Burst         int     `mapstructure:"burst" validate:"gte=0"`
}

type BreakerConfig struct {
	Failures    uint32        `mapstructure:"failures" validate:"gte=1"`
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type DisplayConfig struct {
	// Region overrides the region derived from Locale.
	Region            string   `mapstructure:"region"`
	Locale            string   `mapstructure:"locale"`
	FahrenheitRegions []string `mapstructure:"fahrenheit_regions" validate:"dive,len=2"`
	// ZoneOffsetMinutes fixes the zone used for sunrise/sunset text.
	ZoneOffsetMinutes int `mapstructure:"zone_offset_minutes" validate:"gte=-720,lte=840"`
}

// DeviceConfig describes the host device the pipeline runs on.
type DeviceConfig struct {
	FineGranted       bool     `mapstructure:"fine_granted"`
	CoarseGranted     bool     `mapstructure:"coarse_granted"`
	ShowRationale     bool     `mapstructure:"show_rationale"`
	GrantOnRequest    bool     `mapstructure:"grant_on_request"`
	GPSEnabled        bool     `mapstructure:"gps_enabled"`
	NetworkEnabled    bool     `mapstructure:"network_enabled"`
	Latitude          *float64 `mapstructure:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude         *float64 `mapstructure:"longitude" validate:"omitempty,gte=-180,lte=180"`
	SettingsURL       string   `mapstructure:"settings_url"`
	ProbeReachability bool     `mapstructure:"probe_reachability"`
}

// GeocoderConfig enables serving a geocoded city as the last known position.
type GeocoderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	City    string `mapstructure:"city" validate:"required_with=APIKey"`
	Country string `mapstructure:"country"`
}

type ServerConfig struct {
	Port       string        `mapstructure:"port" validate:"required,numeric"`
	RunTimeout time.Duration `mapstructure:"run_timeout" validate:"gte=0"`
	// Retention of rendered outcomes.
	MaxHistory int           `mapstructure:"max_history" validate:"gte=0"`
	MaxAge     time.Duration `mapstructure:"max_age" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

var validate = validator.New()

// Load reads configuration from an optional .env file, an optional config
// file, and WEATHERNOW_* environment variables, in increasing priority.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig()

	// Environment variables: WEATHERNOW_OPENWEATHER_API_KEY → openweather.api_key
	v.SetEnvPrefix("WEATHERNOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The provider key is commonly exported without the prefix.
	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" && v.GetString("openweather.api_key") == "" {
		v.Set("openweather.api_key", key)
	}

	// Requests are always metric; a stale units override would mislabel values.
	if v.IsSet("openweather.units") && !strings.EqualFold(v.GetString("openweather.units"), "metric") {
		return nil, fmt.Errorf("config validation failed: openweather.units is fixed to metric, got %q", v.GetString("openweather.units"))
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Display.FahrenheitRegions = splitList(cfg.Display.FahrenheitRegions)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openweather.api_key", "")
	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("openweather.http_timeout", "10s")
	v.SetDefault("openweather.rate_per_second", 1.0)
	v.SetDefault("openweather.burst", 3)

	v.SetDefault("breaker.failures", 5)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "1m")
	v.SetDefault("breaker.timeout", "2m")

	v.SetDefault("display.region", "")
	v.SetDefault("display.locale", os.Getenv("LANG"))
	v.SetDefault("display.fahrenheit_regions", weather.DefaultFahrenheitRegions)
	v.SetDefault("display.zone_offset_minutes", 7*60)

	v.SetDefault("device.fine_granted", false)
	v.SetDefault("device.coarse_granted", false)
	v.SetDefault("device.show_rationale", false)
	v.SetDefault("device.grant_on_request", true)
	v.SetDefault("device.gps_enabled", true)
	v.SetDefault("device.network_enabled", true)
	v.SetDefault("device.latitude", nil)
	v.SetDefault("device.longitude", nil)
	v.SetDefault("device.settings_url", "")
	v.SetDefault("device.probe_reachability", true)

	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.city", "")
	v.SetDefault("geocoder.country", "")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.run_timeout", "30s")
	v.SetDefault("server.max_history", 96)
	v.SetDefault("server.max_age", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks that required configuration fields are present and sane.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if (c.Device.Latitude == nil) != (c.Device.Longitude == nil) {
		return fmt.Errorf("config validation failed: device.latitude and device.longitude must be set together")
	}
	return nil
}

// Region returns the display region, preferring the explicit override.
func (c *AppConfig) Region() string {
	if c.Display.Region != "" {
		return strings.ToUpper(c.Display.Region)
	}
	return weather.RegionFromLocale(c.Display.Locale)
}

// Position returns the configured last known position, if any.
func (c *AppConfig) Position() *weather.Coordinates {
	if c.Device.Latitude == nil || c.Device.Longitude == nil {
		return nil
	}
	return &weather.Coordinates{Lat: *c.Device.Latitude, Lon: *c.Device.Longitude}
}

// splitList accepts both list values and a single comma separated string,
// which is how lists arrive from the environment.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, strings.ToUpper(part))
			}
		}
	}
	return out
}
