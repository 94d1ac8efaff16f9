package config

import (
	"reflect"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENWEATHER_API_KEY",
		"WEATHERNOW_OPENWEATHER_API_KEY",
		"WEATHERNOW_OPENWEATHER_UNITS",
		"WEATHERNOW_DISPLAY_REGION",
		"WEATHERNOW_DISPLAY_FAHRENHEIT_REGIONS",
		"WEATHERNOW_DEVICE_LATITUDE",
		"WEATHERNOW_DEVICE_LONGITUDE",
		"WEATHERNOW_GEOCODER_API_KEY",
		"WEATHERNOW_GEOCODER_CITY",
		"WEATHERNOW_SERVER_PORT",
		"WEATHERNOW_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("expected error when no api key is configured")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHERNOW_OPENWEATHER_API_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenWeather.APIKey != "secret" {
		t.Errorf("expected api key from env, got %q", cfg.OpenWeather.APIKey)
	}
	if cfg.OpenWeather.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.OpenWeather.HTTPTimeout)
	}
	if !reflect.DeepEqual(cfg.Display.FahrenheitRegions, []string{"US", "LR", "MM"}) {
		t.Errorf("unexpected default regions %v", cfg.Display.FahrenheitRegions)
	}
	if cfg.Display.ZoneOffsetMinutes != 420 {
		t.Errorf("expected +07:00 display zone, got %d minutes", cfg.Display.ZoneOffsetMinutes)
	}
	if cfg.Server.Port != "8080" || cfg.Server.MaxHistory != 96 {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
	if !cfg.Device.GPSEnabled || !cfg.Device.GrantOnRequest {
		t.Errorf("unexpected device defaults %+v", cfg.Device)
	}
	if cfg.Position() != nil {
		t.Errorf("expected no configured position, got %v", cfg.Position())
	}
}

func TestLoadUnprefixedAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "plain")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenWeather.APIKey != "plain" {
		t.Fatalf("expected fallback api key, got %q", cfg.OpenWeather.APIKey)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHERNOW_OPENWEATHER_API_KEY", "secret")
	t.Setenv("WEATHERNOW_DISPLAY_FAHRENHEIT_REGIONS", "us, bs")
	t.Setenv("WEATHERNOW_DISPLAY_REGION", "bs")
	t.Setenv("WEATHERNOW_DEVICE_LATITUDE", "21.03")
	t.Setenv("WEATHERNOW_DEVICE_LONGITUDE", "105.85")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(cfg.Display.FahrenheitRegions, []string{"US", "BS"}) {
		t.Errorf("unexpected regions %v", cfg.Display.FahrenheitRegions)
	}
	if cfg.Region() != "BS" {
		t.Errorf("expected region override, got %q", cfg.Region())
	}
	pos := cfg.Position()
	if pos == nil || pos.Lat != 21.03 || pos.Lon != 105.85 {
		t.Errorf("unexpected position %v", pos)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"imperial units", map[string]string{"WEATHERNOW_OPENWEATHER_UNITS": "imperial"}},
		{"standard units", map[string]string{"WEATHERNOW_OPENWEATHER_UNITS": "standard"}},
		{"log level", map[string]string{"WEATHERNOW_LOG_LEVEL": "loud"}},
		{"port", map[string]string{"WEATHERNOW_SERVER_PORT": "http"}},
		{"half position", map[string]string{"WEATHERNOW_DEVICE_LATITUDE": "21.03"}},
		{"latitude range", map[string]string{"WEATHERNOW_DEVICE_LATITUDE": "91", "WEATHERNOW_DEVICE_LONGITUDE": "0"}},
		{"geocoder without city", map[string]string{"WEATHERNOW_GEOCODER_API_KEY": "g"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("WEATHERNOW_OPENWEATHER_API_KEY", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadAcceptsMetricUnits(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHERNOW_OPENWEATHER_API_KEY", "secret")
	t.Setenv("WEATHERNOW_OPENWEATHER_UNITS", "metric")

	if _, err := Load(); err != nil {
		t.Fatalf("expected metric to be accepted: %v", err)
	}
}

func TestRegionFromLocale(t *testing.T) {
	cfg := AppConfig{Display: DisplayConfig{Locale: "en_US.UTF-8"}}
	if got := cfg.Region(); got != "US" {
		t.Fatalf("expected US from locale, got %q", got)
	}
}
