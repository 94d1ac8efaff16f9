package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// iconBuckets collapses OpenWeatherMap icon codes into display buckets.
// Codes missing from the table (50d mist, new codes) fall back to IconUnknown.
var iconBuckets = map[string]IconKey{
	"01d": IconClear,
	"01n": IconClear,
	"02d": IconCloud,
	"02n": IconCloud,
	"03d": IconCloud,
	"03n": IconCloud,
	"04d": IconCloud,
	"04n": IconCloud,
	"09d": IconRain,
	"09n": IconRain,
	"10d": IconRain,
	"10n": IconRain,
	"11d": IconStorm,
	"11n": IconStorm,
	"13d": IconSnow,
	"13n": IconSnow,
}

// IconFor maps a provider icon code to its bucket.
func IconFor(code string) IconKey {
	if k, ok := iconBuckets[strings.ToLower(strings.TrimSpace(code))]; ok {
		return k
	}
	return IconUnknown
}

// Clock renders epoch seconds as wall-clock text in a fixed display zone,
// independent of the host's local zone.
type Clock struct {
	Zone *time.Location
}

// DefaultDisplayZone is UTC+07:00.
var DefaultDisplayZone = time.FixedZone("UTC+07", 7*60*60)

// NewClock returns a Clock for the given UTC offset in minutes.
func NewClock(offsetMinutes int) Clock {
	return Clock{Zone: time.FixedZone(zoneName(offsetMinutes), offsetMinutes*60)}
}

// HHMM formats epoch seconds as "15:04".
func (c Clock) HHMM(epoch int64) string {
	loc := c.Zone
	if loc == nil {
		loc = DefaultDisplayZone
	}
	return time.Unix(epoch, 0).In(loc).Format("15:04")
}

func zoneName(offsetMinutes int) string {
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}

// ToView builds the display model for a provider response. raw.Weather must
// hold at least one entry; when several are present the last one wins.
func ToView(raw RawWeatherResponse, unitSymbol string, clock Clock) WeatherView {
	var view WeatherView

	for _, c := range raw.Weather {
		view.ConditionMain = c.Main
		view.ConditionDescription = c.Description
		view.IconKey = IconFor(c.Icon)
	}

	view.TemperatureText = formatValue(raw.Main.Temp) + unitSymbol
	view.FeelsLikeText = formatValue(raw.Main.FeelsLike) + unitSymbol
	view.MinTemperatureText = formatValue(raw.Main.TempMin) + unitSymbol
	view.MaxTemperatureText = formatValue(raw.Main.TempMax) + unitSymbol
	view.HumidityText = strconv.Itoa(raw.Main.Humidity) + "%"
	view.WindSpeedText = formatValue(raw.Wind.Speed) + " m/s"
	view.SunriseText = clock.HHMM(raw.Sys.Sunrise)
	view.SunsetText = clock.HHMM(raw.Sys.Sunset)
	view.LocationName = raw.Name
	view.CountryCode = raw.Sys.Country

	return view
}

// formatValue prints v without rounding, keeping at least one fractional digit.
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
