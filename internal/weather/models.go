package weather

import "fmt"

// IconKey is the normalized icon bucket a provider icon code collapses into.
type IconKey string

const (
	IconUnknown IconKey = "unknown"
	IconClear   IconKey = "clear"
	IconCloud   IconKey = "cloud"
	IconRain    IconKey = "rain"
	IconStorm   IconKey = "storm"
	IconSnow    IconKey = "snow"
)

// Coordinates is a device position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Condition is one entry of the provider's "weather" list.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// RawWeatherResponse is the OpenWeatherMap current-weather payload.
// Only the fields the display model needs are decoded.
type RawWeatherResponse struct {
	Weather []Condition `json:"weather" validate:"required,min=1,dive"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

// WeatherView is the display model handed to the presentation layer.
// A fresh value is built for every successful fetch.
type WeatherView struct {
	ConditionMain        string  `json:"conditionMain"`
	ConditionDescription string  `json:"conditionDescription"`
	TemperatureText      string  `json:"temperature"`
	FeelsLikeText        string  `json:"feelsLike"`
	MinTemperatureText   string  `json:"minTemperature"`
	MaxTemperatureText   string  `json:"maxTemperature"`
	HumidityText         string  `json:"humidity"`
	WindSpeedText        string  `json:"windSpeed"`
	SunriseText          string  `json:"sunrise"`
	SunsetText           string  `json:"sunset"`
	LocationName         string  `json:"locationName"`
	CountryCode          string  `json:"countryCode"`
	IconKey              IconKey `json:"iconKey"`
}
