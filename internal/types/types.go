package types

import "time"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the pair is a usable WGS84 coordinate.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Observation is the provider-agnostic snapshot of conditions at a single
// instant. Every measurement is a pointer: nil means the provider did not
// report the field, never that the value was zero.
type Observation struct {
	Time        string      `json:"time"`
	Coordinates Coordinates `json:"coordinates"`

	Temperature         *float64 `json:"temperature,omitempty"`
	TemperatureApparent *float64 `json:"temperatureApparent,omitempty"`
	Humidity            *float64 `json:"humidity,omitempty"`
	WindSpeed           *float64 `json:"windSpeed,omitempty"`
	WindGust            *float64 `json:"windGust,omitempty"`
	WindDirection       *float64 `json:"windDirection,omitempty"`
	Pressure            *float64 `json:"pressure,omitempty"`
	VisibilityKm        *float64 `json:"visibilityKm,omitempty"`
	UVIndex             *float64 `json:"uvIndex,omitempty"`
	PrecipIntensity     *float64 `json:"precipIntensity,omitempty"`
	PrecipProbability   *float64 `json:"precipProbability,omitempty"`
	CloudCover          *float64 `json:"cloudCover,omitempty"`
	WeatherCode         *int     `json:"weatherCode,omitempty"`
	WeatherText         string   `json:"weatherText,omitempty"`
}

// HourlySample is one canonical hourly forecast row. TimeUTC is always a
// fixed-width RFC3339 UTC string ("2006-01-02T15:04:05Z") so samples from
// any provider can be range-filtered by direct string comparison.
type HourlySample struct {
	TimeUTC string `json:"timeUtc"`

	Temperature       *float64 `json:"temperature,omitempty"`
	WindSpeed         *float64 `json:"windSpeed,omitempty"`
	WindGust          *float64 `json:"windGust,omitempty"`
	VisibilityKm      *float64 `json:"visibilityKm,omitempty"`
	UVIndex           *float64 `json:"uvIndex,omitempty"`
	PrecipIntensity   *float64 `json:"precipIntensity,omitempty"`
	PrecipProbability *float64 `json:"precipProbability,omitempty"`
	WeatherCode       *int     `json:"weatherCode,omitempty"`
}

// WindowSummary reduces the hourly samples inside a work window. Hours == 0
// means no sample fell inside the window; every other field is then absent.
type WindowSummary struct {
	Hours int `json:"hours"`

	TempMin       *float64 `json:"tempMin,omitempty"`
	TempMax       *float64 `json:"tempMax,omitempty"`
	WindMaxMS     float64  `json:"windMax_ms"`
	WindMaxKmh    *float64 `json:"windMax_kmh,omitempty"`
	GustMaxMS     float64  `json:"gustMax_ms"`
	GustMaxKmh    *float64 `json:"gustMax_kmh,omitempty"`
	UVMax         float64  `json:"uvMax"`
	VisMinKm      *float64 `json:"visMin_km,omitempty"`
	PrecipProbMax float64  `json:"precipProbMax"`
	PrecipMmTotal float64  `json:"precipMmTotal"`
	Codes         []int    `json:"codes,omitempty"`
}

// Schedule is produced by the schedule-extraction collaborator and consumed
// read-only here. Empty strings stand in for fields the extractor could not
// determine.
type Schedule struct {
	Activity         string `json:"activity"`
	Date             string `json:"date"`       // "2006-01-02"
	StartLocal       string `json:"startLocal"` // "15:04"
	EndLocal         string `json:"endLocal"`   // "15:04"
	TimezoneOverride string `json:"timezoneOverride,omitempty"`
}

// ResolvedWindow is a local schedule converted into absolute UTC instants.
type ResolvedWindow struct {
	Timezone   string    `json:"timezone"`
	StartUTC   time.Time `json:"startUtc"`
	EndUTC     time.Time `json:"endUtc"`
	StartLocal string    `json:"startLocal"`
	EndLocal   string    `json:"endLocal"`
}

// TimeLayoutUTC is the one timestamp representation all hourly samples are
// normalized to at ingestion.
const TimeLayoutUTC = "2006-01-02T15:04:05Z"

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
