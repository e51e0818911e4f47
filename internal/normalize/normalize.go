// Package normalize holds the pure mappings between each provider's native
// response shape and the canonical observation/sample shape. No I/O here.
package normalize

import (
	"math"
	"time"

	"github.com/planwx/planwx-core/internal/openmeteo"
	"github.com/planwx/planwx-core/internal/tomorrowio"
	t "github.com/planwx/planwx-core/internal/types"
)

// UnknownText is the sentinel for weather codes outside the lookup tables.
const UnknownText = "Unknown"

var codeText = map[int]string{
	0:    UnknownText,
	1000: "Clear, Sunny",
	1100: "Mostly Clear",
	1101: "Partly Cloudy",
	1102: "Mostly Cloudy",
	1001: "Cloudy",
	2000: "Fog",
	2100: "Light Fog",
	4000: "Drizzle",
	4001: "Rain",
	4200: "Light Rain",
	4201: "Heavy Rain",
	5000: "Snow",
	5001: "Flurries",
	5100: "Light Snow",
	5101: "Heavy Snow",
	6000: "Freezing Drizzle",
	6001: "Freezing Rain",
	6200: "Light Freezing Rain",
	6201: "Heavy Freezing Rain",
	7000: "Ice Pellets",
	7101: "Heavy Ice Pellets",
	7102: "Light Ice Pellets",
	8000: "Thunderstorm",
}

var wmoText = map[int]string{
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
	71: "Slight snowfall",
	73: "Moderate snowfall",
	75: "Heavy snowfall",
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

// CodeText resolves a primary-provider weather code to display text.
func CodeText(code int) string {
	if text, ok := codeText[code]; ok {
		return text
	}
	return UnknownText
}

// WMOText resolves a WMO weather code (secondary provider) to display text.
func WMOText(code int) string {
	if text, ok := wmoText[code]; ok {
		return text
	}
	return UnknownText
}

// FromTomorrowRealtime maps a native realtime response into the canonical
// observation.
func FromTomorrowRealtime(r *tomorrowio.RealtimeResponse) *t.Observation {
	v := r.Data.Values
	obs := &t.Observation{
		Time: normalizeUTC(r.Data.Time),
		Coordinates: t.Coordinates{
			Latitude:  r.Location.Lat,
			Longitude: r.Location.Lon,
		},
		Temperature:         v.Temperature,
		TemperatureApparent: v.TemperatureApparent,
		Humidity:            v.Humidity,
		WindSpeed:           v.WindSpeed,
		WindGust:            v.WindGust,
		WindDirection:       v.WindDirection,
		Pressure:            v.PressureSurfaceLevel,
		VisibilityKm:        v.Visibility,
		UVIndex:             v.UVIndex,
		PrecipIntensity:     t.Float(precipIntensity(v)),
		PrecipProbability:   v.PrecipitationProbability,
		CloudCover:          v.CloudCover,
		WeatherCode:         v.WeatherCode,
	}
	if v.WeatherCode != nil {
		obs.WeatherText = CodeText(*v.WeatherCode)
	}
	return obs
}

// ToTomorrowRealtime is the inverse mapping, letting a secondary-derived
// observation be consumed by anything written against the primary shape.
func ToTomorrowRealtime(obs *t.Observation) *tomorrowio.RealtimeResponse {
	return &tomorrowio.RealtimeResponse{
		Data: tomorrowio.TimelinePoint{
			Time: obs.Time,
			Values: tomorrowio.Values{
				Temperature:              obs.Temperature,
				TemperatureApparent:      obs.TemperatureApparent,
				Humidity:                 obs.Humidity,
				WindSpeed:                obs.WindSpeed,
				WindGust:                 obs.WindGust,
				WindDirection:            obs.WindDirection,
				PressureSurfaceLevel:     obs.Pressure,
				Visibility:               obs.VisibilityKm,
				UVIndex:                  obs.UVIndex,
				PrecipitationIntensity:   obs.PrecipIntensity,
				PrecipitationProbability: obs.PrecipProbability,
				CloudCover:               obs.CloudCover,
				WeatherCode:              obs.WeatherCode,
			},
		},
		Location: tomorrowio.Location{
			Lat: obs.Coordinates.Latitude,
			Lon: obs.Coordinates.Longitude,
		},
	}
}

// FromTomorrowHourly maps native hourly timeline points into canonical
// samples, normalizing every timestamp to the fixed-width UTC layout.
func FromTomorrowHourly(points []tomorrowio.TimelinePoint) []t.HourlySample {
	var samples []t.HourlySample
	for _, p := range points {
		v := p.Values
		samples = append(samples, t.HourlySample{
			TimeUTC:           normalizeUTC(p.Time),
			Temperature:       v.Temperature,
			WindSpeed:         v.WindSpeed,
			WindGust:          v.WindGust,
			VisibilityKm:      v.Visibility,
			UVIndex:           v.UVIndex,
			PrecipIntensity:   t.Float(precipIntensity(v)),
			PrecipProbability: v.PrecipitationProbability,
			WeatherCode:       v.WeatherCode,
		})
	}
	return samples
}

// FromOpenMeteoCurrent maps native current conditions into the canonical
// observation. Visibility converts from metres to km at one decimal;
// missing precipitation means none fell, so 0 rather than nil.
func FromOpenMeteoCurrent(r *openmeteo.CurrentResponse) *t.Observation {
	v := r.Current
	obs := &t.Observation{
		Time: normalizeUTC(v.Time),
		Coordinates: t.Coordinates{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		},
		Temperature:         v.Temperature,
		TemperatureApparent: v.ApparentTemperature,
		Humidity:            v.Humidity,
		WindSpeed:           v.WindSpeed,
		WindGust:            v.WindGusts,
		WindDirection:       v.WindDirection,
		Pressure:            v.SurfacePressure,
		VisibilityKm:        metersToKm(v.VisibilityM),
		UVIndex:             v.UVIndex,
		PrecipIntensity:     t.Float(floatOrZero(v.Precipitation)),
		PrecipProbability:   t.Float(floatOrZero(v.PrecipProbability)),
		CloudCover:          v.CloudCover,
		WeatherCode:         v.WeatherCode,
	}
	if v.WeatherCode != nil {
		obs.WeatherText = WMOText(*v.WeatherCode)
	}
	return obs
}

// FromOpenMeteoHourly maps one day of native hourly rows into canonical
// samples. Row timestamps are wall-clock in loc and convert to UTC here.
func FromOpenMeteoHourly(series openmeteo.HourlySeries, loc *time.Location) []t.HourlySample {
	var samples []t.HourlySample
	for i, raw := range series.Time {
		local, err := time.ParseInLocation("2006-01-02T15:04", raw, loc)
		if err != nil {
			continue
		}
		samples = append(samples, t.HourlySample{
			TimeUTC:           local.UTC().Format(t.TimeLayoutUTC),
			Temperature:       at(series.Temperature, i),
			WindSpeed:         at(series.WindSpeed, i),
			WindGust:          at(series.WindGusts, i),
			VisibilityKm:      metersToKm(at(series.VisibilityM, i)),
			UVIndex:           at(series.UVIndex, i),
			PrecipIntensity:   t.Float(floatOrZero(at(series.Precipitation, i))),
			PrecipProbability: t.Float(floatOrZero(at(series.PrecipProbability, i))),
			WeatherCode:       atInt(series.WeatherCode, i),
		})
	}
	return samples
}

// precipIntensity prefers precipitationIntensity, falls back to
// rainIntensity, defaults to 0.
func precipIntensity(v tomorrowio.Values) float64 {
	if v.PrecipitationIntensity != nil {
		return *v.PrecipitationIntensity
	}
	if v.RainIntensity != nil {
		return *v.RainIntensity
	}
	return 0
}

// normalizeUTC rewrites any RFC3339 timestamp to the fixed-width UTC layout
// so window filtering can compare strings directly. Unparseable input passes
// through untouched.
func normalizeUTC(raw string) string {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if local, err2 := time.Parse("2006-01-02T15:04", raw); err2 == nil {
			return local.UTC().Format(t.TimeLayoutUTC)
		}
		return raw
	}
	return parsed.UTC().Format(t.TimeLayoutUTC)
}

func metersToKm(m *float64) *float64 {
	if m == nil {
		return nil
	}
	return t.Float(math.Round(*m/100) / 10)
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}

func atInt(vals []*int, i int) *int {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}
