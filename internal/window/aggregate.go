// Package window reduces canonical hourly samples restricted to a time
// window into summary statistics.
package window

import (
	"math"
	"sort"

	t "github.com/planwx/planwx-core/internal/types"
)

// Summarize filters samples to those whose timestamp falls inside
// [startISO, endISO] inclusive and reduces them. Timestamps are compared as
// strings, which is correct because every sample is normalized to the
// fixed-width UTC layout at ingestion. Samples may arrive in any order.
//
// An empty window yields Hours == 0 and nothing else.
func Summarize(samples []t.HourlySample, startISO, endISO string) t.WindowSummary {
	var inRange []t.HourlySample
	for _, s := range samples {
		if s.TimeUTC >= startISO && s.TimeUTC <= endISO {
			inRange = append(inRange, s)
		}
	}
	if len(inRange) == 0 {
		return t.WindowSummary{Hours: 0}
	}

	sum := t.WindowSummary{Hours: len(inRange)}
	codes := make(map[int]struct{})

	for _, s := range inRange {
		if s.Temperature != nil {
			if sum.TempMin == nil || *s.Temperature < *sum.TempMin {
				sum.TempMin = t.Float(*s.Temperature)
			}
			if sum.TempMax == nil || *s.Temperature > *sum.TempMax {
				sum.TempMax = t.Float(*s.Temperature)
			}
		}
		if s.WindSpeed != nil && *s.WindSpeed > sum.WindMaxMS {
			sum.WindMaxMS = *s.WindSpeed
		}
		if s.WindGust != nil && *s.WindGust > sum.GustMaxMS {
			sum.GustMaxMS = *s.WindGust
		}
		if s.UVIndex != nil && *s.UVIndex > sum.UVMax {
			sum.UVMax = *s.UVIndex
		}
		if s.VisibilityKm != nil {
			if sum.VisMinKm == nil || *s.VisibilityKm < *sum.VisMinKm {
				sum.VisMinKm = t.Float(*s.VisibilityKm)
			}
		}
		if s.PrecipProbability != nil && *s.PrecipProbability > sum.PrecipProbMax {
			sum.PrecipProbMax = *s.PrecipProbability
		}
		if s.PrecipIntensity != nil {
			sum.PrecipMmTotal += *s.PrecipIntensity
		}
		if s.WeatherCode != nil {
			codes[*s.WeatherCode] = struct{}{}
		}
	}

	if sum.WindMaxMS != 0 {
		sum.WindMaxKmh = t.Float(round1(sum.WindMaxMS * 3.6))
	}
	if sum.GustMaxMS != 0 {
		sum.GustMaxKmh = t.Float(round1(sum.GustMaxMS * 3.6))
	}

	for code := range codes {
		sum.Codes = append(sum.Codes, code)
	}
	sort.Ints(sum.Codes)

	return sum
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
