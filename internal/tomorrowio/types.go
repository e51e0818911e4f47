package tomorrowio

// Native response shapes. Every measurement is a pointer so an absent field
// stays distinguishable from a reported zero.

type RealtimeResponse struct {
	Data     TimelinePoint `json:"data"`
	Location Location      `json:"location"`
}

type ForecastResponse struct {
	Timelines Timelines `json:"timelines"`
	Location  Location  `json:"location"`
}

type Timelines struct {
	Hourly []TimelinePoint `json:"hourly"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type TimelinePoint struct {
	Time   string `json:"time"`
	Values Values `json:"values"`
}

type Values struct {
	Temperature              *float64 `json:"temperature,omitempty"`
	TemperatureApparent      *float64 `json:"temperatureApparent,omitempty"`
	Humidity                 *float64 `json:"humidity,omitempty"`
	WindSpeed                *float64 `json:"windSpeed,omitempty"`
	WindGust                 *float64 `json:"windGust,omitempty"`
	WindDirection            *float64 `json:"windDirection,omitempty"`
	PressureSurfaceLevel     *float64 `json:"pressureSurfaceLevel,omitempty"`
	Visibility               *float64 `json:"visibility,omitempty"`
	UVIndex                  *float64 `json:"uvIndex,omitempty"`
	PrecipitationIntensity   *float64 `json:"precipitationIntensity,omitempty"`
	RainIntensity            *float64 `json:"rainIntensity,omitempty"`
	PrecipitationProbability *float64 `json:"precipitationProbability,omitempty"`
	CloudCover               *float64 `json:"cloudCover,omitempty"`
	WeatherCode              *int     `json:"weatherCode,omitempty"`
}
