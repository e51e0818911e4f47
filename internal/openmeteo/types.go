package openmeteo

// Native response shapes. Open-Meteo serialises hourly data as parallel
// arrays keyed by position; individual readings may be JSON null.

type CurrentResponse struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Current   CurrentValues `json:"current"`
}

type CurrentValues struct {
	Time                string   `json:"time"`
	Temperature         *float64 `json:"temperature_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	Humidity            *float64 `json:"relative_humidity_2m"`
	WindSpeed           *float64 `json:"wind_speed_10m"`
	WindGusts           *float64 `json:"wind_gusts_10m"`
	WindDirection       *float64 `json:"wind_direction_10m"`
	SurfacePressure     *float64 `json:"surface_pressure"`
	VisibilityM         *float64 `json:"visibility"`
	UVIndex             *float64 `json:"uv_index"`
	Precipitation       *float64 `json:"precipitation"`
	PrecipProbability   *float64 `json:"precipitation_probability"`
	CloudCover          *float64 `json:"cloud_cover"`
	WeatherCode         *int     `json:"weather_code"`
}

type HourlyResponse struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Timezone  string       `json:"timezone"`
	Hourly    HourlySeries `json:"hourly"`
}

type HourlySeries struct {
	Time              []string   `json:"time"`
	Temperature       []*float64 `json:"temperature_2m"`
	WindSpeed         []*float64 `json:"wind_speed_10m"`
	WindGusts         []*float64 `json:"wind_gusts_10m"`
	VisibilityM       []*float64 `json:"visibility"`
	UVIndex           []*float64 `json:"uv_index"`
	Precipitation     []*float64 `json:"precipitation"`
	PrecipProbability []*float64 `json:"precipitation_probability"`
	WeatherCode       []*int     `json:"weather_code"`
}
