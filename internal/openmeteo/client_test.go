package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	t "github.com/planwx/planwx-core/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCoords = t.Coordinates{Latitude: 60.17, Longitude: 24.94}

func TestCurrentParsesNullableFields(tt *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(tt, "ms", q.Get("wind_speed_unit"))
		assert.Equal(tt, "UTC", q.Get("timezone"))
		assert.NotEmpty(tt, q.Get("current"))

		w.Write([]byte(`{
			"latitude": 60.17, "longitude": 24.94,
			"current": {
				"time": "2024-06-10T12:00",
				"temperature_2m": 16.2,
				"wind_speed_10m": 4.1,
				"visibility": 8100,
				"uv_index": null,
				"weather_code": 61
			}
		}`))
	}))
	defer srv.Close()

	c := New(BaseUrlOption(srv.URL))
	resp, err := c.Current(context.Background(), testCoords)
	require.NoError(tt, err)

	require.NotNil(tt, resp.Current.Temperature)
	assert.Equal(tt, 16.2, *resp.Current.Temperature)
	require.NotNil(tt, resp.Current.VisibilityM)
	assert.Equal(tt, 8100.0, *resp.Current.VisibilityM)
	assert.Nil(tt, resp.Current.UVIndex)
	require.NotNil(tt, resp.Current.WeatherCode)
	assert.Equal(tt, 61, *resp.Current.WeatherCode)
}

func TestHourlyQueriesSingleDayInZone(tt *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(tt, "2024-06-10", q.Get("start_date"))
		assert.Equal(tt, "2024-06-10", q.Get("end_date"))
		assert.Equal(tt, "Europe/Helsinki", q.Get("timezone"))

		w.Write([]byte(`{
			"latitude": 60.17, "longitude": 24.94,
			"timezone": "Europe/Helsinki",
			"hourly": {
				"time": ["2024-06-10T08:00", "2024-06-10T09:00"],
				"temperature_2m": [14.0, null],
				"wind_speed_10m": [3.0, 5.5],
				"precipitation": [0.2, null]
			}
		}`))
	}))
	defer srv.Close()

	c := New(BaseUrlOption(srv.URL))
	resp, err := c.Hourly(context.Background(), testCoords, "2024-06-10", "Europe/Helsinki")
	require.NoError(tt, err)

	require.Len(tt, resp.Hourly.Time, 2)
	require.NotNil(tt, resp.Hourly.Temperature[0])
	assert.Equal(tt, 14.0, *resp.Hourly.Temperature[0])
	assert.Nil(tt, resp.Hourly.Temperature[1])
	assert.Nil(tt, resp.Hourly.Precipitation[1])
}

func TestServerErrorSurfacesUpstreamError(tt *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(BaseUrlOption(srv.URL))
	_, err := c.Current(context.Background(), testCoords)
	require.Error(tt, err)

	var uerr *t.UpstreamError
	require.True(tt, errors.As(err, &uerr))
	assert.Equal(tt, 502, uerr.Status)
	assert.Equal(tt, "openmeteo", uerr.Provider)
}
