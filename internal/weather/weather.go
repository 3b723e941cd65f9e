// Package weather wraps the open-meteo forecast and air-quality endpoints
// plus nominatim geocoding for the settings UI.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"classdash/internal/model"
)

const (
	// DefaultForecastBaseURL and DefaultAirQualityBaseURL are the public
	// open-meteo endpoints; overridable for tests.
	DefaultForecastBaseURL   = "https://api.open-meteo.com/v1"
	DefaultAirQualityBaseURL = "https://air-quality-api.open-meteo.com/v1"
)

// Client fetches current weather and air quality for a coordinate.
type Client struct {
	ForecastBaseURL   string
	AirQualityBaseURL string

	httpClient *http.Client
}

// NewClient creates a weather client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		ForecastBaseURL:   DefaultForecastBaseURL,
		AirQualityBaseURL: DefaultAirQualityBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchWeather returns the current conditions and today's daily summary.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (*model.WeatherData, error) {
	u := fmt.Sprintf(
		"%s/forecast?latitude=%f&longitude=%f&current_weather=true&daily=weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max&timezone=Asia%%2FSeoul&forecast_days=1",
		c.ForecastBaseURL, lat, lon,
	)

	var raw struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
		Daily struct {
			TempMax    []float64 `json:"temperature_2m_max"`
			TempMin    []float64 `json:"temperature_2m_min"`
			PrecipProb []float64 `json:"precipitation_probability_max"`
		} `json:"daily"`
	}
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}

	w := &model.WeatherData{
		Temperature: raw.CurrentWeather.Temperature,
		WeatherCode: raw.CurrentWeather.WeatherCode,
	}
	if len(raw.Daily.TempMax) > 0 {
		w.DailyMax = raw.Daily.TempMax[0]
	}
	if len(raw.Daily.TempMin) > 0 {
		w.DailyMin = raw.Daily.TempMin[0]
	}
	if len(raw.Daily.PrecipProb) > 0 {
		w.PrecipitationProbability = raw.Daily.PrecipProb[0]
	}
	return w, nil
}

// FetchAirQuality returns the current particulate readings.
func (c *Client) FetchAirQuality(ctx context.Context, lat, lon float64) (*model.AirQualityData, error) {
	u := fmt.Sprintf(
		"%s/air-quality?latitude=%f&longitude=%f&current=pm10,pm2_5&timezone=Asia%%2FSeoul",
		c.AirQualityBaseURL, lat, lon,
	)

	var raw struct {
		Current struct {
			PM10 float64 `json:"pm10"`
			PM25 float64 `json:"pm2_5"`
		} `json:"current"`
	}
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}

	return &model.AirQualityData{
		PM10: raw.Current.PM10,
		PM25: raw.Current.PM25,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather: API returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
