package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type OpenMeteoClientConfig struct {
	// ArchiveBaseURL is the historical weather API root,
	// e.g. https://archive-api.open-meteo.com
	ArchiveBaseURL string
	// GeocodingBaseURL is the geocoding API root,
	// e.g. https://geocoding-api.open-meteo.com
	GeocodingBaseURL string
}

type openMeteoClient struct {
	archiveBaseURL   string
	geocodingBaseURL string
	client           *http.Client
}

func NewOpenMeteoClient(cfg OpenMeteoClientConfig) (Client, error) {
	if cfg.ArchiveBaseURL == "" || cfg.GeocodingBaseURL == "" {
		return nil, errors.New("invalid Open-Meteo configuration: both base URLs are required")
	}
	return &openMeteoClient{
		archiveBaseURL:   cfg.ArchiveBaseURL,
		geocodingBaseURL: cfg.GeocodingBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type geocodingResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type archiveResponse struct {
	Daily struct {
		WeatherCode      []int      `json:"weather_code"`
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (c *openMeteoClient) Lookup(ctx context.Context, date time.Time, location string) (*Observation, error) {
	if location == "" {
		return nil, errors.New("location is required")
	}

	lat, lon, err := c.geocode(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", location, err)
	}

	day := date.Format("2006-01-02")
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("daily", "weather_code,temperature_2m_max,wind_speed_10m_max,precipitation_sum")
	q.Set("timezone", "auto")

	reqURL := c.archiveBaseURL + "/v1/archive?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather archive returned status %d", resp.StatusCode)
	}

	var archive archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return nil, fmt.Errorf("failed to decode weather archive response: %w", err)
	}
	if len(archive.Daily.WeatherCode) == 0 {
		return nil, errors.New("weather archive returned no data for the requested date")
	}

	obs := &Observation{
		Category: CategoryFromCode(archive.Daily.WeatherCode[0]),
	}
	if len(archive.Daily.TemperatureMax) > 0 {
		obs.Temperature = archive.Daily.TemperatureMax[0]
	}
	if len(archive.Daily.WindSpeedMax) > 0 {
		obs.WindSpeed = archive.Daily.WindSpeedMax[0]
	}
	// A calm-skies code with a strong wind still reads as a windy day on the
	// course.
	if obs.WindSpeed != nil && *obs.WindSpeed >= 30 && (obs.Category == "Sunny" || obs.Category == "Cloudy") {
		obs.Category = "Windy"
	}
	return obs, nil
}

func (c *openMeteoClient) geocode(ctx context.Context, location string) (float64, float64, error) {
	q := url.Values{}
	q.Set("name", location)
	q.Set("count", "1")

	reqURL := c.geocodingBaseURL + "/v1/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var geo geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(geo.Results) == 0 {
		return 0, 0, errors.New("no geocoding match")
	}
	return geo.Results[0].Latitude, geo.Results[0].Longitude, nil
}

// CategoryFromCode maps a WMO weather code onto the coarse categories stored
// with a round.
func CategoryFromCode(code int) string {
	switch {
	case code == 0:
		return "Sunny"
	case code >= 1 && code <= 3:
		return "Cloudy"
	case code == 45 || code == 48:
		return "Foggy"
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return "Rainy"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snowy"
	case code >= 95:
		return "Stormy"
	default:
		return "Cloudy"
	}
}
