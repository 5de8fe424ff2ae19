package weatherstack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/config"
)

// UpstreamError carries the provider's own message (its error.info field, or
// a transport failure description) so it can be surfaced to the caller.
type UpstreamError struct {
	Info string
}

func (e *UpstreamError) Error() string {
	return e.Info
}

// Response is the raw provider payload. Fields are pointers where absence
// matters downstream; the normalization layer decides the fallbacks.
type Response struct {
	Error    *APIError `json:"error"`
	Location *Location `json:"location"`
	Current  *Current  `json:"current"`
}

type APIError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type Location struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	Lat       string `json:"lat"`
	Lon       string `json:"lon"`
	Localtime string `json:"localtime"`
}

type Current struct {
	ObservationTime     string   `json:"observation_time"`
	Temperature         *float64 `json:"temperature"`
	WeatherIcons        []string `json:"weather_icons"`
	WeatherDescriptions []string `json:"weather_descriptions"`
	IsDay               string   `json:"is_day"`
	WindSpeed           *float64 `json:"wind_speed"`
	WindDir             string   `json:"wind_dir"`
	Pressure            *float64 `json:"pressure"`
	Humidity            *float64 `json:"humidity"`
	Feelslike           *float64 `json:"feelslike"`
	UVIndex             *float64 `json:"uv_index"`
	Visibility          *float64 `json:"visibility"`
	Cloudcover          *float64 `json:"cloudcover"`
}

// Client talks to the Weatherstack current-conditions endpoint.
type Client struct {
	baseURL   string
	accessKey string
	client    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:   cfg.WeatherstackURL,
		accessKey: cfg.WeatherstackKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Current fetches conditions for a city. The provider reports its own errors
// inside a 200 body, so both the HTTP exchange and the embedded error object
// are checked.
func (c *Client) Current(ctx context.Context, city string) (*Response, error) {
	params := url.Values{}
	params.Set("access_key", c.accessKey)
	params.Set("query", city)

	reqURL := fmt.Sprintf("%s/current?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Info: fmt.Sprintf("weather provider unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Info: fmt.Sprintf("weather provider returned status %d", resp.StatusCode)}
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &UpstreamError{Info: fmt.Sprintf("invalid weather provider response: %v", err)}
	}

	if body.Error != nil {
		info := body.Error.Info
		if info == "" {
			info = "Weather API Error"
		}
		return nil, &UpstreamError{Info: info}
	}

	return &body, nil
}
