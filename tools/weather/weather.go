// Package weather provides current conditions for a location using the
// free Open-Meteo API. No API key is required.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lmfoundry/locallm/schema"
	"github.com/lmfoundry/locallm/tools"
	mcp_golang "github.com/metoro-io/mcp-golang"
)

const ToolName = "get_weather"

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// wmoCodes maps WMO weather interpretation codes to short descriptions.
var wmoCodes = map[int]string{
	0: "Clear sky", 1: "Mainly clear", 2: "Partly cloudy", 3: "Overcast",
	45: "Fog", 48: "Icy fog",
	51: "Light drizzle", 53: "Moderate drizzle", 55: "Dense drizzle",
	61: "Slight rain", 63: "Moderate rain", 65: "Heavy rain",
	71: "Slight snow", 73: "Moderate snow", 75: "Heavy snow", 77: "Snow grains",
	80: "Slight showers", 81: "Moderate showers", 82: "Violent showers",
	85: "Slight snow showers", 86: "Heavy snow showers",
	95: "Thunderstorm", 96: "Thunderstorm w/ slight hail", 99: "Thunderstorm w/ heavy hail",
}

// Request represents the tool input.
type Request struct {
	Location string `json:"location" validate:"required" jsonschema:"title=Location,description=City name or region e.g. London or Tokyo"`
	Units    string `json:"units,omitempty" validate:"omitempty,oneof=metric imperial" jsonschema:"title=Units,description=metric (Celsius and km/h) or imperial (Fahrenheit and mph); default metric"`
}

// Response is the current-conditions summary for a resolved location.
type Response struct {
	Location    string  `json:"location"`
	Conditions  string  `json:"conditions"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Units       string  `json:"units"`
}

func (r *Response) String() string {
	tSym, wSym := "°C", "km/h"
	if r.Units == "imperial" {
		tSym, wSym = "°F", "mph"
	}
	return fmt.Sprintf(
		"Weather in %s:\n  Conditions:  %s\n  Temperature: %g%s\n  Humidity:    %g%%\n  Wind:        %g %s",
		r.Location, r.Conditions, r.Temperature, tSym, r.Humidity, r.WindSpeed, wSym)
}

// Tool fetches current weather via Open-Meteo geocoding + forecast.
type Tool struct {
	name        string
	description string

	geocodeURL  string
	forecastURL string
	httpClient  *http.Client
}

var (
	_ tools.Tool[Request, Response] = (*Tool)(nil)
	_ tools.IMCPTool                = (*Tool)(nil)
)

func New() *Tool {
	return &Tool{
		name:        ToolName,
		description: "Fetch current weather for a city: conditions, temperature, humidity and wind.",
		geocodeURL:  defaultGeocodeURL,
		forecastURL: defaultForecastURL,
		httpClient:  http.DefaultClient,
	}
}

// WithBaseURLs overrides the API endpoints, used in tests.
func (t *Tool) WithBaseURLs(geocodeURL, forecastURL string) *Tool {
	t.geocodeURL = geocodeURL
	t.forecastURL = forecastURL
	return t
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.description }

func (t *Tool) Parameters() any {
	s, _ := schema.New(reflect.TypeOf(Request{}))
	return s.Parameters
}

type geocodeResult struct {
	Results []struct {
		Name      string  `json:"name"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResult struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Response, error) {
	units := req.Units
	if units == "" {
		units = "metric"
	}

	var geo geocodeResult
	err := t.getJSON(ctx, t.geocodeURL, url.Values{
		"name":     {req.Location},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}, &geo)
	if err != nil {
		return nil, errors.WithMessage(err, "geocoding failed")
	}
	if len(geo.Results) == 0 {
		return nil, errors.Newf("location %q not found", req.Location)
	}

	loc := geo.Results[0]
	var parts []string
	for _, p := range []string{loc.Name, loc.Admin1, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	tempUnit, windUnit := "celsius", "kmh"
	if units == "imperial" {
		tempUnit, windUnit = "fahrenheit", "mph"
	}

	var wx forecastResult
	err = t.getJSON(ctx, t.forecastURL, url.Values{
		"latitude":         {fmt.Sprintf("%g", loc.Latitude)},
		"longitude":        {fmt.Sprintf("%g", loc.Longitude)},
		"current":          {"temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code"},
		"temperature_unit": {tempUnit},
		"wind_speed_unit":  {windUnit},
	}, &wx)
	if err != nil {
		return nil, errors.WithMessage(err, "forecast failed")
	}

	conditions, ok := wmoCodes[wx.Current.WeatherCode]
	if !ok {
		conditions = fmt.Sprintf("Unknown (WMO %d)", wx.Current.WeatherCode)
	}

	return &Response{
		Location:    strings.Join(parts, ", "),
		Conditions:  conditions,
		Temperature: wx.Current.Temperature,
		Humidity:    wx.Current.Humidity,
		WindSpeed:   wx.Current.WindSpeed,
		Units:       units,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if err := tools.UnmarshalInput(input, &req); err != nil {
		return "", err
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// RegisterMCP registers the tool with its typed argument schema.
func (t *Tool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description,
		func(ctx context.Context, req Request) (*mcp_golang.ToolResponse, error) {
			if err := tools.ValidateInput(&req); err != nil {
				return nil, err
			}
			out, err := t.Run(ctx, &req)
			if err != nil {
				return nil, err
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(out.String())), nil
		})
}

func (t *Tool) getJSON(ctx context.Context, base string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return errors.WithStack(err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("unexpected status %d from %s", resp.StatusCode, base)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithMessage(err, "failed to decode response")
	}
	return nil
}
