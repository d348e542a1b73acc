package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lmfoundry/locallm/llmutils"
	"github.com/lmfoundry/locallm/tools"
	"github.com/lmfoundry/locallm/tools/weather"
	mcp_golang "github.com/metoro-io/mcp-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServers(t *testing.T, geoBody, wxBody string) (*httptest.Server, *httptest.Server) {
	t.Helper()
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Tokyo", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(geoBody))
	}))
	t.Cleanup(geo.Close)

	wx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("latitude"))
		_, _ = w.Write([]byte(wxBody))
	}))
	t.Cleanup(wx.Close)
	return geo, wx
}

func TestToolRun(t *testing.T) {
	geoBody := `{"results":[{"name":"Tokyo","admin1":"Tokyo","country":"Japan","latitude":35.68,"longitude":139.69}]}`
	wxBody := `{"current":{"temperature_2m":21.5,"relative_humidity_2m":60,"wind_speed_10m":12.3,"weather_code":2}}`
	geo, wx := newServers(t, geoBody, wxBody)

	tool := weather.New().WithBaseURLs(geo.URL, wx.URL)
	assert.Equal(t, weather.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "weather")

	params := llmutils.ToJSONIndent(tool.Parameters())
	assert.Contains(t, params, `"location"`)

	out, err := tool.Call(context.Background(), `{"location":"Tokyo"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Weather in Tokyo, Tokyo, Japan")
	assert.Contains(t, out, "Partly cloudy")
	assert.Contains(t, out, "21.5°C")
	assert.Contains(t, out, "12.3 km/h")
}

func TestToolImperialUnits(t *testing.T) {
	geoBody := `{"results":[{"name":"Tokyo","country":"Japan","latitude":35.68,"longitude":139.69}]}`
	wxBody := `{"current":{"temperature_2m":70.7,"relative_humidity_2m":55,"wind_speed_10m":7.6,"weather_code":0}}`
	geo, wx := newServers(t, geoBody, wxBody)

	tool := weather.New().WithBaseURLs(geo.URL, wx.URL)
	out, err := tool.Call(context.Background(), `{"location":"Tokyo","units":"imperial"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "70.7°F")
	assert.Contains(t, out, "7.6 mph")
	assert.Contains(t, out, "Clear sky")
}

func TestToolLocationNotFound(t *testing.T) {
	geo, wx := newServers(t, `{"results":[]}`, `{}`)

	tool := weather.New().WithBaseURLs(geo.URL, wx.URL)
	_, err := tool.Run(context.Background(), &weather.Request{Location: "Tokyo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

type fakeRegistrator struct {
	name    string
	handler any
}

func (r *fakeRegistrator) RegisterTool(name, _ string, handler any) error {
	r.name, r.handler = name, handler
	return nil
}

func TestRegisterMCP(t *testing.T) {
	geoBody := `{"results":[{"name":"Tokyo","country":"Japan","latitude":35.68,"longitude":139.69}]}`
	wxBody := `{"current":{"temperature_2m":21.5,"relative_humidity_2m":60,"wind_speed_10m":12.3,"weather_code":2}}`
	geo, wx := newServers(t, geoBody, wxBody)

	tool := weather.New().WithBaseURLs(geo.URL, wx.URL)
	reg := &fakeRegistrator{}
	require.NoError(t, tool.RegisterMCP(reg))
	assert.Equal(t, weather.ToolName, reg.name)

	fn, ok := reg.handler.(func(context.Context, weather.Request) (*mcp_golang.ToolResponse, error))
	require.True(t, ok)

	res, err := fn(context.Background(), weather.Request{Location: "Tokyo"})
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].TextContent.Text, "Partly cloudy")

	// typed handlers still validate
	_, err = fn(context.Background(), weather.Request{Units: "metric"})
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)
}

func TestToolInvalidInput(t *testing.T) {
	tool := weather.New()

	_, err := tool.Call(context.Background(), `{"units":"metric"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)

	_, err = tool.Call(context.Background(), `{"location":"Tokyo","units":"kelvin"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)

	_, err = tool.Call(context.Background(), `garbage`)
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrFailedUnmarshalInput)
}
