package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/lmfoundry/locallm/tools/clock"
	mcp_golang "github.com/metoro-io/mcp-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolRun(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 3, 1, 19, 30, 0, 0, time.UTC)
	tool := clock.New().WithNow(func() time.Time { return fixed })

	out, err := tool.Call(context.Background(), `{"timezone":"UTC"}`)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01 19:30:00 UTC (UTC+0000)", out)

	// empty input defaults to UTC
	out, err = tool.Call(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-03-01 19:30:00")

	out, err = tool.Call(context.Background(), `{"timezone":"Asia/Tokyo"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "2025-03-02 04:30:00")
	assert.Contains(t, out, "+0900")
}

type fakeRegistrator struct {
	name        string
	description string
	handler     any
}

func (r *fakeRegistrator) RegisterTool(name, description string, handler any) error {
	r.name, r.description, r.handler = name, description, handler
	return nil
}

func TestRegisterMCP(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 3, 1, 19, 30, 0, 0, time.UTC)
	tool := clock.New().WithNow(func() time.Time { return fixed })

	reg := &fakeRegistrator{}
	require.NoError(t, tool.RegisterMCP(reg))
	assert.Equal(t, clock.ToolName, reg.name)
	assert.NotEmpty(t, reg.description)

	fn, ok := reg.handler.(func(context.Context, clock.Request) (*mcp_golang.ToolResponse, error))
	require.True(t, ok)

	res, err := fn(context.Background(), clock.Request{Timezone: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01 19:30:00 UTC (UTC+0000)", res.Content[0].TextContent.Text)
}

func TestToolUnknownTimezone(t *testing.T) {
	t.Parallel()

	tool := clock.New()
	_, err := tool.Call(context.Background(), `{"timezone":"Mars/Olympus"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown timezone")
	assert.Contains(t, err.Error(), "IANA")
}
