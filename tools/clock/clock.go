// Package clock reports the current date and time for a timezone.
package clock

import (
	"context"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lmfoundry/locallm/schema"
	"github.com/lmfoundry/locallm/tools"
	mcp_golang "github.com/metoro-io/mcp-golang"
)

const ToolName = "get_datetime"

// Request represents the tool input.
type Request struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"title=Timezone,description=IANA timezone name e.g. UTC or America/New_York; default UTC"`
}

// Response carries the formatted local time.
type Response struct {
	Datetime string `json:"datetime"`
}

func (r *Response) String() string { return r.Datetime }

// Tool returns the current time in a requested timezone.
type Tool struct {
	name        string
	description string
	// now is swappable in tests
	now func() time.Time
}

var (
	_ tools.Tool[Request, Response] = (*Tool)(nil)
	_ tools.IMCPTool                = (*Tool)(nil)
)

func New() *Tool {
	return &Tool{
		name:        ToolName,
		description: "Return the current date and time for an IANA timezone, defaulting to UTC.",
		now:         time.Now,
	}
}

// WithNow overrides the time source, used in tests.
func (t *Tool) WithNow(now func() time.Time) *Tool {
	t.now = now
	return t
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.description }

func (t *Tool) Parameters() any {
	s, _ := schema.New(reflect.TypeOf(Request{}))
	return s.Parameters
}

func (t *Tool) Run(_ context.Context, req *Request) (*Response, error) {
	name := req.Timezone
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Newf("unknown timezone %q; use an IANA name like UTC, America/New_York, or Europe/London", name)
	}
	return &Response{
		Datetime: t.now().In(loc).Format("2006-01-02 15:04:05 MST (UTC-0700)"),
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if input != "" {
		if err := tools.UnmarshalInput(input, &req); err != nil {
			return "", err
		}
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
			out, err := t.Run(ctx, &req)
			if err != nil {
				return nil, err
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(out.String())), nil
		})
}
