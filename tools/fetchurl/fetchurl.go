// Package fetchurl retrieves a URL and returns its visible text content.
package fetchurl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/lmfoundry/locallm/schema"
	"github.com/lmfoundry/locallm/tools"
	mcp_golang "github.com/metoro-io/mcp-golang"
	"golang.org/x/net/html"
)

const ToolName = "fetch_url"

const (
	defaultMaxChars = 4000
	userAgent       = "Mozilla/5.0 (compatible; locallm-agent/1.0)"
)

// skipTags are elements whose text content is never visible.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true,
	"meta": true, "link": true, "noscript": true,
}

// Request represents the tool input.
type Request struct {
	URL      string `json:"url" validate:"required,url" jsonschema:"title=URL,description=The URL to fetch; must start with http:// or https://"`
	MaxChars int    `json:"max_chars,omitempty" validate:"gte=0" jsonschema:"title=MaxChars,description=Maximum characters to return; default 4000"`
}

// Response carries the extracted page text.
type Response struct {
	Text string `json:"text"`
}

func (r *Response) String() string { return r.Text }

// Tool fetches a URL, stripping HTML down to visible text.
type Tool struct {
	name        string
	description string
	httpClient  *http.Client
}

var (
	_ tools.Tool[Request, Response] = (*Tool)(nil)
	_ tools.IMCPTool                = (*Tool)(nil)
)

func New() *Tool {
	return &Tool{
		name:        ToolName,
		description: "Fetch a URL and return its text content; HTML is stripped of tags.",
		httpClient:  http.DefaultClient,
	}
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

func (t *Tool) Run(ctx context.Context, req *Request) (*Response, error) {
	maxChars := values.NumbersCoalesce(req.MaxChars, defaultMaxChars)

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	hreq.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(hreq)
	if err != nil {
		return nil, errors.WithMessage(err, "fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("unexpected status %d fetching %s", resp.StatusCode, req.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read body")
	}

	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		text = extractText(text)
	}

	// truncation counts characters, not bytes, so a multi-byte rune is
	// never split
	if runes := []rune(text); len(runes) > maxChars {
		text = string(runes[:maxChars]) + fmt.Sprintf("\n... [truncated at %d chars]", maxChars)
	}
	return &Response{Text: text}, nil
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

// extractText walks the HTML token stream and keeps only text outside of
// non-visible elements.
func extractText(page string) string {
	tz := html.NewTokenizer(strings.NewReader(page))
	var parts []string
	skipDepth := 0
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return strings.Join(parts, "\n")
		case html.StartTagToken:
			name, _ := tz.TagName()
			if skipTags[string(name)] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tz.TagName()
			if skipTags[string(name)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				if text := strings.TrimSpace(string(tz.Text())); text != "" {
					parts = append(parts, text)
				}
			}
		}
	}
}
