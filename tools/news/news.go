// Package news fetches headlines from NewsAPI, optionally filtered by a
// topic. Requires the NEWSAPI_KEY environment variable.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/lmfoundry/locallm/schema"
	"github.com/lmfoundry/locallm/tools"
	mcp_golang "github.com/metoro-io/mcp-golang"
)

const ToolName = "news_headlines"

const (
	defaultBaseURL    = "https://newsapi.org/v2"
	defaultCountry    = "us"
	defaultMaxResults = 5
	maxResultsLimit   = 10
)

const missingKeyMessage = "NEWSAPI_KEY environment variable is not set. " +
	"Get a free key at https://newsapi.org and set it with: " +
	"export NEWSAPI_KEY=your_key_here"

// Request represents the tool input.
type Request struct {
	Topic      string `json:"topic,omitempty" jsonschema:"title=Topic,description=Keywords to search for e.g. AI or climate change; leave blank for general top headlines"`
	Country string `json:"country,omitempty" validate:"omitempty,len=2" jsonschema:"title=Country,description=2-letter country code used when topic is blank; default us"`
	// MaxResults above the limit is clamped, not rejected.
	MaxResults int `json:"max_results,omitempty" validate:"gte=0" jsonschema:"title=MaxResults,description=Number of headlines to return between 1 and 10; default 5"`
}

// Article is one returned headline.
type Article struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Published string `json:"published"`
}

// Response carries the fetched headlines.
type Response struct {
	Articles []Article `json:"articles"`
}

func (r *Response) String() string {
	if len(r.Articles) == 0 {
		return "No headlines found."
	}
	var sb strings.Builder
	for i, a := range r.Articles {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n   Published: %s\n   %s",
			i+1, a.Source, a.Title, a.Published, a.URL)
	}
	return sb.String()
}

// Tool queries the NewsAPI /everything or /top-headlines endpoints.
type Tool struct {
	name        string
	description string

	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var (
	_ tools.Tool[Request, Response] = (*Tool)(nil)
	_ tools.IMCPTool                = (*Tool)(nil)
)

func New() *Tool {
	return &Tool{
		name: ToolName,
		description: "Fetch the latest news headlines, optionally filtered by topic. " +
			"Requires the NEWSAPI_KEY environment variable.",
		baseURL:    defaultBaseURL,
		apiKey:     os.Getenv("NEWSAPI_KEY"),
		httpClient: http.DefaultClient,
	}
}

// WithBaseURL overrides the API endpoint, used in tests.
func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) WithAPIKey(apiKey string) *Tool {
	t.apiKey = apiKey
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

type apiResult struct {
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Response, error) {
	if t.apiKey == "" {
		return nil, errors.New(missingKeyMessage)
	}

	maxResults := values.NumbersCoalesce(req.MaxResults, defaultMaxResults)
	if maxResults > maxResultsLimit {
		maxResults = maxResultsLimit
	}
	country := values.StringsCoalesce(req.Country, defaultCountry)

	var endpoint string
	params := url.Values{
		"pageSize": {strconv.Itoa(maxResults)},
		"apiKey":   {t.apiKey},
	}
	if req.Topic != "" {
		endpoint = t.baseURL + "/everything"
		params.Set("q", req.Topic)
		params.Set("sortBy", "publishedAt")
		params.Set("language", "en")
	} else {
		endpoint = t.baseURL + "/top-headlines"
		params.Set("country", country)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := t.httpClient.Do(hreq)
	if err != nil {
		return nil, errors.WithMessage(err, "news request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("unexpected status %d from NewsAPI", resp.StatusCode)
	}

	var data apiResult
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.WithMessage(err, "failed to decode response")
	}

	res := &Response{}
	for _, a := range data.Articles {
		published := a.PublishedAt
		if len(published) > 10 {
			published = published[:10]
		}
		res.Articles = append(res.Articles, Article{
			Source:    values.StringsCoalesce(a.Source.Name, "Unknown"),
			Title:     values.StringsCoalesce(a.Title, "No title"),
			URL:       a.URL,
			Published: published,
		})
	}
	return res, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	if t.apiKey == "" {
		// Reported as content rather than an error so the model can
		// relay the setup instructions to the user.
		return missingKeyMessage, nil
	}
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
			if t.apiKey == "" {
				return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(missingKeyMessage)), nil
			}
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
