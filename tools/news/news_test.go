package news_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lmfoundry/locallm/tools/news"
	mcp_golang "github.com/metoro-io/mcp-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topicBody = `{"articles":[
  {"source":{"name":"Example"},"title":"AI breakthrough","url":"https://example.com/a","publishedAt":"2025-03-01T12:00:00Z"},
  {"source":{"name":""},"title":"","url":"https://example.com/b","publishedAt":"2025-02-28T08:30:00Z"}
]}`

func TestToolTopicSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "AI", q.Get("q"))
		assert.Equal(t, "publishedAt", q.Get("sortBy"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "3", q.Get("pageSize"))
		assert.Equal(t, "test-key", q.Get("apiKey"))
		_, _ = w.Write([]byte(topicBody))
	}))
	t.Cleanup(srv.Close)

	tool := news.New().WithBaseURL(srv.URL).WithAPIKey("test-key")
	out, err := tool.Call(context.Background(), `{"topic":"AI","max_results":3}`)
	require.NoError(t, err)
	assert.Contains(t, out, "1. [Example] AI breakthrough")
	assert.Contains(t, out, "Published: 2025-03-01")
	assert.Contains(t, out, "https://example.com/a")
	assert.Contains(t, out, "2. [Unknown] No title")
}

func TestToolTopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "gb", q.Get("country"))
		assert.Equal(t, "5", q.Get("pageSize"))
		_, _ = w.Write([]byte(`{"articles":[]}`))
	}))
	t.Cleanup(srv.Close)

	tool := news.New().WithBaseURL(srv.URL).WithAPIKey("test-key")
	out, err := tool.Call(context.Background(), `{"country":"gb"}`)
	require.NoError(t, err)
	assert.Equal(t, "No headlines found.", out)
}

func TestToolDefaultsAndClamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "us", q.Get("country"))
		assert.Equal(t, "5", q.Get("pageSize"))
		_, _ = w.Write([]byte(`{"articles":[]}`))
	}))
	t.Cleanup(srv.Close)

	tool := news.New().WithBaseURL(srv.URL).WithAPIKey("test-key")
	_, err := tool.Call(context.Background(), "")
	require.NoError(t, err)
}

func TestToolClampsMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// above-limit requests are clamped to 10, never rejected
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
		_, _ = w.Write([]byte(`{"articles":[]}`))
	}))
	t.Cleanup(srv.Close)

	tool := news.New().WithBaseURL(srv.URL).WithAPIKey("test-key")
	_, err := tool.Call(context.Background(), `{"topic":"AI","max_results":25}`)
	require.NoError(t, err)
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
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(topicBody))
	}))
	t.Cleanup(srv.Close)

	tool := news.New().WithBaseURL(srv.URL).WithAPIKey("test-key")
	reg := &fakeRegistrator{}
	require.NoError(t, tool.RegisterMCP(reg))
	assert.Equal(t, news.ToolName, reg.name)

	fn, ok := reg.handler.(func(context.Context, news.Request) (*mcp_golang.ToolResponse, error))
	require.True(t, ok)

	res, err := fn(context.Background(), news.Request{Topic: "AI"})
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].TextContent.Text, "AI breakthrough")

	// a missing key is surfaced as content, matching Call
	keyless := news.New().WithBaseURL(srv.URL).WithAPIKey("")
	reg = &fakeRegistrator{}
	require.NoError(t, keyless.RegisterMCP(reg))
	fn, ok = reg.handler.(func(context.Context, news.Request) (*mcp_golang.ToolResponse, error))
	require.True(t, ok)
	res, err = fn(context.Background(), news.Request{Topic: "AI"})
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].TextContent.Text, "NEWSAPI_KEY environment variable is not set")
}

func TestToolMissingKey(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "")

	tool := news.New()
	out, err := tool.Call(context.Background(), `{"topic":"AI"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "NEWSAPI_KEY environment variable is not set")
	assert.Contains(t, out, "export NEWSAPI_KEY=your_key_here")

	_, err = tool.Run(context.Background(), &news.Request{Topic: "AI"})
	require.Error(t, err)
}

func TestToolAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	tool := news.New().WithBaseURL(srv.URL).WithAPIKey("bad-key")
	_, err := tool.Call(context.Background(), `{"topic":"AI"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
