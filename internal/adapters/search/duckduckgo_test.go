package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="results">
  <div class="result">
    <h2 class="result__title">
      <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fearnings&amp;rut=abc">AAPL Q3 Earnings Beat</a>
    </h2>
    <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fearnings">Apple reported record revenue for the quarter.</a>
  </div>
  <div class="result">
    <h2 class="result__title">
      <a class="result__a" href="https://example.com/analysts">Analyst coverage roundup</a>
    </h2>
    <a class="result__snippet" href="https://example.com/analysts">Price targets were revised upward.</a>
  </div>
</div>
</body></html>`

func newTestClient(serverURL string) *Client {
	c := NewClient(5*time.Second, nil)
	c.baseURL = serverURL
	return c
}

func TestSearch_ParsesResults(t *testing.T) {
	var gotQuery, gotRegion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.Form.Get("q")
		gotRegion = r.Form.Get("kl")
		w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).Search(context.Background(), "AAPL earnings", "us-en", 10)
	require.NoError(t, err)

	assert.Equal(t, "AAPL earnings", gotQuery)
	assert.Equal(t, "us-en", gotRegion)

	require.Len(t, results, 2)
	assert.Equal(t, "AAPL Q3 Earnings Beat", results[0].Title)
	assert.Equal(t, "https://example.com/earnings", results[0].URL)
	assert.Equal(t, "Apple reported record revenue for the quarter.", results[0].Snippet)
	assert.Equal(t, "https://example.com/analysts", results[1].URL)
}

func TestSearch_CapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).Search(context.Background(), "AAPL", "", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_RateLimited(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := newTestClient(server.URL).Search(context.Background(), "AAPL", "", 10)
		server.Close()

		var rateErr *RateLimitError
		require.ErrorAs(t, err, &rateErr, "status %d must map to RateLimitError", status)
		assert.Equal(t, status, rateErr.StatusCode)
	}
}

func TestSearch_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Search(context.Background(), "AAPL", "", 10)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadGateway, provErr.StatusCode)
	assert.Contains(t, provErr.Detail, "upstream exploded")
}

func TestSearch_EmptyKeywords(t *testing.T) {
	_, err := newTestClient("http://unused").Search(context.Background(), "   ", "", 10)
	assert.Error(t, err)
}

func TestSearch_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="no-results">No results.</div></body></html>`))
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).Search(context.Background(), "gibberish", "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolveHref(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage", "https://example.com/page"},
		{"https://example.com/direct", "https://example.com/direct"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveHref(tt.in), "input %q", tt.in)
	}
}
