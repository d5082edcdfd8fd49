package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"advisor/pkg/errors"
)

const ddgHTMLURL = "https://html.duckduckgo.com/html/"

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"href"`
	Snippet string `json:"body"`
}

// RateLimitError indicates the search backend is throttling us.
type RateLimitError struct {
	StatusCode int
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("search rate limited (status %d)", e.StatusCode)
}

// ProviderError indicates the search backend failed for a provider-side reason.
type ProviderError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("search provider error (status %d): %s", e.StatusCode, e.Detail)
}

// Client is a DuckDuckGo HTML endpoint client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
}

// NewClient creates a search client with the given request timeout and pacer.
func NewClient(timeout time.Duration, limiter *rate.Limiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		userAgent:  "Mozilla/5.0 (compatible; financial-advisor-multiagent/1.0)",
		baseURL:    ddgHTMLURL,
	}
}

// Search queries DuckDuckGo and returns up to maxResults hits.
// maxResults <= 0 means no client-side cap.
func (c *Client) Search(ctx context.Context, keywords string, region string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(keywords) == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "empty search keywords")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "search pacing")
		}
	}

	form := url.Values{}
	form.Set("q", keywords)
	if region != "" {
		form.Set("kl", region)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "create search request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send search request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusForbidden:
		// DuckDuckGo serves an anomaly challenge page as 403 when throttling.
		return nil, &RateLimitError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{StatusCode: resp.StatusCode, Detail: string(body)}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Detail: "unparseable response: " + err.Error()}
	}

	results := parseResults(doc)
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	return results, nil
}

// parseResults walks the HTML endpoint's result markup:
// result links carry class "result__a", snippets class "result__snippet".
func parseResults(doc *html.Node) []Result {
	var results []Result
	var current *Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				if current != nil {
					results = append(results, *current)
				}
				current = &Result{
					Title: textContent(n),
					URL:   resolveHref(attrValue(n, "href")),
				}
			case hasClass(n, "result__snippet"):
				if current != nil {
					current.Snippet = textContent(n)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if current != nil {
		results = append(results, *current)
	}

	return results
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// resolveHref unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=...).
func resolveHref(href string) string {
	if href == "" {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		if target, err := url.QueryUnescape(uddg); err == nil {
			return target
		}
	}
	return href
}
