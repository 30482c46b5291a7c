// Package fetch replays a captured HTTP request template across page
// numbers and localizes remote images referenced in question content.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// PagePlaceholder marks where the page number is substituted in the
// template URL and body.
const PagePlaceholder = "{page}"

// Template is a captured HTTP request with a page placeholder.
type Template struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// LoadTemplate reads a request template from a JSON file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: read template: %w", err)
	}
	var tmpl Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("fetch: parse template %s: %w", path, err)
	}
	if tmpl.URL == "" {
		return nil, fmt.Errorf("fetch: template %s has no url", path)
	}
	if tmpl.Method == "" {
		tmpl.Method = http.MethodGet
	}
	return &tmpl, nil
}

// Client replays a request template page by page.
type Client struct {
	HTTP     *http.Client
	Template *Template
}

// NewClient returns a client with a 30 second request timeout.
func NewClient(tmpl *Template) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Template: tmpl,
	}
}

// FetchPages replays the template for pages 1 through pages, writing each
// response body to <outDir>/page_<N>.json. It stops at the first failed
// request and reports how many pages were written.
func (c *Client) FetchPages(ctx context.Context, outDir string, pages int) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("fetch: create output dir: %w", err)
	}

	for page := 1; page <= pages; page++ {
		body, err := c.fetchPage(ctx, page)
		if err != nil {
			return page - 1, err
		}
		name := filepath.Join(outDir, "page_"+strconv.Itoa(page)+".json")
		if err := os.WriteFile(name, body, 0o644); err != nil {
			return page - 1, fmt.Errorf("fetch: write %s: %w", name, err)
		}
	}
	return pages, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]byte, error) {
	num := strconv.Itoa(page)
	url := strings.ReplaceAll(c.Template.URL, PagePlaceholder, num)

	var body io.Reader
	if c.Template.Body != "" {
		body = strings.NewReader(strings.ReplaceAll(c.Template.Body, PagePlaceholder, num))
	}

	req, err := http.NewRequestWithContext(ctx, c.Template.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request for page %d: %w", page, err)
	}
	for k, v := range c.Template.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: page %d: unexpected status %s", page, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
