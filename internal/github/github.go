// Package github retrieves candidate projects from the GitHub repository
// search API and converts them into analysis documents.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chriscorrea/ideascore/internal/analysis"
)

// MaxResponseBytes caps a single search page to prevent memory overload
const MaxResponseBytes = 10 * 1024 * 1024

// maxPages mirrors the GitHub search API limit of 1000 results at 100 per page
const maxPages = 10

// DefaultBaseURL is the public GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Token      string // sent as a bearer token when non-empty
	UserAgent  string
	PerPage    int
	MaxResults int
	Timeout    time.Duration
	HTTPClient *http.Client // overrides the client built from Timeout
}

// Client searches GitHub repositories. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	perPage    int
	maxResults int
	httpClient *http.Client
}

// limitedReadCloser wraps an io.ReadCloser to enforce size limits
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		return 0, fmt.Errorf("response from %q exceeds size limit", l.source)
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// NewClient creates a search client with timeouts split across the dial,
// TLS and header phases of each request.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ideascore/0.1"
	}
	if opts.PerPage <= 0 || opts.PerPage > 100 {
		opts.PerPage = 100
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 500
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout / 6,
				}).DialContext,
				TLSHandshakeTimeout:   opts.Timeout / 6,
				ResponseHeaderTimeout: opts.Timeout / 2,
			},
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		userAgent:  opts.UserAgent,
		perPage:    opts.PerPage,
		maxResults: opts.MaxResults,
		httpClient: httpClient,
	}
}

// repository is the subset of a search item the analysis needs.
// Description and topics may be null in the API response.
type repository struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	Topics          []string `json:"topics"`
	HTMLURL         string   `json:"html_url"`
	StargazersCount int      `json:"stargazers_count"`
}

type searchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []repository `json:"items"`
}

type apiError struct {
	Message string `json:"message"`
}

// Search returns repositories matching idea, most starred first.
//
// Pages are fetched until a short page, the page limit, or MaxResults is
// reached. Each fetched page is reported to the ProgressFunc carried by ctx,
// if any. A failure on the first page is returned; a failure on a later page
// ends pagination and the documents fetched so far are returned.
func (c *Client) Search(ctx context.Context, idea, language string) ([]analysis.Document, error) {
	query := strings.TrimSpace(idea)
	if language = strings.TrimSpace(language); language != "" {
		query += " language:" + language
	}

	progress := progressFrom(ctx)

	var docs []analysis.Document
	for page := 1; page <= maxPages && len(docs) < c.maxResults; page++ {
		items, err := c.fetchPage(ctx, query, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("GitHub search stopped early", "page", page, "fetched", len(docs), "error", err)
			break
		}

		slog.Debug("Fetched search page", "page", page, "items", len(items))
		for _, item := range items {
			docs = append(docs, item.document())
		}
		progress(page, min(len(docs), c.maxResults))

		if len(items) < c.perPage {
			break // fewer results means we're at the end
		}
	}

	if len(docs) > c.maxResults {
		docs = docs[:c.maxResults]
	}
	if docs == nil {
		docs = []analysis.Document{}
	}
	return docs, nil
}

func (c *Client) fetchPage(ctx context.Context, query string, page int) ([]repository, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("page", strconv.Itoa(page))
	endpoint := c.baseURL + "/search/repositories?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search repositories: %w", err)
	}
	body := &limitedReadCloser{ReadCloser: resp.Body, N: MaxResponseBytes, source: endpoint}
	defer body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.NewDecoder(body).Decode(&apiErr)
		if apiErr.Message != "" {
			return nil, fmt.Errorf("github search failed: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("github search failed: status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var result searchResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return result.Items, nil
}

func (r repository) document() analysis.Document {
	doc := analysis.Document{
		Name:   r.Name,
		Topics: r.Topics,
		URL:    r.HTMLURL,
		Stars:  r.StargazersCount,
	}
	if r.Description != nil {
		doc.Description = *r.Description
	}
	if doc.Topics == nil {
		doc.Topics = []string{}
	}
	return doc
}
