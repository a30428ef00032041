// Package servicedesk is a client for the Jira Service Management REST API.
package servicedesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"deskqueue/internal/config"
	"deskqueue/internal/model"
)

const (
	defaultPageSize = 50
	defaultTimeout  = 15 * time.Second
	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
	// maxPages bounds a listing when the upstream never reports its last page.
	maxPages = 1000
)

var (
	ErrNotFound     = errors.New("service desk resource not found")
	ErrUnauthorized = errors.New("service desk credentials rejected")
	// ErrPagination is returned when paging does not advance or does not end.
	ErrPagination = errors.New("service desk pagination did not terminate")
)

// APIError is a non-2xx response other than 401, 403 and 404.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service desk api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("service desk api: status %d: %s", e.StatusCode, e.Message)
}

// QueueLister lists the queues of a service desk.
type QueueLister interface {
	ListQueues(ctx context.Context, serviceDeskID string) ([]model.Queue, error)
}

// Client talks to one Jira site. It is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	email    string
	apiToken string
	pageSize int
	http     *http.Client
}

var _ QueueLister = (*Client)(nil)

// NewClient builds a Client for cfg.BaseURL, e.g. https://your-site.atlassian.net.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jira base url is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse jira base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("jira base url must be http or https, got %q", cfg.BaseURL)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	return &Client{
		baseURL:  u,
		email:    cfg.Email,
		apiToken: cfg.APIToken,
		pageSize: pageSize,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type pagedResponse[T any] struct {
	Size       int  `json:"size"`
	Start      int  `json:"start"`
	Limit      int  `json:"limit"`
	IsLastPage bool `json:"isLastPage"`
	Values     []T  `json:"values"`
}

type queueResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type errorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

// ListQueues returns every queue of the service desk in the order Jira returns them,
// following pagination until the last page.
func (c *Client) ListQueues(ctx context.Context, serviceDeskID string) ([]model.Queue, error) {
	path := "/rest/servicedeskapi/servicedesk/" + url.PathEscape(serviceDeskID) + "/queue"

	queues := make([]model.Queue, 0)
	start := 0
	prevFirst := ""
	for pages := 0; ; pages++ {
		if pages == maxPages {
			return nil, fmt.Errorf("%w: more than %d pages", ErrPagination, maxPages)
		}

		var page pagedResponse[queueResponse]
		q := url.Values{
			"start": {strconv.Itoa(start)},
			"limit": {strconv.Itoa(c.pageSize)},
		}
		if err := c.get(ctx, path, q, &page); err != nil {
			return nil, err
		}

		if len(page.Values) == 0 {
			return queues, nil
		}
		// An upstream that ignores start keeps serving the same page.
		if pages > 0 && page.Values[0].ID == prevFirst {
			return nil, fmt.Errorf("%w: page at start=%d repeats the previous page", ErrPagination, start)
		}
		prevFirst = page.Values[0].ID

		for _, v := range page.Values {
			queues = append(queues, model.NewQueue(v.ID, v.Name))
		}

		if page.IsLastPage {
			return queues, nil
		}
		start += len(page.Values)
	}
}

// get fetches rawPath, which must already be escaped, relative to the base URL.
func (c *Client) get(ctx context.Context, rawPath string, query url.Values, out any) error {
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", rawPath, err)
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawPath = c.baseURL.EscapedPath() + rawPath
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.email != "" {
		req.SetBasicAuth(c.email, c.apiToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", rawPath, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", rawPath, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		apiErr.Message = er.ErrorMessage
	}
	return apiErr
}
