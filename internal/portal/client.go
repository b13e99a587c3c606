// Package portal queries and re-tags items in an ArcGIS-style web content
// portal through its sharing REST API.
package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dbsmedya/gisadmin/internal/config"
	"github.com/dbsmedya/gisadmin/internal/httpclient"
	"github.com/dbsmedya/gisadmin/internal/logger"
)

// Item is a portal content item.
type Item struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Type  string   `json:"type"`
	Owner string   `json:"owner"`
	Tags  []string `json:"tags"`
}

// User is a portal member.
type User struct {
	Username     string `json:"username"`
	StorageUsage int64  `json:"storageUsage"`
}

// Client is the portal content service.
type Client interface {
	// SearchItems returns up to limit items matching query.
	SearchItems(ctx context.Context, query string, limit int) ([]Item, error)
	// SearchUsers returns up to limit members of the portal organisation.
	SearchUsers(ctx context.Context, limit int) ([]User, error)
	// UpdateTags replaces the tags of an item.
	UpdateTags(ctx context.Context, item Item, tags []string) error
}

// APIError is an error object returned in a 200 response body.
type APIError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("portal error %d: %s (%s)", e.Code, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("portal error %d: %s", e.Code, e.Message)
}

// page is the paging envelope shared by search responses.
type page struct {
	Total     int       `json:"total"`
	NextStart int       `json:"nextStart"`
	Error     *APIError `json:"error"`
}

type itemPage struct {
	page
	Results []Item `json:"results"`
}

type userPage struct {
	page
	Users []User `json:"users"`
}

type updateResponse struct {
	Success bool      `json:"success"`
	ID      string    `json:"id"`
	Error   *APIError `json:"error"`
}

// RESTClient talks to the sharing REST API.
type RESTClient struct {
	baseURL  string
	token    string
	pageSize int
	http     *retryablehttp.Client
	logger   *logger.Logger
}

// NewRESTClient creates a client from the portal configuration.
func NewRESTClient(cfg config.PortalConfig, log *logger.Logger) (*RESTClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("portal url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid portal url: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	return &RESTClient{
		baseURL:  strings.TrimSuffix(cfg.URL, "/") + "/sharing/rest",
		token:    cfg.Token,
		pageSize: pageSize,
		http:     httpclient.New(time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.RetryMax, log),
		logger:   log,
	}, nil
}

// newRequest builds a request carrying the token header when one is set.
func (c *RESTClient) newRequest(ctx context.Context, method, endpoint string, params url.Values) (*retryablehttp.Request, error) {
	params.Set("f", "json")

	var req *retryablehttp.Request
	var err error
	if method == http.MethodGet {
		req, err = retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+endpoint+"?"+params.Encode(), nil)
	} else {
		req, err = retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+endpoint, []byte(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("X-Esri-Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// SearchItems pages through /search until limit items are collected or the
// results run out.
func (c *RESTClient) SearchItems(ctx context.Context, query string, limit int) ([]Item, error) {
	var items []Item
	start := 1
	for limit <= 0 || len(items) < limit {
		params := url.Values{}
		params.Set("q", query)
		params.Set("start", strconv.Itoa(start))
		params.Set("num", strconv.Itoa(c.pageSize))

		req, err := c.newRequest(ctx, http.MethodGet, "/search", params)
		if err != nil {
			return nil, err
		}

		var resp itemPage
		if err := httpclient.Do(c.http, req, &resp); err != nil {
			return nil, fmt.Errorf("item search %q: %w", query, err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("item search %q: %w", query, resp.Error)
		}

		items = append(items, resp.Results...)
		if resp.NextStart <= 0 || len(resp.Results) == 0 {
			break
		}
		start = resp.NextStart
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	c.logger.Debugw("Item search", "query", query, "items", len(items))
	return items, nil
}

// SearchUsers pages through the organisation's member list.
func (c *RESTClient) SearchUsers(ctx context.Context, limit int) ([]User, error) {
	var users []User
	start := 1
	for limit <= 0 || len(users) < limit {
		params := url.Values{}
		params.Set("start", strconv.Itoa(start))
		params.Set("num", strconv.Itoa(c.pageSize))

		req, err := c.newRequest(ctx, http.MethodGet, "/portals/self/users", params)
		if err != nil {
			return nil, err
		}

		var resp userPage
		if err := httpclient.Do(c.http, req, &resp); err != nil {
			return nil, fmt.Errorf("user search: %w", err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("user search: %w", resp.Error)
		}

		users = append(users, resp.Users...)
		if resp.NextStart <= 0 || len(resp.Users) == 0 {
			break
		}
		start = resp.NextStart
	}

	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// UpdateTags replaces the tags of item. An empty tag list clears the tags.
func (c *RESTClient) UpdateTags(ctx context.Context, item Item, tags []string) error {
	params := url.Values{}
	params.Set("tags", strings.Join(tags, ","))
	if len(tags) == 0 {
		params.Set("clearEmptyFields", "true")
	}

	endpoint := fmt.Sprintf("/content/users/%s/items/%s/update", url.PathEscape(item.Owner), url.PathEscape(item.ID))
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, params)
	if err != nil {
		return err
	}

	var resp updateResponse
	if err := httpclient.Do(c.http, req, &resp); err != nil {
		return fmt.Errorf("update item %s: %w", item.ID, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("update item %s: %w", item.ID, resp.Error)
	}
	if !resp.Success {
		return fmt.Errorf("update item %s: portal did not report success", item.ID)
	}
	return nil
}

var _ Client = (*RESTClient)(nil)
