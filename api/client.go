package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Service is the per-resource CRUD boundary every page talks to.
type Service interface {
	List(ctx context.Context, resource string, filters url.Values) ([]Entity, error)
	Get(ctx context.Context, resource, id string) (Entity, error)
	Create(ctx context.Context, resource string, payload map[string]any) (Entity, error)
	Update(ctx context.Context, resource, id string, payload map[string]any) (Entity, error)
	Delete(ctx context.Context, resource, id string) error
}

// SearchParam is the query parameter list endpoints use for free-text search.
const SearchParam = "search"

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Tenant  string
	Timeout time.Duration
}

// Client talks to the REST backend. Resources map to /<resource>/ and
// /<resource>/<id>/.
type Client struct {
	base   *url.URL
	http   *http.Client
	tenant string

	mu    sync.RWMutex
	token string

	gets singleflight.Group
}

// NewClient validates the base URL and builds a client.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is not configured")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid api base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base URL %q: scheme must be http or https", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		tenant: opts.Tenant,
		token:  opts.Token,
	}, nil
}

// SetToken swaps the bearer token used by subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) endpoint(resource, id string, query url.Values) string {
	path := url.PathEscape(resource) + "/"
	if id != "" {
		path += url.PathEscape(id) + "/"
	}
	u := c.base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.tenant != "" {
		req.Header.Set("X-Tenant-ID", c.tenant)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("%s %s: %v", method, req.URL.Path, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read response: %v", err), Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) List(ctx context.Context, resource string, filters url.Values) ([]Entity, error) {
	data, err := c.do(ctx, http.MethodGet, c.endpoint(resource, "", filters), nil)
	if err != nil {
		return nil, err
	}
	entities, err := ParseList(data)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	return entities, nil
}

// Get collapses concurrent requests for the same entity into one round trip.
// The shared request is detached from the caller that started it, so a
// caller giving up returns early without failing the others.
func (c *Client) Get(ctx context.Context, resource, id string) (Entity, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.gets.DoChan(resource+"/"+id, func() (any, error) {
		data, err := c.do(shared, http.MethodGet, c.endpoint(resource, id, nil), nil)
		if err != nil {
			return nil, err
		}
		return ParseEntity(data)
	})
	select {
	case <-ctx.Done():
		return Entity{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Entity{}, r.Err
		}
		return r.Val.(Entity), nil
	}
}

func (c *Client) Create(ctx context.Context, resource string, payload map[string]any) (Entity, error) {
	data, err := c.do(ctx, http.MethodPost, c.endpoint(resource, "", nil), payload)
	if err != nil {
		return Entity{}, err
	}
	return ParseEntity(data)
}

func (c *Client) Update(ctx context.Context, resource, id string, payload map[string]any) (Entity, error) {
	data, err := c.do(ctx, http.MethodPatch, c.endpoint(resource, id, nil), payload)
	if err != nil {
		return Entity{}, err
	}
	return ParseEntity(data)
}

func (c *Client) Delete(ctx context.Context, resource, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.endpoint(resource, id, nil), nil)
	return err
}
