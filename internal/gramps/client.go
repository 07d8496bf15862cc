package gramps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"lineage/internal/config"
	"lineage/internal/logging"
	"lineage/internal/services"
)

// HTTPDoer describes the HTTP client used to reach the Gramps Web API.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service defines the Gramps operations the resolution and commit
// stages depend on.
type Service interface {
	CheckConnection(ctx context.Context) error
	People(ctx context.Context) ([]Person, error)
	GetPerson(ctx context.Context, handle string) (*Person, error)
	CreatePerson(ctx context.Context, person *Person) (string, error)
	UpdatePerson(ctx context.Context, person *Person) error
	GetEvent(ctx context.Context, handle string) (*Event, error)
	CreateEvent(ctx context.Context, event *Event) (string, error)
	GetFamily(ctx context.Context, handle string) (*Family, error)
	CreateFamily(ctx context.Context, family *Family) (string, error)
	UpdateFamily(ctx context.Context, family *Family) error
}

const (
	// server-issued tokens live 15 minutes; refresh a minute early
	tokenLifetime      = 15 * time.Minute
	tokenRefreshBuffer = time.Minute

	peopleCacheKey = "people"
)

// Client talks to a Gramps Web API instance.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient HTTPDoer
	limiter    *rate.Limiter
	cache      *gocache.Cache
	logger     *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New builds a client from connection settings.
func New(cfg config.Gramps, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewWithClient(cfg, &http.Client{Timeout: timeout}, logger)
}

// NewWithClient builds a client over a caller-supplied HTTP doer.
func NewWithClient(cfg config.Gramps, httpClient HTTPDoer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 5
	}
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		username:   strings.TrimSpace(cfg.Username),
		password:   cfg.Password,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
		cache:      gocache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

// CheckConnection verifies credentials and reachability.
func (c *Client) CheckConnection(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/metadata/", nil, nil)
}

// People returns the full person pool, served from cache while fresh.
func (c *Client) People(ctx context.Context) ([]Person, error) {
	if cached, found := c.cache.Get(peopleCacheKey); found {
		return cached.([]Person), nil
	}
	var people []Person
	if err := c.do(ctx, http.MethodGet, "/api/people/", nil, &people); err != nil {
		return nil, err
	}
	c.cache.SetDefault(peopleCacheKey, people)
	c.logger.Debug("person pool fetched", logging.Int("count", len(people)))
	return people, nil
}

// GetPerson fetches one person record by handle.
func (c *Client) GetPerson(ctx context.Context, handle string) (*Person, error) {
	var person Person
	if err := c.do(ctx, http.MethodGet, "/api/people/"+handle, nil, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// CreatePerson stores a new person record and returns its handle. The
// cached person pool is invalidated so the new record is visible.
func (c *Client) CreatePerson(ctx context.Context, person *Person) (string, error) {
	var created Person
	if err := c.do(ctx, http.MethodPost, "/api/people/", person, &created); err != nil {
		return "", err
	}
	if created.Handle == "" {
		return "", services.Wrap(services.ErrExternalService, "gramps", "create_person", "response missing handle", nil)
	}
	c.cache.Delete(peopleCacheKey)
	return created.Handle, nil
}

// UpdatePerson replaces an existing person record.
func (c *Client) UpdatePerson(ctx context.Context, person *Person) error {
	if person.Handle == "" {
		return services.Wrap(services.ErrValidation, "gramps", "update_person", "person handle required", nil)
	}
	if err := c.do(ctx, http.MethodPut, "/api/people/"+person.Handle, person, nil); err != nil {
		return err
	}
	c.cache.Delete(peopleCacheKey)
	return nil
}

// GetEvent fetches one event record by handle.
func (c *Client) GetEvent(ctx context.Context, handle string) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodGet, "/api/events/"+handle, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent stores a new event record and returns its handle.
func (c *Client) CreateEvent(ctx context.Context, event *Event) (string, error) {
	var created Event
	if err := c.do(ctx, http.MethodPost, "/api/events/", event, &created); err != nil {
		return "", err
	}
	if created.Handle == "" {
		return "", services.Wrap(services.ErrExternalService, "gramps", "create_event", "response missing handle", nil)
	}
	return created.Handle, nil
}

// GetFamily fetches one family record by handle.
func (c *Client) GetFamily(ctx context.Context, handle string) (*Family, error) {
	var family Family
	if err := c.do(ctx, http.MethodGet, "/api/families/"+handle, nil, &family); err != nil {
		return nil, err
	}
	return &family, nil
}

// CreateFamily stores a new family record and returns its handle.
func (c *Client) CreateFamily(ctx context.Context, family *Family) (string, error) {
	var created Family
	if err := c.do(ctx, http.MethodPost, "/api/families/", family, &created); err != nil {
		return "", err
	}
	if created.Handle == "" {
		return "", services.Wrap(services.ErrExternalService, "gramps", "create_family", "response missing handle", nil)
	}
	c.cache.Delete(peopleCacheKey)
	return created.Handle, nil
}

// UpdateFamily replaces an existing family record.
func (c *Client) UpdateFamily(ctx context.Context, family *Family) error {
	if family.Handle == "" {
		return services.Wrap(services.ErrValidation, "gramps", "update_family", "family handle required", nil)
	}
	return c.do(ctx, http.MethodPut, "/api/families/"+family.Handle, family, nil)
}

// do executes one API call with rate limiting, bearer auth, and a
// single retry after an expired token is rejected.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if c.baseURL == "" {
		return services.Wrap(services.ErrConfiguration, "gramps", "request", "gramps url not configured", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = encoded
	}

	for attempt := 0; ; attempt++ {
		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return services.Wrap(services.ErrExternalService, "gramps", method+" "+path, "request failed", err)
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			// token expired server-side; discard and retry once
			c.clearToken()
			c.logger.Debug("gramps token rejected, refreshing", logging.String("path", path))
			continue
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			return services.Wrap(services.ErrExternalService, "gramps", method+" "+path,
				fmt.Sprintf("status %d: %s", resp.StatusCode, snippet(data)), nil)
		}
		if readErr != nil {
			return services.Wrap(services.ErrExternalService, "gramps", method+" "+path, "read response", readErr)
		}
		if out == nil {
			return nil
		}
		if err := decodeObjectOrList(data, out); err != nil {
			return services.Wrap(services.ErrExternalService, "gramps", method+" "+path, "decode response", err)
		}
		return nil
	}
}

// accessToken returns a cached token, fetching a fresh one when the
// cached token is within the refresh buffer of expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > tokenRefreshBuffer {
		return c.token, nil
	}

	payload, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/token/", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "gramps", "token", "request failed", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "gramps", "token", "read response", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", services.Wrap(services.ErrConfiguration, "gramps", "token", "credentials rejected", nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrExternalService, "gramps", "token",
			fmt.Sprintf("status %d: %s", resp.StatusCode, snippet(data)), nil)
	}

	var decoded struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", services.Wrap(services.ErrExternalService, "gramps", "token", "decode response", err)
	}
	if decoded.AccessToken == "" {
		return "", services.Wrap(services.ErrExternalService, "gramps", "token", "response missing access token", nil)
	}

	c.token = decoded.AccessToken
	c.tokenExpiry = time.Now().Add(tokenLifetime)
	return c.token, nil
}

func (c *Client) clearToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

// decodeObjectOrList unmarshals a response body that may be either the
// object itself or a one-element list wrapping it. The API returns
// both shapes depending on version.
func decodeObjectOrList(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty response body")
	}
	if trimmed[0] == '[' {
		if _, isSlice := out.(*[]Person); isSlice {
			return json.Unmarshal(trimmed, out)
		}
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		if len(raw) == 0 {
			return errors.New("empty response list")
		}
		return json.Unmarshal(raw[0], out)
	}
	return json.Unmarshal(trimmed, out)
}

func snippet(data []byte) string {
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
