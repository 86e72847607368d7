// Package integrations contains the clients for external systems the
// bridge talks to, currently the Gambio admin API.
package integrations

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bridge_cao/app/utility"
	"bridge_cao/config"
	"bridge_cao/utility/httpclient"
	"bridge_cao/utility/logger"
)

// APIError is a non-2xx reply from the shop API.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shop API %s %s failed: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// IsNotFound reports whether err is an APIError with HTTP status 404.
// The version fallback logic keys on this: a 404 from v3 means the
// route does not exist on this installation, not that data is missing.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// GambioClient talks to one shop installation through a fixed API
// generation. WithVersion derives a client for the other generation
// without touching the original.
type GambioClient struct {
	baseURL   string
	version   string
	basicUser string
	basicPass string
	jwt       string

	http    *httpclient.HttpClient
	log     *logrus.Logger
	limiter *utility.AdaptiveRateLimiter
}

// NewGambioClient creates a client from the static configuration.
// Unknown version strings fall back to v2.
func NewGambioClient(cfg *config.Configuration) *GambioClient {
	c := &GambioClient{
		baseURL:   strings.TrimRight(cfg.ShopBaseURL, "/"),
		version:   normalizeVersion(cfg.APIVersion, "v2"),
		basicUser: cfg.BasicUser,
		basicPass: cfg.BasicPass,
		jwt:       cfg.JWT,
		log:       logger.GetLogger("gambio"),
		limiter:   utility.GetShopRateLimiter(),
	}
	c.http = c.newHTTPClient()
	return c
}

// WithVersion returns a copy of the client pinned to the given API
// generation. Unknown versions keep the current one.
func (c *GambioClient) WithVersion(version string) *GambioClient {
	clone := *c
	clone.version = normalizeVersion(version, c.version)
	clone.http = clone.newHTTPClient()
	return &clone
}

// Version returns the API generation this client addresses.
func (c *GambioClient) Version() string {
	return c.version
}

func normalizeVersion(v, fallback string) string {
	switch v {
	case "v2", "v3":
		return v
	}
	return fallback
}

func (c *GambioClient) newHTTPClient() *httpclient.HttpClient {
	hc := httpclient.NewHttpClient(c.baseURL, 60*time.Second)
	hc.SetHeader("Accept", "application/json")
	if c.jwt != "" && c.version == "v3" {
		hc.SetHeader("Authorization", "Bearer "+c.jwt)
	} else if c.basicUser != "" {
		hc.SetBasicAuth(c.basicUser, c.basicPass)
	}
	return hc
}

func (c *GambioClient) endpoint(path string) string {
	return "/api.php/" + c.version + "/" + strings.TrimLeft(path, "/")
}

// Get performs a GET request and returns the decoded JSON body.
func (c *GambioClient) Get(path string, query map[string]string) (interface{}, error) {
	return c.do(http.MethodGet, path, query, nil)
}

// Post performs a POST request with a JSON body. Some v2 search
// endpoints take paging as query parameters next to the body.
func (c *GambioClient) Post(path string, body interface{}, query map[string]string) (interface{}, error) {
	return c.do(http.MethodPost, path, query, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *GambioClient) Patch(path string, body interface{}) (interface{}, error) {
	return c.do(http.MethodPatch, path, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *GambioClient) Put(path string, body interface{}) (interface{}, error) {
	return c.do(http.MethodPut, path, nil, body)
}

// Delete performs a DELETE request.
func (c *GambioClient) Delete(path string) (interface{}, error) {
	return c.do(http.MethodDelete, path, nil, nil)
}

func (c *GambioClient) do(method, path string, query map[string]string, body interface{}) (interface{}, error) {
	endpoint := c.endpoint(path)

	c.limiter.Wait()

	var (
		resp *http.Response
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = c.http.GET(endpoint, query)
	case http.MethodPost:
		resp, err = c.http.POST(endpoint, body, query)
	case http.MethodPatch:
		resp, err = c.http.PATCH(endpoint, body, query)
	case http.MethodPut:
		resp, err = c.http.PUT(endpoint, body, query)
	case http.MethodDelete:
		resp, err = c.http.DELETE(endpoint, query)
	default:
		return nil, fmt.Errorf("unsupported method %s", method)
	}
	if err != nil {
		c.limiter.RecordFailure(0)
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Error("shop API request failed")
		return nil, fmt.Errorf("shop API %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.limiter.RecordFailure(resp.StatusCode)
		return nil, fmt.Errorf("shop API %s %s: read body: %w", method, path, err)
	}

	var decoded interface{}
	if len(raw) > 0 {
		// A broken body only matters for success replies; error replies
		// fall back to the raw text below.
		_ = json.Unmarshal(raw, &decoded)
	}

	if resp.StatusCode >= 400 {
		c.limiter.RecordFailure(resp.StatusCode)
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Method:  method,
			Path:    path,
			Message: errorMessage(decoded, raw),
		}
		if resp.StatusCode != http.StatusNotFound {
			c.log.WithFields(logrus.Fields{
				"method": method,
				"path":   path,
				"status": resp.StatusCode,
			}).Warn(apiErr.Message)
		}
		return nil, apiErr
	}

	c.limiter.RecordSuccess()
	return decoded, nil
}

func errorMessage(decoded interface{}, raw []byte) string {
	if m, ok := decoded.(map[string]interface{}); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
