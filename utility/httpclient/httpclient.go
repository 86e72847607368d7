/*
Package httpclient provides a small JSON HTTP client used for API calls.
It supports GET, POST, PUT, PATCH and DELETE with per-client timeout,
custom headers and basic auth.
*/
package httpclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HttpClient wraps a net/http client with a base URL and default headers.
type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Headers    map[string]string

	basicUser string
	basicPass string
	useBasic  bool
}

// NewHttpClient creates a client for the given base URL with a request timeout.
func NewHttpClient(baseURL string, timeout time.Duration) *HttpClient {
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Headers: make(map[string]string),
	}
}

// SetHeader adds or replaces a header sent with every request.
func (c *HttpClient) SetHeader(key, value string) {
	c.Headers[key] = value
}

// SetBasicAuth enables HTTP basic auth on every request.
func (c *HttpClient) SetBasicAuth(user, pass string) {
	c.basicUser = user
	c.basicPass = pass
	c.useBasic = true
}

// makeRequest builds and sends a request. A non-nil body is marshalled as JSON.
func (c *HttpClient) makeRequest(method, endpoint string, body interface{}, params map[string]string) (*http.Response, error) {
	fullURL, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return nil, err
	}

	if params != nil {
		query := fullURL.Query()
		for key, value := range params {
			query.Set(key, value)
		}
		fullURL.RawQuery = query.Encode()
	}

	var requestBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		requestBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, fullURL.String(), requestBody)
	if err != nil {
		return nil, err
	}

	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.useBasic {
		req.SetBasicAuth(c.basicUser, c.basicPass)
	}

	return c.HTTPClient.Do(req)
}

// GET sends an HTTP GET request.
func (c *HttpClient) GET(endpoint string, params map[string]string) (*http.Response, error) {
	return c.makeRequest(http.MethodGet, endpoint, nil, params)
}

// POST sends an HTTP POST request with a JSON body.
func (c *HttpClient) POST(endpoint string, body interface{}, params map[string]string) (*http.Response, error) {
	return c.makeRequest(http.MethodPost, endpoint, body, params)
}

// PUT sends an HTTP PUT request with a JSON body.
func (c *HttpClient) PUT(endpoint string, body interface{}, params map[string]string) (*http.Response, error) {
	return c.makeRequest(http.MethodPut, endpoint, body, params)
}

// PATCH sends an HTTP PATCH request with a JSON body.
func (c *HttpClient) PATCH(endpoint string, body interface{}, params map[string]string) (*http.Response, error) {
	return c.makeRequest(http.MethodPatch, endpoint, body, params)
}

// DELETE sends an HTTP DELETE request.
func (c *HttpClient) DELETE(endpoint string, params map[string]string) (*http.Response, error) {
	return c.makeRequest(http.MethodDelete, endpoint, nil, params)
}
