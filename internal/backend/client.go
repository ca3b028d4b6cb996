// Package backend is the single chokepoint for all network calls to
// the dataset/model service. Every call attaches the configured base
// URL and headers, surfaces the server's narration on the console bus,
// and normalizes failures into the package's Error shape.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/evrenbal/mlforge/internal/logger"
)

// envelope is the portion of every response the gateway itself
// interprets: an optional user-facing status string and an optional
// business error string.
type envelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client performs HTTP calls against the dataset/model service.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	headers map[string]string
	bus     Broadcaster
	log     *logger.Logger
}

// Broadcaster re-exported so callers don't import console for the
// producer side.
type Broadcaster interface {
	Broadcast(text string)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithHeaders sets headers attached to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) { c.headers = headers }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithLogger enables request/response debug logging.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a gateway client. bus may be nil, in which case server
// narration is silently discarded.
func New(baseURL string, bus Broadcaster, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, NewTransportError("", "invalid base URL: "+baseURL, err)
	}

	c := &Client{
		baseURL: u,
		client:  &http.Client{Timeout: 30 * time.Second},
		bus:     bus,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get performs a GET call and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), http.NoBody)
	if err != nil {
		return c.fail(NewTransportError(path, "failed to create request", err))
	}
	return c.do(req, path, out)
}

// Post performs a POST call with a JSON body and decodes the JSON
// response into out. in may be nil for body-less mutations.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return c.fail(NewTransportError(path, "failed to marshal request", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return c.fail(NewTransportError(path, "failed to create request", err))
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

// Upload performs a multipart file upload and decodes the JSON
// response into out.
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return c.fail(NewTransportError(path, "failed to build upload form", err))
	}
	if _, err := io.Copy(part, r); err != nil {
		return c.fail(NewTransportError(path, "failed to read upload payload", err))
	}
	if err := w.Close(); err != nil {
		return c.fail(NewTransportError(path, "failed to finalize upload form", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), &buf)
	if err != nil {
		return c.fail(NewTransportError(path, "failed to create request", err))
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, path, out)
}

func (c *Client) endpoint(path string) string {
	rel, err := url.Parse(path)
	if err != nil {
		return c.baseURL.JoinPath(path).String()
	}
	u := c.baseURL.JoinPath(rel.Path)
	u.RawQuery = rel.RawQuery
	return u.String()
}

// do executes the request and enforces the gateway contract: at most
// one console broadcast per call, the server narration preferred over
// anything synthesized locally.
func (c *Client) do(req *http.Request, path string, out any) error {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if c.log != nil {
			c.log.DebugWithFields("request failed", []logger.Field{
				logger.Endpoint(path), logger.Error(err),
			})
		}
		return c.fail(NewTransportError(path, "request failed", err))
	}
	if c.log != nil {
		c.log.DebugWithFields("request done", []logger.Field{
			logger.Endpoint(path),
			logger.F("status", resp.StatusCode),
			logger.Duration(time.Since(start)),
		})
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(NewTransportError(path, "failed to read response", err))
	}

	var env envelope
	envOK := json.Unmarshal(data, &env) == nil

	// The server's message field is narration for the operator and is
	// broadcast before success/failure is evaluated. Whatever happens
	// next must not produce a second broadcast for this call.
	broadcast := false
	if envOK && env.Message != "" {
		c.broadcast(env.Message)
		broadcast = true
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		if envOK && env.Error != "" {
			message = env.Error
		}
		err := NewRemoteError(path, message, resp.StatusCode)
		if !broadcast {
			c.broadcast(message)
		}
		return err
	}

	if !envOK {
		err := NewTransportError(path, "malformed response body", nil)
		if !broadcast {
			c.broadcast(err.Message)
		}
		return err
	}

	// Bodies with a success status but an error field are business
	// failures reported in-band.
	if env.Error != "" {
		err := NewRemoteError(path, env.Error, resp.StatusCode)
		if !broadcast {
			c.broadcast(env.Error)
		}
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			derr := NewTransportError(path, "failed to decode response", err)
			if !broadcast {
				c.broadcast(derr.Message)
			}
			return derr
		}
	}

	return nil
}

// fail broadcasts the failure narration for errors raised before a
// response body existed. Each such error accounts for the call's
// single permitted broadcast.
func (c *Client) fail(err *Error) error {
	if c.log != nil {
		c.log.Debug("%s", err.Detail())
	}
	c.broadcast(err.Message)
	return err
}

func (c *Client) broadcast(text string) {
	if c.bus != nil {
		c.bus.Broadcast(text)
	}
}
