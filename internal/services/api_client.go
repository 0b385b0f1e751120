package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"akash-aiml/resume-score-analyzer/internal/config"
	"akash-aiml/resume-score-analyzer/internal/models"
)

type APIClient interface {
	Post(ctx context.Context, path string, body RequestBody, out interface{}, opts ...CallOption) error
	BaseURL() string
}

// RequestBody writes itself onto an outgoing request.
type RequestBody interface {
	apply(a *fiber.Agent)
}

type JSONBody struct {
	Value interface{}
}

func (b JSONBody) apply(a *fiber.Agent) {
	a.JSON(b.Value)
}

type MultipartBody struct {
	Fields map[string]string
	Files  []*fiber.FormFile
}

func (b MultipartBody) apply(a *fiber.Agent) {
	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)

	for k, v := range b.Fields {
		args.Set(k, v)
	}

	// MultipartForm writes the boundary content type, replacing whatever
	// Content-Type header was set before.
	a.FileData(b.Files...).MultipartForm(args)
}

type callOptions struct {
	headers map[string]string
}

type CallOption func(*callOptions)

// WithHeader overrides a default header for a single call.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		o.headers[key] = value
	}
}

// ResponseError is returned for any non-2xx response. Body is the raw response.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, detail)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Detail returns the server supplied "detail" message, or "" when the body
// has none or it is not a plain string.
func (e *ResponseError) Detail() string {
	var body models.ErrorResponse
	if err := json.Unmarshal(e.Body, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

type httpClient struct {
	baseURL string
	headers map[string]string
	timeout time.Duration
}

func NewHTTPClient(cfg config.APIConfig) APIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultAPIURL
	}

	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: map[string]string{
			fiber.HeaderContentType: fiber.MIMEApplicationJSON,
		},
		timeout: cfg.Timeout,
	}
}

func (h *httpClient) BaseURL() string {
	return h.baseURL
}

// Post sends body to path and decodes a 2xx JSON response into out.
func (h *httpClient) Post(ctx context.Context, path string, body RequestBody, out interface{}, opts ...CallOption) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("request cancelled: %w", err)
	}

	o := callOptions{headers: make(map[string]string, len(h.headers))}
	for k, v := range h.headers {
		o.headers[k] = v
	}
	for _, opt := range opts {
		opt(&o)
	}

	url := h.baseURL + "/" + strings.TrimLeft(path, "/")
	agent := fiber.Post(url)
	for k, v := range o.headers {
		agent.Set(k, v)
	}
	if body != nil {
		body.apply(agent)
	}

	timeout := h.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("request cancelled: %w", context.DeadlineExceeded)
		}
		if timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	code, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request to %s failed: %w", url, errors.Join(errs...))
	}

	if code < 200 || code > 299 {
		return &ResponseError{StatusCode: code, Body: respBody}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}

	return nil
}
