package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/apperrors"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
)

const (
	CodeRejected    = "rejected"
	CodeUnavailable = "unavailable"
	CodeBadResponse = "bad-response"
)

const (
	DefaultRefreshPath = "/api/auth/refresh"
	defaultTimeout     = 10 * time.Second
)

type Error struct {
	Code       string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %s, status_code: %d, error: %v", e.Code, e.StatusCode, e.Err)
}

// Unwrap to the taxonomy sentinel so callers may use errors.Is
func (e *Error) Unwrap() []error {
	switch e.Code {
	case CodeUnavailable:
		return []error{apperrors.ErrRemoteUnavailable, e.Err}
	default:
		return []error{apperrors.ErrRemoteRejected, e.Err}
	}
}

func NewError(code string, statusCode int, err error) *Error {
	return &Error{Code: code, StatusCode: statusCode, Err: err}
}

// Result of a successful exchange.
// RefreshToken is set only when the authority rotated it
type Grant struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type Config struct {
	Address string
	Path    string
	Timeout time.Duration
}

type Client struct {
	url     string
	timeout time.Duration

	client   *http.Client
	validate *validator.Validate
	logger   logger.Logger
}

func NewClient(cfg Config, l logger.Logger) *Client {
	if cfg.Path == "" {
		cfg.Path = DefaultRefreshPath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Client{
		url:      strings.TrimRight(cfg.Address, "/") + cfg.Path,
		timeout:  cfg.Timeout,
		client:   &http.Client{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   l,
	}
}

// Exchange refresh token for a new access token. Single attempt, no retries
func (c *Client) Exchange(ctx context.Context, refresh string) (Grant, error) {
	var grant Grant

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(refreshRequest{RefreshToken: refresh})
	if err != nil {
		return grant, NewError(CodeBadResponse, 0, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return grant, NewError(CodeUnavailable, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return grant, NewError(CodeUnavailable, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return c.processSuccess(resp)
	default:
		// Drain a bit of body so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		c.logger.Warn("Authority rejected refresh", "status_code", resp.StatusCode)
		return grant, NewError(CodeRejected, resp.StatusCode, fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}
}

func (c *Client) processSuccess(resp *http.Response) (Grant, error) {
	var g Grant

	err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&g)
	if err != nil {
		c.logger.Warn("Failed to decode authority response", "error", err)
		return Grant{}, NewError(CodeBadResponse, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	err = c.validate.Struct(g)
	if err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			err = fmt.Errorf("invalid response: %s", verr.Error())
		}
		c.logger.Warn("Authority response is not valid", "error", err)
		return Grant{}, NewError(CodeBadResponse, resp.StatusCode, err)
	}

	c.logger.Debug("Authority granted access", "access_token", logger.Redact(g.AccessToken), "rotated", g.RefreshToken != "")
	return g, nil
}
