package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/offer"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Client talks to the offers backend over JSON/HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, primarily for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger sets the logger used to report failed calls.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q must use http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dimensions fetches the package dimension table.
func (c *Client) Dimensions(ctx context.Context) ([]calculator.PackageDimension, error) {
	var dims []calculator.PackageDimension
	if err := c.do(ctx, http.MethodGet, "/dimensions", nil, &dims); err != nil {
		return nil, err
	}
	return dims, nil
}

// Vocabulary fetches the admissible values of the categorical offer fields.
func (c *Client) Vocabulary(ctx context.Context) (offer.Vocabulary, error) {
	var vocab offer.Vocabulary
	if err := c.do(ctx, http.MethodGet, "/offerItems", nil, &vocab); err != nil {
		return offer.Vocabulary{}, err
	}
	return vocab, nil
}

// Offers fetches every persisted offer.
func (c *Client) Offers(ctx context.Context) ([]offer.Record, error) {
	var records []offer.Record
	if err := c.do(ctx, http.MethodGet, "/offers", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SubmitOffer persists a submission and returns the stored record.
func (c *Client) SubmitOffer(ctx context.Context, sub offer.Submission) (offer.Record, error) {
	var record offer.Record
	if err := c.do(ctx, http.MethodPost, "/offers", sub, &record); err != nil {
		return offer.Record{}, err
	}
	return record, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns the backend's access token, which
// may be empty when the backend does not issue one.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/register", registerRequest{Email: email, Password: password}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	err := c.roundTrip(ctx, method, path, in, out)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrUnavailable, method, path, err)
	}
	return nil
}
