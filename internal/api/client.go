package api

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

	"github.com/devgirls-app/health-monitoring-app/internal/models"
)

// TokenSource supplies the bearer credential for authenticated requests and
// is told to drop it when the server rejects it.
type TokenSource interface {
	Token() (string, bool)
	Invalidate() error
}

// Client sends authenticated requests to the health-monitoring backend and
// maps HTTP status codes onto the error taxonomy in errors.go.
//
// A 401 from any endpoint triggers global session teardown: the credential
// is invalidated and the session-expired callback fires exactly once for the
// lifetime of the client. A 403 does not.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	deviceID   string
	log        *slog.Logger

	onSessionExpired func()
	expireOnce       sync.Once

	// base delay for upload retries, doubled per attempt
	retryDelay time.Duration
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, tokens TokenSource, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens:     tokens,
		log:        log,
		retryDelay: time.Second,
	}
}

// SetDeviceID attaches a stable device identifier to every upload.
func (c *Client) SetDeviceID(id string) {
	c.deviceID = id
}

// OnSessionExpired registers the app-wide session teardown callback.
func (c *Client) OnSessionExpired(fn func()) {
	c.onSessionExpired = fn
}

// expireSession drops the credential and fires the expiry callback once.
func (c *Client) expireSession() {
	c.expireOnce.Do(func() {
		if err := c.tokens.Invalidate(); err != nil {
			c.log.Warn("failed to delete credential", "error", err)
		}
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
	})
}

// do issues one request and maps the response status onto the error
// taxonomy. A nil error means a 2xx; the returned bytes are the body.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}
	if authed {
		token, ok := c.tokens.Token()
		if !ok {
			return nil, ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading body: %w", method, path, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.Warn("credential rejected, tearing down session", "path", path)
		c.expireSession()
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrForbidden
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &BadRequestError{Message: string(respBody)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: string(respBody)}
	default:
		return nil, &UnknownError{Message: fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, path)}
	}
}

// decode unmarshals a response body, distinguishing "no data" from a shape
// mismatch.
func decode(body []byte, v any) error {
	if len(body) == 0 {
		return ErrNoData
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodingError{Err: err}
	}
	return nil
}

// Login exchanges credentials for a bearer token. The caller is responsible
// for persisting it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		return "", err
	}
	var resp models.LoginResponse
	if err := decode(body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, surname, email, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/register",
		models.RegisterRequest{Name: name, Surname: surname, Email: email, Password: password}, false)
	return err
}

// RequestPasswordReset asks the backend to mail a reset token.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/password/request-reset",
		models.ForgotPasswordRequest{Email: email}, false)
	return err
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := c.do(ctx, http.MethodPost, "/password/reset",
		models.ResetPasswordRequest{Token: token, NewPassword: newPassword}, false)
	return err
}

// SyncUserProfile pushes demographics with partial-update semantics: nil
// fields are omitted from the body and never overwrite server values.
func (c *Client) SyncUserProfile(ctx context.Context, userID int, upd models.ProfileUpdate) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", userID), upd, true)
	return err
}

// PostHealthData uploads one day's samples. Transport failures and 5xx
// responses are retried up to 3 times with exponential backoff; 4xx
// responses are returned immediately. Idempotency of duplicate uploads is
// the server's concern.
func (c *Client) PostHealthData(ctx context.Context, dto models.HealthDataDTO) error {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			delay := time.Duration(1<<uint(attempt-1)) * c.retryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		_, err := c.do(ctx, http.MethodPost, "/healthdata", dto, true)
		if err == nil {
			return nil
		}
		lastErr = err

		var srvErr *ServerError
		retryable := errors.As(err, &srvErr) || isTransport(err)
		if !retryable {
			return err
		}
	}
	return fmt.Errorf("after 3 attempts: %w", lastErr)
}

// isTransport reports whether err is a connectivity failure rather than a
// mapped protocol error.
func isTransport(err error) bool {
	var badReq *BadRequestError
	var decErr *DecodingError
	var unkErr *UnknownError
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoData) {
		return false
	}
	if errors.As(err, &badReq) || errors.As(err, &decErr) || errors.As(err, &unkErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// FetchUserProfile fetches the server-authoritative profile.
func (c *Client) FetchUserProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil, true)
	if err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := decode(body, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// RunAggregate asks the backend to (re)compute the daily aggregate for the
// given day key ("yyyy-MM-dd") and returns the result.
func (c *Client) RunAggregate(ctx context.Context, userID int, day string) (*models.DailySummary, error) {
	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/aggregates/run/%d/%s", userID, day), nil, true)
	if err != nil {
		return nil, err
	}
	var summary models.DailySummary
	if err := decode(body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// FetchRecommendations returns every recommendation visible to the caller.
// The backend does not filter by user; clients must.
func (c *Client) FetchRecommendations(ctx context.Context) ([]models.HealthRecommendation, error) {
	body, err := c.do(ctx, http.MethodGet, "/recommendations", nil, true)
	if err != nil {
		return nil, err
	}
	var list []models.HealthRecommendation
	if err := decode(body, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchTrends returns the server's trend analysis over the trailing window.
func (c *Client) FetchTrends(ctx context.Context, userID, days int) ([]models.HealthTrend, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/aggregates/%d?days=%d", userID, days), nil, true)
	if err != nil {
		return nil, err
	}
	var list []models.HealthTrend
	if err := decode(body, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// TriggerWeeklySummary asks the backend to generate the ML weekly summary
// for the week ending on weekEnd ("yyyy-MM-dd").
func (c *Client) TriggerWeeklySummary(ctx context.Context, userID int, weekEnd string) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/ml-test/weekly-fatigue/%d/%s", userID, weekEnd), nil, true)
	return err
}
