package trakt

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
	"time"

	"github.com/google/uuid"

	"reelsync/internal/config"
	"reelsync/internal/services"
)

// TokenManager acquires and persists the Trakt credential via the OAuth
// device-authorization flow.
type TokenManager struct {
	cfg    *config.Config
	http   HTTPDoer
	store  CredentialStore
	logger *slog.Logger

	// notify announces the verification URL and user code. Defaults to a
	// logger announcement; the CLI overrides it to print to stdout.
	notify func(verificationURL, userCode string)
	// sleep waits between poll attempts, honoring cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// TokenManagerOption customises TokenManager construction.
type TokenManagerOption func(*TokenManager)

// WithTokenHTTPClient overrides the HTTP client used by the device flow.
func WithTokenHTTPClient(doer HTTPDoer) TokenManagerOption {
	return func(m *TokenManager) {
		m.http = doer
	}
}

// WithCredentialStore injects a custom persistence layer.
func WithCredentialStore(store CredentialStore) TokenManagerOption {
	return func(m *TokenManager) {
		m.store = store
	}
}

// WithNotify overrides how the verification code is announced to the user.
func WithNotify(fn func(verificationURL, userCode string)) TokenManagerOption {
	return func(m *TokenManager) {
		m.notify = fn
	}
}

// WithSleep overrides the poll wait (used in tests).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) TokenManagerOption {
	return func(m *TokenManager) {
		m.sleep = fn
	}
}

// NewTokenManager builds a TokenManager using the provided configuration.
func NewTokenManager(cfg *config.Config, logger *slog.Logger, opts ...TokenManagerOption) (*TokenManager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	mgr := &TokenManager{
		cfg:    cfg,
		http:   &http.Client{Timeout: 15 * time.Second},
		store:  NewFileCredentialStore(cfg.CredentialPath()),
		logger: logger,
	}
	for _, opt := range opts {
		opt(mgr)
	}
	if mgr.logger == nil {
		mgr.logger = slog.Default()
	}
	if mgr.notify == nil {
		mgr.notify = func(url, code string) {
			mgr.logger.Info("complete device authorization", slog.String("url", url), slog.String("code", code))
		}
	}
	if mgr.sleep == nil {
		mgr.sleep = sleepContext
	}
	return mgr, nil
}

// AcquireOrLoad returns the persisted credential when one exists, otherwise it
// runs the device-authorization exchange and persists the result.
func (m *TokenManager) AcquireOrLoad(ctx context.Context) (Credential, error) {
	cred, err := m.store.Load()
	if err != nil {
		return Credential{}, err
	}
	if !cred.Empty() {
		return cred, nil
	}
	return m.Acquire(ctx)
}

// Acquire always runs the device flow, replacing any persisted credential.
func (m *TokenManager) Acquire(ctx context.Context) (Credential, error) {
	device, err := m.requestDeviceCode(ctx)
	if err != nil {
		return Credential{}, err
	}

	m.notify(device.VerificationURL, device.UserCode)

	cred, err := m.pollForToken(ctx, device)
	if err != nil {
		return Credential{}, err
	}

	if cred.ClientIdentifier == "" {
		cred.ClientIdentifier = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	if err := m.store.Save(cred); err != nil {
		return Credential{}, err
	}
	m.logger.Info("trakt authorization successful")
	return cred, nil
}

type deviceCode struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURL string `json:"verification_url"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

func (m *TokenManager) requestDeviceCode(ctx context.Context) (deviceCode, error) {
	var device deviceCode
	status, err := m.postForm(ctx, "/oauth/device/code", map[string]string{
		"client_id": m.cfg.Trakt.ClientID,
	}, &device)
	if err != nil {
		return deviceCode{}, err
	}
	if status != http.StatusOK {
		return deviceCode{}, services.Wrap(services.ErrTransport, "trakt", "request device code", fmt.Sprintf("status %d", status), nil)
	}
	if device.DeviceCode == "" || device.UserCode == "" || device.VerificationURL == "" {
		return deviceCode{}, services.Wrap(services.ErrMalformedResponse, "trakt", "request device code", "missing required field", nil)
	}
	if device.Interval <= 0 {
		device.Interval = 5
	}
	if device.ExpiresIn <= 0 {
		device.ExpiresIn = 600
	}
	return device, nil
}

// pollForToken drives the polling state machine: pending (400) continues
// after the server-specified interval, 200 grants, 403/404 expire the device
// code fatally, and anything else is a transport error.
func (m *TokenManager) pollForToken(ctx context.Context, device deviceCode) (Credential, error) {
	deadline := time.Now().Add(time.Duration(device.ExpiresIn) * time.Second)
	interval := time.Duration(device.Interval) * time.Second

	for {
		if time.Now().After(deadline) {
			return Credential{}, services.Wrap(services.ErrAuthExpired, "trakt", "device token poll", "device code expired before approval", nil)
		}
		if err := m.sleep(ctx, interval); err != nil {
			return Credential{}, err
		}

		var cred Credential
		status, err := m.postForm(ctx, "/oauth/device/token", map[string]string{
			"client_id":     m.cfg.Trakt.ClientID,
			"client_secret": m.cfg.Trakt.ClientSecret,
			"code":          device.DeviceCode,
		}, &cred)
		if err != nil {
			return Credential{}, err
		}

		switch status {
		case http.StatusOK:
			if cred.Empty() {
				return Credential{}, services.Wrap(services.ErrMalformedResponse, "trakt", "device token poll", "missing access_token", nil)
			}
			return cred, nil
		case http.StatusBadRequest:
			// Authorization still pending.
			continue
		case http.StatusForbidden, http.StatusNotFound:
			return Credential{}, services.Wrap(services.ErrAuthExpired, "trakt", "device token poll", fmt.Sprintf("status %d, restart the flow", status), nil)
		default:
			return Credential{}, services.Wrap(services.ErrTransport, "trakt", "device token poll", fmt.Sprintf("status %d", status), nil)
		}
	}
}

// postForm posts a JSON body and returns the HTTP status alongside a decoded
// body for 200 responses. The device flow needs the raw status because 400
// means "pending", not failure.
func (m *TokenManager) postForm(ctx context.Context, path string, body map[string]string, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Trakt.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrTransport, "trakt", "POST "+path, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, services.Wrap(services.ErrMalformedResponse, "trakt", "POST "+path, "decode body", err)
		}
		return resp.StatusCode, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
