package blanes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/config"
	"dabachat_backend/platform/logger"
)

// TokenSource supplies a bearer token for the remote API. Every gateway call
// acquires a fresh token so an expired session never surfaces mid-flow.
type TokenSource interface {
	Acquire(ctx context.Context) (string, error)
}

// ErrTokenUnavailable is returned when the login endpoint refuses or fails.
// Callers render it as a retry-later message, never as a hard failure detail.
var ErrTokenUnavailable = apperr.Unavailable("failed to retrieve token, please try again later")

type loginTokenSource struct {
	loginURL string
	email    string
	password string
	client   *http.Client
	logger   *logger.Logger
}

// NewTokenSource builds the login-backed token source.
func NewTokenSource(cfg config.BlanesConfig, log *logger.Logger) TokenSource {
	return &loginTokenSource{
		loginURL: cfg.GetBlanesLoginURL(),
		email:    cfg.GetBlanesEmail(),
		password: cfg.GetBlanesPassword(),
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   log,
	}
}

func (s *loginTokenSource) Acquire(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":    s.email,
		"password": s.password,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "marshal login request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.loginURL, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.RemoteAPIError("login", 0, err)
		return "", ErrTokenUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.RemoteAPIError("login", resp.StatusCode, ErrTokenUnavailable)
		return "", ErrTokenUnavailable
	}

	var decoded struct {
		Data struct {
			UserToken string `json:"user_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		s.logger.RemoteAPIError("login", resp.StatusCode, err)
		return "", ErrTokenUnavailable
	}
	if decoded.Data.UserToken == "" {
		return "", ErrTokenUnavailable
	}
	return decoded.Data.UserToken, nil
}
