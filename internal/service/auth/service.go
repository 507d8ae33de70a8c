// Package auth implements the account flows: login, registration, logout,
// profile maintenance, and password recovery.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"aquaflow-client/internal/domain"
	"aquaflow-client/internal/session"
	"aquaflow-client/internal/storage"
)

type backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// Service handles account flows against the backend, keeping the local
// session state in step.
type Service struct {
	api    backend
	creds  *session.Credentials
	store  storage.Store
	logger *slog.Logger
}

// New creates a Service.
func New(client backend, creds *session.Credentials, store storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: client, creds: creds, store: store, logger: logger}
}

type loginResponse struct {
	Error   bool         `json:"error"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

// Login authenticates with an identifier (email or username) and password.
// On success the token and user are stored together.
func (s *Service) Login(ctx context.Context, identifier, password string) (*domain.User, error) {
	body := map[string]string{
		"identifier": identifier,
		"password":   password,
	}
	var resp loginResponse
	if err := s.api.Post(ctx, "/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Error || resp.Token == "" || resp.User == nil {
		msg := resp.Message
		if msg == "" {
			msg = "Login failed"
		}
		return nil, errors.New(msg)
	}

	if err := s.creds.Set(resp.Token, *resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout tells the backend, then purges all local state: token, cached user,
// and cart snapshot go together. Local eviction happens even when the server
// call fails, so a broken backend cannot pin a session on this device.
func (s *Service) Logout(ctx context.Context) error {
	err := s.api.Post(ctx, "/logout", nil, nil)
	if clearErr := s.store.Clear(); clearErr != nil {
		s.logger.Warn("failed to clear local state on logout", "error", clearErr)
	}
	return err
}

// RegisterInput carries the signup fields.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	ContactNo string `json:"contact_no"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// Register creates a new customer account and returns the server message.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := s.api.Post(ctx, "/register", in, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Profile fetches the authenticated user's profile.
func (s *Service) Profile(ctx context.Context) (*domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := s.api.Get(ctx, "/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	ContactNo string `json:"contact_no"`
}

// UpdateProfile saves profile changes and refreshes the cached user.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileInput) error {
	if err := s.api.Put(ctx, "/profile", in, nil); err != nil {
		return err
	}

	user, err := s.Profile(ctx)
	if err != nil {
		s.logger.Warn("profile updated but refresh failed", "error", err)
		return nil
	}
	if token, ok := s.creds.Token(); ok {
		if err := s.creds.Set(token, *user); err != nil {
			s.logger.Warn("failed to refresh cached user", "error", err)
		}
	}
	return nil
}

// Addresses fetches the user's saved delivery addresses. The endpoint has
// answered with a bare array and with addresses/data envelopes over time;
// all three are accepted.
func (s *Service) Addresses(ctx context.Context) ([]domain.Address, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/addresses", nil, &raw); err != nil {
		return nil, err
	}
	return decodeAddresses(raw)
}

func decodeAddresses(raw json.RawMessage) ([]domain.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []domain.Address
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Addresses []domain.Address `json:"addresses"`
		Data      []domain.Address `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	if envelope.Addresses != nil {
		return envelope.Addresses, nil
	}
	return envelope.Data, nil
}

// RequestPasswordReset starts the recovery flow by mailing a reset code.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return s.postForMessage(ctx, "/forgot-password", map[string]string{"email": email})
}

// VerifyResetCode checks the emailed code.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	return s.postForMessage(ctx, "/verify-reset-code", map[string]string{
		"email": email,
		"code":  code,
	})
}

// ResetPassword sets a new password after code verification.
func (s *Service) ResetPassword(ctx context.Context, email, password, code string) (string, error) {
	return s.postForMessage(ctx, "/reset-password", map[string]string{
		"email":    email,
		"password": password,
		"code":     code,
	})
}

// ResendResetCode mails a fresh code.
func (s *Service) ResendResetCode(ctx context.Context, email string) (string, error) {
	return s.postForMessage(ctx, "/resend-reset-code", map[string]string{"email": email})
}

// ChangePassword replaces the password of the authenticated user.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error {
	if strings.TrimSpace(newPassword) != strings.TrimSpace(confirmPassword) {
		return errors.New("passwords do not match")
	}
	body := map[string]string{
		"old_password":     oldPassword,
		"new_password":     newPassword,
		"confirm_password": confirmPassword,
	}
	return s.api.Put(ctx, "/change-password", body, nil)
}

func (s *Service) postForMessage(ctx context.Context, path string, body any) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := s.api.Post(ctx, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
