package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/services"
)

type fakeAuthService struct {
	resetTokens map[string]string // email -> token
	resetCalled string            // last token passed to ResetPasswordByToken
}

func (s *fakeAuthService) Register(ctx context.Context, input services.RegisterInput) (*models.Profile, error) {
	return &models.Profile{ID: 1, Email: input.Email, Status: models.StatusPending, Role: models.RoleMember}, nil
}

func (s *fakeAuthService) Login(ctx context.Context, input services.LoginInput) (*models.Profile, error) {
	return &models.Profile{ID: 1, Email: input.Email, Role: models.RoleMember}, nil
}

func (s *fakeAuthService) GeneratePasswordResetToken(ctx context.Context, email string) (string, error) {
	return s.resetTokens[email], nil
}

func (s *fakeAuthService) ResetPasswordByToken(ctx context.Context, token string, newPassword string) error {
	s.resetCalled = token
	if token != "valid-token" {
		return services.ErrResetTokenInvalid
	}
	return nil
}

func TestForgotPasswordReturnsToken(t *testing.T) {
	svc := &fakeAuthService{resetTokens: map[string]string{"jordan@example.com": "valid-token"}}
	h := NewAuthHandler(svc, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password",
		strings.NewReader(`{"email":"jordan@example.com"}`))
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var body struct {
		Message    string `json:"message"`
		ResetToken string `json:"reset_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ResetToken != "valid-token" {
		t.Errorf("expected the reset token in the response, got %q", body.ResetToken)
	}
}

func TestForgotPasswordUnknownEmailOmitsToken(t *testing.T) {
	svc := &fakeAuthService{resetTokens: map[string]string{}}
	h := NewAuthHandler(svc, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password",
		strings.NewReader(`{"email":"ghost@example.com"}`))
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("an unknown email must not change the status, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if _, present := body["reset_token"]; present {
		t.Error("an unknown email must not yield a token")
	}
	if body["message"] == "" {
		t.Error("the generic message should be present either way")
	}
}

func TestResetPasswordRoundTrip(t *testing.T) {
	svc := &fakeAuthService{resetTokens: map[string]string{"jordan@example.com": "valid-token"}}
	h := NewAuthHandler(svc, "test-secret")

	// Fetch the token the way a client would.
	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password",
		strings.NewReader(`{"email":"jordan@example.com"}`))
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, req)
	var forgot struct {
		ResetToken string `json:"reset_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &forgot); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if forgot.ResetToken == "" {
		t.Fatal("no token to submit")
	}

	// Submit it back.
	req = httptest.NewRequest(http.MethodPost, "/auth/reset-password",
		strings.NewReader(`{"token":"`+forgot.ResetToken+`","new_password":"brandnewpass"}`))
	rec = httptest.NewRecorder()
	h.ResetPassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("reset with the issued token failed with status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.resetCalled != "valid-token" {
		t.Errorf("service saw token %q", svc.resetCalled)
	}
}

func TestResetPasswordBadToken(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password",
		strings.NewReader(`{"token":"bogus","new_password":"brandnewpass"}`))
	rec := httptest.NewRecorder()
	h.ResetPassword(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("a bogus token should map to 400, got %d", rec.Code)
	}
}
