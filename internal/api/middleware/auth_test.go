package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apiContext "github.com/ndy40/racing-pointsheet/internal/api/context"
	"github.com/ndy40/racing-pointsheet/internal/platform/auth"
	"github.com/ndy40/racing-pointsheet/internal/platform/config"
)

func TestAuthMiddleware(t *testing.T) {
	tokenSvc := auth.NewTokenService(config.JWTConfig{
		Secret:         "test-secret",
		AccessTokenTTL: time.Hour,
	})
	middleware := NewAuthMiddleware(tokenSvc)

	var gotClaims *auth.Claims
	handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = r.Context().Value(apiContext.Claims).(*auth.Claims)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Valid Token", func(t *testing.T) {
		token, err := tokenSvc.GenerateAccessToken("user_1", "admin")
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}

		req := httptest.NewRequest("GET", "/api/v1/webhooks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
		if gotClaims == nil || gotClaims.UserID != "user_1" {
			t.Errorf("Expected claims in context, got %+v", gotClaims)
		}
	})

	t.Run("Missing Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/webhooks", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", rec.Code)
		}
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/webhooks", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", rec.Code)
		}
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		otherSvc := auth.NewTokenService(config.JWTConfig{
			Secret:         "other-secret",
			AccessTokenTTL: time.Hour,
		})
		token, _ := otherSvc.GenerateAccessToken("user_1", "admin")

		req := httptest.NewRequest("GET", "/api/v1/webhooks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", rec.Code)
		}
	})
}
