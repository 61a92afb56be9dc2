package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

var testAdmin = service.AdminCredentials{Email: "admin@shop.test", Password: "admin-pass"}

func newTestAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	// Cost 4 keeps bcrypt fast in tests.
	auth, err := service.NewAuthService(newTestStore(t).Accounts(), testJWTSecret, 4, testAdmin)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return auth
}

func TestAuthService_Register_Success(t *testing.T) {
	auth := newTestAuthService(t)

	account, err := auth.Register(context.Background(), " new@example.com ", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.ID == 0 {
		t.Fatal("expected account ID to be set")
	}
	if account.Email != "new@example.com" {
		t.Fatalf("expected trimmed email, got %q", account.Email)
	}
	if account.PasswordHash == "password123" {
		t.Fatal("password must be hashed")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "dup@example.com", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := auth.Register(ctx, "dup@example.com", "password456")
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestAuthService_Register_AdminEmailTaken(t *testing.T) {
	auth := newTestAuthService(t)
	_, err := auth.Register(context.Background(), testAdmin.Email, "password123")
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	auth := newTestAuthService(t)
	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{"bad email", "not-an-email", "password123", "email"},
		{"empty email", "", "password123", "email"},
		{"short password", "a@b.co", "12345", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tt.email, tt.password)
			if !errors.Is(err, domain.ErrInvalidField) || domain.FieldOf(err) != tt.field {
				t.Fatalf("expected invalid %s, got %v", tt.field, err)
			}
		})
	}
}

func TestAuthService_Login_Customer(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()
	account, err := auth.Register(ctx, "c@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, p, err := auth.Login(ctx, "c@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if p.Role != service.RoleCustomer || p.AccountID != account.ID || p.IsAdmin() {
		t.Fatalf("unexpected principal %+v", p)
	}

	got, err := auth.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if *got != *p {
		t.Fatalf("token principal %+v differs from login principal %+v", got, p)
	}
}

func TestAuthService_Login_Admin(t *testing.T) {
	auth := newTestAuthService(t)

	token, p, err := auth.Login(context.Background(), testAdmin.Email, testAdmin.Password)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !p.IsAdmin() {
		t.Fatalf("expected admin principal, got %+v", p)
	}
	got, err := auth.Authenticate(token)
	if err != nil || !got.IsAdmin() {
		t.Fatalf("Authenticate: %v (%+v)", err, got)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()
	if _, err := auth.Register(ctx, "c@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "c@example.com", "wrong-pass"},
		{"unknown email", "nobody@example.com", "password123"},
		{"wrong admin password", testAdmin.Email, "nope"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := auth.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if errors.Is(err, domain.ErrNotFound) {
				t.Fatal("login must not leak ErrNotFound")
			}
		})
	}
}

func TestAuthService_TokenExpiry(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()
	clock := newClock()
	auth.SetClock(clock.Now)

	token, _, err := auth.Login(ctx, testAdmin.Email, testAdmin.Password)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	clock.Advance(service.TokenTTL(service.RoleAdmin) - time.Minute)
	if _, err := auth.Authenticate(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}
	clock.Advance(2 * time.Minute)
	if _, err := auth.Authenticate(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	auth := newTestAuthService(t)
	other, err := service.NewAuthService(newTestStore(t).Accounts(), "another-secret-another-secret-xx", 4, testAdmin)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	foreign, _, err := other.Login(context.Background(), testAdmin.Email, testAdmin.Password)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	for name, token := range map[string]string{
		"garbage":        "not.a.token",
		"empty":          "",
		"foreign secret": foreign,
	} {
		if _, err := auth.Authenticate(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestTokenTTL(t *testing.T) {
	if got := service.TokenTTL(service.RoleAdmin); got != 8*time.Hour {
		t.Fatalf("admin TTL = %v", got)
	}
	if got := service.TokenTTL(service.RoleCustomer); got != 24*time.Hour {
		t.Fatalf("customer TTL = %v", got)
	}
}
