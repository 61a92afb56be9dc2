package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/logger"
	"github.com/msomdec/storefront/internal/validate"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

const (
	adminTokenTTL    = 8 * time.Hour
	customerTokenTTL = 24 * time.Hour
)

// Principal is the identity resolved from a session token.
type Principal struct {
	Role      Role
	Email     string
	AccountID int64 // zero for the administrator
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// AdminCredentials configure the single administrator. An empty Email
// disables admin login.
type AdminCredentials struct {
	Email    string
	Password string
}

// AuthService handles customer registration, login for customers and the
// administrator, and session token verification.
type AuthService struct {
	accounts   domain.AccountRepository
	jwtSecret  []byte
	bcryptCost int
	adminEmail string
	adminHash  []byte
	now        func() time.Time
}

// NewAuthService hashes the admin password once so that logins compare
// against a bcrypt hash rather than the plain value.
func NewAuthService(accounts domain.AccountRepository, jwtSecret string, bcryptCost int, admin AdminCredentials) (*AuthService, error) {
	s := &AuthService{
		accounts:   accounts,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		adminEmail: strings.TrimSpace(admin.Email),
		now:        time.Now,
	}
	if s.adminEmail != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.adminHash = hash
	}
	return s, nil
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if !validate.Email(email) {
		return nil, domain.NewFieldError("email", "must be a valid email address")
	}
	if !validate.Password(password) {
		return nil, domain.NewFieldError("password", fmt.Sprintf("must be at least %d characters", validate.MinPasswordLength))
	}
	if s.adminEmail != "" && email == s.adminEmail {
		return nil, fmt.Errorf("%w: email %q", domain.ErrDuplicateKey, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{Email: email, PasswordHash: string(hash)}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, storeErr("create account", err)
	}

	logger.From(ctx).Info("account registered", "account_id", account.ID)
	return account, nil
}

// Login verifies credentials and returns a signed token. Unknown emails and
// wrong passwords both fail with ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrUnauthorized
	}

	var p *Principal
	if s.adminEmail != "" && email == s.adminEmail {
		if bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) != nil {
			return "", nil, domain.ErrUnauthorized
		}
		p = &Principal{Role: RoleAdmin, Email: email}
	} else {
		account, err := s.accounts.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "", nil, domain.ErrUnauthorized
			}
			return "", nil, storeErr("get account", err)
		}
		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
			return "", nil, domain.ErrUnauthorized
		}
		p = &Principal{Role: RoleCustomer, Email: account.Email, AccountID: account.ID}
	}

	token, err := s.sign(p)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, p, nil
}

// TokenTTL is how long a token issued for role stays valid.
func TokenTTL(role Role) time.Duration {
	if role == RoleAdmin {
		return adminTokenTTL
	}
	return customerTokenTTL
}

// Authenticate verifies a token and returns its principal.
func (s *AuthService) Authenticate(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	switch Role(role) {
	case RoleAdmin:
		if s.adminEmail == "" || email != s.adminEmail {
			return nil, domain.ErrUnauthorized
		}
		return &Principal{Role: RoleAdmin, Email: email}, nil
	case RoleCustomer:
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil || id <= 0 {
			return nil, domain.ErrUnauthorized
		}
		return &Principal{Role: RoleCustomer, Email: email, AccountID: id}, nil
	default:
		return nil, domain.ErrUnauthorized
	}
}

func (s *AuthService) sign(p *Principal) (string, error) {
	now := s.now()
	sub := "admin"
	if p.Role == RoleCustomer {
		sub = strconv.FormatInt(p.AccountID, 10)
	}
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": p.Email,
		"role":  string(p.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(TokenTTL(p.Role)).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
