package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinrec/clinrec/internal/platform/auth"
)

// ErrInvalidCredentials is returned for wrong username/password pairs and for
// invalid tokens. The message is deliberately generic.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// ErrEmailTaken / ErrUsernameTaken signal registration conflicts.
var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

type Service struct {
	repo   Repository
	tokens *auth.TokenIssuer
}

func NewService(repo Repository, tokens *auth.TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// RegisterParams carries the fields accepted when creating an account.
type RegisterParams struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

func (p RegisterParams) validate() error {
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("invalid email address")
	}
	if len(p.Username) < 3 || len(p.Username) > 50 {
		return fmt.Errorf("username must be between 3 and 50 characters")
	}
	if len(p.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

// Register creates a new active account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	}
	if _, err := s.repo.GetByUsername(ctx, params.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:          params.Email,
		Username:       params.Username,
		FullName:       params.FullName,
		HashedPassword: string(hash),
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(u.Username)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(u.Username)
}

// CurrentUser resolves the account behind a bearer access token.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil || claims.Type == auth.TokenTypeRefresh {
		return nil, ErrInvalidCredentials
	}
	return s.repo.GetByUsername(ctx, claims.Subject)
}

// Verify reports whether a token is valid, and for which username.
func (s *Service) Verify(token string) *VerifyResult {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return &VerifyResult{Valid: false}
	}
	return &VerifyResult{Valid: true, Username: claims.Subject}
}

func (s *Service) issuePair(username string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}
