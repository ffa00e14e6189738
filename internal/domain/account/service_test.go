package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func newTestService() *Service {
	issuer := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", 30*time.Minute, 168*time.Hour)
	return NewService(newMockRepo(), issuer)
}

func validRegister() RegisterParams {
	return RegisterParams{
		Email:    "joao@example.com",
		Username: "joao",
		Password: "secret123",
	}
}

func TestRegister(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !u.IsActive {
		t.Error("new users must be active")
	}
	if u.HashedPassword == "secret123" || u.HashedPassword == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name   string
		mutate func(*RegisterParams)
	}{
		{"bad email", func(p *RegisterParams) { p.Email = "not-an-email" }},
		{"short username", func(p *RegisterParams) { p.Username = "ab" }},
		{"short password", func(p *RegisterParams) { p.Password = "12345" }},
	}
	for _, tc := range cases {
		params := validRegister()
		tc.mutate(&params)
		if _, err := svc.Register(context.Background(), params); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestRegister_Conflicts(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), validRegister()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := validRegister()
	params.Username = "other"
	if _, err := svc.Register(context.Background(), params); err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	params = validRegister()
	params.Email = "other@example.com"
	if _, err := svc.Register(context.Background(), params); err != ErrUsernameTaken {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validRegister())

	pair, err := svc.Login(context.Background(), "joao", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens")
	}
	if pair.TokenType != "bearer" {
		t.Errorf("expected bearer token type, got %s", pair.TokenType)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validRegister())

	if _, err := svc.Login(context.Background(), "joao", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "secret123"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validRegister())
	pair, _ := svc.Login(context.Background(), "joao", "secret123")

	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newPair.AccessToken == "" {
		t.Error("expected new access token")
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validRegister())
	pair, _ := svc.Login(context.Background(), "joao", "secret123")

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validRegister())
	pair, _ := svc.Login(context.Background(), "joao", "secret123")

	u, err := svc.CurrentUser(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "joao" {
		t.Errorf("expected joao, got %s", u.Username)
	}
}

func TestVerify(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), validRegister())
	pair, _ := svc.Login(context.Background(), "joao", "secret123")

	result := svc.Verify(pair.AccessToken)
	if !result.Valid || result.Username != "joao" {
		t.Errorf("expected valid token for joao, got %+v", result)
	}

	result = svc.Verify("garbage")
	if result.Valid {
		t.Error("expected invalid result for garbage token")
	}
}
