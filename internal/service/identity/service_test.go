package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"joulina-backend/internal/domain"
	userrepo "joulina-backend/internal/repository/user"
)

type stubUserRepo struct {
	users map[string]*domain.User // keyed by phone number
}

func (r *stubUserRepo) Create(_ context.Context, in userrepo.CreateInput) (*domain.User, error) {
	if _, ok := r.users[in.PhoneNumber]; ok {
		return nil, domain.ErrAlreadyExists
	}
	user := &domain.User{
		ID:           "user-" + in.PhoneNumber,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Tier:         domain.TierNormal,
	}
	r.users[in.PhoneNumber] = user
	return user, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	user, ok := r.users[phone]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func newTestService() (*Service, *stubUserRepo) {
	repo := &stubUserRepo{users: make(map[string]*domain.User)}
	svc := New(repo, NewMemoryStore(), "test-secret", time.Hour, 24*time.Hour)
	return svc, repo
}

func TestRegister_ValidatesPhoneAndPassword(t *testing.T) {
	svc, _ := newTestService()

	var ve domain.ValidationError

	_, err := svc.Register(context.Background(), RegisterInput{PhoneNumber: "not-a-phone", Password: "longenough"})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for phone, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{PhoneNumber: "+15550001111", Password: "short"})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for password, got %v", err)
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, repo := newTestService()

	user, err := svc.Register(context.Background(), RegisterInput{
		PhoneNumber: "+15550001111",
		Password:    "correct horse",
		FirstName:   "Nino",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	stored := repo.users[user.PhoneNumber]
	if stored.PasswordHash == "correct horse" {
		t.Fatal("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")) != nil {
		t.Fatal("stored hash does not verify")
	}
}

func TestRegister_DuplicatePhone(t *testing.T) {
	svc, _ := newTestService()
	in := RegisterInput{PhoneNumber: "+15550001111", Password: "correct horse"}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLogin_IssuesParsableAccessToken(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), RegisterInput{PhoneNumber: "+15550001111", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, pair, err := svc.Login(context.Background(), "+15550001111", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete token pair: %+v", pair)
	}

	claims, err := svc.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("claims user = %s, want %s", claims.UserID, user.ID)
	}
	if claims.IsStaff {
		t.Fatal("fresh user must not be staff")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), RegisterInput{PhoneNumber: "+15550001111", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "+15550001111", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "+15559999999", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown phone, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), RegisterInput{PhoneNumber: "+15550001111", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(context.Background(), "+15550001111", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	// The old token is revoked.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for reused token, got %v", err)
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), RegisterInput{PhoneNumber: "+15550001111", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(context.Background(), "+15550001111", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestParseAccess_GarbageToken(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.ParseAccess("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, "tok", "u1", -time.Second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Lookup(ctx, "tok"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired token, got %v", err)
	}
}

func TestNewSessionKey_Unique(t *testing.T) {
	svc, _ := newTestService()
	if svc.NewSessionKey() == svc.NewSessionKey() {
		t.Fatal("session keys must be unique")
	}
}
