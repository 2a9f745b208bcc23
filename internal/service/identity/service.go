package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"joulina-backend/internal/domain"
	userrepo "joulina-backend/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when phone/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

type userRepo interface {
	Create(ctx context.Context, in userrepo.CreateInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*domain.User, error)
}

// Service resolves requests to identities: registered users via JWT access
// tokens, anonymous shoppers via opaque session keys.
type Service struct {
	repo        userRepo
	refresh     RefreshStore
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	passwordMin int
}

func New(repo userRepo, refresh RefreshStore, secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		repo:        repo,
		refresh:     refresh,
		secret:      []byte(secret),
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		passwordMin: 8,
	}
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
}

// Register creates a user keyed by phone number.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	phone := strings.TrimSpace(in.PhoneNumber)
	if !phonePattern.MatchString(phone) {
		return nil, domain.Validation("phone number must be entered in the format '+999999999', up to 15 digits")
	}
	password := strings.TrimSpace(in.Password)
	if len(password) < s.passwordMin {
		return nil, domain.Validation("password must be at least %d characters", s.passwordMin)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, userrepo.CreateInput{
		PhoneNumber:  phone,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.TrimSpace(in.Email),
	})
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, phoneNumber, password string) (*domain.User, *TokenPair, error) {
	user, err := s.repo.GetByPhone(ctx, strings.TrimSpace(phoneNumber))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token into a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.refresh.Lookup(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.refresh.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issuePair(ctx, user)
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.refresh.Revoke(ctx, refreshToken)
}

// Claims is the identity carried by an access token.
type Claims struct {
	UserID  string
	IsStaff bool
}

// ParseAccess validates an access token and returns its claims.
func (s *Service) ParseAccess(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	staff, _ := claims["staff"].(bool)
	return &Claims{UserID: sub, IsStaff: staff}, nil
}

// NewSessionKey mints an opaque key for an anonymous shopper.
func (s *Service) NewSessionKey() string {
	return uuid.NewString()
}

// AccessTTLSeconds is what clients get as expires_in.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func (s *Service) issuePair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"staff": user.IsStaff,
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	})
	access, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	if err := s.refresh.Save(ctx, refresh, user.ID, s.refreshTTL); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.AccessTTLSeconds(),
	}, nil
}
