package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is the account record the auth workflow needs.
type User struct {
	ID        string
	Email     string
	Photo     string
	PassHash  []byte
	CreatedAt time.Time
}

// AuthStore abstracts the persistence operations required by AuthService.
type AuthStore interface {
	FindUserByEmail(email string) (*User, error)
	AddUser(u *User) error
}

// TokenSigner issues an access token carrying the user's identity claims.
type TokenSigner func(uid, email, photo string, ttl time.Duration) (string, error)

// AuthService hosts account registration and login.
type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func(prefix string) string
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token  string
	UserID string
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     defaultID,
		signToken: signer,
		tokenTTL:  30 * 24 * time.Hour,
	}
}

func defaultID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func (s *AuthService) Register(email, password, photo string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	userID := s.idGen("u")
	u := &User{ID: userID, Email: email, Photo: photo, PassHash: hash, CreatedAt: s.now()}
	if err := s.store.AddUser(u); err != nil {
		return nil, err
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(userID, email, photo, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: userID}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, u.Photo, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
