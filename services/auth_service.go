package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/itish2003/searchdoc/config"
	"github.com/itish2003/searchdoc/metrics"
	"github.com/itish2003/searchdoc/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid session token")
)

// AuthService checks passwords against credentials.yml users and issues
// signed session tokens backed by a SessionStore.
type AuthService struct {
	mu    sync.RWMutex
	users map[string]config.UserCredential

	store  SessionStore
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

// NewAuthService creates a new auth service for the given users.
func NewAuthService(users []config.UserCredential, store SessionStore, cfg config.SessionConfig, log *zap.Logger) *AuthService {
	secret := cfg.Secret
	if secret == "" {
		secret = config.FallbackSessionSecret
	}
	a := &AuthService{store: store, secret: []byte(secret), ttl: cfg.TTL, log: log}
	a.ReloadUsers(users)
	return a
}

// ReloadUsers swaps the user table atomically. Sessions already issued stay
// valid.
func (a *AuthService) ReloadUsers(users []config.UserCredential) {
	m := make(map[string]config.UserCredential, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	a.mu.Lock()
	a.users = m
	a.mu.Unlock()
	a.log.Info("user table loaded", zap.Int("users", len(m)))
}

// Authenticate returns ErrInvalidCredentials for both unknown users and
// wrong passwords.
func (a *AuthService) Authenticate(username, password string) (*models.User, error) {
	a.mu.RLock()
	u, ok := a.users[username]
	a.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &models.User{Name: u.Name, Username: u.Username}, nil
}

// Login authenticates and opens a session. The returned token is an HS256 JWT
// whose ID claim is the session ID.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, *Session, error) {
	user, err := a.Authenticate(username, password)
	if err != nil {
		metrics.RecordLogin("failure")
		a.log.Warn("login failed", zap.String("username", username))
		return "", nil, err
	}

	sess, err := a.store.Create(ctx, *user)
	if err != nil {
		metrics.RecordLogin("error")
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		_ = a.store.Delete(ctx, sess.ID)
		metrics.RecordLogin("error")
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	metrics.RecordLogin("success")
	a.log.Info("user logged in", zap.String("username", user.Username))
	return token, sess, nil
}

// Verify resolves a token to its live session.
func (a *AuthService) Verify(ctx context.Context, token string) (*Session, error) {
	claims, err := a.parse(token)
	if err != nil {
		return nil, err
	}
	sess, err := a.store.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if sess.User.Username != claims.Subject {
		return nil, ErrInvalidToken
	}
	return sess, nil
}

// Logout deletes the session behind the token. Unparseable tokens are
// ignored.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := a.parse(token)
	if err != nil {
		return nil
	}
	if err := a.store.Delete(ctx, claims.ID); err != nil {
		return err
	}
	a.log.Info("user logged out", zap.String("username", claims.Subject))
	return nil
}

func (a *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
