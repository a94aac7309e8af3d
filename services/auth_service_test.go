package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/itish2003/searchdoc/config"
)

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestAuth(t *testing.T, secret string) *AuthService {
	t.Helper()
	users := []config.UserCredential{
		{Name: "Ada Lovelace", Username: "ada", Password: hashPassword(t, "engine")},
	}
	return NewAuthService(users, NewMemorySessionStore(time.Hour),
		config.SessionConfig{TTL: time.Hour, Secret: secret}, zap.NewNop())
}

func TestAuthenticate(t *testing.T) {
	a := newTestAuth(t, "s3cret")

	u, err := a.Authenticate("ada", "engine")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.Name)

	_, err = a.Authenticate("ada", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate("bob", "engine")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginVerifyLogout(t *testing.T) {
	ctx := context.Background()
	a := newTestAuth(t, "s3cret")

	token, sess, err := a.Login(ctx, "ada", "engine")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := a.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "ada", got.User.Username)

	require.NoError(t, a.Logout(ctx, token))
	_, err = a.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, _, err := newTestAuth(t, "s3cret").Login(context.Background(), "ada", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	a := newTestAuth(t, "s3cret")
	other := newTestAuth(t, "different")

	token, _, err := other.Login(ctx, "ada", "engine")
	require.NoError(t, err)

	_, err = a.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{ID: "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Verify(ctx, none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a := newTestAuth(t, "s3cret")
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "sess",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFallbackSecret(t *testing.T) {
	ctx := context.Background()
	a := newTestAuth(t, "")

	token, _, err := a.Login(ctx, "ada", "engine")
	require.NoError(t, err)

	_, err = jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(config.FallbackSessionSecret), nil
	})
	assert.NoError(t, err)
}

func TestReloadUsers(t *testing.T) {
	a := newTestAuth(t, "s3cret")

	a.ReloadUsers([]config.UserCredential{
		{Name: "Bob", Username: "bob", Password: hashPassword(t, "builder")},
	})

	_, err := a.Authenticate("ada", "engine")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	u, err := a.Authenticate("bob", "builder")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
}
