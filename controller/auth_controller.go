package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/itish2003/searchdoc/models"
	"github.com/itish2003/searchdoc/services"
)

const (
	sessionCookie = "searchdoc_session"
	userKey       = "user"
)

// SessionAuthenticator is the part of the auth service the handlers need.
type SessionAuthenticator interface {
	Login(ctx context.Context, username, password string) (string, *services.Session, error)
	Verify(ctx context.Context, token string) (*services.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthController serves the login pages and guards the protected routes.
type AuthController struct {
	auth   SessionAuthenticator
	secure bool
	log    *zap.Logger
}

// NewAuthController creates a new AuthController. secureCookie marks the
// session cookie Secure and should be set when served over HTTPS.
func NewAuthController(auth SessionAuthenticator, secureCookie bool, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, secure: secureCookie, log: log}
}

// ShowLogin is the handler for GET /login.
func (ac *AuthController) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"error": ""})
}

// Login is the handler for POST /login. It accepts a form or JSON body.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"error": "Invalid username or password"})
		return
	}

	token, sess, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		ac.log.Error("login error", zap.String("username", req.Username), zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"error": "An error occurred during login"})
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", ac.secure, true)
	c.Redirect(http.StatusFound, "/")
}

// Logout is the handler for GET /logout.
func (ac *AuthController) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		if err := ac.auth.Logout(c.Request.Context(), token); err != nil {
			ac.log.Warn("failed to delete session", zap.Error(err))
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", ac.secure, true)
	c.Redirect(http.StatusFound, "/login")
}

// RequireSession rejects requests without a live session. Pages redirect to
// /login; API routes get a 401 JSON body.
func (ac *AuthController) RequireSession(api bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := ac.session(c)
		if err != nil {
			if api {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
			} else {
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
			}
			return
		}
		c.Set(userKey, sess.User)
		c.Next()
	}
}

func (ac *AuthController) session(c *gin.Context) (*services.Session, error) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		return nil, services.ErrSessionNotFound
	}
	return ac.auth.Verify(c.Request.Context(), token)
}

// Index renders the search page for the logged-in user.
func (ac *AuthController) Index(c *gin.Context) {
	user, _ := c.Get(userKey)
	c.HTML(http.StatusOK, "index.html", gin.H{"user": user})
}
