package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/http/response"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
	"github.com/yungbote/worldkernel-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	loginPath   string
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, loginPath string) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	if loginPath == "" {
		loginPath = services.PathLogin
	}
	return &AuthMiddleware{log: middlewareLogger, authService: authService, loginPath: loginPath}
}

// RequireAuth rejects anonymous callers. Browsers are redirected to the login page,
// everything else gets a 401 envelope carrying the same redirect target.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			am.deny(c, errors.New("missing or invalid token"))
			return
		}
		rd, err := am.authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrUnavailable) {
				response.RespondServiceError(c, err)
				c.Abort()
				return
			}
			am.log.Debug("token rejected", "error", err)
			am.deny(c, errors.New("missing or invalid token"))
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present and
// otherwise continues anonymously.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		rd, err := am.authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("optional token ignored", "error", err)
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func (am *AuthMiddleware) deny(c *gin.Context, err error) {
	target := services.LoginRedirect(am.loginPath, c.Request.URL.Path)
	if acceptsHTML(c) {
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
		Error:    response.APIError{Message: err.Error(), Code: "unauthorized"},
		Redirect: target,
	})
}

func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}

// RequestDataFrom returns the identity attached by the auth middleware, or nil.
func RequestDataFrom(c *gin.Context) *ctxutil.RequestData {
	return ctxutil.GetRequestData(c.Request.Context())
}

// bearerToken reads the Authorization header only. Tokens in the URL are ignored.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
