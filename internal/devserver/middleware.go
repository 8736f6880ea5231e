package devserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/logging"
	"github.com/hay-kot/taskdeck/internal/data/stores"
)

const (
	requestIDHeader = "X-Request-ID"
	accountKey      = "account"
	claimsKey       = "claims"
)

// requestID propagates the caller's request id or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// requestLogger writes one line per request. Request id and username are
// added by logging.ContextHook.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	log = log.Hook(logging.ContextHook{})
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Debug()
		if status >= http.StatusInternalServerError {
			event = log.Warn()
		}
		event.Ctx(c.Request.Context()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// authenticate requires a valid, unrevoked access token for an existing
// account. The account is loaded on every request so role changes apply
// immediately.
func (s *Server) authenticate(c *gin.Context) {
	token, ok := bearerToken(c.Request)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header is missing or invalid"})
		return
	}

	cl, err := s.tokens.parse(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}

	ctx := c.Request.Context()
	revoked, err := s.revoked.Contains(ctx, cl.ID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if revoked {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has been revoked"})
		return
	}

	acct, err := s.users.Get(ctx, cl.UserID)
	if errors.Is(err, stores.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Account no longer exists"})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.Set(accountKey, acct)
	c.Set(claimsKey, cl)
	c.Request = c.Request.WithContext(logging.WithUsername(ctx, acct.Username))
	c.Next()
}

// requireAdmin must run after authenticate.
func requireAdmin(c *gin.Context) {
	if account(c).Role != auth.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
		return
	}
	c.Next()
}

func account(c *gin.Context) stores.Account {
	acct, _ := c.MustGet(accountKey).(stores.Account)
	return acct
}
