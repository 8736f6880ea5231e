package devserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/data/stores"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authBody struct {
	ID       jsonx.ID  `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
	Message  string    `json:"message,omitempty"`
	Token    string    `json:"token,omitempty"`
}

func authBodyOf(acct stores.Account) authBody {
	id := acct.Identity()
	return authBody{ID: id.ID, Username: id.Username, Email: id.Email, Role: id.Role}
}

// register creates an ordinary account. No token is issued; the client
// signs in separately.
func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		s.internalError(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Username
	}

	acct, err := s.users.Create(c.Request.Context(), stores.NewAccount{
		Username:     strings.TrimSpace(req.Username),
		Name:         name,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         auth.RoleUser,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}

	body := authBodyOf(acct)
	body.Message = "User registered successfully"
	c.JSON(http.StatusCreated, body)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	acct, err := s.users.GetByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, stores.ErrNotFound) {
		s.internalError(c, err)
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}

	token, err := s.tokens.issue(acct.ID, acct.Username, acct.Role)
	if err != nil {
		s.internalError(c, err)
		return
	}

	body := authBodyOf(acct)
	body.Token = token
	body.Message = "Login successful"
	c.JSON(http.StatusOK, body)
}

// logout revokes the presented token until it would have expired anyway.
// It always succeeds so a client can discard its session unconditionally.
func (s *Server) logout(c *gin.Context) {
	token, ok := bearerToken(c.Request)
	if ok {
		if cl, err := s.tokens.parse(token); err == nil {
			ttl := cl.ExpiresAt.Sub(s.now())
			if err := s.revoked.Put(c.Request.Context(), cl.ID, true, max(ttl, time.Second)); err != nil {
				s.log.Warn().Ctx(c.Request.Context()).Err(err).Msg("revoke token")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, authBodyOf(account(c)))
}

func (s *Server) checkUsername(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	exists, err := s.users.UsernameExists(c.Request.Context(), username)
	if err != nil {
		s.internalError(c, err)
		return
	}

	if exists {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "Username is already taken"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "message": "Username is available"})
}
