// Package devserver is a self contained implementation of the task manager
// REST backend. It lets the dashboard run without an external service and
// backs the end to end tests of the API client.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hay-kot/taskdeck/internal/core/kv"
	"github.com/hay-kot/taskdeck/internal/data/db"
	"github.com/hay-kot/taskdeck/internal/data/stores"
)

// Config configures a Server.
type Config struct {
	// Secret signs access tokens. It must be set.
	Secret string
	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// AllowOrigins lists the CORS origins. Empty allows every origin.
	AllowOrigins []string
	// SweepInterval controls how often expired revocations are purged.
	SweepInterval time.Duration
}

// DefaultTokenTTL matches the lifetime of tokens issued by the production
// backend.
const DefaultTokenTTL = 24 * time.Hour

// Server serves the REST API over a SQLite database.
type Server struct {
	cfg      Config
	log      zerolog.Logger
	users    *stores.UserStore
	tasks    *stores.TaskStore
	settings *stores.SettingsStore
	kv       *stores.KVStore
	revoked  *kv.Namespace[bool]
	tokens   tokenIssuer
	now      func() time.Time
	engine   *gin.Engine

	httpServer *http.Server
	listener   net.Listener
}

// New builds a server on database. It does not listen until Start.
func New(database *db.DB, cfg Config, log zerolog.Logger) (*Server, error) {
	if cfg.Secret == "" {
		return nil, errors.New("devserver: secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}

	kvStore := stores.NewKVStore(database)
	s := &Server{
		cfg:      cfg,
		log:      log.With().Str("component", "devserver").Logger(),
		users:    stores.NewUserStore(database),
		tasks:    stores.NewTaskStore(database),
		settings: stores.NewSettingsStore(database),
		kv:       kvStore,
		revoked:  kv.In[bool](kvStore, "revoked"),
		now:      time.Now,
	}
	s.tokens = tokenIssuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
		now:    func() time.Time { return s.now() },
	}
	s.engine = s.routes()

	return s, nil
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidation()

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(s.log))

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.AllowOrigins
	}
	corsCfg.AddAllowHeaders("Authorization", requestIDHeader)
	corsCfg.AddExposeHeaders(requestIDHeader, "Content-Disposition")
	r.Use(cors.New(corsCfg))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/check-username/:username", s.checkUsername)
	authGroup.GET("/me", s.authenticate, s.me)

	tasks := api.Group("/tasks", s.authenticate)
	tasks.GET("", s.listTasks)
	tasks.POST("", s.createTask)
	tasks.GET("/:id", s.getTask)
	tasks.PUT("/:id", s.updateTask)
	tasks.DELETE("/:id", s.deleteTask)

	settings := api.Group("/user/settings", s.authenticate)
	settings.GET("", s.getSettings)
	settings.PATCH("/email-notifications", s.setEmailNotifications)

	admin := api.Group("/admin", s.authenticate, requireAdmin)
	admin.GET("/users", s.listUsers)
	admin.POST("/users", s.createUser)
	admin.PUT("/users/:id", s.updateUser)
	admin.DELETE("/users/:id", s.deleteUser)
	admin.GET("/stats", s.adminStats)
	admin.GET("/download-report", s.downloadReport)

	return r
}

// Start listens on addr and serves in the background. Expired token
// revocations are swept until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", listener.Addr().String()).Msg("starting development server")

	go s.sweep(ctx)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("development server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Addr returns the address the server listens on, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info().Msg("shutting down development server")
	return s.httpServer.Shutdown(ctx)
}

// sweep periodically deletes expired KV entries. It blocks until ctx is
// cancelled.
func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.kv.SweepExpired(ctx); err != nil {
				s.log.Debug().Err(err).Msg("kv sweep failed")
			}
		}
	}
}

func (s *Server) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
