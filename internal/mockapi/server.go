// Package mockapi is a development backend serving the admin endpoints from
// an in-memory store.
package mockapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/status"
)

var (
	errUnknownSetting = errors.New("unknown setting")
	errSettingKind    = errors.New("setting type mismatch")
)

type Server struct {
	store  *Store
	secret string
	log    *zap.Logger
}

func New(store *Store, secret string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{store: store, secret: secret, log: log}
}

// Router builds the gin engine. Every /admin route requires a bearer token.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// setting keys arrive as one escaped segment
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery(), s.requestLog(), cors.New(corsConfig()))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	admin := r.Group("/admin", authMiddleware(s.secret, s.log))
	admin.GET("/applications", s.listApplications)
	admin.PATCH("/applications/:id/status", s.updateStatus)
	admin.GET("/reports", s.reports)
	admin.GET("/settings", s.settings)
	admin.PATCH("/settings/:key", s.updateSetting)
	return r
}

// corsConfig lets a browser-based admin page on another port talk to the
// development backend.
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "PATCH", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	return cfg
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
			zap.Int("status", c.Writer.Status()))
	}
}

func (s *Server) listApplications(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Applications())
}

func (s *Server) updateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid application id"})
		return
	}
	var body api.StatusUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	if !status.Valid(body.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
		return
	}
	app, ok := s.store.SetStatus(id, body.Status, body.Remarks)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "application not found"})
		return
	}
	s.log.Info("application reviewed", zap.Int64("id", id), zap.String("status", string(body.Status)))
	c.JSON(http.StatusOK, app)
}

func (s *Server) reports(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Reports())
}

func (s *Server) settings(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Settings())
}

func (s *Server) updateSetting(c *gin.Context) {
	key := c.Param("key")
	var body api.SettingUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	if err := s.store.SetSetting(key, body.Value); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, errUnknownSetting) {
			code = http.StatusNotFound
		}
		c.JSON(code, gin.H{"message": err.Error()})
		return
	}
	s.log.Info("setting updated", zap.String("key", key))
	c.JSON(http.StatusOK, gin.H{"key": key, "value": body.Value})
}
