package ui

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())

	staticFS, err := fs.Sub(s.assets, "static")
	if err != nil {
		s.logger.Warn("static assets unavailable: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// requestLogger logs each request at DEBUG and failures at WARN
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		if status >= http.StatusBadRequest {
			s.logger.Warn("%s %s -> %d (%.2fms) %s", c.Request.Method, c.Request.URL.Path,
				status, float64(elapsed.Microseconds())/1000, c.Errors.ByType(gin.ErrorTypeAny).String())
			return
		}
		s.logger.Debug("%s %s -> %d (%.2fms)", c.Request.Method, c.Request.URL.Path,
			status, float64(elapsed.Microseconds())/1000)
	}
}
