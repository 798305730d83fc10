package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"corrlab/internal"
	"corrlab/internal/api"
	"corrlab/internal/explorer"
	"corrlab/internal/render"
)

// Server represents the web server for the correlation explorer
type Server struct {
	router    *gin.Engine
	explorer  *explorer.Explorer
	renderer  *render.Renderer
	hub       *api.SSEHub
	templates *template.Template
	assets    fs.FS
	logger    *internal.Logger
}

// NewServer creates a new web server instance. assets must contain
// templates/*.html and static/*.
func NewServer(assets fs.FS, exp *explorer.Explorer, renderer *render.Renderer, hub *api.SSEHub, logger *internal.Logger) (*Server, error) {
	if exp == nil || renderer == nil || hub == nil {
		return nil, fmt.Errorf("server requires an explorer, a renderer and an event hub")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:   gin.New(),
		explorer: exp,
		renderer: renderer,
		hub:      hub,
		assets:   assets,
		logger:   logger.WithComponent("ui"),
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) parseTemplates() error {
	funcMap := template.FuncMap{
		"f2":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"f3":  func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}

	templatesFS, err := fs.Sub(s.assets, "templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	files, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob templates: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no templates found")
	}

	s.templates = template.New("").Funcs(funcMap)
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	s.logger.Debug("parsed %d templates: %v", len(files), files)
	return nil
}

// setupRoutes registers page, API and stream endpoints
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	apiGroup := s.router.Group("/api")
	{
		apiGroup.GET("/state", s.handleState)
		apiGroup.POST("/correlation", s.handleSetCorrelation)
		apiGroup.POST("/sample-size", s.handleSetSampleSize)
		apiGroup.POST("/fit", s.handleFit)
		apiGroup.POST("/resample", s.handleResample)
		apiGroup.GET("/residuals", s.handleResiduals)
		apiGroup.GET("/chart.svg", s.handleChart(render.FormatSVG))
		apiGroup.GET("/chart.png", s.handleChart(render.FormatPNG))
		apiGroup.GET("/export.csv", s.handleExportCSV)
		apiGroup.GET("/export.xlsx", s.handleExportXLSX)
		apiGroup.GET("/events", s.handleEvents)
	}
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}
