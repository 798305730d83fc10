package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"corrlab/domain/sample"
	"corrlab/internal/api"
	"corrlab/internal/errors"
	"corrlab/internal/explorer"
	"corrlab/internal/export"
	"corrlab/internal/render"
)

// correlationRequest is the body of POST /api/correlation
type correlationRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

// sampleSizeRequest is the body of POST /api/sample-size
type sampleSizeRequest struct {
	Value *int `json:"value" binding:"required"`
}

func (s *Server) handleIndex(c *gin.Context) {
	snap := s.explorer.Snapshot()
	s.renderTemplate(c, "index.html", gin.H{
		"State":  newStateView(snap, s.explorer.Config()),
		"Config": s.explorer.Config(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.explorer.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"revision":           snap.Revision,
		"generated_at":       snap.GeneratedAt,
		"sample_age_seconds": snap.GeneratedAt.Age(time.Now()).Seconds(),
		"clients":            s.hub.ClientCount(),
	})
}

func (s *Server) handleState(c *gin.Context) {
	s.respondState(c, s.explorer.Snapshot())
}

func (s *Server) handleSetCorrelation(c *gin.Context) {
	var req correlationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.Wrap(errors.InvalidInput(err.Error()), "invalid correlation request"))
		return
	}
	snap, err := s.explorer.SetCorrelation(*req.Value)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "set correlation"))
		return
	}
	s.respondState(c, snap)
}

func (s *Server) handleSetSampleSize(c *gin.Context) {
	var req sampleSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.Wrap(errors.InvalidInput(err.Error()), "invalid sample size request"))
		return
	}
	snap, err := s.explorer.SetSampleSize(*req.Value)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "set sample size"))
		return
	}
	s.respondState(c, snap)
}

func (s *Server) handleFit(c *gin.Context) {
	s.respondState(c, s.explorer.Fit())
}

func (s *Server) handleResample(c *gin.Context) {
	s.respondState(c, s.explorer.Resample())
}

// handleResiduals returns every residual segment regardless of display mode
func (s *Server) handleResiduals(c *gin.Context) {
	snap := s.explorer.Snapshot()
	residuals := snap.Residuals()
	if residuals == nil {
		residuals = []sample.ResidualSegment{}
	}
	c.JSON(http.StatusOK, gin.H{
		"revision":     snap.Revision,
		"mode":         snap.Mode,
		"regression":   snap.Regression,
		"residuals":    residuals,
		"residual_sse": snap.Summary.ResidualSSE,
	})
}

func (s *Server) handleChart(format render.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := s.explorer.Snapshot()
		var buf bytes.Buffer
		if err := s.renderer.Render(c.Request.Context(), snap, format, &buf); err != nil {
			s.respondError(c, err)
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Header("X-Revision", strconv.FormatUint(snap.Revision, 10))
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

func (s *Server) handleExportCSV(c *gin.Context) {
	snap := s.explorer.Snapshot()
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, snap); err != nil {
		s.respondError(c, err)
		return
	}
	attachment(c, snap, "csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	snap := s.explorer.Snapshot()
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap); err != nil {
		s.respondError(c, err)
		return
	}
	attachment(c, snap, "xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) handleEvents(c *gin.Context) {
	initial := api.NewStateEvent(s.explorer.Snapshot())
	s.hub.HandleSSE(c, &initial)
}

func (s *Server) respondState(c *gin.Context, snap explorer.Snapshot) {
	c.JSON(http.StatusOK, newStateView(snap, s.explorer.Config()))
}

func (s *Server) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func attachment(c *gin.Context, snap explorer.Snapshot, ext string) {
	name := fmt.Sprintf("corrlab-r%+.2f-n%d-%s.%s",
		snap.Parameters.TargetCorrelation, snap.Parameters.SampleSize, snap.Fingerprint().Short(), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}
