package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/textparser/internal/parser"
	"github.com/fyrsmithlabs/textparser/internal/selector"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Templates int    `json:"templates"`
	Skipped   int    `json:"skipped"`
}

// ParseRequest is the request body for POST /api/v1/parse.
type ParseRequest struct {
	Text string `json:"text"`
	// Mode is "enumerate" or "best-fit"; empty uses the server default.
	Mode string `json:"mode,omitempty"`
	// Events includes the parse events in the response.
	Events bool `json:"events,omitempty"`
}

// ParseResponse is the response body for POST /api/v1/parse.
type ParseResponse struct {
	ParseID  string         `json:"parse_id"`
	Matched  bool           `json:"matched"`
	Template string         `json:"template,omitempty"`
	Data     *parser.Result `json:"data"`
	Events   []parser.Event `json:"events,omitempty"`
}

// TemplateInfo describes one loaded template.
type TemplateInfo struct {
	ID        string   `json:"id"`
	Variables []string `json:"variables"`
	Pattern   string   `json:"pattern"`
}

// SkippedInfo describes a template that failed to compile.
type SkippedInfo struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// TemplatesResponse is the response body for the template endpoints.
type TemplatesResponse struct {
	Templates []TemplateInfo `json:"templates"`
	Skipped   []SkippedInfo  `json:"skipped,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Templates: len(s.parser.Templates()),
		Skipped:   len(s.parser.Skipped()),
	})
}

func (s *Server) handleParse(c echo.Context) error {
	ctx := c.Request().Context()

	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(ctx, "invalid parse request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	mode := s.config.DefaultMode
	if req.Mode != "" {
		parsed, err := selector.ParseMode(req.Mode)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		mode = parsed
	}

	res, err := s.parser.Parse(ctx, req.Text, mode)
	if err != nil {
		s.logger.Error(ctx, "parse failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "parse failed")
	}

	applied, matched := res.AppliedTemplate()
	resp := ParseResponse{
		ParseID:  res.ParseID(),
		Matched:  matched,
		Template: applied,
		Data:     res,
	}
	if req.Events {
		resp.Events = res.Events()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, s.templatesResponse())
}

func (s *Server) handleReload(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.parser.Reload(ctx); err != nil {
		s.logger.Error(ctx, "template reload failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "template reload failed")
	}
	return c.JSON(http.StatusOK, s.templatesResponse())
}

func (s *Server) templatesResponse() TemplatesResponse {
	templates := s.parser.Templates()
	resp := TemplatesResponse{Templates: make([]TemplateInfo, 0, len(templates))}
	for _, t := range templates {
		resp.Templates = append(resp.Templates, TemplateInfo{
			ID:        t.ID,
			Variables: t.Variables,
			Pattern:   t.Pattern,
		})
	}
	for _, sk := range s.parser.Skipped() {
		resp.Skipped = append(resp.Skipped, SkippedInfo{ID: sk.ID, Error: sk.Err.Error()})
	}
	return resp
}
