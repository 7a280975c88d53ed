package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"flowtrigger/internal/ollama"
)

const (
	DefaultAddr = ":5000"

	summarizeSystemPrompt = "You are a helpful assistant that creates concise summaries."
	summarizeTemperature  = 0.3
)

// Server exposes the chat service as JSON endpoints for workflow tools
type Server struct {
	echo *echo.Echo
	chat ollama.Chatter
	log  *zap.Logger
}

type chatRequest struct {
	Message     string   `json:"message"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
}

type summarizeRequest struct {
	Text string `json:"text"`
}

// New wires the routes. A nil logger discards access logs.
func New(chat ollama.Chatter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, chat: chat, log: log}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.POST("/ai-chat", s.handleChat)
	e.POST("/summarize", s.handleSummarize)

	return s
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No message provided"})
	}

	model := req.Model
	if model == "" {
		model = ollama.DefaultModel
	}
	temperature := ollama.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	reply, err := ollama.Ask(c.Request().Context(), s.chat, model, "", req.Message, temperature)
	if err != nil {
		s.log.Error("chat failed", zap.String("model", model), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"response": reply,
		"model":    model,
	})
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON body"})
	}
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No text provided"})
	}

	prompt := "Please summarize the following text:\n\n" + req.Text
	summary, err := ollama.Ask(c.Request().Context(), s.chat, ollama.DefaultModel, summarizeSystemPrompt, prompt, summarizeTemperature)
	if err != nil {
		s.log.Error("summarize failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"summary": summary,
	})
}
