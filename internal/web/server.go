package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"slidegen/internal/app"
	"slidegen/internal/deck"
	"slidegen/internal/i18n"
	"slidegen/internal/render"
	"slidegen/internal/storage"
)

const shutdownTimeout = 10 * time.Second

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	service  *app.Service
	pipeline *app.Pipeline
	session  *app.Session
	router   *gin.Engine

	// runs outlive the request that started them
	runCtx context.Context
	runs   sync.WaitGroup
}

func NewServer(ctx context.Context, service *app.Service, session *app.Session) *Server {
	s := &Server{
		service:  service,
		pipeline: app.NewPipeline(service),
		session:  session,
		runCtx:   ctx,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	router.GET("/", s.handleIndex)
	router.POST("/generate", s.handleGenerate)
	router.POST("/restart", s.handleRestart)
	router.POST("/language", s.handleLanguage)

	api := router.Group("/api")
	api.GET("/state", s.handleState)

	deckRoutes := router.Group("/deck")
	deckRoutes.GET("/slides/:index/image", s.handleSlideImage)
	deckRoutes.GET("/background", s.handleBackground)
	deckRoutes.GET("/markdown", s.handleMarkdown)
	deckRoutes.GET("/pptx", s.handlePPTX)
	deckRoutes.POST("/export", s.handleExport)

	return router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Wait blocks until background runs started by the server have finished.
func (s *Server) Wait() {
	s.runs.Wait()
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Serving slide generator", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.newPageData(s.session.Snapshot()))
}

func (s *Server) handleGenerate(c *gin.Context) {
	req := s.defaultRequest()
	if err := c.ShouldBind(&req); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("%w: %v", deck.ErrInvalidRequest, err))
		return
	}

	done, err := s.pipeline.Start(s.runCtx, s.session, req)
	switch {
	case errors.Is(err, deck.ErrInvalidRequest):
		s.fail(c, http.StatusBadRequest, err)
		return
	case errors.Is(err, app.ErrBusy):
		s.fail(c, http.StatusConflict, err)
		return
	case err != nil:
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if err := <-done; err != nil && !app.IsRestarted(err) {
			slog.Error("Generation failed", "error", err)
		}
	}()

	s.respond(c, http.StatusAccepted)
}

func (s *Server) handleRestart(c *gin.Context) {
	s.session.Restart()
	s.respond(c, http.StatusOK)
}

func (s *Server) handleLanguage(c *gin.Context) {
	var body struct {
		Language string `json:"language" form:"language"`
	}
	if err := c.ShouldBind(&body); err != nil || !i18n.Supported(body.Language) {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("%w: unsupported language %q", deck.ErrInvalidRequest, body.Language))
		return
	}
	if !s.session.SetLanguage(body.Language) {
		s.fail(c, http.StatusConflict, app.ErrBusy)
		return
	}
	s.respond(c, http.StatusOK)
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(s.session.Snapshot()))
}

func (s *Server) handleSlideImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slide index"})
		return
	}

	snap := s.session.Snapshot()
	if index < 0 || index >= len(snap.Slides) || snap.Slides[index].Image == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	writeImage(c, snap.Slides[index].Image)
}

func (s *Server) handleBackground(c *gin.Context) {
	snap := s.session.Snapshot()
	if snap.Background == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "background not found"})
		return
	}
	writeImage(c, snap.Background)
}

func (s *Server) handleMarkdown(c *gin.Context) {
	d, ok := s.session.Deck()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": storage.ErrNotReady.Error()})
		return
	}

	markdown := render.Markdown(d, render.Options{ImageRef: func(i int) string {
		return fmt.Sprintf("/deck/slides/%d/image", i)
	}})
	c.Header("Content-Disposition", `attachment; filename="slides.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
}

func (s *Server) handlePPTX(c *gin.Context) {
	d, ok := s.session.Deck()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": storage.ErrNotReady.Error()})
		return
	}

	data, err := render.PPTX(d)
	if err != nil {
		slog.Error("Presentation rendering failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="slides.pptx"`)
	c.Data(http.StatusOK, storage.PPTXContentType, data)
}

func (s *Server) handleExport(c *gin.Context) {
	d, ok := s.session.Deck()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": storage.ErrNotReady.Error()})
		return
	}

	location, err := s.service.Export(c.Request.Context(), d)
	if err != nil {
		slog.Error("Export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slog.Info("Deck exported", "location", location)
	c.JSON(http.StatusOK, gin.H{"location": location})
}

func (s *Server) defaultRequest() deck.Request {
	cfg := s.service.Config()
	return deck.Request{
		SlideCount: cfg.Generation.SlideCount,
		PlanCount:  cfg.Generation.PlanCount,
		Language:   s.session.Snapshot().Language,
	}
}

// respond answers JSON clients with the current state and sends browser
// form posts back to the index page.
func (s *Server) respond(c *gin.Context, status int) {
	if wantsJSON(c) {
		c.JSON(status, newStateResponse(s.session.Snapshot()))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON || c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func writeImage(c *gin.Context, img *deck.Image) {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, mimeType, img.Data)
}
