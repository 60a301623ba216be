package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"runtime"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/fw03/go-scene-raytracer/pkg/core"
	"github.com/fw03/go-scene-raytracer/pkg/loaders"
	"github.com/fw03/go-scene-raytracer/pkg/renderer"
)

// Server exposes rendering over HTTP: start and cancel renders, poll
// progress, stream tile completions via SSE and download the current
// image buffer.
type Server struct {
	port   int
	logger core.Logger
	render *renderer.Render

	mu   sync.Mutex
	busy bool
}

// NewServer creates a web server on the given port (nil logger for the
// stdout default)
func NewServer(port int, logger core.Logger) *Server {
	if logger == nil {
		logger = renderer.NewDefaultLogger()
	}
	return &Server{
		port:   port,
		logger: logger,
		render: renderer.NewRender(logger),
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene        string `json:"scene"`        // Path to a YAML scene file
	AntiAliasing *bool  `json:"antiAliasing"` // Optional override
	MaxDepth     int    `json:"maxDepth"`     // Optional override, >= 1
}

// TileEvent is one SSE payload for a completed tile
type TileEvent struct {
	X         int    `json:"x"` // Tile origin in pixels
	Y         int    `json:"y"`
	ImageData string `json:"imageData"` // Base64 encoded PNG of the tile
	Progress  uint16 `json:"progress"`  // [0, 65535]
}

// CompleteEvent closes an SSE render stream
type CompleteEvent struct {
	Progress  uint16 `json:"progress"`
	TimeMs    uint32 `json:"timeMs"`
	Cancelled bool   `json:"cancelled"`
}

// Start registers the routes and blocks serving HTTP
func (s *Server) Start() error {
	e := echo.New()
	e.HideBanner = true

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/stats", s.handleStats)
	e.GET("/api/progress", s.handleProgress)
	e.GET("/api/image", s.handleImage)
	e.POST("/api/render", s.handleRender)
	e.POST("/api/cancel", s.handleCancel)
	e.Static("/", "static")

	return e.Start(fmt.Sprintf(":%d", s.port))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleStats reports host load so clients can show render capacity
func (s *Server) handleStats(c echo.Context) error {
	stats := map[string]interface{}{"cores": runtime.NumCPU()}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats["cpuPercent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memUsedPercent"] = vm.UsedPercent
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleProgress(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"progress": s.render.Progress(),
		"timeMs":   s.render.TimeMs(),
	})
}

func (s *Server) handleCancel(c echo.Context) error {
	s.render.Cancel()
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelling"})
}

// handleImage serves the CPU bitmap in its current state as PNG
func (s *Server) handleImage(c echo.Context) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.render.Image()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// handleRender starts a render and streams tile completions as SSE until
// the render finishes, is cancelled, or the client disconnects
func (s *Server) handleRender(c echo.Context) error {
	var req RenderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request: "+err.Error())
	}
	if req.Scene == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing scene path")
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return echo.NewHTTPError(http.StatusConflict, "a render is already running")
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	sceneData, err := loaders.LoadScene(req.Scene)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AntiAliasing != nil {
		sceneData.Settings.AntiAliasing = *req.AntiAliasing
	}
	if req.MaxDepth >= 1 {
		sceneData.Settings.MaxDepth = req.MaxDepth
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	// Tile updates arrive from worker goroutines; a full channel drops
	// updates rather than stalling the render
	tileChan := make(chan renderer.TileUpdate, 64)
	s.render.OnTile = func(update renderer.TileUpdate) {
		select {
		case tileChan <- update:
		default:
		}
	}
	defer func() { s.render.OnTile = nil }()

	s.render.Start(sceneData)

	done := make(chan struct{})
	go func() {
		s.render.Wait()
		close(done)
	}()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			s.render.Cancel()
			<-done
			return nil
		case update := <-tileChan:
			if err := s.sendTileEvent(c, update); err != nil {
				s.render.Cancel()
				<-done
				return nil
			}
		case <-done:
			// Drain tiles that finished after the last select round
			for len(tileChan) > 0 {
				if err := s.sendTileEvent(c, <-tileChan); err != nil {
					return nil
				}
			}
			return s.sendSSE(c, "complete", CompleteEvent{
				Progress:  s.render.Progress(),
				TimeMs:    s.render.TimeMs(),
				Cancelled: s.render.Cancelled(),
			})
		}
	}
}

func (s *Server) sendTileEvent(c echo.Context, update renderer.TileUpdate) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, update.Pixels); err != nil {
		return err
	}
	return s.sendSSE(c, "tile", TileEvent{
		X:         update.X,
		Y:         update.Y,
		ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Progress:  s.render.Progress(),
	})
}

func (s *Server) sendSSE(c echo.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}
