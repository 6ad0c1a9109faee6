// Package preview serves generated tiles over HTTP and WebSocket.
//
// The server owns the consumer side of a scheduler: a ticker calls Poll once
// per tick, so every completion callback runs on the tick goroutine.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/tilegen/internal/export"
	"github.com/Faultbox/tilegen/internal/falloff"
	"github.com/Faultbox/tilegen/internal/logger"
	"github.com/Faultbox/tilegen/internal/noise"
	"github.com/Faultbox/tilegen/internal/scheduler"
	"github.com/Faultbox/tilegen/internal/terrain"
)

const writeTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Listen   string
	TickRate time.Duration
	LOD      int // used when a client omits "lod"
}

// Server streams tiles and meshes to preview clients.
type Server struct {
	sched    *scheduler.Scheduler
	opts     Options
	log      *zap.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu      sync.Mutex
	clients map[*client]struct{}
}

// client is one WebSocket connection. Writes come from the tick goroutine and
// the read loop, so they are serialized by mu.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// New creates a server delivering results from sched.
func New(sched *scheduler.Scheduler, opts Options) *Server {
	if opts.TickRate <= 0 {
		opts.TickRate = 50 * time.Millisecond
	}

	s := &Server{
		sched: sched,
		opts:  opts,
		log:   logger.Named("preview"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local preview tool
			},
		},
		mux:     http.NewServeMux(),
		clients: make(map[*client]struct{}),
	}

	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/tile.png", s.handleTileImage)
	s.mux.HandleFunc("/stats", s.handleStats)
	return s
}

// Handler returns the HTTP handler with all preview routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves HTTP on the configured address and ticks the scheduler until ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server listening", zap.String("addr", s.opts.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			cancel()
		}
		close(errCh)
	}()

	loopErr := s.Loop(ctx)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("shutdown failed", zap.Error(err))
	}
	s.closeClients()

	if err := <-errCh; err != nil {
		return fmt.Errorf("serving %s: %w", s.opts.Listen, err)
	}
	if errors.Is(loopErr, context.Canceled) {
		return nil
	}
	return loopErr
}

// Loop polls the scheduler once per tick until ctx is done.
func (s *Server) Loop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.TickRate)
	defer ticker.Stop()

	delivered := 0
	lastReport := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			delivered += s.sched.Poll()

			if time.Since(lastReport) > 10*time.Second {
				if delivered > 0 {
					st := s.sched.Stats()
					s.log.Debug("tick report",
						zap.Int("delivered", delivered),
						zap.Int("in_flight", st.InFlight),
						zap.Int("pending", st.Pending),
					)
				}
				delivered = 0
				lastReport = time.Now()
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	// Requests still queued when the connection drops are discarded.
	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		conn.Close()
	}()

	s.log.Debug("client connected", zap.String("remote", r.RemoteAddr))

	for {
		var req request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("client read ended", zap.Error(err))
			}
			return
		}
		if err := s.requestTile(ctx, c, req); err != nil {
			c.send(errorMessage{Type: "error", Error: err.Error()})
		}
	}
}

// requestTile schedules the tile and, once it is delivered, its mesh.
func (s *Server) requestTile(ctx context.Context, c *client, req request) error {
	lod := s.opts.LOD
	if req.LOD != nil {
		lod = *req.LOD
	}
	size := s.sched.Builder().Settings().Size
	if err := terrain.CheckLOD(size, size, lod); err != nil {
		return err
	}

	center := noise.Offset{X: req.X, Y: req.Y}
	return s.sched.RequestHeightField(ctx, center, func(tile *terrain.TileData) {
		if err := c.send(newTileMessage(tile)); err != nil {
			s.log.Debug("tile send failed", zap.Error(err))
			return
		}
		err := s.sched.RequestMesh(ctx, tile.Heights, lod, func(mesh *terrain.Mesh) {
			if err := c.send(newMeshMessage(tile, mesh)); err != nil {
				s.log.Debug("mesh send failed", zap.Error(err))
			}
		})
		if err != nil {
			c.send(errorMessage{Type: "error", Error: err.Error()})
		}
	})
}

func (s *Server) handleTileImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := parseCoord(q.Get("x"))
	y, errY := parseCoord(q.Get("y"))
	if err := errors.Join(errX, errY); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode := q.Get("mode")
	if mode == "" {
		mode = "color"
	}

	settings := s.sched.Builder().Settings()
	if mode == "falloff" {
		shape, params := settings.Falloff.Shape, settings.Falloff.Params
		writePNG(w, export.HeightImage(falloff.Shared().Get(settings.Size, shape, params)))
		return
	}
	if mode != "height" && mode != "color" {
		http.Error(w, fmt.Sprintf("unknown mode %q", mode), http.StatusBadRequest)
		return
	}

	done := make(chan *terrain.TileData, 1)
	err := s.sched.RequestHeightField(r.Context(), noise.Offset{X: x, Y: y}, func(tile *terrain.TileData) {
		done <- tile
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrSchedulerBusy) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	select {
	case <-r.Context().Done():
		return
	case tile := <-done:
		if mode == "height" {
			writePNG(w, export.HeightImage(tile.Heights))
		} else {
			writePNG(w, export.ColorImage(tile.Colors))
		}
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.sched.Stats()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "dispatched %d\ncompleted %d\ndelivered %d\ncancelled %d\nrejected %d\nin_flight %d\npending %d\nclients %d\n",
		st.Dispatched, st.Completed, st.Delivered, st.Cancelled, st.Rejected, st.InFlight, st.Pending, s.ClientCount())
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}

func parseCoord(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", v)
	}
	return f, nil
}

func writePNG(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	if err := export.Encode(w, img, export.FormatPNG); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
