// Package scheduler runs tile and mesh generation on background workers and
// hands finished results back to a single consumer goroutine through Poll.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/tilegen/internal/grid"
	"github.com/Faultbox/tilegen/internal/logger"
	"github.com/Faultbox/tilegen/internal/noise"
	"github.com/Faultbox/tilegen/internal/terrain"
)

var (
	ErrSchedulerClosed = errors.New("scheduler is closed")
	ErrSchedulerBusy   = errors.New("scheduler has too many requests in flight")
	ErrNilCallback     = errors.New("callback must not be nil")
)

// TileFunc receives a finished tile on the goroutine that calls Poll.
type TileFunc func(*terrain.TileData)

// MeshFunc receives a finished mesh on the goroutine that calls Poll.
type MeshFunc func(*terrain.Mesh)

// Options bounds the scheduler's resource use.
type Options struct {
	// Workers is the number of requests computed concurrently.
	Workers int `yaml:"workers"`
	// MaxPending caps requests dispatched but not yet finished computing.
	// Zero means unlimited.
	MaxPending int `yaml:"max_pending"`
}

// DefaultOptions uses one worker per CPU and allows 64 requests in flight.
func DefaultOptions() Options {
	return Options{
		Workers:    runtime.NumCPU(),
		MaxPending: 64,
	}
}

// Stats is a snapshot of the scheduler's counters.
type Stats struct {
	Dispatched int64
	Completed  int64
	Delivered  int64
	Cancelled  int64
	Rejected   int64
	InFlight   int
	Pending    int
}

// Scheduler dispatches generation requests to a bounded set of workers.
//
// Request* methods may be called from any goroutine. Poll is meant to be
// called from one consumer goroutine, once per tick.
type Scheduler struct {
	builder *terrain.Builder
	mesh    terrain.MeshSettings
	opts    Options
	sem     *semaphore.Weighted
	log     *zap.Logger

	mu       sync.Mutex
	closed   bool
	inflight int
	wg       sync.WaitGroup

	tiles  pendingQueue[*terrain.TileData]
	meshes pendingQueue[*terrain.Mesh]

	dispatched atomic.Int64
	completed  atomic.Int64
	delivered  atomic.Int64
	cancelled  atomic.Int64
	rejected   atomic.Int64
}

// New creates a scheduler that builds tiles with builder and extracts meshes
// with mesh.
func New(builder *terrain.Builder, mesh terrain.MeshSettings, opts Options) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxPending < 0 {
		opts.MaxPending = 0
	}
	return &Scheduler{
		builder: builder,
		mesh:    mesh,
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.Workers)),
		log:     logger.Named("scheduler"),
	}
}

// Builder returns the tile builder used by workers.
func (s *Scheduler) Builder() *terrain.Builder {
	return s.builder
}

// MeshSettings returns the settings used for mesh extraction.
func (s *Scheduler) MeshSettings() terrain.MeshSettings {
	return s.mesh
}

// RequestHeightField schedules the tile centered at center. fn runs during a
// later Poll. If ctx is done before a worker picks the request up, the request
// is dropped and fn is never called.
func (s *Scheduler) RequestHeightField(ctx context.Context, center noise.Offset, fn TileFunc) error {
	if fn == nil {
		return ErrNilCallback
	}
	if err := s.admit(); err != nil {
		return err
	}

	go s.run(ctx, "tile", func() {
		start := time.Now()
		tile := s.builder.Build(center)
		s.tiles.push(fn, tile)
		s.log.Debug("tile completed",
			zap.Float64("x", center.X),
			zap.Float64("y", center.Y),
			zap.Duration("took", time.Since(start)),
		)
	})
	return nil
}

// RequestMesh schedules mesh extraction of field at lod. The LOD is checked
// here so an unsupported value never reaches a worker.
func (s *Scheduler) RequestMesh(ctx context.Context, field *grid.Field, lod int, fn MeshFunc) error {
	if fn == nil {
		return ErrNilCallback
	}
	if field == nil {
		return errors.New("height field must not be nil")
	}
	if err := terrain.CheckLOD(field.Width(), field.Height(), lod); err != nil {
		return err
	}
	if err := s.admit(); err != nil {
		return err
	}

	go s.run(ctx, "mesh", func() {
		start := time.Now()
		mesh, err := s.mesh.Extract(field, lod)
		if err != nil {
			s.log.Error("mesh extraction failed", zap.Int("lod", lod), zap.Error(err))
			return
		}
		s.meshes.push(fn, mesh)
		s.log.Debug("mesh completed",
			zap.Int("lod", lod),
			zap.Int("triangles", mesh.TriangleCount()),
			zap.Duration("took", time.Since(start)),
		)
	})
	return nil
}

func (s *Scheduler) admit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSchedulerClosed
	}
	if s.opts.MaxPending > 0 && s.inflight >= s.opts.MaxPending {
		s.rejected.Add(1)
		s.log.Warn("request rejected", zap.Int("in_flight", s.inflight))
		return ErrSchedulerBusy
	}
	s.inflight++
	s.wg.Add(1)
	s.dispatched.Add(1)
	return nil
}

func (s *Scheduler) run(ctx context.Context, kind string, work func()) {
	defer s.finish()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.cancelled.Add(1)
		s.log.Debug("request cancelled", zap.String("kind", kind), zap.Error(err))
		return
	}
	defer s.sem.Release(1)

	if err := ctx.Err(); err != nil {
		s.cancelled.Add(1)
		s.log.Debug("request cancelled", zap.String("kind", kind), zap.Error(err))
		return
	}

	work()
	s.completed.Add(1)
}

func (s *Scheduler) finish() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	s.wg.Done()
}

// Poll delivers every result that was complete when it was called: tiles
// first, then meshes, each in completion order. Results finishing while Poll
// runs are left for the next call. It returns the number of callbacks invoked.
func (s *Scheduler) Poll() int {
	n := 0
	for _, c := range s.tiles.drain() {
		c.deliver(c.result)
		n++
	}
	for _, c := range s.meshes.drain() {
		c.deliver(c.result)
		n++
	}
	if n > 0 {
		s.delivered.Add(int64(n))
	}
	return n
}

// Pending returns the number of completed results waiting for Poll.
func (s *Scheduler) Pending() int {
	return s.tiles.len() + s.meshes.len()
}

// Stats returns a snapshot of the scheduler counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	inflight := s.inflight
	s.mu.Unlock()

	return Stats{
		Dispatched: s.dispatched.Load(),
		Completed:  s.completed.Load(),
		Delivered:  s.delivered.Load(),
		Cancelled:  s.cancelled.Load(),
		Rejected:   s.rejected.Load(),
		InFlight:   inflight,
		Pending:    s.Pending(),
	}
}

// Close stops accepting requests and waits for in-flight work to finish.
// Results already completed remain available to Poll.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()

	st := s.Stats()
	s.log.Info("scheduler closed",
		zap.Int64("dispatched", st.Dispatched),
		zap.Int64("delivered", st.Delivered),
		zap.Int64("cancelled", st.Cancelled),
		zap.Int("pending", st.Pending),
	)
}
