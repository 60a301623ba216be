package renderer

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
	"github.com/fw03/go-scene-raytracer/pkg/scene"
)

// ProgressMax is the progress value reported after a completed render
const ProgressMax = 65535

// Epsilon is the intersection tolerance handed to the raytracer
const Epsilon = 1e-5

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// TileUpdate carries one finished tile to the display collaborator
type TileUpdate struct {
	X, Y   int         // Tile origin in pixels
	Pixels *image.RGBA // The tile's pixel buffer
}

// Render owns the output buffers and the coordination state of one
// rendering job at a time. Starting a new job resets progress, time and
// the buffers; a Render value can be reused across jobs.
type Render struct {
	// OnTile, when set, receives every completed tile. It is called from
	// worker goroutines; the display collaborator is responsible for
	// dispatching to its own thread.
	OnTile func(TileUpdate)

	logger   core.Logger
	progress atomic.Uint32 // Current progress in [0, ProgressMax]
	cancel   atomic.Bool
	timeMs   atomic.Uint32 // Wall time of the last completed render

	mu  sync.Mutex
	img *image.RGBA // CPU bitmap for export

	wg sync.WaitGroup
}

// NewRender creates a renderer front end with the given logger (nil for
// the stdout default)
func NewRender(logger core.Logger) *Render {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Render{
		logger: logger,
		img:    image.NewRGBA(image.Rect(0, 0, 0, 0)),
	}
}

// Progress returns the current render progress in [0, ProgressMax].
// It only decreases when a new job starts.
func (r *Render) Progress() uint16 {
	return uint16(r.progress.Load())
}

// TimeMs returns the wall-clock duration of the last completed render in
// milliseconds, or zero while a render is in flight
func (r *Render) TimeMs() uint32 {
	return r.timeMs.Load()
}

// Cancel asks the workers to stop picking new tiles. Tiles already
// rendered stay in the buffers.
func (r *Render) Cancel() {
	r.cancel.Store(true)
}

// Cancelled reports whether the current job has been cancelled
func (r *Render) Cancelled() bool {
	return r.cancel.Load()
}

// Image returns a copy of the CPU bitmap in its current state
func (r *Render) Image() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := image.NewRGBA(r.img.Rect)
	copy(clone.Pix, r.img.Pix)
	return clone
}

// Start clones the scene, resets the coordination state, resizes the
// output buffers and spawns the scheduler goroutine. It returns
// immediately; the caller polls Progress or blocks on Wait. The previous
// job must have finished before Start is called again.
func (r *Render) Start(s *scene.Scene) {
	width, height := s.Camera.Width, s.Camera.Height
	r.logger.Printf("rendering scene at %dx%d\n", width, height)

	r.cancel.Store(false)
	r.progress.Store(0)
	r.timeMs.Store(0)
	r.mu.Lock()
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.mu.Unlock()

	job := &renderJob{
		render: r,
		scene:  s.Clone(),
		width:  width,
		height: height,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		job.run()
	}()
}

// Wait blocks until the current job has finished or acknowledged
// cancellation
func (r *Render) Wait() {
	r.wg.Wait()
}

// storeProgress advances the progress atomic, never letting it go
// backwards under concurrent tile completions
func (r *Render) storeProgress(v uint32) {
	for {
		cur := r.progress.Load()
		if v <= cur || r.progress.CompareAndSwap(cur, v) {
			return
		}
	}
}

// renderJob is the state of one scheduled render, isolated from the
// Render front end so a stale job cannot touch a newer one's buffers
type renderJob struct {
	render *Render
	scene  *scene.Scene
	width  int
	height int
}

func (j *renderJob) run() {
	start := time.Now()

	// Tile size tracks the resolution at a fixed 20x20 grid. Remainder
	// pixels on the right/bottom edge stay black when the resolution is
	// not a multiple of 20.
	// TODO: enlarge the last tile row/column to cover the remainder.
	blockW := max(1, j.width/20)
	blockH := max(1, j.height/20)
	tilesX := j.width / blockW
	tilesY := j.height / blockH
	totalTiles := tilesX * tilesY

	raytracer := NewRaytracer(j.scene, Epsilon, j.scene.Settings.MaxDepth)

	tiles := make(chan image.Point, totalTiles)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			tiles <- image.Pt(tx, ty)
		}
	}
	close(tiles)

	var completed atomic.Uint32
	numWorkers := min(runtime.NumCPU(), totalTiles)

	var workers sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for t := range tiles {
				// Cancellation is polled at tile boundaries only
				if j.render.cancel.Load() {
					return
				}
				j.renderTile(raytracer, t.X*blockW, t.Y*blockH, blockW, blockH)

				// Computed in floating point so huge tile counts cannot
				// overflow the numerator
				done := completed.Add(1)
				j.render.storeProgress(uint32(math32.Round(float32(done) / float32(totalTiles) * ProgressMax)))
			}
		}()
	}
	workers.Wait()

	if j.render.cancel.Load() {
		j.render.logger.Printf("rendering cancelled after %v\n", time.Since(start))
		return
	}

	// The final progress store happens after every tile commit on this
	// goroutine, so an observer seeing ProgressMax sees a complete image
	j.render.storeProgress(ProgressMax)
	elapsed := uint32(time.Since(start).Milliseconds())
	if elapsed == 0 {
		elapsed = 1 // sub-millisecond renders still report completion
	}
	j.render.timeMs.Store(elapsed)
	j.render.logger.Printf("rendering finished in %v\n", time.Since(start))
}

// renderTile shades one tile into a fresh buffer, hands it to the display
// callback and commits it to the CPU bitmap under the mutex
func (j *renderJob) renderTile(rt *Raytracer, x0, y0, blockW, blockH int) {
	tile := image.NewRGBA(image.Rect(0, 0, blockW, blockH))

	for y := 0; y < blockH; y++ {
		for x := 0; x < blockW; x++ {
			tile.SetRGBA(x, y, colorToRGBA(rt.Render(x0+x, y0+y, j.width, j.height)))
		}
	}

	if j.render.OnTile != nil {
		j.render.OnTile(TileUpdate{X: x0, Y: y0, Pixels: tile})
	}

	j.render.mu.Lock()
	for y := 0; y < blockH; y++ {
		for x := 0; x < blockW; x++ {
			j.render.img.SetRGBA(x0+x, y0+y, tile.RGBAAt(x, y))
		}
	}
	j.render.mu.Unlock()
}

// colorToRGBA converts a shading result to an 8-bit display pixel
func colorToRGBA(c core.Color) color.RGBA {
	return color.RGBA{
		R: uint8(mgl32.Clamp(c.X(), 0, 1) * 255),
		G: uint8(mgl32.Clamp(c.Y(), 0, 1) * 255),
		B: uint8(mgl32.Clamp(c.Z(), 0, 1) * 255),
		A: 255,
	}
}
