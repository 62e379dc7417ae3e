package photosheet

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/alnah/go-photosheet/internal/pipeline"
)

// Option configures a Converter.
type Option func(*Converter)

// WithTranscoder replaces the default ImagingTranscoder.
func WithTranscoder(t Transcoder) Option {
	return func(c *Converter) {
		c.transcoder = t
	}
}

// WithLister replaces the default DirLister.
func WithLister(l Lister) Option {
	return func(c *Converter) {
		c.lister = l
	}
}

// WithEngine selects a document engine by name (see Engines).
func WithEngine(name string) Option {
	return func(c *Converter) {
		c.engine = name
	}
}

// WithWriterFactory replaces the engine's writer factory. It takes
// precedence over WithEngine.
func WithWriterFactory(f WriterFactory) Option {
	return func(c *Converter) {
		c.factory = f
	}
}

// WithBatchSize sets how many images are resized before being handed to the
// assembler. Panics if n < 1.
func WithBatchSize(n int) Option {
	if n < 1 {
		panic("photosheet: WithBatchSize must be positive")
	}
	return func(c *Converter) {
		c.batchSize = n
	}
}

// WithMaxInFlight lowers the number of concurrent transcodes.
// The value is clamped by ResolveMaxInFlight.
func WithMaxInFlight(n int) Option {
	return func(c *Converter) {
		c.maxInFlight = ResolveMaxInFlight(n)
	}
}

// WithPixelScale sets the number of pixels rendered per point of cell size.
// 1 matches the cell size in points. Panics if scale is not positive.
func WithPixelScale(scale float64) Option {
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		panic("photosheet: WithPixelScale must be positive")
	}
	return func(c *Converter) {
		c.scale = scale
	}
}

// WithOnPlace registers an observer called after every placement, from the
// assembling goroutine.
func WithOnPlace(fn func(Placement)) Option {
	return func(c *Converter) {
		c.onPlace = fn
	}
}

// Converter turns image directories into PDF sheets. A Converter may run
// several jobs at once; they share one transcode limiter.
type Converter struct {
	transcoder  Transcoder
	lister      Lister
	engine      string
	factory     WriterFactory
	batchSize   int
	maxInFlight int
	scale       float64
	onPlace     func(Placement)

	limiter *semaphore.Weighted
}

// NewConverter creates a Converter with default configuration.
// Returns an error if the engine is unknown.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		lister:      DirLister{},
		engine:      DefaultEngine,
		batchSize:   DefaultBatchSize,
		maxInFlight: MaxInFlight,
		scale:       1,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transcoder == nil {
		t, err := NewImagingTranscoder(DefaultTranscodeOptions())
		if err != nil {
			return nil, err
		}
		c.transcoder = t
	}

	if c.factory == nil {
		f, err := WriterFor(c.engine)
		if err != nil {
			return nil, err
		}
		c.factory = f
	}

	c.limiter = pipeline.NewLimiter(c.maxInFlight)
	return c, nil
}

// Result summarizes a finished job.
type Result struct {
	Images   int
	Pages    int
	Grid     Grid
	Duration time.Duration
}

// Job is a running conversion.
type Job struct {
	done   chan struct{}
	cancel context.CancelFunc
	result *Result
	err    error
}

// Done is closed when the job has finished, failed or timed out.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job ends and returns its result.
func (j *Job) Wait() (*Result, error) {
	<-j.done
	return j.result, j.err
}

// Cancel aborts the job. The document is not finalized.
func (j *Job) Cancel() {
	j.cancel()
}

// Convert runs a job to completion.
func (c *Converter) Convert(ctx context.Context, in Input) (*Result, error) {
	job, err := c.Start(ctx, in)
	if err != nil {
		return nil, err
	}
	return job.Wait()
}

// Start validates the input, lists the source directory and starts resizing
// and assembling in the background. Input errors are returned before any
// image is processed.
//
// When the timeout elapses first, the job fails with ErrTimeout and the
// output is closed if it implements io.Closer. Wait returns only after the
// assembler has stopped, so nothing writes to the output afterwards.
func (c *Converter) Start(ctx context.Context, in Input) (*Job, error) {
	p, err := in.resolve()
	if err != nil {
		return nil, err
	}

	paths, err := c.lister.List(ctx, p.sourceDir, p.filter)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, p.sourceDir)
	}

	width, height := c.pixelSize(p.grid.Cell)

	// The deadline reaches the writer so a Chrome render stops with the job.
	timeoutErr := fmt.Errorf("%w after %s", ErrTimeout, p.timeout)
	runCtx, cancel := context.WithTimeoutCause(ctx, p.timeout, timeoutErr)
	writer, err := c.factory(runCtx, p.output, p.grid.Page)
	if err != nil {
		cancel()
		return nil, err
	}

	pipe := pipeline.New(c.transcoder, width, height,
		pipeline.WithBatchSize(c.batchSize),
		pipeline.WithLimiter(c.limiter),
	)
	asm := NewAssembler(writer, p.grid, c.onPlace)

	job := &Job{done: make(chan struct{}), cancel: cancel}
	started := time.Now()

	go func() {
		defer close(job.done)
		defer cancel()

		assembled := make(chan error, 1)
		stream := pipe.Run(runCtx, paths)
		go func() { assembled <- asm.Assemble(runCtx, stream) }()

		timedOut := func() bool { return context.Cause(runCtx) == timeoutErr }

		var err error
		select {
		case err = <-assembled:
		case <-runCtx.Done():
			if timedOut() {
				// Unblocks a sink stuck in Write.
				closeSink(p.output)
			}
			err = <-assembled
		}

		if err != nil {
			if timedOut() {
				closeSink(p.output)
				err = timeoutErr
			}
			job.err = err
			return
		}
		stats := asm.Stats()
		job.result = &Result{
			Images:   stats.Images,
			Pages:    stats.Pages,
			Grid:     p.grid,
			Duration: time.Since(started),
		}
	}()

	return job, nil
}

// pixelSize converts a cell size in points to the transcode target.
func (c *Converter) pixelSize(cell Size) (width, height int) {
	width = max(1, int(math.Round(cell.Width*c.scale)))
	height = max(1, int(math.Round(cell.Height*c.scale)))
	return width, height
}

// closeSink may run twice for one job; sinks must tolerate a second Close.
func closeSink(out io.Writer) {
	if cl, ok := out.(io.Closer); ok {
		_ = cl.Close()
	}
}
