package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Batch and admission limits.
const (
	// DefaultBatchSize is the number of images emitted together.
	DefaultBatchSize = 10

	// DefaultMaxInFlight caps concurrent transcode tasks to bound memory
	// and open file descriptors.
	DefaultMaxInFlight = 10
)

// ErrTranscode wraps any failure to decode, resize or encode a source image.
var ErrTranscode = errors.New("image transcoding failed")

// Transcoder turns a source image into an encoded buffer of exactly
// width x height pixels.
type Transcoder interface {
	Transcode(ctx context.Context, path string, width, height int) ([]byte, error)
}

// TranscoderFunc adapts a plain function to Transcoder.
type TranscoderFunc func(ctx context.Context, path string, width, height int) ([]byte, error)

// Transcode calls f.
func (f TranscoderFunc) Transcode(ctx context.Context, path string, width, height int) ([]byte, error) {
	return f(ctx, path, width, height)
}

// Image is one encoded image with its position in the source listing.
type Image struct {
	Index int
	Path  string
	Data  []byte
}

// Batch groups up to BatchSize consecutive images.
type Batch struct {
	Index  int
	Images []Image
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBatchSize sets how many images are grouped per batch.
// Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithLimiter shares an admission limiter between pipelines.
// A nil limiter is ignored.
func WithLimiter(l *semaphore.Weighted) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.limiter = l
		}
	}
}

// NewLimiter returns an admission limiter for n concurrent tasks.
func NewLimiter(n int) *semaphore.Weighted {
	if n < 1 {
		n = 1
	}
	return semaphore.NewWeighted(int64(n))
}

// Pipeline resizes images to a fixed pixel size.
type Pipeline struct {
	transcoder Transcoder
	width      int
	height     int
	batchSize  int
	limiter    *semaphore.Weighted
}

// New creates a pipeline producing width x height images.
func New(t Transcoder, width, height int, opts ...Option) *Pipeline {
	p := &Pipeline{
		transcoder: t,
		width:      width,
		height:     height,
		batchSize:  DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.limiter == nil {
		p.limiter = NewLimiter(DefaultMaxInFlight)
	}
	return p
}

// BatchSize returns the configured batch size.
func (p *Pipeline) BatchSize() int {
	return p.batchSize
}

// Stream is a running pipeline.
type Stream struct {
	batches chan Batch
	done    chan struct{}
	err     error
}

// Batches yields batches in source order. The channel is closed once,
// after the last batch or after a failure; call Wait to tell them apart.
func (s *Stream) Batches() <-chan Batch {
	return s.batches
}

// Done is closed when the producer has stopped.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the producer has stopped and returns its error.
func (s *Stream) Wait() error {
	<-s.done
	return s.err
}

// Run starts resizing paths in the background and returns immediately.
// Cancelling ctx stops admission of new tasks; tasks already running are
// left to finish and their results are dropped.
func (p *Pipeline) Run(ctx context.Context, paths []string) *Stream {
	s := &Stream{
		// One batch of slack lets resizing run ahead of the consumer
		// without buffering the whole run.
		batches: make(chan Batch, 1),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.batches)
		s.err = p.produce(ctx, paths, s.batches)
	}()

	return s
}

func (p *Pipeline) produce(ctx context.Context, paths []string, out chan<- Batch) error {
	for idx, start := 0, 0; start < len(paths); idx, start = idx+1, start+p.batchSize {
		end := min(start+p.batchSize, len(paths))

		images, err := p.transcodeBatch(ctx, paths[start:end], start)
		if err != nil {
			return err
		}

		select {
		case out <- Batch{Index: idx, Images: images}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// transcodeBatch runs one task per path and joins them all.
// offset is the source index of paths[0].
func (p *Pipeline) transcodeBatch(ctx context.Context, paths []string, offset int) ([]Image, error) {
	g, gctx := errgroup.WithContext(ctx)
	images := make([]Image, len(paths))

	var admitErr error
	for i, path := range paths {
		if admitErr = p.limiter.Acquire(gctx, 1); admitErr != nil {
			break
		}

		g.Go(func() error {
			defer p.limiter.Release(1)

			data, err := p.transcoder.Transcode(gctx, path, p.width, p.height)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return fmt.Errorf("%w: %s: %v", ErrTranscode, path, err)
			}
			images[i] = Image{Index: offset + i, Path: path, Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if admitErr != nil {
		return nil, admitErr
	}
	return images, nil
}
