// Package pipeline runs compression and decompression jobs across a fixed
// pool of worker goroutines, preserving each job's block order on output
// without any explicit reorder buffer: a single reader goroutine dispatches
// blocks round robin across the workers, and a single writer goroutine
// drains them in the same round-robin order.
package pipeline

import (
	"io"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/julienperriercornet/turbosqueeze/block"
	"github.com/julienperriercornet/turbosqueeze/container"
)

const queueDepth = 64

// maxLevel is the highest compression level Compress accepts: a bucket
// cache of 2^10 candidate positions is already far past the point of
// diminishing returns for a 256KiB block.
const maxLevel = 10

// worker holds one goroutine's input and output rings.
type worker struct {
	in  chan blockJob
	out chan blockResult
}

// Context owns a worker pool and the single reader/writer goroutine pair
// that feeds and drains it. Jobs admitted through Compress or Decompress
// are processed in strict global block order on output, even though
// individual blocks are encoded or decoded concurrently. A Context must be
// closed with Close once it is no longer needed.
type Context struct {
	numWorkers int
	logger     *zap.Logger

	queue   chan *Job
	workers []worker

	admitMu   sync.Mutex
	nextJobID uint64
	nextBlock uint64

	jobsWG sync.WaitGroup

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// NewContext builds and starts a Context with numWorkers worker goroutines.
// numWorkers <= 0 means "one per available CPU", mirroring how the
// reference pipeline sizes itself off hardware_concurrency.
func NewContext(numWorkers int, opts ...Option) *Context {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	c := &Context{
		numWorkers: numWorkers,
		logger:     zap.NewNop(),
		queue:      make(chan *Job, queueDepth),
		workers:    make([]worker, numWorkers),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := range c.workers {
		c.workers[i] = worker{in: newRing[blockJob](), out: newRing[blockResult]()}
	}

	c.wg.Add(1 + numWorkers + 1)
	go c.runReader()
	for i := 0; i < numWorkers; i++ {
		go c.runWorker(i)
	}
	go c.runWriter()

	return c
}

// Close waits for every admitted job to finish, then shuts down the worker
// pool. It is safe to call more than once; only the first call does
// anything. Jobs admitted after Close has started shutting down fail with
// ErrAllocationFailure.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		c.jobsWG.Wait()
		close(c.done)
	})
	c.wg.Wait()
}

// enqueue assigns job its start_block under the same lock that pushes it
// onto the admission queue, so a job's block range is always reserved in
// exactly the order jobs are actually dispatched — the two must never
// disagree, or the reader's per-block routing and the writer's global
// round robin would desynchronize.
func (c *Context) enqueue(job *Job, nBlocks uint64) error {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	select {
	case <-c.done:
		return ErrAllocationFailure
	default:
	}

	job.startBlock = c.nextBlock
	c.nextBlock += nBlocks
	c.jobsWG.Add(1)

	select {
	case c.queue <- job:
		return nil
	case <-c.done:
		c.jobsWG.Done()
		return ErrAllocationFailure
	}
}

func (c *Context) newJobID() uint64 {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()
	c.nextJobID++
	return c.nextJobID
}

// Compress admits a compression job reading sourceSize bytes from source,
// at the given level and extensions setting, writing a framed container
// stream to sink. It returns the job's id immediately; onCompletion (if
// non-nil) fires once, after the job's last block has been written.
func (c *Context) Compress(source io.Reader, sourceSize int64, sink io.Writer, level int, ext bool, onProgress ProgressFunc, onCompletion CompletionFunc) (uint64, error) {
	if level < 0 || level > maxLevel {
		return 0, ErrInvalidArgument
	}
	if sourceSize < 0 {
		return 0, ErrInvalidArgument
	}

	nBlocks := uint64(sourceSize) / uint64(block.BlockSize)
	if uint64(sourceSize)%uint64(block.BlockSize) != 0 {
		nBlocks++
	}

	id := c.newJobID()
	if err := container.WriteFileHeader(sink, uint32(nBlocks), uint64(sourceSize)); err != nil {
		return id, err
	}
	if nBlocks == 0 {
		if onCompletion != nil {
			onCompletion(id, true)
		}
		return id, nil
	}

	job := &Job{
		id:           id,
		level:        level,
		extensions:   ext,
		nBlocks:      nBlocks,
		totalSize:    sourceSize,
		source:       source,
		sink:         sink,
		onCompletion: onCompletion,
		onProgress:   onProgress,
	}
	if err := c.enqueue(job, nBlocks); err != nil {
		return id, err
	}
	return id, nil
}

// Decompress admits a decompression job reading a framed container stream
// from source and writing the reconstructed bytes to sink. It reads the
// container's file header synchronously before admitting the job, since
// the block count must be known up front.
func (c *Context) Decompress(source io.Reader, sink io.Writer, onProgress ProgressFunc, onCompletion CompletionFunc) (uint64, error) {
	numBlocks, totalSize, err := container.ReadFileHeader(source)
	if err != nil {
		return 0, err
	}
	nBlocks := uint64(numBlocks)

	id := c.newJobID()
	if nBlocks == 0 {
		if onCompletion != nil {
			onCompletion(id, true)
		}
		return id, nil
	}

	job := &Job{
		id:           id,
		decompress:   true,
		nBlocks:      nBlocks,
		totalSize:    int64(totalSize),
		source:       source,
		sink:         sink,
		onCompletion: onCompletion,
		onProgress:   onProgress,
	}
	if err := c.enqueue(job, nBlocks); err != nil {
		return id, err
	}
	return id, nil
}

// CompressSync runs Compress and blocks until the job completes, returning
// an error if any block failed.
func (c *Context) CompressSync(source io.Reader, sourceSize int64, sink io.Writer, level int, ext bool) error {
	done := make(chan bool, 1)
	_, err := c.Compress(source, sourceSize, sink, level, ext, nil, func(_ uint64, success bool) {
		done <- success
	})
	if err != nil {
		return err
	}
	if !<-done {
		return ErrIOError
	}
	return nil
}

// DecompressSync runs Decompress and blocks until the job completes,
// returning an error if any block failed.
func (c *Context) DecompressSync(source io.Reader, sink io.Writer) error {
	done := make(chan bool, 1)
	_, err := c.Decompress(source, sink, nil, func(_ uint64, success bool) {
		done <- success
	})
	if err != nil {
		return err
	}
	if !<-done {
		return ErrIOError
	}
	return nil
}
