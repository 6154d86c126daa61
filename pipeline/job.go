package pipeline

import (
	"io"
	"sync/atomic"
)

// CompletionFunc is invoked exactly once per job, after its last block has
// been written (or the job has failed), with only the job's id and final
// success flag — never a reference to the Job itself, since the job is
// dropped immediately after this call fires.
type CompletionFunc func(jobID uint64, success bool)

// ProgressFunc is invoked after every block a job writes, with the
// fraction of the job's blocks completed so far.
type ProgressFunc func(jobID uint64, progress float64)

// Job is one compression or decompression request moving through a
// Context's pipeline. Callers never construct one directly; Context.Compress
// and Context.Decompress build and admit it.
type Job struct {
	id         uint64
	decompress bool
	level      int
	extensions bool

	startBlock uint64
	nBlocks    uint64
	totalSize  int64

	source io.Reader
	sink   io.Writer

	onCompletion CompletionFunc
	onProgress   ProgressFunc

	errorOccurred atomic.Bool
	written       atomic.Uint64
}

// ID returns the job's admission-order identifier.
func (j *Job) ID() uint64 { return j.id }
