package pipeline

import "errors"

// The error taxonomy a Job can fail with. A job's completion callback
// receives only a success flag, and CompressSync and DecompressSync report
// any failed block as ErrIOError; the other values are either returned
// directly at admission or carried with a failed block through the
// pipeline.
var (
	// ErrMalformedHeader means a block's length prefix in the container
	// could not be read or declares a length above block.OutputSize. A bad
	// file header is reported with the container package's own error.
	ErrMalformedHeader = errors.New("pipeline: malformed header")

	// ErrTruncatedInput means the source ended before a declared block
	// length was satisfied.
	ErrTruncatedInput = errors.New("pipeline: truncated input")

	// ErrIOError is what CompressSync and DecompressSync return when any
	// block of the job failed, and what a worker reports for a block that
	// arrived with neither data nor an error.
	ErrIOError = errors.New("pipeline: I/O error")

	// ErrAllocationFailure is returned when a block or job cannot be
	// admitted because the context has already been closed.
	ErrAllocationFailure = errors.New("pipeline: allocation failure")

	// ErrInvalidArgument means the caller passed a job configuration
	// this package cannot act on (e.g. a negative compression level).
	ErrInvalidArgument = errors.New("pipeline: invalid argument")
)
