package pipeline

import (
	"io"

	"github.com/julienperriercornet/turbosqueeze/block"
	"github.com/julienperriercornet/turbosqueeze/container"
)

// blockJob is one block's work item, routed from the reader to worker
// id = index % numWorkers. A nil data with a non-nil err represents a read
// failure the reader could not recover from; it still travels through the
// normal ring so the writer's strictly-ordered consumption never stalls
// waiting on a block that was silently dropped.
type blockJob struct {
	job   *Job
	index uint64
	data  []byte
	ext   bool
	err   error
}

// blockResult is what a worker hands back to its own output ring once it
// has processed (or given up on) a blockJob.
type blockResult struct {
	job   *Job
	index uint64
	data  []byte
	err   error
}

func (c *Context) runReader() {
	defer c.wg.Done()
	for {
		select {
		case job, ok := <-c.queue:
			if !ok {
				return
			}
			c.dispatchJob(job)
		case <-c.done:
			return
		}
	}
}

func (c *Context) dispatchJob(job *Job) {
	if job.decompress {
		c.dispatchDecompress(job)
	} else {
		c.dispatchCompress(job)
	}
}

// dispatchCompress reads job.nBlocks fixed-size chunks (the last one
// possibly short) from job.source and routes each to its worker in order.
func (c *Context) dispatchCompress(job *Job) {
	for n := uint64(0); n < job.nBlocks; n++ {
		idx := job.startBlock + n

		remaining := job.totalSize - int64(n)*block.BlockSize
		toRead := block.BlockSize
		if remaining < int64(toRead) {
			toRead = int(remaining)
		}

		bj := blockJob{job: job, index: idx}
		buf := make([]byte, toRead)
		if _, err := io.ReadFull(job.source, buf); err != nil {
			bj.err = err
		} else {
			bj.data = buf
		}
		c.sendToWorker(idx, bj)
	}
}

// dispatchDecompress reads job.nBlocks length-prefixed compressed blocks
// from job.source (a container stream positioned just past the file
// header) and routes each to its worker in order. Decoded buffers are
// given the decoder's full overshoot slack (block.OutputSize), not just
// the block's declared compressed length.
func (c *Context) dispatchDecompress(job *Job) {
	for n := uint64(0); n < job.nBlocks; n++ {
		idx := job.startBlock + n

		length, ext, err := container.ReadBlockHeader(job.source)
		if err != nil {
			c.sendToWorker(idx, blockJob{job: job, index: idx, err: ErrMalformedHeader})
			c.drainRemaining(job, n+1)
			return
		}
		if int(length) > block.OutputSize {
			c.sendToWorker(idx, blockJob{job: job, index: idx, err: ErrMalformedHeader})
			c.drainRemaining(job, n+1)
			return
		}

		buf := make([]byte, block.OutputSize)
		if _, err := io.ReadFull(job.source, buf[:length]); err != nil {
			c.sendToWorker(idx, blockJob{job: job, index: idx, err: ErrTruncatedInput})
			c.drainRemaining(job, n+1)
			return
		}
		c.sendToWorker(idx, blockJob{job: job, index: idx, data: buf, ext: ext})
	}
}

// drainRemaining pushes error placeholders for every block from index from onward so
// the writer's strictly round-robin consumption never blocks forever after
// the reader has given up on a job mid-stream.
func (c *Context) drainRemaining(job *Job, from uint64) {
	for n := from; n < job.nBlocks; n++ {
		idx := job.startBlock + n
		c.sendToWorker(idx, blockJob{job: job, index: idx, err: ErrTruncatedInput})
	}
}

func (c *Context) sendToWorker(idx uint64, bj blockJob) {
	w := &c.workers[idx%uint64(c.numWorkers)]
	select {
	case w.in <- bj:
	case <-c.done:
	}
}
