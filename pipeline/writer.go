package pipeline

import (
	"go.uber.org/zap"

	"github.com/julienperriercornet/turbosqueeze/container"
)

// runWriter consumes exactly one global, ever-increasing block index,
// taking each result from workers[i%numWorkers].out in turn. Because every
// worker's own outputs are already monotonically increasing in that same
// global index, this round robin reassembles strict block order without
// any explicit reorder buffer.
func (c *Context) runWriter() {
	defer c.wg.Done()
	var i uint64
	for {
		w := &c.workers[i%uint64(c.numWorkers)]
		select {
		case res, ok := <-w.out:
			if !ok {
				return
			}
			c.handleResult(res)
			i++
		case <-c.done:
			return
		}
	}
}

func (c *Context) handleResult(res blockResult) {
	job := res.job

	if res.err != nil {
		job.errorOccurred.Store(true)
		c.logger.Warn("block failed", zap.Uint64("job", job.id), zap.Uint64("block", res.index), zap.Error(res.err))
	} else if !job.errorOccurred.Load() {
		if err := c.writeResult(job, res); err != nil {
			job.errorOccurred.Store(true)
			c.logger.Warn("sink write failed", zap.Uint64("job", job.id), zap.Uint64("block", res.index), zap.Error(err))
		}
	}

	written := job.written.Add(1)
	if job.onProgress != nil {
		job.onProgress(job.id, float64(written)/float64(job.nBlocks))
	}
	if written == job.nBlocks {
		success := !job.errorOccurred.Load()
		if job.onCompletion != nil {
			job.onCompletion(job.id, success)
		}
		c.jobsWG.Done()
	}
}

func (c *Context) writeResult(job *Job, res blockResult) error {
	if job.decompress {
		_, err := job.sink.Write(res.data)
		return err
	}
	if err := container.WriteBlockHeader(job.sink, uint32(len(res.data)), job.extensions); err != nil {
		return err
	}
	_, err := job.sink.Write(res.data)
	return err
}
