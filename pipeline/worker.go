package pipeline

import (
	"go.uber.org/zap"

	"github.com/julienperriercornet/turbosqueeze/block"
)

// runWorker owns exactly one encoder per distinct compression level it has
// been asked to use, and two scratch buffers (one for encoding, one for
// decoding) reused across every block it touches — nothing here is shared with any other worker
// goroutine, so no locking is needed inside the loop.
func (c *Context) runWorker(id int) {
	defer c.wg.Done()
	w := &c.workers[id]

	encoders := make(map[int]*block.Encoder)
	dst := make([]byte, block.OutputSize)
	decoded := make([]byte, block.OutputSize)

	for {
		select {
		case bj, ok := <-w.in:
			if !ok {
				return
			}
			res := c.processBlock(bj, encoders, dst, decoded)
			select {
			case w.out <- res:
			case <-c.done:
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Context) processBlock(bj blockJob, encoders map[int]*block.Encoder, dst, decoded []byte) blockResult {
	res := blockResult{job: bj.job, index: bj.index}

	if bj.err != nil || bj.data == nil {
		res.err = bj.err
		if res.err == nil {
			res.err = ErrIOError
		}
		return res
	}

	job := bj.job
	if job.decompress {
		n, err := block.DecodeBlock(decoded, bj.data, bj.ext)
		if err != nil {
			c.logger.Debug("block decode failed", zap.Uint64("job", job.id), zap.Uint64("block", bj.index), zap.Error(err))
			res.err = err
			return res
		}
		out := make([]byte, n)
		copy(out, decoded[:n])
		res.data = out
		return res
	}

	enc, ok := encoders[job.level]
	if !ok {
		enc = block.NewEncoder(job.level)
		encoders[job.level] = enc
	}
	enc.SetExtensions(job.extensions)

	n, err := enc.EncodeBlock(dst, bj.data)
	if err != nil {
		c.logger.Debug("block encode failed", zap.Uint64("job", job.id), zap.Uint64("block", bj.index), zap.Error(err))
		res.err = err
		return res
	}
	out := make([]byte, n)
	copy(out, dst[:n])
	res.data = out
	return res
}
