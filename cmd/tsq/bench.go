package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"

	"github.com/julienperriercornet/turbosqueeze/pipeline"
)

// benchCmd round-trips the given file through turbosqueeze and through a
// handful of established codecs, none of which can read turbosqueeze's own
// wire format, so the only honest way to exercise them here is as a
// comparison baseline rather than an interoperable decoder.
type benchCmd struct {
	Input string `arg:"" help:"Input file to benchmark against."`
}

type benchResult struct {
	name            string
	compressedSize  int
	compressNanos   int64
	decompressNanos int64
}

func (cmd *benchCmd) Run(logger *zap.Logger, workers int) error {
	data, err := os.ReadFile(cmd.Input)
	if err != nil {
		return err
	}

	results := []benchResult{
		benchTurboSqueeze(data, workers, logger),
		benchLZ4(data),
		benchSnappy(data),
		benchBrotli(data),
		benchS2(data),
	}

	fmt.Printf("%-14s %12s %10s %14s %14s\n", "codec", "bytes", "ratio", "compress", "decompress")
	for _, r := range results {
		ratio := 0.0
		if r.compressedSize > 0 {
			ratio = float64(len(data)) / float64(r.compressedSize)
		}
		fmt.Printf("%-14s %12d %10.2f %14s %14s\n", r.name, r.compressedSize, ratio,
			time.Duration(r.compressNanos), time.Duration(r.decompressNanos))
	}
	return nil
}

func benchTurboSqueeze(data []byte, workers int, logger *zap.Logger) benchResult {
	name := "turbosqueeze"

	ctx := pipeline.NewContext(workers, pipeline.WithLogger(logger))
	var compressed bytes.Buffer
	start := time.Now()
	err := ctx.CompressSync(bytes.NewReader(data), int64(len(data)), &compressed, 2, true)
	compressNanos := time.Since(start).Nanoseconds()
	ctx.Close()
	if err != nil {
		return benchResult{name: name}
	}

	ctx2 := pipeline.NewContext(workers, pipeline.WithLogger(logger))
	var out bytes.Buffer
	start = time.Now()
	err = ctx2.DecompressSync(bytes.NewReader(compressed.Bytes()), &out)
	decompressNanos := time.Since(start).Nanoseconds()
	ctx2.Close()
	if err != nil {
		return benchResult{name: name}
	}

	return benchResult{name: name, compressedSize: compressed.Len(), compressNanos: compressNanos, decompressNanos: decompressNanos}
}

func benchLZ4(data []byte) benchResult {
	var compressed bytes.Buffer
	start := time.Now()
	w := lz4.NewWriter(&compressed)
	w.Write(data)
	w.Close()
	compressNanos := time.Since(start).Nanoseconds()

	start = time.Now()
	r := lz4.NewReader(bytes.NewReader(compressed.Bytes()))
	io.Copy(io.Discard, r)
	decompressNanos := time.Since(start).Nanoseconds()

	return benchResult{name: "lz4", compressedSize: compressed.Len(), compressNanos: compressNanos, decompressNanos: decompressNanos}
}

func benchSnappy(data []byte) benchResult {
	start := time.Now()
	compressed := snappy.Encode(nil, data)
	compressNanos := time.Since(start).Nanoseconds()

	start = time.Now()
	snappy.Decode(nil, compressed)
	decompressNanos := time.Since(start).Nanoseconds()

	return benchResult{name: "snappy", compressedSize: len(compressed), compressNanos: compressNanos, decompressNanos: decompressNanos}
}

func benchBrotli(data []byte) benchResult {
	var compressed bytes.Buffer
	start := time.Now()
	w := brotli.NewWriter(&compressed)
	w.Write(data)
	w.Close()
	compressNanos := time.Since(start).Nanoseconds()

	start = time.Now()
	r := brotli.NewReader(bytes.NewReader(compressed.Bytes()))
	io.Copy(io.Discard, r)
	decompressNanos := time.Since(start).Nanoseconds()

	return benchResult{name: "brotli", compressedSize: compressed.Len(), compressNanos: compressNanos, decompressNanos: decompressNanos}
}

func benchS2(data []byte) benchResult {
	var compressed bytes.Buffer
	start := time.Now()
	w := s2.NewWriter(&compressed)
	w.Write(data)
	w.Close()
	compressNanos := time.Since(start).Nanoseconds()

	start = time.Now()
	r := s2.NewReader(bytes.NewReader(compressed.Bytes()))
	io.Copy(io.Discard, r)
	decompressNanos := time.Since(start).Nanoseconds()

	return benchResult{name: "s2", compressedSize: compressed.Len(), compressNanos: compressNanos, decompressNanos: decompressNanos}
}
