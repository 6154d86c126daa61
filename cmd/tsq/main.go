// Command tsq is the reference driver for the turbosqueeze pipeline: a
// thin CLI over pipeline.Context, kept out of the core codec/pipeline
// packages entirely.
package main

import (
	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

type cli struct {
	Compress   compressCmd   `cmd:"" name:"c" help:"Compress a file."`
	Decompress decompressCmd `cmd:"" name:"d" help:"Decompress a file."`
	Bench      benchCmd      `cmd:"" name:"b" help:"Run the internal benchmark."`

	Workers int  `help:"Worker goroutines (0 = one per CPU)." default:"0"`
	Verbose bool `help:"Enable debug logging." short:"v"`
}

func (c cli) logger() *zap.Logger {
	if !c.Verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

type compressCmd struct {
	Input  string `arg:"" help:"Input file."`
	Output string `arg:"" help:"Output file."`
	NoExt  bool   `help:"Disable 32/48/64-byte extension match codes." name:"no-ext"`
	Level  int    `help:"Match-search effort level." default:"2"`
}

type decompressCmd struct {
	Input  string `arg:"" help:"Input file."`
	Output string `arg:"" help:"Output file."`
}

func main() {
	var c cli
	kctx := kong.Parse(&c)
	kctx.Bind(c.logger(), c.Workers)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
