package main

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/julienperriercornet/turbosqueeze/pipeline"
)

func (cmd *compressCmd) Run(logger *zap.Logger, workers int) error {
	in, err := os.Open(cmd.Input)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "stat input")
	}

	out, err := os.Create(cmd.Output)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer out.Close()

	ctx := pipeline.NewContext(workers, pipeline.WithLogger(logger))
	defer ctx.Close()

	if err := ctx.CompressSync(in, info.Size(), out, cmd.Level, !cmd.NoExt); err != nil {
		return errors.Wrap(err, "compress")
	}
	return nil
}

func (cmd *decompressCmd) Run(logger *zap.Logger, workers int) error {
	in, err := os.Open(cmd.Input)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer in.Close()

	out, err := os.Create(cmd.Output)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer out.Close()

	ctx := pipeline.NewContext(workers, pipeline.WithLogger(logger))
	defer ctx.Close()

	if err := ctx.DecompressSync(in, out); err != nil {
		return errors.Wrap(err, "decompress")
	}
	return nil
}
