// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zip"
)

// Relocate reads a JAR from src, relocates configured name prefixes in entry
// paths, class structures, manifests, and service descriptors, and writes the
// resulting archive to out. Entries are processed exactly once in archive
// order; a run either completes entirely or returns an error, in which case
// the bytes written so far must be discarded.
func Relocate(ctx context.Context, out io.Writer, src io.ReaderAt, size int64, opts Options) (*Result, error) {
	startedAt := time.Now()

	if out == nil {
		return nil, ErrNilWriter
	}
	if src == nil {
		return nil, ErrNilReader
	}
	if ctx == nil {
		ctx = context.Background()
	}

	zr, err := zip.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArchive, err)
	}

	mapper := opts.Mapper
	if mapper == nil {
		mapper, err = NewRemapper(opts.Rules)
		if err != nil {
			return nil, fmt.Errorf("compile relocation rules: %w", err)
		}
	}

	rewriter := opts.Rewriter
	if rewriter == nil {
		rewriter = NewClassRewriter()
	}

	zw := zip.NewWriter(out)
	task := newRelocationTask(zw, mapper, rewriter, opts)

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := task.processEntry(f); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	task.result.Duration = time.Since(startedAt)
	return task.result, nil
}

// RelocateFile relocates the JAR at srcPath into a new archive at dstPath.
func RelocateFile(ctx context.Context, dstPath, srcPath string, opts Options) (*Result, error) {
	in, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open source JAR: %w", err)
	}
	defer func() { _ = in.Close() }()

	fi, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat source JAR: %w", err)
	}

	f, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create output JAR: %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	res, err := Relocate(ctx, f, in, fi.Size(), opts)
	if err != nil {
		return nil, err
	}

	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync output JAR: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close output JAR: %w", err)
	}
	f = nil

	return res, nil
}
