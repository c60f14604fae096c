// Package shred 多次覆写后删除文件
package shred

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"io/fs"
	"os"

	"confutils-worker/services/errs"
	"confutils-worker/services/logging"
)

const (
	randomPasses = 3
	blockSize    = 4096
)

// File 3 遍随机数据加 1 遍零覆写，每遍之后落盘，最后删除
func File(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return errs.Invalid("file not found")
	}
	if err != nil {
		return errs.Wrap(errs.Generic, err, "cannot stat file")
	}
	if info.IsDir() {
		return errs.Invalid("path is a directory")
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return errs.Wrap(errs.PermissionDenied, err, "cannot open file")
		}
		return errs.Wrap(errs.Generic, err, "cannot open file")
	}

	size := info.Size()
	for pass := 0; pass <= randomPasses; pass++ {
		if ctx.Err() != nil {
			_ = f.Close()
			return errs.Cancelled("secure delete")
		}
		src := io.Reader(rand.Reader)
		if pass == randomPasses {
			src = zeroReader{}
		}
		if err = overwrite(f, src, size); err != nil {
			_ = f.Close()
			return errs.Wrap(errs.Generic, err, "overwrite pass %d failed", pass+1)
		}
	}
	if err = f.Close(); err != nil {
		return errs.Wrap(errs.Generic, err, "cannot close file")
	}
	if err = os.Remove(path); err != nil {
		return errs.Wrap(errs.Generic, err, "cannot remove file")
	}

	logging.Context(ctx).Infow("file shredded", "path", path, "bytes", size)
	return nil
}

func overwrite(f *os.File, src io.Reader, size int64) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	buf := make([]byte, blockSize)
	for remaining := size; remaining > 0; {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(src, buf[:n]); err != nil {
			return err
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return f.Sync()
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
