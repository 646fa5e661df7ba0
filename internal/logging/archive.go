package logging

import (
	"io"
	"os"

	"github.com/pierrec/lz4"
)

// ArchiveIteration compresses a completed iteration's log directory's file
// with lz4 and removes the original, so long fuzzing runs do not accumulate
// unbounded plaintext CSV on disk. Destination gets a ".lz4" suffix.
func ArchiveIteration(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dstPath := path + ".lz4"
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	w := lz4.NewWriter(dst)
	if _, err := io.Copy(w, src); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	if err := os.Remove(path); err != nil {
		return "", err
	}
	return dstPath, nil
}
