package tensorfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samcharles93/cosine/internal/dtype"
)

// Encode writes a complete tensor file to w. data must hold the
// little-endian payload for shape.
func Encode(w io.Writer, dt dtype.DType, shape []int, data []byte) error {
	hdr, err := encodeHeader(dt, shape)
	if err != nil {
		return err
	}
	if want := elements(shape) * dt.Size(); len(data) != want {
		return fmt.Errorf("tensorfile: payload is %d bytes, shape %v needs %d", len(data), shape, want)
	}
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Write stores a tensor at path. The file is written next to its destination
// and renamed into place once complete.
func Write(path string, dt dtype.DType, shape []int, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriterSize(tmp, 1<<20)
	if err = Encode(bw, dt, shape, data); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
