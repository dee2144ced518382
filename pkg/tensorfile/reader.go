package tensorfile

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps a tensor file read-only and validates it.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned tensor must be closed to release any mapping.
func Open(path string) (*Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < fixedHeaderSize || size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size64), unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		t, parseErr := parse(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return t, nil
	}

	return OpenReaderAt(f, size64)
}

// OpenReaderAt loads and validates a tensor file from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*Tensor, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parse(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Close releases any mmap backing. Data must not be used afterwards.
func (t *Tensor) Close() error {
	if t == nil {
		return nil
	}
	var err error
	if t.mmapped && t.raw != nil {
		err = unix.Munmap(t.raw)
	}
	t.raw = nil
	t.data = nil
	t.mmapped = false
	return err
}
