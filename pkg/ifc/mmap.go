package ifc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapping is a read-write MAP_SHARED view of a whole file. Stores
// written through it become visible to the file; close syncs them out
// before unmapping.
type mapping struct {
	data []byte
}

func mapShared(path string) (*mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s read-write: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stating %s: %w", path, err)
	}
	size := stat.Size()
	if size <= 0 || size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%s: cannot map %d bytes: %w", path, size, ErrMalformed)
	}

	// The file descriptor can be closed once the mapping exists; the
	// mapping keeps the file open from the kernel's point of view.
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("memory-mapping %s: %w", path, err)
	}
	return &mapping{data: data}, nil
}

func (m *mapping) close() error {
	if m.data == nil {
		return nil
	}
	syncErr := unix.Msync(m.data, unix.MS_SYNC)
	unmapErr := unix.Munmap(m.data)
	m.data = nil
	if syncErr != nil {
		return fmt.Errorf("flushing mapping: %w", syncErr)
	}
	if unmapErr != nil {
		return fmt.Errorf("unmapping: %w", unmapErr)
	}
	return nil
}
