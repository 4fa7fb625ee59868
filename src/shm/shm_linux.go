//go:build linux

// Package shm allocates anonymous shared memory that can be handed to the
// display server as a file descriptor.
package shm

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Pool is a memfd-backed mapping shared with the compositor.
type Pool struct {
	fd   int
	data []byte
}

// Create allocates size bytes of shared memory.
func Create(name string, size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid shm size %d", size)
	}

	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate %d bytes: %w", size, err)
	}

	// The pool never shrinks; sealing it stops the compositor from seeing a
	// truncated file.
	_, _ = unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_SEAL)

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}

	return &Pool{fd: fd, data: data}, nil
}

// Fd returns the file descriptor to pass to wl_shm.create_pool.
func (p *Pool) Fd() int { return p.fd }

// Data returns the mapped memory.
func (p *Pool) Data() []byte { return p.data }

// Size returns the mapping length in bytes.
func (p *Pool) Size() int { return len(p.data) }

// Close unmaps the memory and closes the descriptor. It is safe to call
// more than once.
func (p *Pool) Close() error {
	var errs []error
	if p.data != nil {
		if err := unix.Munmap(p.data); err != nil {
			errs = append(errs, fmt.Errorf("munmap: %w", err))
		}
		p.data = nil
	}
	if p.fd >= 0 {
		if err := unix.Close(p.fd); err != nil {
			errs = append(errs, fmt.Errorf("close memfd: %w", err))
		}
		p.fd = -1
	}
	return errors.Join(errs...)
}
