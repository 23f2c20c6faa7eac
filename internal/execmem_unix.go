//go:build linux || darwin || freebsd || netbsd || openbsd

package internal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ExecPage is a page-aligned buffer of anonymous memory that can be
// toggled between writable and executable, backing the compiled HashX
// program function. The zero value is not usable; construct with
// AllocExecPage.
type ExecPage struct {
	mem []byte
}

// AllocExecPage reserves size bytes of anonymous memory, initially
// mapped read/write. Call MakeExecutable before running code out of it
// and Free when done.
func AllocExecPage(size int) (*ExecPage, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("internal: mmap: %w", err)
	}
	return &ExecPage{mem: mem}, nil
}

// Bytes returns the page's backing slice for writing generated code.
// Valid only while the page is in its writable (RW) state.
func (p *ExecPage) Bytes() []byte {
	return p.mem
}

// MakeExecutable flips the page from RW to RX. Code must be fully
// written beforehand; most OSes forbid a page from being
// simultaneously writable and executable (W^X).
func (p *ExecPage) MakeExecutable() error {
	if err := unix.Mprotect(p.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("internal: mprotect rx: %w", err)
	}
	return nil
}

// MakeWritable flips the page back from RX to RW, required before
// writing a newly compiled program into a previously-used page.
func (p *ExecPage) MakeWritable() error {
	if err := unix.Mprotect(p.mem, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("internal: mprotect rw: %w", err)
	}
	return nil
}

// Free releases the page's memory.
func (p *ExecPage) Free() error {
	if p.mem == nil {
		return nil
	}
	err := unix.Munmap(p.mem)
	p.mem = nil
	if err != nil {
		return fmt.Errorf("internal: munmap: %w", err)
	}
	return nil
}
