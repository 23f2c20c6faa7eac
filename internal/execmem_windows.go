//go:build windows

package internal

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ExecPage is a page-aligned buffer of anonymous memory that can be
// toggled between writable and executable, backing the compiled HashX
// program function. The zero value is not usable; construct with
// AllocExecPage.
type ExecPage struct {
	addr uintptr
	size int
}

// AllocExecPage reserves size bytes of anonymous memory, initially
// mapped read/write. Call MakeExecutable before running code out of it
// and Free when done.
func AllocExecPage(size int) (*ExecPage, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("internal: VirtualAlloc: %w", err)
	}
	return &ExecPage{addr: addr, size: size}, nil
}

// Bytes returns the page's backing slice for writing generated code.
// Valid only while the page is in its writable (RW) state.
func (p *ExecPage) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p.addr)), p.size)
}

// MakeExecutable flips the page from RW to RX.
func (p *ExecPage) MakeExecutable() error {
	var old uint32
	if err := windows.VirtualProtect(p.addr, uintptr(p.size), windows.PAGE_EXECUTE_READ, &old); err != nil {
		return fmt.Errorf("internal: VirtualProtect rx: %w", err)
	}
	return nil
}

// MakeWritable flips the page back from RX to RW.
func (p *ExecPage) MakeWritable() error {
	var old uint32
	if err := windows.VirtualProtect(p.addr, uintptr(p.size), windows.PAGE_READWRITE, &old); err != nil {
		return fmt.Errorf("internal: VirtualProtect rw: %w", err)
	}
	return nil
}

// Free releases the page's memory.
func (p *ExecPage) Free() error {
	if p.addr == 0 {
		return nil
	}
	err := windows.VirtualFree(p.addr, 0, windows.MEM_RELEASE)
	p.addr = 0
	if err != nil {
		return fmt.Errorf("internal: VirtualFree: %w", err)
	}
	return nil
}
