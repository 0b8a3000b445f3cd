// Package sdram maps framebuffer bus addresses to byte slices.
//
// Boards hand the viewport plain addresses (the front buffer at the start
// of SDRAM, the back buffer right after it). On the target these are real
// memory and Physical maps them directly; on a host a Bank stands in for
// the memory region so the same addresses work in tests and previews.
package sdram

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrUnmapped is returned for addresses outside every mapped region.
var ErrUnmapped = errors.New("sdram: address not mapped")

// Bank is host memory posing as a memory region at a fixed bus address.
type Bank struct {
	base uintptr
	mem  []byte
}

// NewBank allocates size bytes visible at [base, base+size).
func NewBank(base uintptr, size int) *Bank {
	return &Bank{base: base, mem: make([]byte, size)}
}

// Base returns the first bus address of the bank.
func (b *Bank) Base() uintptr { return b.base }

// Size returns the bank size in bytes.
func (b *Bank) Size() int { return len(b.mem) }

// Bytes returns the whole bank.
func (b *Bank) Bytes() []byte { return b.mem }

// Contains reports whether [addr, addr+size) lies inside the bank.
func (b *Bank) Contains(addr uintptr, size int) bool {
	if addr < b.base || size < 0 {
		return false
	}
	off := addr - b.base
	return off <= uintptr(len(b.mem)) && uintptr(size) <= uintptr(len(b.mem))-off
}

// Map returns the bytes at [addr, addr+size).
func (b *Bank) Map(addr uintptr, size int) ([]byte, error) {
	if addr == 0 || !b.Contains(addr, size) {
		return nil, fmt.Errorf("map %#x+%d: %w", addr, size, ErrUnmapped)
	}
	off := int(addr - b.base)
	return b.mem[off : off+size : off+size], nil
}

// Banks maps addresses over several regions, e.g. SDRAM and internal SRAM.
type Banks []*Bank

// Map returns the bytes at [addr, addr+size) from the bank containing them.
func (bs Banks) Map(addr uintptr, size int) ([]byte, error) {
	for _, b := range bs {
		if b.Contains(addr, size) {
			return b.Map(addr, size)
		}
	}
	return nil, fmt.Errorf("map %#x+%d: %w", addr, size, ErrUnmapped)
}

// Physical maps bus addresses one to one. It is only meaningful on bare
// metal targets where the address is real, uncached-or-managed memory.
type Physical struct{}

// Map returns the memory at addr.
func (Physical) Map(addr uintptr, size int) ([]byte, error) {
	if addr == 0 || size <= 0 {
		return nil, fmt.Errorf("map %#x+%d: %w", addr, size, ErrUnmapped)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil //nolint:govet // bus address
}
