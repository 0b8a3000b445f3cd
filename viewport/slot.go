package viewport

import "sync/atomic"

// FrameSlot hands framebuffer addresses from the update loop to the
// vertical sync interrupt. It holds two machine words: the address the
// loop wants on screen (pending) and the address the display scans out
// (current). The loop only writes pending, the interrupt only writes
// current.
//
// There is no queue. A Request made before the interrupt consumed the
// previous one replaces it, so a late interrupt skips a frame instead of
// falling behind.
type FrameSlot struct {
	pending atomic.Uintptr
	current atomic.Uintptr
}

// Reset sets both words to addr. Only used before the interrupt is armed.
func (s *FrameSlot) Reset(addr uintptr) {
	s.pending.Store(addr)
	s.current.Store(addr)
}

// Request asks for addr to be shown at the next vertical sync.
func (s *FrameSlot) Request(addr uintptr) {
	s.pending.Store(addr)
}

// Apply is called from the interrupt. If a different address is pending
// it becomes current and Apply returns it with true.
func (s *FrameSlot) Apply() (uintptr, bool) {
	p := s.pending.Load()
	if p == s.current.Load() {
		return 0, false
	}
	s.current.Store(p)
	return p, true
}

// Current returns the address on screen.
func (s *FrameSlot) Current() uintptr { return s.current.Load() }

// Pending returns the most recently requested address.
func (s *FrameSlot) Pending() uintptr { return s.pending.Load() }

// Busy reports whether a request waits for the interrupt.
func (s *FrameSlot) Busy() bool {
	return s.pending.Load() != s.current.Load()
}
