package transport

import (
	"fmt"
	"sync"
)

// Simulated is an in-process Bus backed by a byte array, used by every
// test and by the demo when no physical bus is present. It can inject two
// kinds of fault for the crash-resilience property test (spec.md §8,
// property 5): a clean failure (the write never reaches the array) and a
// torn write (only a prefix of the buffer lands before failure), both of
// which a real I²C bus can produce on power loss mid-transaction.
type Simulated struct {
	mu   sync.Mutex
	mem  []byte
	kind MemoryKind

	writeCount int

	failAfter int // 0 disables; next write at this count fails cleanly
	tornAfter int // 0 disables; next write at this count is truncated
	tornAt    int // bytes that do land before a torn write fails
}

func NewSimulated(size int, kind MemoryKind) *Simulated {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Simulated{mem: mem, kind: kind}
}

// FailAfter arranges for the n-th write transaction (1-indexed) to return
// an error without mutating the backing array at all.
func (s *Simulated) FailAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = n
}

// TornWriteAfter arranges for the n-th write transaction to apply only its
// first tornAt bytes before returning an error, simulating power loss
// mid-transaction.
func (s *Simulated) TornWriteAfter(n, tornAt int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tornAfter = n
	s.tornAt = tornAt
}

func (s *Simulated) ReadByte(addr uint16) (byte, error) {
	buf, err := s.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (s *Simulated) WriteByte(addr uint16, b byte) error {
	return s.Write(addr, []byte{b})
}

func (s *Simulated) Read(addr uint16, n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, n)
	for i := range out {
		out[i] = 0xFF
	}

	start := int(addr)
	if start >= len(s.mem) {
		return out, nil
	}

	end := start + n
	if end > len(s.mem) {
		end = len(s.mem)
	}

	copy(out, s.mem[start:end])
	return out, nil
}

func (s *Simulated) Write(addr uint16, buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeCount++

	if s.failAfter != 0 && s.writeCount == s.failAfter {
		return fmt.Errorf("transport: simulated write failure at transaction %d", s.writeCount)
	}

	start := int(addr)
	if start+len(buf) > len(s.mem) {
		return fmt.Errorf("transport: write out of range (addr=%d len=%d size=%d)", addr, len(buf), len(s.mem))
	}

	if s.tornAfter != 0 && s.writeCount == s.tornAfter {
		n := s.tornAt
		if n > len(buf) {
			n = len(buf)
		}
		copy(s.mem[start:start+n], buf[:n])
		return fmt.Errorf("transport: simulated torn write at transaction %d (%d of %d bytes landed)", s.writeCount, n, len(buf))
	}

	copy(s.mem[start:start+len(buf)], buf)
	return nil
}

// Size reports the simulated device's total byte capacity.
func (s *Simulated) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mem)
}

// Snapshot returns a copy of the backing array, used by tests to resume a
// fresh Simulated from a crash point without sharing mutable state.
func (s *Simulated) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.mem))
	copy(out, s.mem)
	return out
}

// Restore overwrites the backing array with a previously captured
// Snapshot, emulating a power cycle that preserves the device's
// non-volatile memory.
func (s *Simulated) Restore(snapshot []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.mem, snapshot)
}
