package transport

import (
	"bytes"
	"testing"
)

func TestSimulatedReadFillsUnwrittenRegionWithFF(t *testing.T) {
	s := NewSimulated(16, FRAM)

	got, err := s.Read(0, 16)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := bytes.Repeat([]byte{0xFF}, 16)
	if !bytes.Equal(got, want) {
		t.Fatalf("fresh device not 0xFF-filled: %v", got)
	}
}

func TestSimulatedWriteThenRead(t *testing.T) {
	s := NewSimulated(16, FRAM)

	if err := s.Write(4, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := s.Read(4, 3)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("Read after Write = %v, want [1 2 3]", got)
	}
}

func TestSimulatedReadPastEndIsShortFilledWithFF(t *testing.T) {
	s := NewSimulated(4, FRAM)

	got, err := s.Read(2, 8)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("len(got) = %d, want 8", len(got))
	}
	for i := 2; i < 8; i++ {
		if got[i] != 0xFF {
			t.Fatalf("byte %d = 0x%02X, want 0xFF (out of range fill)", i, got[i])
		}
	}
}

func TestSimulatedFailAfter(t *testing.T) {
	s := NewSimulated(16, FRAM)
	s.FailAfter(2)

	if err := s.WriteByte(0, 1); err != nil {
		t.Fatalf("first write should succeed: %v", err)
	}
	if err := s.WriteByte(1, 2); err == nil {
		t.Fatalf("second write should fail")
	}

	got, _ := s.Read(1, 1)
	if got[0] != 0xFF {
		t.Fatalf("failed write must not mutate backing array, got 0x%02X", got[0])
	}
}

func TestSimulatedTornWrite(t *testing.T) {
	s := NewSimulated(16, FRAM)
	s.TornWriteAfter(1, 2)

	err := s.Write(0, []byte{1, 2, 3, 4})
	if err == nil {
		t.Fatalf("expected the torn write to report an error")
	}

	got, _ := s.Read(0, 4)
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("first 2 bytes should have landed, got %v", got)
	}
	if got[2] != 0xFF || got[3] != 0xFF {
		t.Fatalf("bytes after the torn point must remain untouched, got %v", got)
	}
}

func TestSimulatedSnapshotRestore(t *testing.T) {
	s := NewSimulated(8, FRAM)
	s.Write(0, []byte{9, 9, 9})

	snap := s.Snapshot()

	s.Write(0, []byte{1, 1, 1})
	s.Restore(snap)

	got, _ := s.Read(0, 3)
	if !bytes.Equal(got, []byte{9, 9, 9}) {
		t.Fatalf("Restore did not bring back the snapshot, got %v", got)
	}
}
