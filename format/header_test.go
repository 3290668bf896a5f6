package format

import "testing"

func TestGlobalHeaderRoundTrip(t *testing.T) {
	h := GlobalHeader{
		Magic:            MagicByte,
		Version:          CurrentFormatVersion,
		TotalBlocks:      252,
		ActiveBlockIndex: 3,
	}

	raw := h.Encode()
	if len(raw) != GlobalHeaderSize {
		t.Fatalf("encoded size = %d, want %d", len(raw), GlobalHeaderSize)
	}

	got, err := DecodeGlobalHeader(raw)
	if err != nil {
		t.Fatalf("DecodeGlobalHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestGlobalHeaderRejectsBadMagic(t *testing.T) {
	h := GlobalHeader{Magic: 0xFF, Version: CurrentFormatVersion}
	raw := h.Encode()

	if _, err := DecodeGlobalHeader(raw); err == nil {
		t.Fatalf("expected an error for bad magic")
	}
}

func TestGlobalHeaderRejectsCorruptChecksum(t *testing.T) {
	h := GlobalHeader{Magic: MagicByte, Version: CurrentFormatVersion, TotalBlocks: 10, ActiveBlockIndex: 2}
	raw := h.Encode()
	raw[len(raw)-1] ^= 0xFF

	if _, err := DecodeGlobalHeader(raw); err == nil {
		t.Fatalf("expected an error for a corrupted checksum byte")
	}
}

func TestGlobalHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeGlobalHeader([]byte{0xA5, 0x01}); err == nil {
		t.Fatalf("expected an error for a short buffer")
	}
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	h := BlockHeader{Status: StatusActive, CurrentOffset: 42}
	raw := h.Encode()

	if len(raw) != BlockHeaderSize {
		t.Fatalf("encoded size = %d, want %d", len(raw), BlockHeaderSize)
	}

	got, err := DecodeBlockHeader(raw)
	if err != nil {
		t.Fatalf("DecodeBlockHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestBlockHeaderRejectsCorruptChecksum(t *testing.T) {
	h := BlockHeader{Status: StatusValid, CurrentOffset: 10}
	raw := h.Encode()
	raw[len(raw)-1] ^= 0x01

	if _, err := DecodeBlockHeader(raw); err == nil {
		t.Fatalf("expected an error for a corrupted checksum byte")
	}
}

func TestBlockHeaderUsable(t *testing.T) {
	cases := map[BlockStatus]bool{
		StatusEmpty:   false,
		StatusActive:  true,
		StatusValid:   true,
		StatusInvalid: false,
	}
	for status, want := range cases {
		h := BlockHeader{Status: status}
		if got := h.Usable(); got != want {
			t.Errorf("Usable() for status %v = %v, want %v", status, got, want)
		}
	}
}

func TestEntryHeaderRoundTrip(t *testing.T) {
	h := EntryHeader{
		Status:      EntryLive,
		DataType:    Int,
		KeyHash:     9996,
		KeyLength:   8,
		ValueLength: 4,
	}

	raw := h.Encode()
	if len(raw) != EntryHeaderSize {
		t.Fatalf("encoded size = %d, want %d", len(raw), EntryHeaderSize)
	}

	got, err := DecodeEntryHeader(raw)
	if err != nil {
		t.Fatalf("DecodeEntryHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}

	if got.RecordSize() != EntryHeaderSize+8+4 {
		t.Fatalf("RecordSize() = %d, want %d", got.RecordSize(), EntryHeaderSize+8+4)
	}
}
