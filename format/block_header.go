package format

import (
	"encoding/binary"
	"fmt"

	"github.com/dot5enko/i2c-kv-store/bits"
	"github.com/dot5enko/i2c-kv-store/checksum"
)

// BlockHeaderSize is sizeof(BlockHeader): status(1) + current_offset(2) +
// checksum(1).
const BlockHeaderSize = 1 + 2 + 1

// BlockHeader sits at the base of every block.
type BlockHeader struct {
	Status        BlockStatus
	CurrentOffset uint16
}

// Encode writes the header, computing the CRC over exactly
// {status, low(current_offset), high(current_offset)} as §4.4/§9 require.
func (h BlockHeader) Encode() []byte {
	buf := make([]byte, BlockHeaderSize)
	bw := bits.NewEncodeBuffer(buf, binary.LittleEndian)

	bw.WriteByte(uint8(h.Status))
	bw.PutUint16(h.CurrentOffset)

	crc := checksum.CRC8(bw.Bytes())
	bw.WriteByte(crc)

	return bw.Bytes()
}

// DecodeBlockHeader validates the CRC before returning meaningful fields.
func DecodeBlockHeader(raw []byte) (BlockHeader, error) {
	if len(raw) < BlockHeaderSize {
		return BlockHeader{}, fmt.Errorf("format: block header short read (%d bytes)", len(raw))
	}

	br := bits.NewReader(raw[:BlockHeaderSize], binary.LittleEndian)

	var h BlockHeader
	status := br.MustReadU8()
	h.Status = BlockStatus(status)
	h.CurrentOffset = br.MustReadU16()
	gotCRC := br.MustReadU8()

	wantCRC := checksum.CRC8(raw[:BlockHeaderSize-1])
	if gotCRC != wantCRC {
		return BlockHeader{}, fmt.Errorf("format: block header checksum mismatch")
	}

	return h, nil
}

// Usable reports whether readers and GC may treat this block's entry log as
// meaningful: ACTIVE or VALID blocks only.
func (h BlockHeader) Usable() bool {
	return h.Status == StatusActive || h.Status == StatusValid
}

// RawBlockHeaderIsBlank reports whether raw is a never-written, fully
// erased block header (every byte reads as the device's 0xFF idle state).
// GC relies on this to tell a genuinely blank block apart from one whose
// header merely failed to decode because a crash corrupted it mid-write;
// only the former is safe to pick as a compaction target.
func RawBlockHeaderIsBlank(raw []byte) bool {
	if len(raw) < BlockHeaderSize {
		return false
	}
	for _, b := range raw[:BlockHeaderSize] {
		if b != 0xFF {
			return false
		}
	}
	return true
}
