package format

import (
	"encoding/binary"
	"fmt"

	"github.com/dot5enko/i2c-kv-store/bits"
	"github.com/dot5enko/i2c-kv-store/checksum"
)

// GlobalHeaderSize is sizeof(GlobalHeader): magic(1) + version(1) +
// total_blocks(2) + active_block_index(2) + checksum(1).
const GlobalHeaderSize = 1 + 1 + 2 + 2 + 1

// GlobalHeader is the fixed header at device offset 0.
type GlobalHeader struct {
	Magic            uint8
	Version          uint8
	TotalBlocks      uint16
	ActiveBlockIndex uint16
}

// Encode writes the header into a GlobalHeaderSize buffer, recomputing the
// checksum over every preceding field.
func (h GlobalHeader) Encode() []byte {
	buf := make([]byte, GlobalHeaderSize)
	bw := bits.NewEncodeBuffer(buf, binary.LittleEndian)

	bw.WriteByte(h.Magic)
	bw.WriteByte(h.Version)
	bw.PutUint16(h.TotalBlocks)
	bw.PutUint16(h.ActiveBlockIndex)

	crc := checksum.CRC8(bw.Bytes())
	bw.WriteByte(crc)

	return bw.Bytes()
}

// DecodeGlobalHeader validates magic, version, and CRC before returning
// meaningful fields; callers must check the error and must not trust the
// zero value on failure.
func DecodeGlobalHeader(raw []byte) (GlobalHeader, error) {
	if len(raw) < GlobalHeaderSize {
		return GlobalHeader{}, fmt.Errorf("format: global header short read (%d bytes)", len(raw))
	}

	br := bits.NewReader(raw[:GlobalHeaderSize], binary.LittleEndian)

	var h GlobalHeader
	h.Magic = br.MustReadU8()
	h.Version = br.MustReadU8()
	h.TotalBlocks = br.MustReadU16()
	h.ActiveBlockIndex = br.MustReadU16()
	gotCRC := br.MustReadU8()

	if h.Magic != MagicByte {
		return GlobalHeader{}, fmt.Errorf("format: bad global header magic 0x%02x", h.Magic)
	}
	if h.Version != CurrentFormatVersion {
		return GlobalHeader{}, fmt.Errorf("format: unsupported global header version 0x%02x", h.Version)
	}

	wantCRC := checksum.CRC8(raw[:GlobalHeaderSize-1])
	if gotCRC != wantCRC {
		return GlobalHeader{}, fmt.Errorf("format: global header checksum mismatch")
	}

	return h, nil
}
