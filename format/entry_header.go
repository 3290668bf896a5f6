package format

import (
	"encoding/binary"
	"fmt"

	"github.com/dot5enko/i2c-kv-store/bits"
)

// EntryHeaderSize is sizeof(EntryHeader): status(1) + data_type(1) +
// key_hash(2) + key_length(1) + value_length(2).
const EntryHeaderSize = 1 + 1 + 2 + 1 + 2

// EntryHeader precedes every key/value record inside a block's append log.
// It carries no checksum of its own (Design Notes §9, open question b) —
// integrity of the region it lives in is established by the enclosing
// block header's checksum and by current_offset bounding the scan.
type EntryHeader struct {
	Status      EntryStatus
	DataType    DataType
	KeyHash     uint16
	KeyLength   uint8
	ValueLength uint16
}

// RecordSize is the total on-disk footprint of this entry including its
// key and value payload.
func (h EntryHeader) RecordSize() int {
	return EntryHeaderSize + int(h.KeyLength) + int(h.ValueLength)
}

func (h EntryHeader) Encode() []byte {
	buf := make([]byte, EntryHeaderSize)
	bw := bits.NewEncodeBuffer(buf, binary.LittleEndian)

	bw.WriteByte(uint8(h.Status))
	bw.WriteByte(uint8(h.DataType))
	bw.PutUint16(h.KeyHash)
	bw.WriteByte(h.KeyLength)
	bw.PutUint16(h.ValueLength)

	return bw.Bytes()
}

func DecodeEntryHeader(raw []byte) (EntryHeader, error) {
	if len(raw) < EntryHeaderSize {
		return EntryHeader{}, fmt.Errorf("format: entry header short read (%d bytes)", len(raw))
	}

	br := bits.NewReader(raw[:EntryHeaderSize], binary.LittleEndian)

	var h EntryHeader
	h.Status = EntryStatus(br.MustReadU8())
	h.DataType = DataType(br.MustReadU8())
	h.KeyHash = br.MustReadU16()
	h.KeyLength = br.MustReadU8()
	h.ValueLength = br.MustReadU16()

	return h, nil
}
