package store

import (
	"github.com/dot5enko/i2c-kv-store/checksum"
	"github.com/dot5enko/i2c-kv-store/format"
)

// entryRef locates a decoded, still-untouched entry on the device.
type entryRef struct {
	blockIndex int
	entryAddr  uint16 // absolute device address of the EntryHeader
	valueAddr  uint16 // absolute device address of the first value byte
	header     format.EntryHeader
}

// find implements the entry scanner of spec.md §4.5: scan blocks in
// ascending index, walk each usable block's append log end to end, and
// return the first live entry whose hash and key bytes match.
func (s *Store) find(key string) (entryRef, bool) {
	targetHash := checksum.KeyHash16(key)
	targetLen := len(key)

	for i := 0; i < s.geo.TotalBlocks; i++ {
		bh, err := s.readBlockHeader(i)
		if err != nil || !bh.Usable() {
			continue
		}

		base := s.geo.BlockBase(i)
		walker := uint16(format.BlockHeaderSize)

		for walker < bh.CurrentOffset {
			addr := base + walker

			raw, err := s.cfg.Bus.Read(addr, format.EntryHeaderSize)
			if err != nil {
				break
			}
			eh, err := format.DecodeEntryHeader(raw)
			if err != nil {
				break
			}

			recordSize := eh.RecordSize()
			valueAddr := addr + uint16(format.EntryHeaderSize) + uint16(eh.KeyLength)

			if eh.Status == format.EntryLive &&
				eh.KeyHash == targetHash &&
				int(eh.KeyLength) == targetLen {

				keyBytes, err := s.cfg.Bus.Read(addr+uint16(format.EntryHeaderSize), int(eh.KeyLength))
				if err == nil && string(keyBytes) == key {
					return entryRef{
						blockIndex: i,
						entryAddr:  addr,
						valueAddr:  valueAddr,
						header:     eh,
					}, true
				}
			}

			walker += uint16(recordSize)
		}
	}

	return entryRef{}, false
}
