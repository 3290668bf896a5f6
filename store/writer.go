package store

import (
	"fmt"

	"github.com/dot5enko/i2c-kv-store/checksum"
	"github.com/dot5enko/i2c-kv-store/format"
)

// writeEntry implements the append+invalidate protocol of spec.md §4.6.
func (s *Store) writeEntry(key string, dataType format.DataType, value []byte) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	if len(key) == 0 || len(key) > s.cfg.MaxKeyLength {
		return fmt.Errorf("%w: key length %d exceeds max_key_length %d", ErrConfiguration, len(key), s.cfg.MaxKeyLength)
	}
	if len(value) > s.cfg.MaxValueLength {
		return fmt.Errorf("%w: value length %d exceeds max_value_length %d", ErrConfiguration, len(value), s.cfg.MaxValueLength)
	}

	// Step 2: tombstone any prior live entry for this key with a single
	// byte write, chosen so a crash between this and the append below
	// leaves the key temporarily absent rather than doubly live.
	if ref, ok := s.find(key); ok {
		if err := s.cfg.Bus.WriteByte(ref.entryAddr, byte(format.EntryTombstoned)); err != nil {
			return fmt.Errorf("%w: tombstoning prior entry: %v", ErrTransport, err)
		}
	}

	activeIdx, bh, err := s.activeBlock()
	if err != nil {
		return err
	}

	recordSize := format.EntryHeaderSize + len(key) + len(value)

	if int(bh.CurrentOffset)+recordSize > s.cfg.BlockSize {
		s.log.Info("active block full, running gc", "block", activeIdx, "record_size", recordSize)
		if err := s.gc(); err != nil {
			return err
		}
		activeIdx, bh, err = s.activeBlock()
		if err != nil {
			return err
		}
		if int(bh.CurrentOffset)+recordSize > s.cfg.BlockSize {
			return fmt.Errorf("%w: no block can hold a %d byte record after gc", ErrCapacity, recordSize)
		}
	}

	eh := format.EntryHeader{
		Status:      format.EntryLive,
		DataType:    dataType,
		KeyHash:     checksum.KeyHash16(key),
		KeyLength:   uint8(len(key)),
		ValueLength: uint16(len(value)),
	}

	scratch, id := s.scratch.get()
	defer s.scratch.put(id)

	record := scratch[:0]
	record = append(record, eh.Encode()...)
	record = append(record, key...)
	record = append(record, value...)

	base := s.geo.BlockBase(activeIdx)
	writeAddr := base + bh.CurrentOffset

	if err := s.cfg.Bus.Write(writeAddr, record); err != nil {
		return fmt.Errorf("%w: appending entry: %v", ErrTransport, err)
	}

	bh.CurrentOffset += uint16(recordSize)
	if err := s.writeBlockHeader(activeIdx, bh); err != nil {
		return err
	}

	s.stats.writes.Add(1)
	return nil
}

// activeBlock reads the current active block header, attempting one gc()
// repair pass if it is missing or inconsistent (spec.md §4.6 step 3: "the
// store is not in a writable state; caller should re-initialize" — this
// repairs in place instead of forcing the caller to call Begin again).
func (s *Store) activeBlock() (int, format.BlockHeader, error) {
	idx := int(s.activeBlockIndex)
	bh, err := s.readBlockHeader(idx)
	if err == nil && bh.Status == format.StatusActive {
		return idx, bh, nil
	}

	s.log.Warn("active block header invalid before write, repairing", "block", idx)
	s.stats.repairs.Add(1)
	if gcErr := s.gc(); gcErr != nil {
		return 0, format.BlockHeader{}, gcErr
	}

	idx = int(s.activeBlockIndex)
	bh, err = s.readBlockHeader(idx)
	if err != nil || bh.Status != format.StatusActive {
		return 0, format.BlockHeader{}, fmt.Errorf("%w: no active block after repair", ErrIntegrity)
	}
	return idx, bh, nil
}
