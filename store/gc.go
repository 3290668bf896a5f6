package store

import (
	"fmt"

	"github.com/dot5enko/i2c-kv-store/format"
)

// gc implements the garbage collector / wear-leveler of spec.md §4.7.
//
// It resolves Design Notes §9 open question (a) by deferring the target
// block's promotion to ACTIVE until every live entry has been copied: the
// target's on-device header is written exactly once, at the very end,
// with its final current_offset already in place. Until that single
// write lands the target still reads as EMPTY, so a crash mid-copy never
// leaves two blocks that both look referenced by the active index — the
// device simply still points at the (still-VALID or still-ACTIVE) old
// block and a repeat Begin/gc retries the same target.
//
// The old active block is not demoted to VALID up front. Usable() treats
// ACTIVE and VALID identically for reading, so it is picked up by the
// same source loop as every other live block below. Its header is not
// touched there either: exactly one block is ever Usable between gc()
// runs, so erasing it as soon as its entries are copied — before the
// target's own header write has landed — would leave a window where
// nothing on the device is Usable at all. A crash or transport failure
// in that window would strand every live entry: the copy already sitting
// in the target is unreachable (the target still reads as EMPTY until
// its header write), and the source that used to hold it has just been
// erased. Source erasure is therefore deferred, exactly like the
// target's own promotion, until after the target's header write is
// confirmed durable; only then are the now-redundant sources reclaimed.
func (s *Store) gc() error {
	s.stats.gcRuns.Add(1)

	target := s.pickGCTarget()
	if target == -1 {
		return fmt.Errorf("%w: no empty block available for gc", ErrCapacity)
	}

	writeCursor := uint16(format.BlockHeaderSize)
	targetBase := s.geo.BlockBase(target)
	var sources []int

	// seen guards against copying the same key twice into target. In
	// steady state at most one block is ever Usable, so this never
	// triggers; it exists because deferring source erasure below (see the
	// commit-point comment) can leave a crash-orphaned block still
	// reading as Usable alongside the block the global header actually
	// points to, and both can carry a live copy of the same key. Without
	// this guard a later gc() would write both into one target, breaking
	// the "at most one live entry per key" invariant; ascending block
	// order decides which copy wins, the same tie-break find() already
	// uses.
	seen := make(map[string]struct{})

	// When the store is not initialized (Begin on a device without a valid
	// global header, or Clear), gc formats instead of compacting: no entry
	// is copied, and every block other than the target is erased to EMPTY.
	formatting := !s.initialized

	for j := 0; j < s.geo.TotalBlocks; j++ {
		if j == target {
			continue
		}
		if formatting {
			sources = append(sources, j)
			continue
		}

		bh, err := s.readBlockHeader(j)
		if err != nil || !bh.Usable() {
			continue
		}

		base := s.geo.BlockBase(j)
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

			if eh.Status == format.EntryLive &&
				int(eh.KeyLength) <= s.cfg.MaxKeyLength &&
				int(eh.ValueLength) <= s.cfg.MaxValueLength {

				keyRaw, err := s.cfg.Bus.Read(addr+uint16(format.EntryHeaderSize), int(eh.KeyLength))
				if err != nil {
					break
				}

				if _, dup := seen[string(keyRaw)]; !dup {
					seen[string(keyRaw)] = struct{}{}

					if int(writeCursor)+recordSize > s.cfg.BlockSize {
						return fmt.Errorf("%w: gc cannot fit live entries into one block", ErrCapacity)
					}

					if err := s.copyRecord(addr, targetBase+writeCursor, recordSize); err != nil {
						return err
					}
					writeCursor += uint16(recordSize)
				}
			}

			walker += uint16(recordSize)
		}

		sources = append(sources, j)
	}

	// The target's own header write is the single commit point: once it
	// lands, the compacted copy is reachable on its own and every source
	// block becomes redundant. Nothing above this line may erase a
	// source, because until this write succeeds the target is still
	// unreachable (reads as EMPTY) and a source is the only durable copy
	// of its live entries.
	finalHeader := format.BlockHeader{Status: format.StatusActive, CurrentOffset: writeCursor}
	if err := s.writeBlockHeader(target, finalHeader); err != nil {
		return err
	}

	s.activeBlockIndex = uint16(target)

	for _, j := range sources {
		erased := format.BlockHeader{Status: format.StatusEmpty, CurrentOffset: format.BlockHeaderSize}
		if err := s.writeBlockHeader(j, erased); err != nil {
			// The target is already committed and holds every live entry;
			// a source left un-erased here is merely wasted capacity until
			// the next gc() retries it, never a correctness problem.
			return err
		}
	}

	gh := format.GlobalHeader{
		Magic:            format.MagicByte,
		Version:          format.CurrentFormatVersion,
		TotalBlocks:      uint16(s.geo.TotalBlocks),
		ActiveBlockIndex: uint16(target),
	}
	return s.writeGlobalHeader(gh)
}

// pickGCTarget chooses the block GC compacts into. Exactly one block is
// ever non-Empty between GC runs, so a plain ascending scan for the first
// Empty block always resolves to whichever of the two lowest indices is
// currently free and never advances past it: the block just vacated by
// this same rotation is always the lowest Empty index on the next one,
// so indices beyond 1 would never be reached on an N>2 device. Starting
// the scan just past the outgoing active block instead, and wrapping
// around, still lands on "the" empty block whenever only one exists, but
// advances the target through every index in turn when more than one
// block is free — which is what actually delivers the rotation the
// wear-leveling property in spec.md §8 property 6 describes.
func (s *Store) pickGCTarget() int {
	n := s.geo.TotalBlocks
	start := (int(s.activeBlockIndex) + 1) % n
	for k := 0; k < n; k++ {
		i := (start + k) % n
		if s.isGCTargetCandidate(i) {
			return i
		}
	}
	return -1
}

// isGCTargetCandidate reports whether block i is safe to compact into: it
// must either decode as StatusEmpty, or be a genuinely erased block whose
// header was never written. A block whose header merely failed to decode
// because a crash corrupted it mid-write is excluded — picking it as a
// target would overwrite live entries gc never copied out, since the
// target itself is skipped as a copy source.
func (s *Store) isGCTargetCandidate(i int) bool {
	base := s.geo.BlockBase(i)
	raw, err := s.cfg.Bus.Read(base, format.BlockHeaderSize)
	if err != nil {
		return false
	}

	if bh, decodeErr := format.DecodeBlockHeader(raw); decodeErr == nil {
		return bh.Status == format.StatusEmpty
	}

	return format.RawBlockHeaderIsBlank(raw)
}

// copyRecord moves n bytes byte-exact from src to dst through a pooled
// scratch buffer, avoiding a per-entry allocation during compaction.
func (s *Store) copyRecord(src, dst uint16, n int) error {
	buf, id := s.scratch.get()
	defer s.scratch.put(id)

	got, err := s.cfg.Bus.Read(src, n)
	if err != nil {
		return fmt.Errorf("%w: reading entry during gc: %v", ErrTransport, err)
	}
	copy(buf[:n], got)

	if err := s.cfg.Bus.Write(dst, buf[:n]); err != nil {
		return fmt.Errorf("%w: writing entry during gc: %v", ErrTransport, err)
	}
	return nil
}
