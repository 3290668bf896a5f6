package store

import "github.com/dot5enko/i2c-kv-store/format"

// readEntry is the read-side counterpart of writeEntry: it resolves key
// through the entry scanner and fetches its value bytes verbatim.
func (s *Store) readEntry(key string) ([]byte, format.DataType, bool) {
	if err := s.requireInitialized(); err != nil {
		return nil, 0, false
	}

	ref, ok := s.find(key)
	if !ok {
		return nil, 0, false
	}

	val, err := s.cfg.Bus.Read(ref.valueAddr, int(ref.header.ValueLength))
	if err != nil {
		return nil, 0, false
	}

	s.stats.reads.Add(1)
	return val, ref.header.DataType, true
}

// IsKey reports whether key currently has a live entry.
func (s *Store) IsKey(key string) bool {
	unlock, err := s.lock()
	if err != nil {
		return false
	}
	defer unlock()

	if err := s.requireInitialized(); err != nil {
		return false
	}
	_, ok := s.find(key)
	return ok
}

// Remove tombstones key's live entry if one exists and reports whether it
// did. Calling Remove twice in a row yields (true, false) (spec.md §8
// property 4).
func (s *Store) Remove(key string) bool {
	unlock, err := s.lock()
	if err != nil {
		return false
	}
	defer unlock()

	if err := s.requireInitialized(); err != nil {
		return false
	}

	ref, ok := s.find(key)
	if !ok {
		return false
	}

	if err := s.cfg.Bus.WriteByte(ref.entryAddr, byte(format.EntryTombstoned)); err != nil {
		return false
	}

	s.stats.removes.Add(1)
	return true
}
