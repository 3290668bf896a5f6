// Package store implements the on-memory storage engine of spec.md §4: the
// header codec, entry scanner, writer, garbage collector, and lifecycle
// controller layered directly on package transport.
package store

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dot5enko/i2c-kv-store/format"
	"github.com/dot5enko/i2c-kv-store/layout"
	"github.com/google/uuid"
)

// Store is the engine described by spec.md §2-§4. It is single-threaded
// and cooperative (spec.md §5): every public method runs to completion on
// the caller's goroutine, and inUse is a misuse detector rather than a
// concurrency primitive.
type Store struct {
	cfg Config
	geo layout.Geometry
	log *slog.Logger

	activeBlockIndex uint16
	initialized      bool

	scratch *scratchPool
	stats   storeStats

	inUse atomic.Bool
}

// New validates cfg and computes the block geometry, but does not touch
// the transport; call Begin to probe the device and load or repair state.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	geo, err := layout.New(cfg.TotalMemoryBits, format.GlobalHeaderSize, cfg.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	need := format.EntryHeaderSize + cfg.MaxKeyLength + cfg.MaxValueLength
	avail := cfg.BlockSize - format.BlockHeaderSize
	if need > avail {
		logger.Warn("configured key/value bounds do not fit a block, writes will rely on GC to make space",
			"need", need, "avail", avail)
	}

	return &Store{
		cfg:     cfg,
		geo:     geo,
		log:     logger,
		scratch: newScratchPool(4, format.EntryHeaderSize+cfg.MaxKeyLength+cfg.MaxValueLength),
	}, nil
}

func (s *Store) lock() (func(), error) {
	if !s.inUse.CompareAndSwap(false, true) {
		return nil, ErrConcurrentAccess
	}
	return func() { s.inUse.Store(false) }, nil
}

// Begin implements the lifecycle controller of spec.md §4.8. It probes the
// device, then either formats a blank device or loads and, if necessary,
// repairs existing state.
func (s *Store) Begin() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.cfg.Bus.ReadByte(0); err != nil {
		return fmt.Errorf("%w: device did not respond: %v", ErrTransport, err)
	}

	epoch := uuid.New()

	raw, err := s.cfg.Bus.Read(0, format.GlobalHeaderSize)
	if err != nil {
		return fmt.Errorf("%w: reading global header: %v", ErrTransport, err)
	}

	gh, decodeErr := format.DecodeGlobalHeader(raw)
	if decodeErr != nil {
		s.log.Info("global header invalid, formatting device", "epoch", epoch.String(), "reason", decodeErr.Error())
		s.activeBlockIndex = 0
		s.initialized = false
		if err := s.gc(); err != nil {
			return err
		}
		s.initialized = true
		return nil
	}

	s.activeBlockIndex = gh.ActiveBlockIndex
	s.initialized = true

	bh, err := s.readBlockHeader(int(s.activeBlockIndex))
	if err != nil || bh.Status != format.StatusActive {
		s.log.Warn("active block header inconsistent at begin, repairing", "epoch", epoch.String(), "active_block_index", s.activeBlockIndex)
		s.stats.repairs.Add(1)
		if err := s.gc(); err != nil {
			return err
		}
	}

	return nil
}

// End releases transport resources if the host requires explicit teardown;
// it makes no persistent state changes (spec.md §4.8).
func (s *Store) End() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	closer, ok := s.cfg.Bus.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

// Clear resets in-memory state and reformats the device to a single
// ACTIVE block plus N-1 EMPTY blocks (spec.md §4.8).
func (s *Store) Clear() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	s.activeBlockIndex = 0
	s.initialized = false

	if err := s.gc(); err != nil {
		return err
	}

	s.initialized = true
	return nil
}

// Stats returns a snapshot of lifetime operation counters.
func (s *Store) Stats() Stats { return s.stats.snapshot() }

func (s *Store) requireInitialized() error {
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (s *Store) readGlobalHeader() (format.GlobalHeader, error) {
	raw, err := s.cfg.Bus.Read(0, format.GlobalHeaderSize)
	if err != nil {
		return format.GlobalHeader{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return format.DecodeGlobalHeader(raw)
}

func (s *Store) writeGlobalHeader(h format.GlobalHeader) error {
	if err := s.cfg.Bus.Write(0, h.Encode()); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (s *Store) readBlockHeader(i int) (format.BlockHeader, error) {
	base := s.geo.BlockBase(i)
	raw, err := s.cfg.Bus.Read(base, format.BlockHeaderSize)
	if err != nil {
		return format.BlockHeader{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return format.DecodeBlockHeader(raw)
}

func (s *Store) writeBlockHeader(i int, h format.BlockHeader) error {
	base := s.geo.BlockBase(i)
	if err := s.cfg.Bus.Write(base, h.Encode()); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// blockHeaderOrEmpty treats an invalid/missing header as EMPTY, matching
// the reader/GC skip-on-CRC-failure policy of spec.md §4.5/§4.7.
func (s *Store) blockHeaderOrEmpty(i int) format.BlockHeader {
	bh, err := s.readBlockHeader(i)
	if err != nil {
		return format.BlockHeader{Status: format.StatusEmpty}
	}
	return bh
}
