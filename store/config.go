package store

import (
	"fmt"

	"github.com/dot5enko/i2c-kv-store/transport"
)

// Config mirrors the option table of spec.md §6 one-for-one. Bus is the
// already-constructed transport (transport.NewLinuxI2C or
// transport.NewSimulated) — bus setup and pin wiring are an external
// collaborator's job, not the store's (spec.md §1).
type Config struct {
	MemoryType transport.MemoryKind
	I2CAddress uint8

	TotalMemoryBits int
	BlockSize       int

	MaxKeyLength   int
	MaxValueLength int

	// SDAPin/SCLPin are informational pass-through fields for hosts that
	// want to record which pins a Bus was opened on; -1 means "platform
	// default". The store never touches GPIO directly.
	SDAPin int
	SCLPin int

	Bus transport.Bus
}

func (c Config) validate() error {
	if c.Bus == nil {
		return fmt.Errorf("%w: nil transport bus", ErrConfiguration)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block_size must be positive", ErrConfiguration)
	}
	if c.MaxKeyLength <= 0 || c.MaxKeyLength > 255 {
		return fmt.Errorf("%w: max_key_length must be in [1, 255]", ErrConfiguration)
	}
	if c.MaxValueLength < 0 || c.MaxValueLength > 65535 {
		return fmt.Errorf("%w: max_value_length must be in [0, 65535]", ErrConfiguration)
	}

	return nil
}
