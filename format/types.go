// Package format implements the on-device byte layout of §3: the
// GlobalHeader, BlockHeader, and EntryHeader structs, their checksum
// validation, and little-endian codecs built on package bits.
package format

// DataType tags the scalar or buffer type stored in an entry's value.
type DataType uint8

const (
	Bool DataType = iota
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Long64
	ULong64
	Float
	Double
	String
	Bytes
)

// BlockStatus is the lifecycle state of a block header.
type BlockStatus uint8

const (
	StatusEmpty   BlockStatus = 0x00
	StatusActive  BlockStatus = 0x01
	StatusValid   BlockStatus = 0x02
	StatusInvalid BlockStatus = 0x03
)

// EntryStatus marks an entry live or tombstoned.
type EntryStatus uint8

const (
	EntryTombstoned EntryStatus = 0x00
	EntryLive       EntryStatus = 0x01
)

const (
	MagicByte            uint8 = 0xA5
	CurrentFormatVersion uint8 = 0x01
)
