package store

import (
	"encoding/binary"
	"math"

	"github.com/dot5enko/i2c-kv-store/format"
)

// putScalar is the thin typed adapter Design Notes §9 calls for: one
// generic write(tag, bytes) underneath every Put* call.
func (s *Store) putScalar(key string, tag format.DataType, raw []byte) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return s.writeEntry(key, tag, raw)
}

// getScalar is the read-side counterpart: it verifies the stored tag and
// length before handing raw bytes to the typed caller, falling back to ok
// == false on any mismatch (spec.md §6: "mismatch yields the caller's
// default").
func (s *Store) getScalar(key string, tag format.DataType, wantLen int) ([]byte, bool) {
	unlock, err := s.lock()
	if err != nil {
		return nil, false
	}
	defer unlock()

	raw, gotTag, ok := s.readEntry(key)
	if !ok || gotTag != tag || len(raw) != wantLen {
		return nil, false
	}
	return raw, true
}

func (s *Store) PutBool(key string, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	return s.putScalar(key, format.Bool, []byte{b})
}

func (s *Store) GetBool(key string, def bool) bool {
	raw, ok := s.getScalar(key, format.Bool, 1)
	if !ok {
		return def
	}
	return raw[0] != 0
}

func (s *Store) PutChar(key string, v int8) error {
	return s.putScalar(key, format.Char, []byte{byte(v)})
}

func (s *Store) GetChar(key string, def int8) int8 {
	raw, ok := s.getScalar(key, format.Char, 1)
	if !ok {
		return def
	}
	return int8(raw[0])
}

func (s *Store) PutUChar(key string, v uint8) error {
	return s.putScalar(key, format.UChar, []byte{v})
}

func (s *Store) GetUChar(key string, def uint8) uint8 {
	raw, ok := s.getScalar(key, format.UChar, 1)
	if !ok {
		return def
	}
	return raw[0]
}

func (s *Store) PutShort(key string, v int16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(v))
	return s.putScalar(key, format.Short, buf)
}

func (s *Store) GetShort(key string, def int16) int16 {
	raw, ok := s.getScalar(key, format.Short, 2)
	if !ok {
		return def
	}
	return int16(binary.LittleEndian.Uint16(raw))
}

func (s *Store) PutUShort(key string, v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return s.putScalar(key, format.UShort, buf)
}

func (s *Store) GetUShort(key string, def uint16) uint16 {
	raw, ok := s.getScalar(key, format.UShort, 2)
	if !ok {
		return def
	}
	return binary.LittleEndian.Uint16(raw)
}

func (s *Store) PutInt(key string, v int32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return s.putScalar(key, format.Int, buf)
}

func (s *Store) GetInt(key string, def int32) int32 {
	raw, ok := s.getScalar(key, format.Int, 4)
	if !ok {
		return def
	}
	return int32(binary.LittleEndian.Uint32(raw))
}

func (s *Store) PutUInt(key string, v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return s.putScalar(key, format.UInt, buf)
}

func (s *Store) GetUInt(key string, def uint32) uint32 {
	raw, ok := s.getScalar(key, format.UInt, 4)
	if !ok {
		return def
	}
	return binary.LittleEndian.Uint32(raw)
}

func (s *Store) PutLong(key string, v int32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return s.putScalar(key, format.Long, buf)
}

func (s *Store) GetLong(key string, def int32) int32 {
	raw, ok := s.getScalar(key, format.Long, 4)
	if !ok {
		return def
	}
	return int32(binary.LittleEndian.Uint32(raw))
}

func (s *Store) PutULong(key string, v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return s.putScalar(key, format.ULong, buf)
}

func (s *Store) GetULong(key string, def uint32) uint32 {
	raw, ok := s.getScalar(key, format.ULong, 4)
	if !ok {
		return def
	}
	return binary.LittleEndian.Uint32(raw)
}

func (s *Store) PutLong64(key string, v int64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return s.putScalar(key, format.Long64, buf)
}

func (s *Store) GetLong64(key string, def int64) int64 {
	raw, ok := s.getScalar(key, format.Long64, 8)
	if !ok {
		return def
	}
	return int64(binary.LittleEndian.Uint64(raw))
}

func (s *Store) PutULong64(key string, v uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return s.putScalar(key, format.ULong64, buf)
}

func (s *Store) GetULong64(key string, def uint64) uint64 {
	raw, ok := s.getScalar(key, format.ULong64, 8)
	if !ok {
		return def
	}
	return binary.LittleEndian.Uint64(raw)
}

func (s *Store) PutFloat(key string, v float32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return s.putScalar(key, format.Float, buf)
}

func (s *Store) GetFloat(key string, def float32) float32 {
	raw, ok := s.getScalar(key, format.Float, 4)
	if !ok {
		return def
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(raw))
}

func (s *Store) PutDouble(key string, v float64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return s.putScalar(key, format.Double, buf)
}

func (s *Store) GetDouble(key string, def float64) float64 {
	raw, ok := s.getScalar(key, format.Double, 8)
	if !ok {
		return def
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(raw))
}

// PutString persists v with its trailing null byte included in
// value_length, per spec.md §6.
func (s *Store) PutString(key string, v string) error {
	buf := append([]byte(v), 0x00)
	return s.putScalar(key, format.String, buf)
}

// GetString returns the stored bytes up to but excluding the trailing
// null, falling back to def when the key is absent or mistyped.
func (s *Store) GetString(key string, def string) string {
	unlock, err := s.lock()
	if err != nil {
		return def
	}
	defer unlock()

	raw, tag, ok := s.readEntry(key)
	if !ok || tag != format.String || len(raw) == 0 {
		return def
	}
	return string(raw[:len(raw)-1])
}

// PutBytes stores the first n bytes of buf verbatim.
func (s *Store) PutBytes(key string, buf []byte, n int) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return s.writeEntry(key, format.Bytes, buf[:n])
}

// GetBytes copies min(stored_len, len(out)) bytes into out and returns how
// many it copied, or 0 if key is absent or not tagged BYTES.
func (s *Store) GetBytes(key string, out []byte) int {
	unlock, err := s.lock()
	if err != nil {
		return 0
	}
	defer unlock()

	raw, tag, ok := s.readEntry(key)
	if !ok || tag != format.Bytes {
		return 0
	}
	return copy(out, raw)
}
