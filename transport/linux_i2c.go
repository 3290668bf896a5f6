//go:build linux

package transport

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// i2cSlave is Linux's I2C_SLAVE ioctl request number (linux/i2c-dev.h).
// golang.org/x/sys/unix doesn't export it directly since it's a driver
// ioctl rather than a syscall constant, so it is defined locally the way
// other cgo-free Go I²C drivers do.
const i2cSlave = 0x0703

// LinuxI2C talks to a device over /dev/i2c-N using ioctl(I2C_SLAVE) plus
// plain read/write, with no cgo dependency.
type LinuxI2C struct {
	f    *os.File
	kind MemoryKind
}

// NewLinuxI2C opens devicePath (e.g. "/dev/i2c-1") and selects the 7-bit
// deviceAddr with the I2C_SLAVE ioctl, returning an error if either step
// fails.
func NewLinuxI2C(devicePath string, deviceAddr uint8, kind MemoryKind) (*LinuxI2C, error) {
	f, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", devicePath, err)
	}

	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, int(deviceAddr)); err != nil {
		f.Close()
		return nil, fmt.Errorf("transport: I2C_SLAVE ioctl for addr 0x%02x: %w", deviceAddr, err)
	}

	return &LinuxI2C{f: f, kind: kind}, nil
}

func (b *LinuxI2C) Close() error {
	return b.f.Close()
}

// addrPrefix builds the two-byte (high, low) device-internal address
// prefix every transaction is required to lead with.
func addrPrefix(addr uint16) [2]byte {
	return [2]byte{byte(addr >> 8), byte(addr)}
}

func (b *LinuxI2C) ReadByte(addr uint16) (byte, error) {
	buf, err := b.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (b *LinuxI2C) WriteByte(addr uint16, v byte) error {
	return b.Write(addr, []byte{v})
}

func (b *LinuxI2C) Read(addr uint16, n int) ([]byte, error) {
	prefix := addrPrefix(addr)
	if _, err := b.f.Write(prefix[:]); err != nil {
		return nil, fmt.Errorf("transport: addressing read at 0x%04x: %w", addr, err)
	}

	out := make([]byte, n)
	for i := range out {
		out[i] = 0xFF
	}

	got, err := b.f.Read(out)
	if err != nil {
		return out, fmt.Errorf("transport: read at 0x%04x: %w", addr, err)
	}
	if got < n {
		// short read: the tail stays 0xFF-filled per the transport contract.
		for i := got; i < n; i++ {
			out[i] = 0xFF
		}
	}

	return out, nil
}

func (b *LinuxI2C) Write(addr uint16, buf []byte) error {
	prefix := addrPrefix(addr)
	frame := make([]byte, 0, len(prefix)+len(buf))
	frame = append(frame, prefix[:]...)
	frame = append(frame, buf...)

	if _, err := b.f.Write(frame); err != nil {
		return fmt.Errorf("transport: write at 0x%04x: %w", addr, err)
	}

	if len(buf) <= 1 {
		time.Sleep(b.kind.singleByteDelay())
	} else {
		time.Sleep(b.kind.multiByteDelay())
	}

	return nil
}
