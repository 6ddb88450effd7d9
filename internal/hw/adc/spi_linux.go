//go:build linux

package adc

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux /dev/spidevN.M ioctl numbers for SPI_IOC_MESSAGE(1), per
// linux/spi/spidev.h. Not specific to any one ADC chip — §1 places exact SPI
// command framing for a particular chip out of scope; this backend only
// performs the generic single-transfer ioctl.
const (
	spiIOCWrMode   = 0x40016b01
	spiIOCWrSpeed  = 0x40046b04
	spiIOCMessage1 = 0x40206b00
)

type spiIOCTransfer struct {
	txBuf uint64
	rxBuf uint64
	len   uint32
	speed uint32
	delay uint16
	bits  uint8
	cs    uint8
	pad   uint32
}

// SPI is the real-hardware AdcChannel backend: a 3-byte command/reply
// transaction per §6 (start | single-ended | channel_id | 0, then the
// 12-bit sample in the low bits of the reply).
type SPI struct {
	file      *os.File
	speedHz   uint32
	channelSelect []byte
}

// OpenSPI opens devicePath (e.g. "/dev/spidev0.0"), sets SPI mode 0 and
// speedHz, and returns a Channel backed by it. channelSelect maps a channel
// id to the command byte encoding its ADC channel select code.
func OpenSPI(devicePath string, speedHz uint32, channelSelect []byte) (*SPI, error) {
	f, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devicePath, err)
	}

	fd := f.Fd()

	if err := unix.IoctlSetInt(int(fd), spiIOCWrMode, 0); err != nil {
		return nil, fmt.Errorf("set spi mode: %w", err)
	}

	if err := unix.IoctlSetInt(int(fd), spiIOCWrSpeed, int(speedHz)); err != nil {
		return nil, fmt.Errorf("set spi speed: %w", err)
	}

	return &SPI{file: f, speedHz: speedHz, channelSelect: channelSelect}, nil
}

// ReadSample performs one SPI transaction for channelID, per §6: a 3-byte
// command out, a 3-byte reply in, the sample in the reply's low 12 bits.
func (s *SPI) ReadSample(channelID int) (uint16, error) {
	if channelID < 0 || channelID >= len(s.channelSelect) {
		return 0, fmt.Errorf("channel id %d out of range", channelID)
	}

	tx := [3]byte{1, s.channelSelect[channelID] << 4, 0}
	rx := [3]byte{}

	xfer := spiIOCTransfer{
		txBuf: uint64(uintptr(unsafe.Pointer(&tx[0]))),
		rxBuf: uint64(uintptr(unsafe.Pointer(&rx[0]))),
		len:   uint32(len(tx)),
		speed: s.speedHz,
		bits:  8,
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, s.file.Fd(), uintptr(spiIOCMessage1), uintptr(unsafe.Pointer(&xfer))); errno != 0 {
		return 0, fmt.Errorf("spi transfer: %w", errno)
	}

	sample := (uint16(rx[1])<<8 | uint16(rx[2])) & 0x0FFF

	return sample, nil
}

// Close releases the underlying device file.
func (s *SPI) Close() error {
	return s.file.Close()
}
