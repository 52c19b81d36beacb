//go:build linux

package conn

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/BeatGlow/panel/internal/ioctl"
)

const spiDevPath = "/dev/spidev"

const (
	spiIOCMode        = 0x6b01
	spiIOCBitsPerWord = 0x6b03
	spiIOCMaxSpeedHz  = 0x6b04
)

// SPI is a spidev character device.
type SPI struct {
	f           *os.File
	fd          uintptr
	mode        SPIMode
	bitsPerWord uint8
	maxSpeedHz  uint32
}

// OpenSPI opens /dev/spidev<bus>.<device>. The device usually is the chip select line of the bus.
func OpenSPI(bus, device int) (*SPI, error) {
	name := fmt.Sprintf("%s%d.%d", spiDevPath, bus, device)
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "conn: open SPI")
	}

	c := &SPI{
		f:  f,
		fd: f.Fd(),
	}
	for _, query := range []struct {
		ref interface{}
		nr  uintptr
	}{
		{&c.mode, spiIOCMode},
		{&c.bitsPerWord, spiIOCBitsPerWord},
		{&c.maxSpeedHz, spiIOCMaxSpeedHz},
	} {
		if err = ioctl.Do(c.fd, ioctl.For(ioctl.Read, query.ref, query.nr), query.ref); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "conn: query %s", name)
		}
	}

	return c, nil
}

func (c *SPI) Close() error {
	return c.f.Close()
}

func (c *SPI) String() string {
	return fmt.Sprintf("spidev %s mode=%d bits=%d speed=%dHz", c.f.Name(), c.mode, c.bitsPerWord, c.maxSpeedHz)
}

func (c *SPI) Mode() SPIMode {
	return c.mode
}

// SetMode changes the clock mode and verifies the driver accepted it.
func (c *SPI) SetMode(mode SPIMode) error {
	mode &= 0x0f
	if err := ioctl.Do(c.fd, ioctl.For(ioctl.Write, &mode, spiIOCMode), &mode); err != nil {
		return err
	}

	var got SPIMode
	if err := ioctl.Do(c.fd, ioctl.For(ioctl.Read, &got, spiIOCMode), &got); err != nil {
		return err
	}
	if got != mode {
		return errors.Errorf("conn: SPI mode %#02x requested, %#02x in use", mode, got)
	}

	c.mode = mode
	return nil
}

func (c *SPI) MaxSpeed() int {
	return int(c.maxSpeedHz)
}

func (c *SPI) SetMaxSpeed(hz int) error {
	if hz <= 0 {
		return nil
	}

	u := uint32(hz)
	if c.maxSpeedHz == u {
		return nil
	}
	if err := ioctl.Do(c.fd, ioctl.For(ioctl.Write, &u, spiIOCMaxSpeedHz), &u); err != nil {
		return err
	}
	c.maxSpeedHz = u
	return nil
}

func (c *SPI) Write(b []byte) (int, error) {
	return c.f.Write(b)
}
