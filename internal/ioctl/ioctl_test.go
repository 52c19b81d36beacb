//go:build linux

package ioctl

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestEncode(t *testing.T) {
	c := qt.New(t)

	// SPI_IOC_RD_MAX_SPEED_HZ from <linux/spi/spidev.h>.
	var speed uint32
	r := For(Read, &speed, 0x6b04)
	c.Assert(r, qt.Equals, Request(0x80046b04))
	c.Assert(r.Direction(), qt.Equals, Read)
	c.Assert(r.Size(), qt.Equals, 4)

	// SPI_IOC_WR_MODE.
	var mode uint8
	c.Assert(For(Write, &mode, 0x6b01), qt.Equals, Request(0x40016b01))
	c.Assert(For(Write, &mode, 0x6b01).String(), qt.Equals, "ioctl write 1 bytes 0x6b01")
}
