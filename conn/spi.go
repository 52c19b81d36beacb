// Package conn provides raw byte links to display controllers.
//
// The types in this package only move bytes; data/command signalling, reset
// and backlight pins are handled by the panel bus implementations.
package conn

import "github.com/pkg/errors"

// ErrNotSupported is returned when the host has no native SPI device support.
var ErrNotSupported = errors.New("conn: spidev is not supported on this platform")

// Definitions from <linux/spi/spidev.h>.
const (
	spiCPHA = 0x01
	spiCPOL = 0x02
)

// SPIMode is the clock polarity and phase.
type SPIMode uint8

const (
	SPIMode0 SPIMode = 0
	SPIMode1 SPIMode = spiCPHA
	SPIMode2 SPIMode = spiCPOL
	SPIMode3 SPIMode = spiCPOL | spiCPHA
)
