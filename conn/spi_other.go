//go:build !linux

package conn

// SPI is unavailable on this platform.
type SPI struct{}

// OpenSPI always fails with ErrNotSupported.
func OpenSPI(_, _ int) (*SPI, error) {
	return nil, ErrNotSupported
}

func (*SPI) Close() error { return nil }
func (*SPI) String() string { return "spidev (unsupported)" }
func (*SPI) Mode() SPIMode { return SPIMode0 }
func (*SPI) SetMode(SPIMode) error { return ErrNotSupported }
func (*SPI) MaxSpeed() int { return 0 }
func (*SPI) SetMaxSpeed(int) error { return ErrNotSupported }
func (*SPI) Write([]byte) (int, error) { return 0, ErrNotSupported }
