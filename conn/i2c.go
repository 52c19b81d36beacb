package conn

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// I2C is a display controller at a fixed I²C address.
type I2C struct {
	bus  i2c.BusCloser
	addr uint16
	*Tx
}

// OpenI2C opens the numbered I²C bus, or the first available one if device is negative.
func OpenI2C(device int, addr uint8) (*I2C, error) {
	name := ""
	if device >= 0 {
		name = strconv.Itoa(device)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "conn: open I²C")
	}

	return &I2C{
		bus:  bus,
		addr: uint16(addr),
		Tx:   NewTx(&i2c.Dev{Bus: bus, Addr: uint16(addr)}),
	}, nil
}

func (c *I2C) String() string {
	return fmt.Sprintf("I²C bus %s address %#02x", c.bus, c.addr)
}

func (c *I2C) Close() error {
	return c.bus.Close()
}
