package panel

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// Pin is an output pin as exposed by TinyGo's machine.Pin.
type Pin interface {
	Set(high bool)
}

// TinyGoConfig configures a TinyGo SPI bus. The SPI peripheral must already be configured.
type TinyGoConfig struct {
	DC        Pin
	Reset     Pin
	Backlight Pin
	Lock      sync.Locker
}

type tinyGoBus struct {
	bus  drivers.SPI
	dc   Pin
	rst  Pin
	bl   Pin
	lock sync.Locker
}

// TinyGoSPI drives a controller from a TinyGo SPI peripheral.
//
// TinyGo pins have no PWM through this interface, so any backlight level above
// zero switches the backlight on.
func TinyGoSPI(bus drivers.SPI, config TinyGoConfig) (Bus, error) {
	if config.DC == nil {
		return nil, ErrDCPin
	}
	if config.Lock == nil {
		config.Lock = new(sync.Mutex)
	}
	return &tinyGoBus{
		bus:  bus,
		dc:   config.DC,
		rst:  config.Reset,
		bl:   config.Backlight,
		lock: config.Lock,
	}, nil
}

func (b *tinyGoBus) String() string  { return "TinyGo SPI" }
func (b *tinyGoBus) Close() error    { return nil }
func (b *tinyGoBus) Init() error     { return nil }
func (b *tinyGoBus) PostInit() error { return nil }
func (b *tinyGoBus) Acquire()        { b.lock.Lock() }
func (b *tinyGoBus) Release()        { b.lock.Unlock() }

func (b *tinyGoBus) Delay(d time.Duration) {
	time.Sleep(d)
}

// Reset drives an active low reset line.
func (b *tinyGoBus) Reset(level gpio.Level) error {
	if b.rst != nil {
		b.rst.Set(!bool(level))
	}
	return nil
}

func (b *tinyGoBus) WriteIndex(index byte) error {
	b.dc.Set(false)
	_, err := b.bus.Transfer(index)
	return err
}

func (b *tinyGoBus) WriteData(data []byte, repeat int) error {
	b.dc.Set(true)
	for i := 0; i < repeat; i++ {
		if err := b.bus.Tx(data, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *tinyGoBus) SetBacklight(percent int) error {
	if b.bl != nil {
		b.bl.Set(percent > 0)
	}
	return nil
}
