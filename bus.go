package panel

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/BeatGlow/panel/conn"
)

// Bus errors.
var (
	ErrResetPin = errors.New("panel: reset GPIO pin is invalid")
	ErrDCPin    = errors.New("panel: data/command (DC) GPIO pin is invalid")
)

// Bus is the board specific link between a driver and its controller.
//
// Drivers bracket every hardware transaction with Acquire and Release. The
// write primitives are only called while the bus is held, except for
// SetBacklight and Reset which drive dedicated pins.
type Bus interface {
	String() string

	// Close the bus.
	Close() error

	// Init prepares the board before the controller is reset.
	Init() error

	// PostInit runs once after the controller has been configured, with the bus held.
	PostInit() error

	// Reset drives the reset line; High holds the controller in reset.
	Reset(gpio.Level) error

	// Delay blocks for at least d.
	Delay(d time.Duration)

	// Acquire takes exclusive ownership of the physical bus.
	Acquire()

	// Release gives up ownership of the physical bus.
	Release()

	// WriteIndex sends a command or register index.
	WriteIndex(byte) error

	// WriteData sends data repeat times.
	WriteData(data []byte, repeat int) error

	// SetBacklight sets the backlight level in percent.
	SetBacklight(percent int) error
}

// SPIConfig describes a 4-wire SPI bus with a data/command line.
type SPIConfig struct {
	Bus       int
	Device    int
	SpeedHz   uint32
	BatchSize int

	// Mode is the SPI clock mode, most controllers use mode 0.
	Mode conn.SPIMode

	// DataLow inverts the data/command line.
	DataLow bool

	// ResetActiveLow is set for controllers whose reset input is active low.
	ResetActiveLow bool

	Reset     gpio.PinOut
	DC        gpio.PinOut
	Backlight gpio.PinOut

	// Lock is shared by all devices on the same physical bus. Nil gives the
	// bus a lock of its own.
	Lock sync.Locker

	// Logger receives debug output, nil disables logging.
	Logger *zap.Logger
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Bus:            0,
	Device:         0,
	SpeedHz:        4_000_000,
	BatchSize:      4096,
	ResetActiveLow: true,
	Reset:          gpioreg.ByName("GPIO25"),
	DC:             gpioreg.ByName("GPIO24"),
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []uint32{
	500_000,
	1_000_000,
	2_000_000,
	4_000_000,
	8_000_000,
	16_000_000,
	20_000_000,
	24_000_000,
	32_000_000,
}

// backlightFrequency is the PWM frequency for the backlight pin.
const backlightFrequency = 2 * physic.KiloHertz

// pinBus implements the pin handling shared by all serial buses.
type pinBus struct {
	lock           sync.Locker
	reset          gpio.PinOut
	resetActiveLow bool
	backlight      gpio.PinOut
	log            *zap.Logger
}

func newPinBus(lock sync.Locker, reset, backlight gpio.PinOut, resetActiveLow bool, log *zap.Logger) pinBus {
	if lock == nil {
		lock = new(sync.Mutex)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return pinBus{
		lock:           lock,
		reset:          reset,
		resetActiveLow: resetActiveLow,
		backlight:      backlight,
		log:            log,
	}
}

func (b *pinBus) Init() error     { return nil }
func (b *pinBus) PostInit() error { return nil }
func (b *pinBus) Acquire()        { b.lock.Lock() }
func (b *pinBus) Release()        { b.lock.Unlock() }

func (b *pinBus) Delay(d time.Duration) {
	time.Sleep(d)
}

func (b *pinBus) Reset(level gpio.Level) error {
	if b.reset == nil || b.reset == gpio.INVALID {
		return nil
	}
	if b.resetActiveLow {
		level = !level
	}
	return b.reset.Out(level)
}

func (b *pinBus) SetBacklight(percent int) error {
	if b.backlight == nil || b.backlight == gpio.INVALID {
		b.log.Debug("no backlight control", zap.Int("percent", percent))
		return nil
	}
	percent = lo.Clamp(percent, 0, 100)
	duty := gpio.DutyMax / 100 * gpio.Duty(percent)
	if percent == 100 {
		duty = gpio.DutyMax
	}
	b.log.Debug("backlight", zap.Stringer("duty", duty), zap.Stringer("frequency", backlightFrequency))
	return b.backlight.PWM(duty, backlightFrequency)
}

// spiBus is a SPI link with a data/command line.
type spiBus struct {
	pinBus
	w         io.Writer
	name      string
	closer    func() error
	dc        gpio.PinOut
	dcLevel   gpio.Level
	dcValid   bool
	dataLow   bool
	batchSize int
}

// OpenSPI opens a spidev SPI bus.
func OpenSPI(config *SPIConfig) (Bus, error) {
	if config == nil {
		config = &DefaultSPIConfig
	}
	cfg := *config
	config = &cfg
	if config.SpeedHz == 0 {
		config.SpeedHz = DefaultSPIConfig.SpeedHz
	}
	if !lo.Contains(ValidSPISpeeds, config.SpeedHz) {
		return nil, errors.Errorf("panel: invalid SPI speed %dHz", config.SpeedHz)
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}

	c, err := conn.OpenSPI(config.Bus, config.Device)
	if err != nil {
		return nil, err
	}
	if err = c.SetMode(config.Mode); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err = c.SetMaxSpeed(int(config.SpeedHz)); err != nil {
		_ = c.Close()
		return nil, err
	}

	return newSPIBus(c, c.String(), c.Close, config), nil
}

// SPIPort connects to a periph SPI port with 8 bit words.
func SPIPort(p spi.PortCloser, config *SPIConfig) (Bus, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}
	speed := config.SpeedHz
	if speed == 0 {
		speed = DefaultSPIConfig.SpeedHz
	}

	c, err := p.Connect(physic.Frequency(speed)*physic.Hertz, spi.Mode(config.Mode), 8)
	if err != nil {
		return nil, errors.Wrap(err, "panel: connect SPI port")
	}
	return newSPIBus(conn.NewTx(c), p.String(), p.Close, config), nil
}

func newSPIBus(w io.Writer, name string, closer func() error, config *SPIConfig) *spiBus {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultSPIConfig.BatchSize
	}
	return &spiBus{
		pinBus:    newPinBus(config.Lock, config.Reset, config.Backlight, config.ResetActiveLow, config.Logger),
		w:         w,
		name:      name,
		closer:    closer,
		dc:        config.DC,
		dataLow:   config.DataLow,
		batchSize: batchSize,
	}
}

func (b *spiBus) String() string {
	return fmt.Sprintf("SPI %s", b.name)
}

func (b *spiBus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// Init drives the data/command line to a known level.
func (b *spiBus) Init() error {
	b.dcValid = false
	return b.updateDC(gpio.Level(b.dataLow))
}

func (b *spiBus) updateDC(level gpio.Level) error {
	if b.dcValid && b.dcLevel == level {
		return nil
	}
	if err := b.dc.Out(level); err != nil {
		return errors.Wrap(err, "panel: data/command line")
	}
	b.dcLevel, b.dcValid = level, true
	return nil
}

func (b *spiBus) WriteIndex(index byte) error {
	if err := b.updateDC(gpio.Level(b.dataLow)); err != nil {
		return err
	}
	_, err := b.w.Write([]byte{index})
	return err
}

func (b *spiBus) WriteData(data []byte, repeat int) error {
	if len(data) == 0 || repeat <= 0 {
		return nil
	}
	if err := b.updateDC(gpio.Level(!b.dataLow)); err != nil {
		return err
	}
	return writeRepeated(b.w, data, repeat, b.batchSize, b.log)
}

// writeRepeated writes data repeat times in chunks of at most batchSize bytes.
func writeRepeated(w io.Writer, data []byte, repeat, batchSize int, log *zap.Logger) error {
	total := len(data) * repeat
	if repeat == 1 && total <= batchSize {
		_, err := w.Write(data)
		return err
	}

	chunk := make([]byte, 0, min(total, batchSize))
	chunks := 0
	for i := 0; i < repeat; i++ {
		for rest := data; len(rest) > 0; {
			n := min(len(rest), cap(chunk)-len(chunk))
			chunk = append(chunk, rest[:n]...)
			rest = rest[n:]
			if len(chunk) == cap(chunk) {
				if _, err := w.Write(chunk); err != nil {
					return err
				}
				chunk = chunk[:0]
				chunks++
			}
		}
	}
	if len(chunk) > 0 {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		chunks++
	}
	log.Debug("chunked write", zap.Int("bytes", total), zap.Int("chunks", chunks))
	return nil
}

// I2CConfig describes the I²C bus configuration.
type I2CConfig struct {
	// Device is the I²C device, use -1 to use the first available device.
	Device int

	// Addr is the I²C address.
	Addr uint8

	// BatchSize limits the payload of a single I²C transfer.
	BatchSize int

	Reset     gpio.PinOut
	Backlight gpio.PinOut
	Lock      sync.Locker
	Logger    *zap.Logger
}

// DefaultI2CConfig are the default configuration values.
var DefaultI2CConfig = I2CConfig{
	Device:    -1,
	Addr:      0x3c,
	BatchSize: 32,
}

// I²C control bytes used by the SSD1306 family.
const (
	i2cControlCommand = 0x00
	i2cControlData    = 0x40
)

type i2cBus struct {
	pinBus
	w         io.Writer
	name      string
	closer    func() error
	batchSize int
}

// OpenI2C opens an I²C bus.
func OpenI2C(config *I2CConfig) (Bus, error) {
	if config == nil {
		config = new(I2CConfig)
		*config = DefaultI2CConfig
	}

	c, err := conn.OpenI2C(config.Device, config.Addr)
	if err != nil {
		return nil, err
	}
	return newI2CBus(c, c.String(), c.Close, config), nil
}

func newI2CBus(w io.Writer, name string, closer func() error, config *I2CConfig) *i2cBus {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultI2CConfig.BatchSize
	}
	return &i2cBus{
		pinBus:    newPinBus(config.Lock, config.Reset, config.Backlight, true, config.Logger),
		w:         w,
		name:      name,
		closer:    closer,
		batchSize: batchSize,
	}
}

func (b *i2cBus) String() string {
	return b.name
}

func (b *i2cBus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

func (b *i2cBus) WriteIndex(index byte) error {
	_, err := b.w.Write([]byte{i2cControlCommand, index})
	return err
}

func (b *i2cBus) WriteData(data []byte, repeat int) error {
	if len(data) == 0 || repeat <= 0 {
		return nil
	}
	return writeRepeated(prefixWriter{b.w, i2cControlData}, data, repeat, b.batchSize, b.log)
}

// prefixWriter prepends a control byte to every write.
type prefixWriter struct {
	w      io.Writer
	prefix byte
}

func (p prefixWriter) Write(data []byte) (int, error) {
	if _, err := p.w.Write(append([]byte{p.prefix}, data...)); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Interface checks.
var (
	_ Bus = (*spiBus)(nil)
	_ Bus = (*i2cBus)(nil)
)
