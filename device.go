package panel

import (
	"image"
	"image/color"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/BeatGlow/panel/pixel"
)

// controller holds the controller specific parts of a driver. All methods are
// called with the bus held.
type controller interface {
	// configure sends the power-up register sequence and clears display RAM.
	configure() error

	// stream resets the write cursor and sends the shadow buffer.
	stream(pix []byte) error

	// power switches the controller between power modes.
	power(from, to PowerMode) error

	// rotate programs the scan direction for a new orientation.
	rotate(from, to Orientation) error

	// contrast applies a contrast level in percent.
	contrast(percent int) error
}

// hardware describes a controller and board combination.
type hardware struct {
	// native is the visible screen size at 0°.
	native image.Point

	// strategy selects software or hardware rotation.
	strategy RotationStrategy

	// resetPulse and resetWait are the reset line timings.
	resetPulse, resetWait time.Duration

	// backlight and contrast are the default levels in percent.
	backlight, contrast int
}

// device is the device context shared by all drivers.
type device struct {
	bus   Bus
	hw    controller
	log   *zap.Logger
	buf   pixel.Image
	spec  hardware
	state State
	dirty bool
}

// initialize brings the controller up and populates the device state.
// newBuffer allocates the shadow buffer for the physical matrix.
func (d *device) initialize(bus Bus, hw controller, spec hardware, config *Config, newBuffer func() pixel.Image) error {
	if config == nil {
		config = new(Config)
	}
	d.bus = bus
	d.hw = hw
	d.spec = spec
	d.log = config.logger()

	if d.buf = newBuffer(); d.buf == nil || len(d.buf.Bytes()) == 0 {
		halt("failed to allocate the shadow frame buffer")
		return errors.New("panel: no shadow frame buffer")
	}

	if err := bus.Init(); err != nil {
		return errors.Wrap(err, "panel: board init")
	}

	if err := bus.Reset(true); err != nil {
		return errors.Wrap(err, "panel: reset")
	}
	bus.Delay(spec.resetPulse)
	if err := bus.Reset(false); err != nil {
		return errors.Wrap(err, "panel: reset")
	}
	bus.Delay(spec.resetWait)

	var (
		backlight = lo.Clamp(orDefault(config.Backlight, spec.backlight), 0, 100)
		contrast  = lo.Clamp(orDefault(config.Contrast, spec.contrast), 0, 100)
	)
	if err := d.transaction(func() error {
		if err := hw.configure(); err != nil {
			return err
		}
		if err := hw.contrast(contrast); err != nil {
			return err
		}
		return bus.PostInit()
	}); err != nil {
		return errors.Wrap(err, "panel: configure controller")
	}

	if err := bus.SetBacklight(backlight); err != nil {
		return errors.Wrap(err, "panel: backlight")
	}

	d.state = State{
		Width:       spec.native.X,
		Height:      spec.native.Y,
		Orientation: Rotate0,
		Power:       PowerOn,
		Backlight:   backlight,
		Contrast:    contrast,
	}
	d.log.Debug("initialized",
		zap.Stringer("bus", bus),
		zap.Int("width", d.state.Width),
		zap.Int("height", d.state.Height),
		zap.Int("buffer", len(d.buf.Bytes())),
		zap.Stringer("rotation", spec.strategy))

	if config.Orientation != Rotate0 {
		if err := d.SetOrientation(config.Orientation); err != nil {
			return err
		}
		// RAM was just cleared, a blank buffer matches it in any orientation.
		d.dirty = false
	}
	return nil
}

// transaction runs f with the bus held.
func (d *device) transaction(f func() error) error {
	d.bus.Acquire()
	defer d.bus.Release()
	return f()
}

func (d *device) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.state.Width, d.state.Height)
}

func (d *device) ColorModel() color.Model {
	return d.buf.ColorModel()
}

// physical returns where the logical point (x, y) lives in the shadow buffer.
func (d *device) physical(x, y int) (int, int, bool) {
	if x < 0 || y < 0 || x >= d.state.Width || y >= d.state.Height {
		return 0, 0, false
	}
	if d.spec.strategy == SoftwareRotation {
		x, y = Transform(x, y, d.state.Width, d.state.Height, d.state.Orientation)
	}
	return x, y, true
}

// At returns the color of the logical pixel at (x, y) as held by the shadow buffer.
func (d *device) At(x, y int) color.Color {
	px, py, ok := d.physical(x, y)
	if !ok {
		return color.Transparent
	}
	return d.buf.At(px, py)
}

// Set writes the logical pixel at (x, y) to the shadow buffer.
func (d *device) Set(x, y int, c color.Color) {
	px, py, ok := d.physical(x, y)
	if !ok {
		return
	}
	d.buf.Set(px, py, c)
	d.dirty = true
}

func (d *device) Clear() {
	d.buf.Clear()
	d.dirty = true
}

func (d *device) Dirty() bool {
	return d.dirty
}

func (d *device) State() State {
	return d.state
}

func (d *device) Strategy() RotationStrategy {
	return d.spec.strategy
}

// Flush sends the shadow buffer to the controller. It does nothing if there
// were no writes since the last successful flush.
func (d *device) Flush() error {
	if !d.dirty {
		return nil
	}

	pix := d.buf.Bytes()
	if err := d.transaction(func() error {
		return d.hw.stream(pix)
	}); err != nil {
		return errors.Wrap(err, "panel: flush")
	}

	d.dirty = false
	d.log.Debug("flushed", zap.Int("bytes", len(pix)))
	return nil
}

// Close switches the display off and closes the bus.
func (d *device) Close() error {
	if err := d.SetPower(PowerOff); err != nil {
		_ = d.bus.Close()
		return err
	}
	return d.bus.Close()
}

// orDefault returns v, or def if v is zero.
func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
