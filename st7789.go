package panel

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/pkg/errors"

	"github.com/BeatGlow/panel/pixel"
)

const (
	st7789DefaultWidth  = 240
	st7789DefaultHeight = 240

	// The controller RAM is 240×320 whatever the glass size.
	st7789RAMWidth  = 240
	st7789RAMHeight = 320
)

// Registers (from st7789.pdf).
const (
	st7789SLPIN     = 0x10 // Sleep In
	st7789SLPOUT    = 0x11 // Sleep Out
	st7789INVON     = 0x21 // Display Inversion On
	st7789DISPOFF   = 0x28 // Display Off
	st7789DISPON    = 0x29 // Display On
	st7789CASET     = 0x2A // Column Address Set
	st7789RASET     = 0x2B // Row Address Set
	st7789RAMWR     = 0x2C // Memory Write
	st7789MADCTL    = 0x36 // Memory Data Access Control
	st7789COLMOD    = 0x3A // Interface Pixel Format
	st7789PORCTRL   = 0xB2 // Porch Setting
	st7789GCTRL     = 0xB7 // Gate Control
	st7789VCOMS     = 0xBB // VCOM Setting
	st7789LCMCTRL   = 0xC0 // LCM Control
	st7789VDVVRHEN  = 0xC2 // VDV and VRH Command Enable
	st7789VRHS      = 0xC3 // VRH Set
	st7789VDVSET    = 0xC4 // VDV Set
	st7789VCMOFSET  = 0xC5 // VCOM Offset Set
	st7789FRCTR2    = 0xC6 // Frame Rate Control in Normal Mode
	st7789PWCTRL1   = 0xD0 // Power Control 1
	st7789PVGAMCTRL = 0xE0 // Positive Voltage Gamma Control
	st7789NVGAMCTRL = 0xE1 // Negative Voltage Gamma Control
)

// Memory Data Access Control (MADCTL) bit fields.
const (
	_                           byte = 1 << iota // D0: reserved
	_                                            // D1: reserved
	st7789DisplayDataLatchOrder                  // D2: MH
	st7789RGBOrder                               // D3: RGB
	st7789LineAddressOrder                       // D4: ML
	st7789PageColumnOrder                        // D5: MV
	st7789ColumnAddressOrder                     // D6: MX
	st7789PageAddressOrder                       // D7: MY
)

// st7789AddressOrder are the MADCTL address orders per orientation.
var st7789AddressOrder = [4]byte{
	Rotate0:   0,
	Rotate90:  st7789ColumnAddressOrder | st7789PageColumnOrder,
	Rotate180: st7789ColumnAddressOrder | st7789PageAddressOrder,
	Rotate270: st7789PageAddressOrder | st7789PageColumnOrder,
}

// st7789Init is the power-up command sequence after sleep out.
var st7789Init = [][]byte{
	{st7789COLMOD, 0x05},        // 16-bit/pixel RGB 5-6-5
	{st7789PORCTRL, 0x0C, 0x0C}, // default
	{st7789GCTRL, 0x35},         // 13.26V / -10.43V
	{st7789VCOMS, 0x1A},         // 0.75V
	{st7789LCMCTRL, 0x2C},
	{st7789VDVVRHEN, 0x01},
	{st7789VRHS, 0x0B},
	{st7789VDVSET, 0x20},
	{st7789VCMOFSET, 0x20},
	{st7789FRCTR2, 0x0F}, // 60Hz
	{st7789PWCTRL1, 0xA4, 0xA1},
	{st7789INVON},
	{st7789PVGAMCTRL, 0x00, 0x19, 0x1E, 0x0A, 0x09, 0x15, 0x3D, 0x44, 0x51, 0x12, 0x03, 0x00, 0x3F, 0x3F},
	{st7789NVGAMCTRL, 0x00, 0x18, 0x1E, 0x0A, 0x09, 0x25, 0x3F, 0x43, 0x52, 0x33, 0x03, 0x00, 0x3F, 0x3F},
}

type st7789 struct {
	device

	// offsets is the logical origin in controller RAM per orientation.
	offsets [4]image.Point
}

// ST7789 is a driver for the Sitronix ST7789 RGB565 TFT controller, on 240×240
// or 240×320 glass. Rotation is done by the controller. Most modules expect
// SPI mode 3.
func ST7789(bus Bus, config *Config) (Driver, error) {
	if config == nil {
		config = new(Config)
	}
	size := image.Pt(orDefault(config.Width, st7789DefaultWidth), orDefault(config.Height, st7789DefaultHeight))
	if size.X != st7789RAMWidth || (size.Y != 240 && size.Y != st7789RAMHeight) {
		return nil, errors.Wrapf(ErrSize, "ST7789 %s", size)
	}

	d := new(st7789)
	if size.Y < st7789RAMHeight {
		// Square glass sits at the top of the RAM, flipping rows moves it.
		gap := st7789RAMHeight - size.Y
		d.offsets[Rotate180] = image.Pt(0, gap)
		d.offsets[Rotate270] = image.Pt(gap, 0)
	}
	if err := d.initialize(bus, d, hardware{
		native:     size,
		strategy:   HardwareRotation,
		resetPulse: 100 * time.Millisecond,
		resetWait:  100 * time.Millisecond,
		backlight:  100,
		contrast:   50,
	}, config, func() pixel.Image {
		return pixel.NewRGB565Image(size.X, size.Y)
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *st7789) String() string {
	return fmt.Sprintf("ST7789 %dx%d", d.state.Width, d.state.Height)
}

func (d *st7789) command(command byte, data ...byte) error {
	if err := d.bus.WriteIndex(command); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.bus.WriteData(data, 1)
}

func (d *st7789) configure() error {
	if err := d.command(st7789SLPOUT); err != nil {
		return err
	}
	d.bus.Delay(150 * time.Millisecond)

	if err := d.command(st7789MADCTL, st7789AddressOrder[Rotate0]); err != nil {
		return err
	}
	for _, command := range st7789Init {
		if err := d.command(command[0], command[1:]...); err != nil {
			return err
		}
	}

	// Clear the whole RAM, not only the part behind the glass.
	if err := d.ramWindow(0, 0, st7789RAMWidth-1, st7789RAMHeight-1); err != nil {
		return err
	}
	if err := d.bus.WriteData([]byte{0x00, 0x00}, st7789RAMWidth*st7789RAMHeight); err != nil {
		return err
	}

	if err := d.command(st7789DISPON); err != nil {
		return err
	}
	d.bus.Delay(100 * time.Millisecond)
	return nil
}

// ramWindow opens the RAM window [x0, x1]×[y0, y1] for writing.
func (d *st7789) ramWindow(x0, y0, x1, y1 int) error {
	if err := d.command(st7789CASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.command(st7789RASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return d.command(st7789RAMWR)
}

// window opens the logical rectangle r. The address order set by MADCTL maps
// logical coordinates onto the RAM, only the glass offset is added here.
func (d *st7789) window(r image.Rectangle) error {
	r = r.Add(d.offsets[d.state.Orientation])
	return d.ramWindow(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
}

func (d *st7789) stream(pix []byte) error {
	if err := d.window(d.Bounds()); err != nil {
		return err
	}
	return d.bus.WriteData(pix, 1)
}

func (d *st7789) power(from, to PowerMode) error {
	switch to {
	case PowerOn:
		if from == PowerSleep || from == PowerDeepSleep {
			if err := d.command(st7789SLPOUT); err != nil {
				return err
			}
			d.bus.Delay(120 * time.Millisecond)
		}
		return d.command(st7789DISPON)
	case PowerOff:
		return d.command(st7789DISPOFF)
	case PowerSleep:
		return d.command(st7789SLPIN)
	default:
		if err := d.command(st7789DISPOFF); err != nil {
			return err
		}
		return d.command(st7789SLPIN)
	}
}

func (d *st7789) rotate(_, to Orientation) error {
	return d.command(st7789MADCTL, st7789AddressOrder[to])
}

// contrast is not adjustable on the ST7789; the level is only recorded.
func (d *st7789) contrast(int) error {
	return nil
}

// FillArea fills r in display RAM with a single color without a flush.
func (d *st7789) FillArea(r image.Rectangle, c color.Color) error {
	return d.fillWindow(r, c, d.window)
}

var _ Filler = (*st7789)(nil)
