package panel

import (
	"fmt"
	"image"
	"time"

	"github.com/pkg/errors"

	"github.com/BeatGlow/panel/pixel"
)

const (
	sh1106DefaultWidth    = 128
	sh1106DefaultHeight   = 64
	sh1106DefaultContrast = 50 // 0x7F

	// sh1106Columns is the size of the column RAM, the glass shows 128 of
	// them starting at sh1106ColumnOffset.
	sh1106Columns      = 132
	sh1106ColumnOffset = 2
)

// SH1106 specific commands.
const (
	sh1106SetLowColumn  = 0x00
	sh1106SetHighColumn = 0x10
	sh1106SetDCDC       = 0xAD
	sh1106DCDCOn        = 0x8B
	sh1106DCDCOff       = 0x8A
	sh1106SetPageAddr   = 0xB0
)

// sh1106Offsets are the display offsets for the supported glass sizes.
var sh1106Offsets = map[image.Point]byte{
	image.Pt(128, 32): 0x0F,
	image.Pt(128, 64): 0x00,
}

type sh1106 struct {
	device
	width  int
	pages  int
	offset byte
}

// SH1106 is a driver for the Sino Wealth SH1106 OLED controller. The SH1106
// has no horizontal addressing mode, so frames are sent one page at a time.
// Rotation is done in software.
func SH1106(bus Bus, config *Config) (Driver, error) {
	if config == nil {
		config = new(Config)
	}
	size := image.Pt(orDefault(config.Width, sh1106DefaultWidth), orDefault(config.Height, sh1106DefaultHeight))
	offset, ok := sh1106Offsets[size]
	if !ok {
		return nil, errors.Wrapf(ErrSize, "SH1106 %s", size)
	}

	d := &sh1106{
		width:  size.X,
		pages:  (size.Y + pixel.PageHeight - 1) / pixel.PageHeight,
		offset: offset,
	}
	if err := d.initialize(bus, d, hardware{
		native:     size,
		strategy:   SoftwareRotation,
		resetPulse: 10 * time.Millisecond,
		resetWait:  10 * time.Millisecond,
		backlight:  100,
		contrast:   sh1106DefaultContrast,
	}, config, func() pixel.Image {
		return pixel.NewPageImage(size.X, size.Y)
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *sh1106) String() string {
	return fmt.Sprintf("SH1106 %dx%d", d.state.Width, d.state.Height)
}

func (d *sh1106) configure() error {
	if err := ssd1xxxCommands(d.bus,
		ssd1xxxSetDisplayOff,
		ssd1xxxSetDisplayClockDiv, 0xF0,
		ssd1xxxSetMultiplexRatio, byte(d.spec.native.Y-1),
		ssd1xxxSetDisplayOffset, d.offset,
		ssd1xxxSetStartLine|0x00,
		sh1106SetDCDC, sh1106DCDCOn,
		ssd1xxxSetSegmentRemap,
		ssd1xxxSetComScanDec,
		ssd1xxxSetComPins, 0x12,
		ssd1xxxSetPrecharge, 0x22,
		ssd1xxxSetVCOMDeselect, 0x20,
		ssd1xxxSetDisplayAllOnResume,
		ssd1xxxSetNormalDisplay,
	); err != nil {
		return err
	}

	// Clear the whole column RAM, including the columns outside the glass.
	for page := 0; page < d.pages; page++ {
		if err := d.page(page, 0); err != nil {
			return err
		}
		if err := d.bus.WriteData([]byte{0x00}, sh1106Columns); err != nil {
			return err
		}
	}
	return ssd1xxxCommands(d.bus, ssd1xxxSetDisplayOn)
}

// page moves the write cursor to column of page.
func (d *sh1106) page(page, column int) error {
	return ssd1xxxCommands(d.bus,
		sh1106SetPageAddr|byte(page&0x07),
		sh1106SetLowColumn|byte(column&0x0F),
		sh1106SetHighColumn|byte(column>>4),
	)
}

func (d *sh1106) stream(pix []byte) error {
	for page := 0; page < d.pages; page++ {
		if err := d.page(page, sh1106ColumnOffset); err != nil {
			return err
		}
		off := page * d.width
		if err := d.bus.WriteData(pix[off:off+d.width], 1); err != nil {
			return err
		}
	}
	return nil
}

func (d *sh1106) power(from, to PowerMode) error {
	if from == PowerDeepSleep {
		if err := ssd1xxxCommands(d.bus, sh1106SetDCDC, sh1106DCDCOn); err != nil {
			return err
		}
	}
	switch to {
	case PowerOn:
		return ssd1xxxCommands(d.bus, ssd1xxxSetDisplayOn)
	case PowerDeepSleep:
		return ssd1xxxCommands(d.bus, ssd1xxxSetDisplayOff, sh1106SetDCDC, sh1106DCDCOff)
	default:
		return ssd1xxxCommands(d.bus, ssd1xxxSetDisplayOff)
	}
}

func (d *sh1106) rotate(_, _ Orientation) error {
	return nil
}

func (d *sh1106) contrast(percent int) error {
	return ssd1xxxCommands(d.bus, ssd1xxxSetContrast, byte(percent*0xFF/100))
}
