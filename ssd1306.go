package panel

import (
	"fmt"
	"image"
	"time"

	"github.com/pkg/errors"

	"github.com/BeatGlow/panel/pixel"
)

const (
	ssd1306DefaultWidth    = 128
	ssd1306DefaultHeight   = 64
	ssd1306DefaultContrast = 81 // 0xCE
)

type ssd1306 struct {
	device
	colStart byte
	colEnd   byte
	pages    byte
	geometry ssd1306Geometry
}

type ssd1306Geometry struct {
	clockDiv byte
	comPins  byte
	colStart byte
}

// ssd1306Sizes are the supported glass sizes.
var ssd1306Sizes = map[image.Point]ssd1306Geometry{
	image.Pt(64, 32):  {0x80, 0x12, 32},
	image.Pt(64, 48):  {0x80, 0x12, 32},
	image.Pt(96, 16):  {0x60, 0x02, 0},
	image.Pt(128, 32): {0x80, 0x02, 0},
	image.Pt(128, 64): {0x80, 0x12, 0},
}

// SSD1306 is a driver for the Solomon Systech SSD1306 OLED controller.
// Rotation is done in software.
func SSD1306(bus Bus, config *Config) (Driver, error) {
	if config == nil {
		config = new(Config)
	}
	size := image.Pt(orDefault(config.Width, ssd1306DefaultWidth), orDefault(config.Height, ssd1306DefaultHeight))
	geometry, ok := ssd1306Sizes[size]
	if !ok {
		return nil, errors.Wrapf(ErrSize, "SSD1306 %s", size)
	}

	d := &ssd1306{
		colStart: geometry.colStart,
		colEnd:   geometry.colStart + byte(size.X),
		pages:    byte((size.Y + pixel.PageHeight - 1) / pixel.PageHeight),
		geometry: geometry,
	}
	if err := d.initialize(bus, d, hardware{
		native:     size,
		strategy:   SoftwareRotation,
		resetPulse: 10 * time.Millisecond,
		resetWait:  10 * time.Millisecond,
		backlight:  100,
		contrast:   ssd1306DefaultContrast,
	}, config, func() pixel.Image {
		return pixel.NewPageImage(size.X, size.Y)
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ssd1306) String() string {
	return fmt.Sprintf("SSD1306 OLED %dx%d", d.state.Width, d.state.Height)
}

func (d *ssd1306) configure() error {
	if err := ssd1xxxCommands(d.bus,
		ssd1xxxSetDisplayOff,
		ssd1xxxSetDisplayClockDiv, d.geometry.clockDiv,
		ssd1xxxSetMultiplexRatio, byte(d.spec.native.Y-1),
		ssd1xxxSetDisplayOffset, 0x00,
		ssd1xxxSetStartLine|0x00,
		ssd1xxxSetChargePump, ssd1xxxChargePumpOn,
		ssd1xxxSetMemoryMode, 0x00, // horizontal addressing
		ssd1xxxSetSegmentRemap,
		ssd1xxxSetComScanDec,
		ssd1xxxSetComPins, d.geometry.comPins,
		ssd1xxxSetPrecharge, 0xF1,
		ssd1xxxSetVCOMDeselect, 0x40,
		ssd1xxxSetDisplayAllOnResume,
		ssd1xxxSetNormalDisplay,
	); err != nil {
		return err
	}
	if err := d.window(); err != nil {
		return err
	}
	if err := d.bus.WriteData([]byte{0x00}, int(d.colEnd-d.colStart)*int(d.pages)); err != nil {
		return err
	}
	return ssd1xxxCommands(d.bus, ssd1xxxSetDisplayOn)
}

// window selects the visible columns and all pages, which also moves the
// write cursor to the origin.
func (d *ssd1306) window() error {
	return ssd1xxxCommands(d.bus,
		ssd1xxxSetColumnAddr, d.colStart, d.colEnd-1,
		ssd1xxxSetPageAddr, 0x00, d.pages-1,
	)
}

func (d *ssd1306) stream(pix []byte) error {
	if err := d.window(); err != nil {
		return err
	}
	return d.bus.WriteData(pix, 1)
}

func (d *ssd1306) power(from, to PowerMode) error {
	switch to {
	case PowerOn:
		if from == PowerDeepSleep {
			if err := ssd1xxxCommands(d.bus, ssd1xxxSetChargePump, ssd1xxxChargePumpOn); err != nil {
				return err
			}
		}
		return ssd1xxxCommands(d.bus, ssd1xxxSetDisplayOn)
	case PowerDeepSleep:
		return ssd1xxxCommands(d.bus, ssd1xxxSetDisplayOff, ssd1xxxSetChargePump, ssd1xxxChargePumpOff)
	default:
		if from == PowerDeepSleep {
			if err := ssd1xxxCommands(d.bus, ssd1xxxSetChargePump, ssd1xxxChargePumpOn); err != nil {
				return err
			}
		}
		return ssd1xxxCommands(d.bus, ssd1xxxSetDisplayOff)
	}
}

func (d *ssd1306) rotate(_, _ Orientation) error {
	return nil
}

func (d *ssd1306) contrast(percent int) error {
	return ssd1xxxCommands(d.bus, ssd1xxxSetContrast, byte(percent*0xFF/100))
}
