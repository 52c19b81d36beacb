package panel

import (
	"fmt"
	"image"
	"time"

	"github.com/pkg/errors"

	"github.com/BeatGlow/panel/pixel"
)

// PCF8812 geometry. The controller RAM is larger than the visible glass.
const (
	pcf8812MatrixWidth  = 102
	pcf8812MatrixHeight = 72
	pcf8812ScreenWidth  = 96
	pcf8812ScreenHeight = 65

	pcf8812DefaultContrast  = 51
	pcf8812DefaultBacklight = 100
)

// PCF8812 instructions (from PCF8812.pdf).
const (
	pcf8812SetFunc = 0x20 // function set, H=0 and H=1
	pcf8812PD      = 0x04 // power down
	pcf8812V       = 0x02 // vertical addressing
	pcf8812H       = 0x01 // extended instruction set

	// Basic instruction set (H=0).
	pcf8812Display       = 0x08
	pcf8812DisplayBlank  = 0x00
	pcf8812DisplayNormal = 0x04
	pcf8812DisplayAllOn  = 0x01
	pcf8812DisplayInvert = 0x05
	pcf8812SetY          = 0x40
	pcf8812SetX          = 0x80

	// Extended instruction set (H=1).
	pcf8812SetTemp   = 0x04
	pcf8812TempMode1 = 0x01
	pcf8812SetVMult  = 0x08
	pcf8812VMult3    = 0x01
	pcf8812SetBias   = 0x10
	pcf8812SetVop    = 0x80
	pcf8812VopMax    = 0x7f
)

type pcf8812 struct {
	device

	// pd is the power down bit carried by every function set.
	pd byte
}

// PCF8812 is a driver for the NXP PCF8812 102×65 monochrome LCD controller,
// as used on 96×65 glass. Rotation is done in software.
func PCF8812(bus Bus, config *Config) (Driver, error) {
	if config == nil {
		config = new(Config)
	}
	if (config.Width != 0 && config.Width != pcf8812ScreenWidth) || (config.Height != 0 && config.Height != pcf8812ScreenHeight) {
		return nil, errors.Wrapf(ErrSize, "PCF8812 %dx%d", config.Width, config.Height)
	}

	d := new(pcf8812)
	if err := d.initialize(bus, d, hardware{
		native:     image.Pt(pcf8812ScreenWidth, pcf8812ScreenHeight),
		strategy:   SoftwareRotation,
		resetPulse: 100 * time.Millisecond,
		resetWait:  100 * time.Millisecond,
		backlight:  pcf8812DefaultBacklight,
		contrast:   pcf8812DefaultContrast,
	}, config, func() pixel.Image {
		return pixel.NewPageImage(pcf8812MatrixWidth, pcf8812MatrixHeight)
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *pcf8812) String() string {
	return fmt.Sprintf("PCF8812 %dx%d", d.state.Width, d.state.Height)
}

func (d *pcf8812) commands(commands ...byte) error {
	for _, command := range commands {
		if err := d.bus.WriteIndex(command); err != nil {
			return err
		}
	}
	return nil
}

func (d *pcf8812) configure() error {
	if err := d.commands(
		pcf8812SetFunc|pcf8812H,
		pcf8812SetTemp|pcf8812TempMode1,
		pcf8812SetVMult|pcf8812VMult3,
		pcf8812SetVop|0x00,
		pcf8812SetFunc,
		pcf8812Display|pcf8812DisplayNormal,
		pcf8812SetX|0,
		pcf8812SetY|0,
	); err != nil {
		return err
	}
	return d.bus.WriteData([]byte{0x00}, pixel.PageSize(pcf8812MatrixWidth, pcf8812MatrixHeight))
}

func (d *pcf8812) stream(pix []byte) error {
	if err := d.commands(pcf8812SetX|0, pcf8812SetY|0); err != nil {
		return err
	}
	return d.bus.WriteData(pix, 1)
}

func (d *pcf8812) power(_, to PowerMode) error {
	var (
		pd       byte = pcf8812PD
		commands []byte
	)
	switch to {
	case PowerOn:
		pd = 0
		commands = []byte{pcf8812SetFunc, pcf8812Display | pcf8812DisplayNormal}
	case PowerOff:
		commands = []byte{pcf8812Display | pcf8812DisplayBlank, pcf8812SetFunc | pd}
	default:
		// Display RAM is retained while powered down.
		commands = []byte{pcf8812SetFunc | pd}
	}
	if err := d.commands(commands...); err != nil {
		return err
	}
	d.pd = pd
	return nil
}

// rotate has nothing to program: the shadow buffer is always kept in the
// native horizontal addressing layout.
func (d *pcf8812) rotate(_, _ Orientation) error {
	return nil
}

func (d *pcf8812) contrast(percent int) error {
	vop := byte(percent * pcf8812VopMax / 100)
	return d.commands(
		pcf8812SetFunc|pcf8812H|d.pd,
		pcf8812SetVop|vop,
		pcf8812SetFunc|d.pd,
	)
}
