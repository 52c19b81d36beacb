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
	ssd1289Width  = 240
	ssd1289Height = 320
)

// SSD1289 registers (from SSD1289.pdf). Register indexes and values are sent
// as big endian 16-bit words.
const (
	ssd1289Oscillator       = 0x00
	ssd1289OutputControl    = 0x01
	ssd1289DriveWaveform    = 0x02
	ssd1289PowerControl1    = 0x03
	ssd1289CompareRegister1 = 0x05
	ssd1289CompareRegister2 = 0x06
	ssd1289DisplayControl   = 0x07
	ssd1289FrameCycle       = 0x0B
	ssd1289PowerControl2    = 0x0C
	ssd1289PowerControl3    = 0x0D
	ssd1289PowerControl4    = 0x0E
	ssd1289GateScanStart    = 0x0F
	ssd1289SleepMode        = 0x10
	ssd1289EntryMode        = 0x11
	ssd1289HorizontalPorch  = 0x16
	ssd1289VerticalPorch    = 0x17
	ssd1289PowerControl5    = 0x1E
	ssd1289GRAMWrite        = 0x22
	ssd1289GRAMWriteMask1   = 0x23
	ssd1289GRAMWriteMask2   = 0x24
	ssd1289FrameFrequency   = 0x25
	ssd1289Gamma            = 0x30 // 0x30..0x37, 0x3A, 0x3B
	ssd1289VerticalScroll1  = 0x41
	ssd1289VerticalScroll2  = 0x42
	ssd1289FirstWindowStart = 0x48
	ssd1289FirstWindowEnd   = 0x49
	ssd1289SecondWinStart   = 0x4A
	ssd1289SecondWinEnd     = 0x4B
	ssd1289HorizontalRAM    = 0x44 // end<<8 | start
	ssd1289VerticalRAMStart = 0x45
	ssd1289VerticalRAMEnd   = 0x46
	ssd1289CursorX          = 0x4E
	ssd1289CursorY          = 0x4F
)

const (
	ssd1289DisplayOn  = 0x0133
	ssd1289DisplayOff = 0x0000
	ssd1289Sleep      = 0x0001
	ssd1289Wake       = 0x0000
)

// ssd1289Scan are the driver output control and entry mode values per orientation.
var ssd1289Scan = [4][2]uint16{
	Rotate0:   {0x2B3F, 0x6070},
	Rotate90:  {0x293F, 0x6078},
	Rotate180: {0x693F, 0x6040},
	Rotate270: {0x6B3F, 0x6048},
}

// ssd1289Init is the power-up register sequence.
var ssd1289Init = [][2]uint16{
	{ssd1289Oscillator, 0x0001},
	{ssd1289PowerControl1, 0xA8A4},
	{ssd1289PowerControl2, 0x0000},
	{ssd1289PowerControl3, 0x080C},
	{ssd1289PowerControl4, 0x2B00},
	{ssd1289PowerControl5, 0x00B0},
	{ssd1289OutputControl, ssd1289Scan[Rotate0][0]},
	{ssd1289DriveWaveform, 0x0600},
	{ssd1289SleepMode, ssd1289Wake},
	{ssd1289EntryMode, ssd1289Scan[Rotate0][1]},
	{ssd1289CompareRegister1, 0x0000},
	{ssd1289CompareRegister2, 0x0000},
	{ssd1289HorizontalPorch, 0xEF1C},
	{ssd1289VerticalPorch, 0x0003},
	{ssd1289DisplayControl, ssd1289DisplayOn},
	{ssd1289FrameCycle, 0x0000},
	{ssd1289GateScanStart, 0x0000},
	{ssd1289VerticalScroll1, 0x0000},
	{ssd1289VerticalScroll2, 0x0000},
	{ssd1289FirstWindowStart, 0x0000},
	{ssd1289FirstWindowEnd, 0x013F},
	{ssd1289SecondWinStart, 0x0000},
	{ssd1289SecondWinEnd, 0x0000},
	{ssd1289HorizontalRAM, 0xEF00},
	{ssd1289VerticalRAMStart, 0x0000},
	{ssd1289VerticalRAMEnd, 0x013F},
	{ssd1289Gamma + 0, 0x0707},
	{ssd1289Gamma + 1, 0x0204},
	{ssd1289Gamma + 2, 0x0204},
	{ssd1289Gamma + 3, 0x0502},
	{ssd1289Gamma + 4, 0x0507},
	{ssd1289Gamma + 5, 0x0204},
	{ssd1289Gamma + 6, 0x0204},
	{ssd1289Gamma + 7, 0x0502},
	{ssd1289Gamma + 10, 0x0302},
	{ssd1289Gamma + 11, 0x0302},
	{ssd1289GRAMWriteMask1, 0x0000},
	{ssd1289GRAMWriteMask2, 0x0000},
	{ssd1289FrameFrequency, 0x8000},
	{ssd1289CursorY, 0x0000},
	{ssd1289CursorX, 0x0000},
}

type ssd1289 struct {
	device
}

// SSD1289 is a driver for the Solomon Systech SSD1289 240×320 RGB565 TFT
// controller. Rotation is done by the controller.
func SSD1289(bus Bus, config *Config) (Driver, error) {
	if config == nil {
		config = new(Config)
	}
	if (config.Width != 0 && config.Width != ssd1289Width) || (config.Height != 0 && config.Height != ssd1289Height) {
		return nil, errors.Wrapf(ErrSize, "SSD1289 %dx%d", config.Width, config.Height)
	}

	d := new(ssd1289)
	if err := d.initialize(bus, d, hardware{
		native:     image.Pt(ssd1289Width, ssd1289Height),
		strategy:   HardwareRotation,
		resetPulse: 10 * time.Millisecond,
		resetWait:  50 * time.Millisecond,
		backlight:  100,
		contrast:   50,
	}, config, func() pixel.Image {
		return pixel.NewRGB565Image(ssd1289Width, ssd1289Height)
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ssd1289) String() string {
	return fmt.Sprintf("SSD1289 %dx%d", d.state.Width, d.state.Height)
}

func (d *ssd1289) writeReg(reg byte, value uint16) error {
	if err := d.bus.WriteIndex(reg); err != nil {
		return err
	}
	return d.bus.WriteData([]byte{byte(value >> 8), byte(value)}, 1)
}

func (d *ssd1289) configure() error {
	for _, reg := range ssd1289Init {
		if err := d.writeReg(byte(reg[0]), reg[1]); err != nil {
			return err
		}
		d.bus.Delay(5 * time.Microsecond)
	}
	if err := d.bus.WriteIndex(ssd1289GRAMWrite); err != nil {
		return err
	}
	return d.bus.WriteData([]byte{0x00, 0x00}, ssd1289Width*ssd1289Height)
}

// cursor moves the GRAM address counter to the logical point (x, y).
func (d *ssd1289) cursor(x, y int) error {
	if d.state.Orientation.Landscape() {
		x, y = y, x
	}
	if err := d.writeReg(ssd1289CursorX, uint16(x)); err != nil {
		return err
	}
	return d.writeReg(ssd1289CursorY, uint16(y))
}

// window restricts GRAM writes to the logical rectangle r and moves the cursor
// to its origin. Each register is derived from its own bound.
func (d *ssd1289) window(r image.Rectangle) error {
	if err := d.cursor(r.Min.X, r.Min.Y); err != nil {
		return err
	}

	var h0, h1, v0, v1 int
	if d.state.Orientation.Landscape() {
		h0, h1, v0, v1 = r.Min.Y, r.Max.Y-1, r.Min.X, r.Max.X-1
	} else {
		h0, h1, v0, v1 = r.Min.X, r.Max.X-1, r.Min.Y, r.Max.Y-1
	}
	if err := d.writeReg(ssd1289HorizontalRAM, uint16(h1)<<8|uint16(h0)); err != nil {
		return err
	}
	if err := d.writeReg(ssd1289VerticalRAMStart, uint16(v0)); err != nil {
		return err
	}
	return d.writeReg(ssd1289VerticalRAMEnd, uint16(v1))
}

func (d *ssd1289) stream(pix []byte) error {
	if err := d.gramWindow(d.Bounds()); err != nil {
		return err
	}
	return d.bus.WriteData(pix, 1)
}

func (d *ssd1289) power(_, to PowerMode) error {
	switch to {
	case PowerOn:
		if err := d.writeReg(ssd1289SleepMode, ssd1289Wake); err != nil {
			return err
		}
		return d.writeReg(ssd1289DisplayControl, ssd1289DisplayOn)
	case PowerOff:
		return d.writeReg(ssd1289DisplayControl, ssd1289DisplayOff)
	case PowerSleep:
		return d.writeReg(ssd1289SleepMode, ssd1289Sleep)
	default:
		if err := d.writeReg(ssd1289DisplayControl, ssd1289DisplayOff); err != nil {
			return err
		}
		return d.writeReg(ssd1289SleepMode, ssd1289Sleep)
	}
}

// rotate changes the gate/source scan direction and the address counter
// increment order. Every orientation has its own scan setting.
func (d *ssd1289) rotate(_, to Orientation) error {
	scan := ssd1289Scan[to]
	if err := d.writeReg(ssd1289OutputControl, scan[0]); err != nil {
		return err
	}
	return d.writeReg(ssd1289EntryMode, scan[1])
}

// contrast is not adjustable on the SSD1289; the level is only recorded.
func (d *ssd1289) contrast(int) error {
	return nil
}

// FillArea fills r in display RAM with a single color, and mirrors the fill in
// the shadow buffer so the two stay in sync without a flush.
func (d *ssd1289) FillArea(r image.Rectangle, c color.Color) error {
	return d.fillWindow(r, c, d.gramWindow)
}

// gramWindow opens r for a GRAM write.
func (d *ssd1289) gramWindow(r image.Rectangle) error {
	if err := d.window(r); err != nil {
		return err
	}
	return d.bus.WriteIndex(ssd1289GRAMWrite)
}

var _ Filler = (*ssd1289)(nil)
