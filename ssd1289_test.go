package panel

import (
	"image"
	"image/color"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/BeatGlow/panel/pixel"
)

var red = color.RGBA{R: 0xff, A: 0xff}

func newTestSSD1289(c *qt.C, config *Config) (*ssd1289, *recordingBus) {
	c.Helper()
	bus := new(recordingBus)
	d, err := SSD1289(bus, config)
	c.Assert(err, qt.IsNil)
	return d.(*ssd1289), bus
}

func TestSSD1289Init(t *testing.T) {
	c := qt.New(t)

	d, bus := newTestSSD1289(c, nil)

	c.Assert(d.State(), qt.DeepEquals, State{
		Width:       240,
		Height:      320,
		Orientation: Rotate0,
		Power:       PowerOn,
		Backlight:   100,
		Contrast:    50,
	})
	c.Assert(d.Strategy(), qt.Equals, HardwareRotation)
	c.Assert(d.buf.Bytes(), qt.HasLen, 240*320*2)
	c.Assert(bus.registers(), qt.HasLen, len(ssd1289Init))
	c.Assert(bus.registers()[0], qt.Equals, [2]uint16{ssd1289Oscillator, 0x0001})

	// GRAM cleared last.
	c.Assert(bus.ops[len(bus.ops)-2], qt.DeepEquals, busOp{Index: true, Data: []byte{ssd1289GRAMWrite}, Repeat: 1})
	c.Assert(bus.lastData(), qt.DeepEquals, busOp{Data: []byte{0, 0}, Repeat: 240 * 320})

	_, err := SSD1289(new(recordingBus), &Config{Width: 320, Height: 240})
	c.Assert(err, qt.ErrorIs, ErrSize)
}

func TestSSD1289Rotation(t *testing.T) {
	c := qt.New(t)

	d, bus := newTestSSD1289(c, nil)

	tests := []struct {
		o    Orientation
		scan [][2]uint16
		size image.Point
	}{
		{Rotate90, [][2]uint16{{0x01, 0x293F}, {0x11, 0x6078}}, image.Pt(320, 240)},
		{Rotate270, [][2]uint16{{0x01, 0x6B3F}, {0x11, 0x6048}}, image.Pt(320, 240)},
		{Rotate180, [][2]uint16{{0x01, 0x693F}, {0x11, 0x6040}}, image.Pt(240, 320)},
		{Rotate0, [][2]uint16{{0x01, 0x2B3F}, {0x11, 0x6070}}, image.Pt(240, 320)},
	}
	for _, test := range tests {
		bus.reset()
		c.Assert(d.SetOrientation(test.o), qt.IsNil)
		c.Assert(bus.registers(), qt.DeepEquals, test.scan, qt.Commentf("%s", test.o))
		c.Assert(d.Bounds().Size(), qt.Equals, test.size)
		// The buffer is reinterpreted, not reallocated.
		c.Assert(d.buf.Bounds().Size(), qt.Equals, test.size)
		c.Assert(d.buf.Bytes(), qt.HasLen, 240*320*2)
	}
}

func TestSSD1289RotationRedraws(t *testing.T) {
	c := qt.New(t)

	d, bus := newTestSSD1289(c, nil)
	d.Set(1, 0, color.White)
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(d.Dirty(), qt.IsFalse)

	// The scan direction changed, GRAM no longer shows the buffer.
	c.Assert(d.SetOrientation(Rotate90), qt.IsNil)
	c.Assert(d.Dirty(), qt.IsTrue)

	bus.reset()
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(bus.transactions, qt.Equals, 1)
	c.Assert(bus.lastData().Data, qt.HasLen, 240*320*2)
	c.Assert(d.Dirty(), qt.IsFalse)

	// Initial orientation on a freshly cleared panel needs no redraw.
	d, _ = newTestSSD1289(c, &Config{Orientation: Rotate90})
	c.Assert(d.Dirty(), qt.IsFalse)
}

func TestSSD1289LandscapeDraw(t *testing.T) {
	c := qt.New(t)

	d, bus := newTestSSD1289(c, &Config{Orientation: Rotate90})
	c.Assert(d.Bounds(), qt.Equals, image.Rect(0, 0, 320, 240))

	d.Set(319, 239, red)
	c.Assert(d.At(319, 239), qt.Equals, color.Color(pixel.RGB565{V: 0xF800}))
	c.Assert(d.buf.Bytes()[len(d.buf.Bytes())-2:], qt.DeepEquals, []byte{0xF8, 0x00})

	bus.reset()
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(bus.registers(), qt.DeepEquals, [][2]uint16{
		{ssd1289CursorX, 0},
		{ssd1289CursorY, 0},
		{ssd1289HorizontalRAM, 239 << 8},
		{ssd1289VerticalRAMStart, 0},
		{ssd1289VerticalRAMEnd, 319},
	})
	c.Assert(bus.lastData().Data, qt.HasLen, 240*320*2)
}

func TestSSD1289FillArea(t *testing.T) {
	c := qt.New(t)

	d, bus := newTestSSD1289(c, nil)
	bus.reset()

	c.Assert(d.FillArea(image.Rect(10, 20, 30, 25), red), qt.IsNil)
	c.Assert(bus.transactions, qt.Equals, 1)
	c.Assert(bus.registers(), qt.DeepEquals, [][2]uint16{
		{ssd1289CursorX, 10},
		{ssd1289CursorY, 20},
		{ssd1289HorizontalRAM, 29<<8 | 10},
		{ssd1289VerticalRAMStart, 20},
		{ssd1289VerticalRAMEnd, 24},
	})
	c.Assert(bus.lastData(), qt.DeepEquals, busOp{Data: []byte{0xF8, 0x00}, Repeat: 100})

	// The shadow buffer follows without a flush.
	c.Assert(d.Dirty(), qt.IsFalse)
	c.Assert(d.At(10, 20), qt.Equals, color.Color(pixel.RGB565{V: 0xF800}))
	c.Assert(d.At(29, 24), qt.Equals, color.Color(pixel.RGB565{V: 0xF800}))
	c.Assert(d.At(30, 24), qt.Equals, color.Color(pixel.RGB565{}))

	// Clipped to the screen.
	bus.reset()
	c.Assert(d.FillArea(image.Rect(230, 310, 300, 400), color.White), qt.IsNil)
	c.Assert(bus.lastData().Repeat, qt.Equals, 100)

	bus.reset()
	c.Assert(d.FillArea(image.Rect(300, 0, 310, 10), color.White), qt.IsNil)
	c.Assert(bus.transactions, qt.Equals, 0)
}

func TestSSD1289LandscapeWindow(t *testing.T) {
	c := qt.New(t)

	d, bus := newTestSSD1289(c, &Config{Orientation: Rotate270})
	bus.reset()

	// In landscape the horizontal RAM range covers logical rows.
	c.Assert(d.FillArea(image.Rect(10, 20, 30, 25), red), qt.IsNil)
	c.Assert(bus.registers(), qt.DeepEquals, [][2]uint16{
		{ssd1289CursorX, 20},
		{ssd1289CursorY, 10},
		{ssd1289HorizontalRAM, 24<<8 | 20},
		{ssd1289VerticalRAMStart, 10},
		{ssd1289VerticalRAMEnd, 29},
	})
}

func TestSSD1289Power(t *testing.T) {
	c := qt.New(t)

	d, bus := newTestSSD1289(c, nil)

	tests := []struct {
		mode PowerMode
		regs [][2]uint16
	}{
		{PowerSleep, [][2]uint16{{ssd1289SleepMode, 1}}},
		{PowerOn, [][2]uint16{{ssd1289SleepMode, 0}, {ssd1289DisplayControl, 0x0133}}},
		{PowerDeepSleep, [][2]uint16{{ssd1289DisplayControl, 0}, {ssd1289SleepMode, 1}}},
		{PowerOff, [][2]uint16{{ssd1289DisplayControl, 0}}},
	}
	for _, test := range tests {
		bus.reset()
		c.Assert(d.SetPower(test.mode), qt.IsNil)
		c.Assert(bus.registers(), qt.DeepEquals, test.regs, qt.Commentf("%s", test.mode))
	}

	// Contrast is recorded but not sent.
	bus.reset()
	c.Assert(d.SetContrast(80), qt.IsNil)
	c.Assert(d.State().Contrast, qt.Equals, 80)
	c.Assert(bus.ops, qt.HasLen, 0)
}
