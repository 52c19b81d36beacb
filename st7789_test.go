package panel

import (
	"image"
	"image/color"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/BeatGlow/panel/pixel"
)

// commandsAfter returns the data sent after each occurrence of command.
func (b *recordingBus) commandsAfter(command byte) [][]byte {
	var out [][]byte
	for i, op := range b.ops {
		if op.Index && op.Data[0] == command && i+1 < len(b.ops) && !b.ops[i+1].Index {
			out = append(out, b.ops[i+1].Data)
		}
	}
	return out
}

func TestST7789Init(t *testing.T) {
	c := qt.New(t)

	bus := new(recordingBus)
	d, err := ST7789(bus, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(d.String(), qt.Equals, "ST7789 240x240")
	c.Assert(d.Strategy(), qt.Equals, HardwareRotation)

	c.Assert(bus.indexes()[0], qt.Equals, byte(st7789SLPOUT))
	c.Assert(bus.indexes()[len(bus.indexes())-1], qt.Equals, byte(st7789DISPON))
	// Full RAM cleared.
	c.Assert(bus.commandsAfter(st7789RASET), qt.DeepEquals, [][]byte{{0, 0, 0x01, 0x3F}})

	_, err = ST7789(new(recordingBus), &Config{Width: 320, Height: 240})
	c.Assert(err, qt.ErrorIs, ErrSize)
}

func TestST7789Rotation(t *testing.T) {
	c := qt.New(t)

	bus := new(recordingBus)
	d, err := ST7789(bus, &Config{Height: 320})
	c.Assert(err, qt.IsNil)

	bus.reset()
	c.Assert(d.SetOrientation(Rotate90), qt.IsNil)
	c.Assert(bus.commandsAfter(st7789MADCTL), qt.DeepEquals, [][]byte{{0x60}})
	c.Assert(d.Bounds(), qt.Equals, image.Rect(0, 0, 320, 240))

	d.Set(319, 0, color.White)
	bus.reset()
	c.Assert(d.Flush(), qt.IsNil)
	c.Assert(bus.commandsAfter(st7789CASET), qt.DeepEquals, [][]byte{{0, 0, 0x01, 0x3F}})
	c.Assert(bus.commandsAfter(st7789RASET), qt.DeepEquals, [][]byte{{0, 0, 0, 0xEF}})
	frame := bus.lastData()
	c.Assert(frame.Data[638:640], qt.DeepEquals, []byte{0xFF, 0xFF})
}

func TestST7789SquareOffset(t *testing.T) {
	c := qt.New(t)

	bus := new(recordingBus)
	d, err := ST7789(bus, &Config{Orientation: Rotate270})
	c.Assert(err, qt.IsNil)
	c.Assert(bus.commandsAfter(st7789MADCTL)[1], qt.DeepEquals, []byte{0xA0})

	bus.reset()
	c.Assert(d.(Filler).FillArea(image.Rect(0, 0, 10, 10), color.White), qt.IsNil)
	c.Assert(bus.commandsAfter(st7789CASET), qt.DeepEquals, [][]byte{{0, 80, 0, 89}})
	c.Assert(bus.commandsAfter(st7789RASET), qt.DeepEquals, [][]byte{{0, 0, 0, 9}})
	c.Assert(bus.lastData(), qt.DeepEquals, busOp{Data: []byte{0xFF, 0xFF}, Repeat: 100})
	c.Assert(d.At(9, 9), qt.Equals, color.Color(pixel.RGB565{V: 0xFFFF}))
	c.Assert(d.Dirty(), qt.IsFalse)
}

func TestST7789Power(t *testing.T) {
	c := qt.New(t)

	bus := new(recordingBus)
	d, err := ST7789(bus, nil)
	c.Assert(err, qt.IsNil)

	bus.reset()
	c.Assert(d.SetPower(PowerDeepSleep), qt.IsNil)
	c.Assert(bus.indexes(), qt.DeepEquals, []byte{st7789DISPOFF, st7789SLPIN})

	bus.reset()
	c.Assert(d.SetPower(PowerOn), qt.IsNil)
	c.Assert(bus.indexes(), qt.DeepEquals, []byte{st7789SLPOUT, st7789DISPON})
}
