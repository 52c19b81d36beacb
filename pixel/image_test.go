package pixel

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestPageImage(t *testing.T) {
	testImage(t, func(size image.Point) Image {
		return NewPageImage(size.X, size.Y)
	}, MonoModel)
}

func TestRGB565Image(t *testing.T) {
	testImage(t, func(size image.Point) Image {
		return NewRGB565Image(size.X, size.Y)
	}, RGB565Model)
}

func TestPageSize(t *testing.T) {
	c := qt.New(t)

	c.Assert(PageSize(102, 72), qt.Equals, 918)
	c.Assert(PageSize(96, 65), qt.Equals, 96*9)
	c.Assert(PageSize(128, 64), qt.Equals, 1024)
	c.Assert(PageSize(1, 1), qt.Equals, 1)
	c.Assert(PageSize(0, 0), qt.Equals, 0)
}

func TestPageAddr(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		x, y, stride int
		index        int
		bit          byte
	}{
		{0, 0, 102, 0, 0x01},
		{0, 7, 102, 0, 0x80},
		{0, 8, 102, 102, 0x01},
		{101, 71, 102, 917, 0x80},
		{5, 13, 96, 96 + 5, 0x20},
	}
	for _, test := range tests {
		index, bit := PageAddr(test.x, test.y, test.stride)
		c.Check(index, qt.Equals, test.index, qt.Commentf("(%d,%d)", test.x, test.y))
		c.Check(bit, qt.Equals, test.bit, qt.Commentf("(%d,%d)", test.x, test.y))
	}
}

func TestPageImageLayout(t *testing.T) {
	c := qt.New(t)

	i := NewPageImage(102, 72)
	c.Assert(i.Bytes(), qt.HasLen, 918)

	i.Set(0, 0, On)
	c.Assert(i.Pix[0], qt.Equals, byte(0x01))

	i.Set(3, 9, color.White)
	c.Assert(i.Pix[102+3], qt.Equals, byte(0x02))

	i.Set(3, 9, color.Black)
	c.Assert(i.Pix[102+3], qt.Equals, byte(0x00))
}

func TestRGB565ImageReshape(t *testing.T) {
	c := qt.New(t)

	i := NewRGB565Image(4, 2)
	i.Set(1, 0, color.White)
	pix := i.Bytes()

	c.Assert(i.Reshape(2, 4), qt.IsNil)
	c.Assert(i.Bounds(), qt.Equals, image.Rect(0, 0, 2, 4))
	c.Assert(i.Stride, qt.Equals, 4)
	c.Assert(&i.Bytes()[0], qt.Equals, &pix[0])
	c.Assert(i.At(1, 0), qt.Equals, color.Color(RGB565{0xffff}))

	c.Assert(i.Reshape(3, 3), qt.ErrorIs, ErrReshape)
	c.Assert(i.Bounds(), qt.Equals, image.Rect(0, 0, 2, 4))
}

func testImage(t *testing.T, f func(image.Point) Image, model color.Model) {
	t.Helper()
	testCases := []image.Point{
		{},
		image.Pt(1, 1),
		image.Pt(2, 2),
		image.Pt(96, 65),
		image.Pt(102, 72),
	}
	for _, test := range testCases {
		t.Run(test.String(), func(t *testing.T) {
			c := qt.New(t)
			i := f(test)

			c.Assert(i.Bounds().Size(), qt.Equals, test)
			c.Assert(i.ColorModel(), qt.Equals, model)

			c.Run("in-bounds", func(c *qt.C) {
				for y := 0; y < test.Y; y++ {
					for x := 0; x < test.X; x++ {
						col := testRandomColor()
						i.Set(x, y, col)
						c.Assert(i.At(x, y), qt.Equals, model.Convert(col), qt.Commentf("pixel (%d,%d)", x, y))
					}
				}
			})

			c.Run("out-bounds", func(c *qt.C) {
				before := make([]byte, len(i.Bytes()))
				copy(before, i.Bytes())
				for y := -2; y < test.Y+2; y++ {
					for _, x := range []int{-1, test.X, test.X + 1} {
						i.Set(x, y, color.White)
						c.Assert(i.At(x, y), qt.Equals, color.Color(color.Transparent))
					}
				}
				c.Assert(i.Bytes(), qt.DeepEquals, before)
			})

			c.Run("fill", func(c *qt.C) {
				col := testRandomColor()
				i.Fill(col)
				if test.X > 0 && test.Y > 0 {
					x, y := rand.Intn(test.X), rand.Intn(test.Y)
					c.Assert(i.At(x, y), qt.Equals, model.Convert(col))
				}
			})

			c.Run("clear", func(c *qt.C) {
				i.Clear()
				for _, b := range i.Bytes() {
					c.Assert(b, qt.Equals, byte(0))
				}
			})
		})
	}
}

func testRandomColor() color.Color {
	return color.RGBA{
		R: uint8(rand.Intn(256)),
		G: uint8(rand.Intn(256)),
		B: uint8(rand.Intn(256)),
		A: 0xff,
	}
}
