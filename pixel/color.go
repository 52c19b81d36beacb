package pixel

import "image/color"

// Models for the native color types.
var (
	MonoModel   color.Model = color.ModelFunc(monoModel)
	RGB565Model color.Model = color.ModelFunc(rgb565Model)
)

var (
	Off = Mono{false}
	On  = Mono{true}
)

// Mono represents a 1-bit monochrome color. On is the foreground.
type Mono struct {
	On bool
}

func (c Mono) RGBA() (r, g, b, a uint32) {
	if c.On {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

// monoModel reduces any color that is not black to the foreground.
func monoModel(c color.Color) color.Color {
	switch c := c.(type) {
	case Mono:
		return c
	case RGB565:
		return Mono{On: c.V != 0}
	}
	r, g, b, _ := c.RGBA()
	return Mono{On: r|g|b != 0}
}

// RGB565 represents a 16-bit 5-6-5 RGB color.
type RGB565 struct {
	// Red 5, Green 6, Blue 5
	V uint16
}

func (c RGB565) RGBA() (r, g, b, a uint32) {
	red := (c.V & 0xF800) >> 8
	grn := (c.V & 0x07E0) >> 3
	blu := (c.V & 0x001F) << 3
	// Replicate the high bits into the empty low bits.
	red |= red >> 5
	grn |= grn >> 6
	blu |= blu >> 5
	red |= red << 8
	grn |= grn << 8
	blu |= blu << 8
	return uint32(red), uint32(grn), uint32(blu), 0xffff
}

func rgb565Model(c color.Color) color.Color {
	switch c := c.(type) {
	case RGB565:
		return c
	case Mono:
		if c.On {
			return RGB565{0xffff}
		}
		return RGB565{}
	}
	r, g, b, _ := c.RGBA()
	r = r & 0xF800
	g = (g & 0xFC00) >> 5
	b = (b & 0xF800) >> 11
	return RGB565{uint16(r | g | b)}
}
