package pixel

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"

	"github.com/pkg/errors"
)

// ErrReshape is returned when a buffer can't be reinterpreted with the requested dimensions.
var ErrReshape = errors.New("pixel: reshape does not preserve the buffer size")

// Image is a shadow buffer.
type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)

	// Bytes returns the packed pixels in display RAM order.
	Bytes() []byte
}

// Buffer holds the pixel values and is a container that is used by all image formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels,
	// or between vertically adjacent pages for paged images.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Bytes() []byte {
	return p.Pix
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

func makeBuffer(w, h, stride, size int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
	}
}

// PageHeight is the number of pixel rows packed into one byte of a [PageImage].
const PageHeight = 8

// PageSize returns the number of bytes needed by a w×h page packed matrix.
func PageSize(w, h int) int {
	return (h + PageHeight - 1) / PageHeight * w
}

// PageAddr returns the byte index and bit mask of pixel (x, y) in a page packed
// buffer that is stride pixels wide.
func PageAddr(x, y, stride int) (index int, bit byte) {
	return y/PageHeight*stride + x, byte(1) << uint(y%PageHeight)
}

// PageImage is a 1-bit per pixel monochrome image, organised as horizontal
// pages of 8 rows where each byte is one column of a page with the top row in
// the least significant bit.
//
// This is the display RAM layout of the PCF8812, PCD8544 and SSD1306 family.
type PageImage struct {
	Buffer
}

// NewPageImage allocates a w×h page packed image.
func NewPageImage(w, h int) *PageImage {
	return &PageImage{
		Buffer: makeBuffer(w, h, w, PageSize(w, h)),
	}
}

func (p *PageImage) ColorModel() color.Model {
	return MonoModel
}

func (p *PageImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	index, bit := PageAddr(x, y, p.Stride)
	return Mono{On: p.Pix[index]&bit != 0}
}

func (p *PageImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	index, bit := PageAddr(x, y, p.Stride)
	if monoModel(c).(Mono).On {
		p.Pix[index] |= bit
	} else {
		p.Pix[index] &^= bit
	}
}

func (p *PageImage) Fill(c color.Color) {
	var value byte
	if monoModel(c).(Mono).On {
		value = 0xff
	}
	for i := range p.Pix {
		p.Pix[i] = value
	}
}

// RGB565Image is a 16-bits per pixel 5-6-5-bit RGB image.
type RGB565Image struct {
	Buffer
	Order binary.ByteOrder
}

// NewRGB565Image allocates a w×h big endian RGB565 image.
func NewRGB565Image(w, h int) *RGB565Image {
	return &RGB565Image{
		Buffer: makeBuffer(w, h, w*2, w*2*h),
		Order:  binary.BigEndian,
	}
}

func (p *RGB565Image) ColorModel() color.Model {
	return RGB565Model
}

func (p *RGB565Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return RGB565{p.Order.Uint16(p.Pix[x*2+y*p.Stride:])}
}

func (p *RGB565Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Order.PutUint16(p.Pix[x*2+y*p.Stride:], rgb565Model(c).(RGB565).V)
}

func (p *RGB565Image) Fill(c color.Color) {
	word := p.Word(c)
	for i, l := 0, len(p.Pix); i < l; i += 2 {
		copy(p.Pix[i:], word)
	}
}

// Word returns the two bytes that encode c in this image.
func (p *RGB565Image) Word(c color.Color) []byte {
	b := make([]byte, 2)
	p.Order.PutUint16(b, rgb565Model(c).(RGB565).V)
	return b
}

// Reshape reinterprets the pixels as a w×h image without moving or
// reallocating them.
func (p *RGB565Image) Reshape(w, h int) error {
	if w < 0 || h < 0 || w*h*2 != len(p.Pix) {
		return errors.Wrapf(ErrReshape, "%dx%d into %d bytes", w, h, len(p.Pix))
	}
	p.Rect = image.Rect(0, 0, w, h)
	p.Stride = w * 2
	return nil
}

// Interface checks.
var (
	_ Image = (*PageImage)(nil)
	_ Image = (*RGB565Image)(nil)
)
