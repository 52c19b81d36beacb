package panel

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/BeatGlow/panel/pixel"
)

// Filler is implemented by drivers that can fill an area in display RAM
// without streaming the shadow buffer.
type Filler interface {
	FillArea(r image.Rectangle, c color.Color) error
}

// fillWindow fills the logical rectangle r with c through a controller RAM
// window opened by start, then mirrors the fill in the shadow buffer. The
// buffer is not marked dirty as it already matches the display.
func (d *device) fillWindow(r image.Rectangle, c color.Color, start func(image.Rectangle) error) error {
	if r = r.Intersect(d.Bounds()); r.Empty() {
		return nil
	}
	img, ok := d.buf.(*pixel.RGB565Image)
	if !ok {
		return errors.Errorf("panel: fill area not supported with %T", d.buf)
	}

	word := img.Word(c)
	if err := d.transaction(func() error {
		if err := start(r); err != nil {
			return err
		}
		return d.bus.WriteData(word, r.Dx()*r.Dy())
	}); err != nil {
		return errors.Wrap(err, "panel: fill area")
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
	return nil
}
