package panel

// Transform maps the logical point (x, y) of a w×h surface in orientation o to
// the physical matrix coordinates at 0°. The width and height are the logical
// dimensions in orientation o, so for 90° and 270° they are the native height
// and width respectively.
//
// Points inside the surface map one to one onto the native w×h (or h×w) area.
func Transform(x, y, w, h int, o Orientation) (px, py int) {
	switch o {
	case Rotate90:
		return y, w - x - 1
	case Rotate180:
		return w - x - 1, h - y - 1
	case Rotate270:
		return h - y - 1, x
	default:
		return x, y
	}
}
