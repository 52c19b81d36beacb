// Package pixel implements the packed shadow buffers used by the panel drivers.
//
// Each image type mirrors the byte layout of a controller's display RAM, so the
// Pix slice can be streamed to the hardware as-is. The types satisfy Go's
// [image/draw.Image] interface and carry their own [color.Model].
package pixel
