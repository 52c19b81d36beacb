package panel

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// reshaper is implemented by shadow buffers that can be reinterpreted with
// swapped dimensions for hardware rotation.
type reshaper interface {
	Reshape(w, h int) error
}

// Control applies a device control request.
//
// Requests for the current value, unknown requests and invalid power modes or
// orientations are ignored. Levels are clamped to [0, 100] before they are
// compared against the current value. Errors are only returned for failed
// hardware transactions, in which case the state is left unchanged.
func (d *device) Control(req Request, value int) error {
	switch req {
	case ControlPower:
		return d.setPower(PowerMode(value), value)
	case ControlOrientation:
		return d.setOrientation(Orientation(value), value)
	case ControlBacklight:
		return d.setBacklight(lo.Clamp(value, 0, 100))
	case ControlContrast:
		return d.setContrast(lo.Clamp(value, 0, 100))
	default:
		d.log.Debug("ignored unknown control request", zap.Stringer("request", req), zap.Int("value", value))
		return nil
	}
}

func (d *device) SetPower(mode PowerMode) error {
	return d.Control(ControlPower, int(mode))
}

func (d *device) SetOrientation(o Orientation) error {
	return d.Control(ControlOrientation, int(o))
}

func (d *device) SetBacklight(percent int) error {
	return d.Control(ControlBacklight, percent)
}

func (d *device) SetContrast(percent int) error {
	return d.Control(ControlContrast, percent)
}

func (d *device) setPower(mode PowerMode, value int) error {
	if value < 0 || !mode.Valid() || int(mode) != value || mode == d.state.Power {
		return nil
	}

	from := d.state.Power
	if err := d.transaction(func() error {
		return d.hw.power(from, mode)
	}); err != nil {
		return errors.Wrapf(err, "panel: power %s", mode)
	}

	d.state.Power = mode
	d.log.Debug("power", zap.Stringer("from", from), zap.Stringer("to", mode))
	return nil
}

func (d *device) setOrientation(o Orientation, value int) error {
	if value < 0 || !o.Valid() || int(o) != value || o == d.state.Orientation {
		return nil
	}

	from := d.state.Orientation
	if err := d.transaction(func() error {
		return d.hw.rotate(from, o)
	}); err != nil {
		return errors.Wrapf(err, "panel: orientation %s", o)
	}

	if from.Landscape() != o.Landscape() {
		d.state.Width, d.state.Height = d.state.Height, d.state.Width
		if d.spec.strategy == HardwareRotation {
			if r, ok := d.buf.(reshaper); ok {
				if err := r.Reshape(d.state.Width, d.state.Height); err != nil {
					halt(err.Error())
				}
			}
		}
	}

	d.state.Orientation = o
	if d.spec.strategy == HardwareRotation {
		// The controller now maps the buffer onto RAM differently; the
		// content on glass is stale until the next flush.
		d.dirty = true
	}
	d.log.Debug("orientation",
		zap.Stringer("from", from),
		zap.Stringer("to", o),
		zap.Int("width", d.state.Width),
		zap.Int("height", d.state.Height))
	return nil
}

func (d *device) setBacklight(percent int) error {
	if percent == d.state.Backlight {
		return nil
	}
	if err := d.bus.SetBacklight(percent); err != nil {
		return errors.Wrapf(err, "panel: backlight %d%%", percent)
	}
	d.state.Backlight = percent
	d.log.Debug("backlight", zap.Int("percent", percent))
	return nil
}

func (d *device) setContrast(percent int) error {
	if percent == d.state.Contrast {
		return nil
	}
	if err := d.transaction(func() error {
		return d.hw.contrast(percent)
	}); err != nil {
		return errors.Wrapf(err, "panel: contrast %d%%", percent)
	}
	d.state.Contrast = percent
	d.log.Debug("contrast", zap.Int("percent", percent))
	return nil
}
