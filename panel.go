// Package panel contains drivers for pixel addressed display controllers.
//
// Every driver keeps a shadow frame buffer that mirrors the controller's
// display RAM byte for byte. Drawing only touches the shadow buffer and marks
// it dirty; [Driver.Flush] streams the whole buffer to the hardware in a single
// bus transaction, and is free when nothing changed since the last flush.
//
// Device control (power, orientation, backlight and contrast) goes through
// [Driver.Control]. Requests that would not change anything, and requests a
// driver doesn't know, are silently ignored so callers can probe capabilities.
//
// Drivers are not safe for concurrent use; callers sharing a display between
// goroutines must serialize access themselves. The bus lock only brackets
// individual hardware transactions.
package panel

import (
	"fmt"
	"image/draw"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Errors
var (
	ErrSize = errors.New("panel: unsupported display size")
)

// halt stops the program when a driver can't operate at all.
var halt = func(reason string) {
	panic("panel: " + reason)
}

// Orientation of the logical drawing surface relative to the panel.
type Orientation uint8

// Supported orientations.
const (
	Rotate0   Orientation = iota
	Rotate90              // Rotate 90° clock wise
	Rotate180             // Rotate 180°
	Rotate270             // Rotate 270° clock wise
)

func (o Orientation) String() string {
	switch o {
	case Rotate0:
		return "0°"
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return fmt.Sprintf("Orientation(%d)", uint8(o))
	}
}

// Valid reports whether o is one of the four supported orientations.
func (o Orientation) Valid() bool {
	return o <= Rotate270
}

// Landscape reports whether o belongs to the {90°, 270°} group, in which the
// logical width and height are swapped.
func (o Orientation) Landscape() bool {
	return o == Rotate90 || o == Rotate270
}

// PowerMode of the controller.
type PowerMode uint8

// Power modes.
const (
	PowerOff PowerMode = iota
	PowerOn
	PowerSleep
	PowerDeepSleep
)

func (p PowerMode) String() string {
	switch p {
	case PowerOff:
		return "off"
	case PowerOn:
		return "on"
	case PowerSleep:
		return "sleep"
	case PowerDeepSleep:
		return "deep sleep"
	default:
		return fmt.Sprintf("PowerMode(%d)", uint8(p))
	}
}

// Valid reports whether p is a known power mode.
func (p PowerMode) Valid() bool {
	return p <= PowerDeepSleep
}

// Request is a device control request code.
type Request uint8

// Control requests.
const (
	ControlPower Request = iota
	ControlOrientation
	ControlBacklight
	ControlContrast
)

func (r Request) String() string {
	switch r {
	case ControlPower:
		return "power"
	case ControlOrientation:
		return "orientation"
	case ControlBacklight:
		return "backlight"
	case ControlContrast:
		return "contrast"
	default:
		return fmt.Sprintf("Request(%d)", uint8(r))
	}
}

// RotationStrategy selects how a driver implements orientation changes.
type RotationStrategy uint8

const (
	// SoftwareRotation maps every logical coordinate to the physical matrix
	// with [Transform] before it reaches the shadow buffer.
	SoftwareRotation RotationStrategy = iota

	// HardwareRotation reprograms the controller's scan direction; the shadow
	// buffer is indexed in logical coordinates.
	HardwareRotation
)

func (s RotationStrategy) String() string {
	if s == HardwareRotation {
		return "hardware"
	}
	return "software"
}

// State is a snapshot of the device state.
type State struct {
	// Width and Height are the logical dimensions in the current orientation.
	Width  int
	Height int

	Orientation Orientation
	Power       PowerMode

	// Backlight and Contrast are percentages.
	Backlight int
	Contrast  int
}

// Driver is a display controller driver.
//
// Set is the pixel write operation: it only updates the shadow buffer.
type Driver interface {
	draw.Image
	fmt.Stringer

	// Close powers the display off and closes the bus.
	Close() error

	// Clear the shadow buffer.
	Clear()

	// Dirty reports whether the shadow buffer has unflushed changes.
	Dirty() bool

	// Flush sends the shadow buffer to the controller if it is dirty.
	Flush() error

	// Control applies a device control request. Unknown requests and
	// requests for the current value are no-ops.
	Control(req Request, value int) error

	// SetPower is Control(ControlPower, int(mode)).
	SetPower(PowerMode) error

	// SetOrientation is Control(ControlOrientation, int(o)).
	SetOrientation(Orientation) error

	// SetBacklight is Control(ControlBacklight, percent).
	SetBacklight(percent int) error

	// SetContrast is Control(ControlContrast, percent).
	SetContrast(percent int) error

	// State returns the current device state.
	State() State

	// Strategy returns how the driver implements rotation.
	Strategy() RotationStrategy
}

// Config is the driver configuration.
type Config struct {
	// Width of the display in pixels, zero selects the driver default.
	Width int

	// Height of the display in pixels, zero selects the driver default.
	Height int

	// Orientation applied after initialization.
	Orientation Orientation

	// Backlight is the initial backlight level in percent, zero selects the driver default.
	Backlight int

	// Contrast is the initial contrast level in percent, zero selects the driver default.
	Contrast int

	// Logger receives debug output, nil disables logging.
	Logger *zap.Logger
}

func (c *Config) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
