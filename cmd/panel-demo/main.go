package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/panel"
	"github.com/BeatGlow/panel/conn"
)

var (
	widthFlag     = flag.Int("width", 0, "Display width (default: driver native)")
	heightFlag    = flag.Int("height", 0, "Display height (default: driver native)")
	rotateFlag    = flag.StringP("rotate", "r", "", "Display rotation (0, 90, 180, 270)")
	backlightFlag = flag.Int("backlight", 0, "Backlight level in percent (default: driver default)")
	contrastFlag  = flag.Int("contrast", 0, "Contrast level in percent (default: driver default)")
	framesFlag    = flag.IntP("frames", "n", 0, "Number of frames to draw (default: until interrupted)")
	intervalFlag  = flag.Duration("interval", 50*time.Millisecond, "Frame interval")
	outFlag       = flag.StringP("out", "o", "frames", "Preview output directory for the sim bus")
	scaleFlag     = flag.Int("scale", 4, "Preview scale for the sim bus")
	i2cDeviceFlag = flag.Int("i2c-dev", panel.DefaultI2CConfig.Device, "I²C device number (default: use first available)")
	i2cAddrFlag   = flag.Uint8("i2c-addr", panel.DefaultI2CConfig.Addr, "I²C device address")
	spiBusFlag    = flag.Int("spi-bus", 0, "SPI bus")
	spiDeviceFlag = flag.Int("spi-dev", 0, "SPI device")
	spiSpeedFlag  = flag.Uint32("spi-speed", panel.DefaultSPIConfig.SpeedHz, "SPI speed in Hz")
	spiModeFlag   = flag.Uint8("spi-mode", 0, "SPI clock mode (0-3)")
	resetPinFlag  = flag.String("reset", "GPIO25", "Reset GPIO pin")
	dcPinFlag     = flag.String("dc", "GPIO24", "Data/Command GPIO pin (DC)")
	blPinFlag     = flag.String("bl", "GPIO19", "Backlight GPIO pin")
	debugFlag     = flag.BoolP("debug", "d", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <spi|i2c|sim> <pcf8812|ssd1306|sh1106|ssd1289|st7789>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	log, err := newLogger(*debugFlag)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, log, strings.ToLower(flag.Arg(0)), strings.ToLower(flag.Arg(1)))
	cancel()
	if err != nil {
		log.Error("demo failed", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run opens the bus and driver and draws frames until ctx is done. The driver
// is closed on every return path once opened.
func run(ctx context.Context, log *zap.Logger, busType, driver string) error {
	orientation, err := parseOrientation(*rotateFlag)
	if err != nil {
		return err
	}

	if busType != "sim" {
		if _, err = host.Init(); err != nil {
			return errors.Wrap(err, "host init")
		}
	}

	var bus panel.Bus
	switch busType {
	case "i2c":
		bus, err = panel.OpenI2C(&panel.I2CConfig{
			Device:    *i2cDeviceFlag,
			Addr:      *i2cAddrFlag,
			BatchSize: panel.DefaultI2CConfig.BatchSize,
			Reset:     gpioreg.ByName(*resetPinFlag),
			Backlight: gpioreg.ByName(*blPinFlag),
			Logger:    log,
		})
	case "spi":
		bus, err = panel.OpenSPI(&panel.SPIConfig{
			Bus:            *spiBusFlag,
			Device:         *spiDeviceFlag,
			SpeedHz:        *spiSpeedFlag,
			Mode:           conn.SPIMode(*spiModeFlag & 3),
			BatchSize:      panel.DefaultSPIConfig.BatchSize,
			ResetActiveLow: true,
			Reset:          gpioreg.ByName(*resetPinFlag),
			DC:             gpioreg.ByName(*dcPinFlag),
			Backlight:      gpioreg.ByName(*blPinFlag),
			Logger:         log,
		})
	case "sim":
		bus = newSimBus(log)
	default:
		err = errors.Errorf("unsupported bus type %q", busType)
	}
	if err != nil {
		return errors.Wrapf(err, "open %s bus", busType)
	}
	log.Info("using bus", zap.Stringer("bus", bus))

	config := &panel.Config{
		Width:       *widthFlag,
		Height:      *heightFlag,
		Orientation: orientation,
		Backlight:   *backlightFlag,
		Contrast:    *contrastFlag,
		Logger:      log,
	}

	var output panel.Driver
	switch driver {
	case "pcf8812":
		output, err = panel.PCF8812(bus, config)
	case "ssd1306":
		output, err = panel.SSD1306(bus, config)
	case "sh1106":
		output, err = panel.SH1106(bus, config)
	case "ssd1289":
		output, err = panel.SSD1289(bus, config)
	case "st7789":
		output, err = panel.ST7789(bus, config)
	default:
		err = errors.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		_ = bus.Close()
		return errors.Wrap(err, "driver init")
	}
	defer func() {
		if cerr := output.Close(); cerr != nil {
			log.Warn("close failed", zap.Error(cerr))
		}
	}()

	state := output.State()
	log.Info("using driver",
		zap.Stringer("driver", output),
		zap.Stringer("orientation", state.Orientation),
		zap.Stringer("rotation", output.Strategy()),
		zap.Int("backlight", state.Backlight),
		zap.Int("contrast", state.Contrast))

	var preview *previewWriter
	if busType == "sim" {
		if preview, err = newPreviewWriter(*outFlag, *scaleFlag); err != nil {
			return errors.Wrap(err, "preview output")
		}
	}

	face, err := labelFace(output.Bounds())
	if err != nil {
		return err
	}

	ticker := time.NewTicker(*intervalFlag)
	defer ticker.Stop()

	log.Info("drawing, hit control-c to stop...", zap.Int("frames", *framesFlag))
	for frame := 0; *framesFlag == 0 || frame < *framesFlag; frame++ {
		drawFrame(output, face, frame)
		if err = output.Flush(); err != nil {
			return errors.Wrapf(err, "flush frame %d", frame)
		}
		if preview != nil {
			if err = preview.write(output, frame); err != nil {
				return errors.Wrapf(err, "preview frame %d", frame)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	if !debug {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return config.Build()
}

func parseOrientation(value string) (panel.Orientation, error) {
	switch value {
	case "", "no", "0":
		return panel.Rotate0, nil
	case "90", "right", "cw":
		return panel.Rotate90, nil
	case "180", "flip":
		return panel.Rotate180, nil
	case "270", "left", "ccw":
		return panel.Rotate270, nil
	default:
		return 0, errors.Errorf("invalid rotation %q", value)
	}
}

// labelFace returns a Go Regular face sized to the screen.
func labelFace(r image.Rectangle) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse Go Regular")
	}
	size := float64(r.Dy()) / 6
	if size < 8 {
		size = 8
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// drawFrame draws a border, a diagonal that moves with frame and a frame counter.
func drawFrame(output panel.Driver, face font.Face, frame int) {
	output.Clear()

	r := output.Bounds()
	for x := 0; x < r.Max.X; x++ {
		output.Set(x, 0, color.White)
		output.Set(x, r.Max.Y-1, color.White)
	}
	for y := 0; y < r.Max.Y; y++ {
		output.Set(0, y, color.White)
		output.Set(r.Max.X-1, y, color.White)
	}

	shift := frame % r.Dx()
	for y := 1; y < r.Max.Y-1; y++ {
		x := (y + shift) % r.Dx()
		output.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 0xff, A: 0xff})
	}

	metrics := face.Metrics()
	d := &font.Drawer{
		Dst:  output,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(3, 2+metrics.Ascent.Ceil()),
	}
	d.DrawString(fmt.Sprintf("%s %d", output.State().Orientation, frame))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
