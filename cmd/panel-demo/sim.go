package main

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/panel"
)

// simBus is a bus without hardware behind it. It accepts every write and keeps
// count of the traffic.
type simBus struct {
	mu      sync.Mutex
	log     *zap.Logger
	indexes int
	bytes   int
}

func newSimBus(log *zap.Logger) *simBus {
	return &simBus{log: log.Named("sim")}
}

func (b *simBus) String() string { return "simulator" }

func (b *simBus) Close() error {
	b.log.Info("closed", zap.Int("indexes", b.indexes), zap.Int("bytes", b.bytes))
	return nil
}

func (b *simBus) Init() error     { return nil }
func (b *simBus) PostInit() error { return nil }
func (b *simBus) Acquire()        { b.mu.Lock() }
func (b *simBus) Release()        { b.mu.Unlock() }

func (b *simBus) Reset(level gpio.Level) error {
	b.log.Debug("reset", zap.Stringer("level", level))
	return nil
}

func (b *simBus) Delay(time.Duration) {}

func (b *simBus) WriteIndex(byte) error {
	b.indexes++
	return nil
}

func (b *simBus) WriteData(data []byte, repeat int) error {
	b.bytes += len(data) * repeat
	return nil
}

func (b *simBus) SetBacklight(percent int) error {
	b.log.Debug("backlight", zap.Int("percent", percent))
	return nil
}

var _ panel.Bus = (*simBus)(nil)

// previewWriter stores scaled PNG snapshots of the logical screen.
type previewWriter struct {
	fs    afero.Fs
	dir   string
	scale int
}

func newPreviewWriter(dir string, scale int) (*previewWriter, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	if scale < 1 {
		scale = 1
	}
	return &previewWriter{fs: fs, dir: dir, scale: scale}, nil
}

func (p *previewWriter) write(src image.Image, frame int) error {
	size := src.Bounds().Size()
	img := imaging.Resize(src, size.X*p.scale, size.Y*p.scale, imaging.NearestNeighbor)

	name := filepath.Join(p.dir, fmt.Sprintf("frame-%05d.png", frame))
	f, err := p.fs.Create(name)
	if err != nil {
		return errors.Wrapf(err, "create %s", name)
	}
	if err = imaging.Encode(f, img, imaging.PNG); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "encode %s", name)
	}
	return f.Close()
}
