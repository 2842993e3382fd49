// Package sensor implements accelerometer collaborators for the tilt source.
package sensor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const DefaultIIORoot = "/sys/bus/iio/devices"

var ErrNoDevice = errors.New("sensor: no iio accelerometer found")

// IIO reads a Linux industrial-I/O accelerometer through sysfs.
type IIO struct {
	Root string // device directory root, DefaultIIORoot when empty
	Path string // explicit iio:deviceN directory
	Name string // match against the device's name file

	logger *log.Logger
	base   string
	raw    [3]string
	scale  [3]float32
	last   [3]float32
	failed int
}

func NewIIO(path, name string, logger *log.Logger) *IIO {
	return &IIO{Path: path, Name: name, logger: logger}
}

// TryInitialize locates the device and reads its scales. It is called once.
func (d *IIO) TryInitialize() bool {
	if d.logger == nil {
		d.logger = log.Default()
	}
	base, err := d.locate()
	if err != nil {
		d.logger.Debug("iio probe failed", "err", err)
		return false
	}
	d.base = base
	for i, axis := range []string{"x", "y", "z"} {
		d.raw[i] = filepath.Join(base, "in_accel_"+axis+"_raw")
		if !fileExists(d.raw[i]) {
			d.logger.Debug("iio channel missing", "path", d.raw[i])
			return false
		}
		d.scale[i] = 1
		if v, err := readFloat(filepath.Join(base, "in_accel_"+axis+"_scale")); err == nil && v != 0 {
			d.scale[i] = float32(v)
		} else if v, err := readFloat(filepath.Join(base, "in_accel_scale")); err == nil && v != 0 {
			d.scale[i] = float32(v)
		}
	}
	d.logger.Info("iio accelerometer", "path", base, "scale", d.scale)
	return true
}

// ReadAcceleration returns raw·scale per axis. On a read error the previous
// sample is returned so the physics loop never stalls on a bad read.
func (d *IIO) ReadAcceleration() (x, y, z float32) {
	var out [3]float32
	for i, p := range d.raw {
		v, err := readInt(p)
		if err != nil {
			d.failed++
			if d.failed == 1 || d.failed%1000 == 0 {
				d.logger.Error("iio read failed, reusing last sample", "path", p, "count", d.failed, "err", err)
			}
			return d.last[0], d.last[1], d.last[2]
		}
		out[i] = float32(v) * d.scale[i]
	}
	d.last = out
	return out[0], out[1], out[2]
}

func (d *IIO) locate() (string, error) {
	if d.Path != "" {
		if !fileExists(d.Path) {
			return "", fmt.Errorf("%w: %s", ErrNoDevice, d.Path)
		}
		return d.Path, nil
	}

	root := d.Root
	if root == "" {
		root = DefaultIIORoot
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "iio:device") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, n := range names {
		dev := filepath.Join(root, n)
		if d.Name != "" {
			b, err := os.ReadFile(filepath.Join(dev, "name"))
			if err != nil || strings.TrimSpace(string(b)) != d.Name {
				continue
			}
		}
		if fileExists(filepath.Join(dev, "in_accel_x_raw")) {
			return dev, nil
		}
	}
	if d.Name != "" {
		return "", fmt.Errorf("%w: name %q", ErrNoDevice, d.Name)
	}
	return "", ErrNoDevice
}

// None never initializes, forcing demo mode.
type None struct{}

func (None) TryInitialize() bool                           { return false }
func (None) ReadAcceleration() (float32, float32, float32) { return 0, 0, 1 }

func readFloat(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse float %q: %w", s, err)
	}
	return f, nil
}

func readInt(path string) (int64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty channel %s", path)
	}
	v, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse int %q: %w", fields[0], err)
	}
	return v, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
