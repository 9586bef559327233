package ssd1306

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/flavioheleno/ssd1306/image1bit"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Controller opcodes.
const (
	_CHARGEPUMP          = 0x8D
	_COLUMNADDR          = 0x21
	_COMSCANDEC          = 0xC8
	_COMSCANINC          = 0xC0
	_DEACTIVATE_SCROLL   = 0x2E
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGEADDR            = 0x22
	_SEGREMAP            = 0xA0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
)

const (
	maxWidth  = 128
	maxHeight = 64

	// DefaultContrast is the contrast programmed at initialization when Opts.Contrast is 0.
	DefaultContrast = 0xCF

	busSpeed = 8 * physic.MegaHertz
)

var (
	// ErrAllocation is returned by NewSPI when no frame buffer can be allocated
	// for the requested geometry.
	ErrAllocation = errors.New("ssd1306: cannot allocate frame buffer")
	// ErrOutOfBounds is returned when a pixel coordinate lies outside the display.
	ErrOutOfBounds = errors.New("ssd1306: pixel out of bounds")
	// ErrHalted is returned by every operation after Halt.
	ErrHalted = errors.New("ssd1306: halted")
)

// sleep is replaced in tests.
var sleep = time.Sleep

// PixelOp is the operation SetPixel applies to a pixel.
type PixelOp byte

const (
	PixelSet    PixelOp = iota // Light the pixel
	PixelClear                 // Turn the pixel off
	PixelInvert                // Toggle the pixel
)

func (o PixelOp) String() string {
	switch o {
	case PixelSet:
		return "Set"
	case PixelClear:
		return "Clear"
	case PixelInvert:
		return "Invert"
	default:
		return fmt.Sprintf("PixelOp(%d)", byte(o))
	}
}

// Opts is the configuration for the SSD1306 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 128, must be ≤128)
	H int // Height (default: 64, must be ≤64)

	// Rotated flips the display by 180°.
	Rotated bool
	// Sequential selects the sequential COM pin configuration. Try it if every
	// other row is missing, typically on 32 pixel high panels.
	Sequential bool

	// Contrast programmed at initialization (default: DefaultContrast).
	Contrast byte

	// Optional hardware reset pin
	RST gpio.PinOut
	// Optional chip select pin. When set, the SPI port is opened with spi.NoCS
	// and the driver holds CS low for the duration of each transaction.
	CS gpio.PinOut
}

// Dev is the device handle for the SSD1306 display.
//
// It is not safe for concurrent use.
type Dev struct {
	// Communication
	c   spi.Conn    // SPI connection
	dc  gpio.PinOut // Data/Command pin
	rst gpio.PinOut // Reset pin (optional)
	cs  gpio.PinOut // Chip select pin (optional)

	// Display geometry
	rect image.Rectangle

	// Frame buffer, in controller page layout.
	buffer *image1bit.VerticalLSB

	// State
	halted bool
}

// NewSPI creates a new SSD1306 device connected via SPI and initializes it.
//
// The SPI port is configured for 8MHz, Mode0 (CPOL=0, CPHA=0), 8-bit transfers.
// The dc (Data/Command) GPIO pin must be provided and configured as an output.
//
// opts can be nil to use defaults (128x64 display).
//
// On return the panel is on and blank, and the frame buffer is zeroed.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: maxWidth, H: maxHeight}
	}
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("ssd1306: dc pin is required")
	}

	d := &Dev{
		dc:  dc,
		rst: opts.RST,
		cs:  opts.CS,
	}
	if err := d.allocate(opts.W, opts.H); err != nil {
		return nil, err
	}

	mode := spi.Mode0
	if d.cs != nil {
		mode |= spi.NoCS
	}
	c, err := p.Connect(busSpeed, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: failed to connect to SPI port: %w", err)
	}
	d.c = c

	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// allocate validates the geometry and creates a zeroed frame buffer.
func (d *Dev) allocate(w, h int) error {
	if w <= 0 || w > maxWidth {
		return fmt.Errorf("%w: width must be between 1 and %d, got %d", ErrAllocation, maxWidth, w)
	}
	if h <= 0 || h > maxHeight {
		return fmt.Errorf("%w: height must be between 1 and %d, got %d", ErrAllocation, maxHeight, h)
	}
	d.rect = image.Rect(0, 0, w, h)
	d.buffer = image1bit.NewVerticalLSB(d.rect)
	return nil
}

// init resets the controller and sends the initialization sequence.
func (d *Dev) init(opts *Opts) error {
	if d.cs != nil {
		if err := d.cs.Out(gpio.High); err != nil {
			return fmt.Errorf("ssd1306: failed to deselect CS: %w", err)
		}
	}

	// Hardware reset sequence (if RST pin is provided)
	if d.rst != nil {
		steps := []struct {
			l gpio.Level
			t time.Duration
		}{
			{gpio.High, time.Millisecond}, // VDD settles
			{gpio.Low, 10 * time.Millisecond},
			{gpio.High, 10 * time.Millisecond},
		}
		for _, s := range steps {
			if err := d.rst.Out(s.l); err != nil {
				return fmt.Errorf("ssd1306: failed to drive RST %s: %w", s.l, err)
			}
			sleep(s.t)
		}
	}

	return d.transaction(func() error {
		return d.sendCommands(initCommands(opts))
	})
}

// initCommands returns the power-on sequence, in the order mandated by the datasheet.
func initCommands(opts *Opts) []byte {
	contrast := opts.Contrast
	if contrast == 0 {
		contrast = DefaultContrast
	}
	segRemap, comScan := byte(_SEGREMAP|0x01), byte(_COMSCANDEC)
	if opts.Rotated {
		segRemap, comScan = _SEGREMAP, _COMSCANINC
	}
	comPins := byte(0x12)
	if opts.Sequential {
		comPins = 0x02
	}
	return []byte{
		_DISPLAYOFF,
		_SETDISPLAYCLOCKDIV, 0x80, // Suggested oscillator ratio
		_SETMULTIPLEX, byte(opts.H - 1),
		_SETDISPLAYOFFSET, 0x00,
		_SETSTARTLINE | 0x00,
		_CHARGEPUMP, 0x14, // Internal charge pump
		_MEMORYMODE, 0x00, // Horizontal addressing
		segRemap,
		comScan,
		_SETCOMPINS, comPins,
		_SETCONTRAST, contrast,
		_SETPRECHARGE, 0xF1,
		_SETVCOMDETECT, 0x40,
		_DISPLAYALLON_RESUME,
		_NORMALDISPLAY,
		_DEACTIVATE_SCROLL,
		_DISPLAYON,
	}
}

// transaction selects the chip, runs f and always deselects the chip.
func (d *Dev) transaction(f func() error) (err error) {
	if d.cs != nil {
		if err := d.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("ssd1306: failed to select CS: %w", err)
		}
		defer func() {
			if err2 := d.cs.Out(gpio.High); err2 != nil && err == nil {
				err = fmt.Errorf("ssd1306: failed to deselect CS: %w", err2)
			}
		}()
	}
	return f()
}

// sendCommands sends a slice of command bytes.
func (d *Dev) sendCommands(cmds []byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	return d.tx(cmds)
}

// sendData sends a slice of data bytes.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	return d.tx(data)
}

// tx writes w in chunks no larger than what the port accepts in one transfer.
func (d *Dev) tx(w []byte) error {
	limit := len(w)
	if l, ok := d.c.(conn.Limits); ok {
		if m := l.MaxTxSize(); m > 0 && m < limit {
			limit = m
		}
	}
	for len(w) > 0 {
		n := limit
		if n > len(w) {
			n = len(w)
		}
		if err := d.c.Tx(w[:n], nil); err != nil {
			return err
		}
		w = w[n:]
	}
	return nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Buffer returns the frame buffer in controller page layout.
//
// Bit y&7 of byte x+(y/8)*width is pixel (x, y). The slice is owned by Dev
// and is only valid until Halt.
func (d *Dev) Buffer() []byte {
	if d.buffer == nil {
		return nil
	}
	return d.buffer.Pix
}

// Clear turns every pixel of the frame buffer off. It does not talk to the display.
func (d *Dev) Clear() error {
	if d.halted {
		return ErrHalted
	}
	clear(d.buffer.Pix)
	return nil
}

// SetPixel applies op to the pixel at (x, y) in the frame buffer.
// It does not talk to the display; call Flush to show the result.
func (d *Dev) SetPixel(x, y int, op PixelOp) error {
	if d.halted {
		return ErrHalted
	}
	if !(image.Point{X: x, Y: y}.In(d.rect)) {
		return fmt.Errorf("%w: (%d, %d) not in %v", ErrOutOfBounds, x, y, d.rect)
	}
	offset, mask := d.buffer.PixOffset(x, y)
	switch op {
	case PixelSet:
		d.buffer.Pix[offset] |= mask
	case PixelClear:
		d.buffer.Pix[offset] &^= mask
	case PixelInvert:
		d.buffer.Pix[offset] ^= mask
	default:
		return fmt.Errorf("ssd1306: unknown pixel operation %s", op)
	}
	return nil
}

// Pixel reports whether the pixel at (x, y) is lit in the frame buffer.
func (d *Dev) Pixel(x, y int) (bool, error) {
	if d.halted {
		return false, ErrHalted
	}
	if !(image.Point{X: x, Y: y}.In(d.rect)) {
		return false, fmt.Errorf("%w: (%d, %d) not in %v", ErrOutOfBounds, x, y, d.rect)
	}
	return bool(d.buffer.BitAt(x, y)), nil
}

// Flush transfers the whole frame buffer to the display.
func (d *Dev) Flush() error {
	if d.halted {
		return ErrHalted
	}
	return d.transaction(func() error {
		if err := d.sendCommands([]byte{
			_PAGEADDR, 0, byte(image1bit.Pages(d.rect.Dy()) - 1),
			_COLUMNADDR, 0, byte(d.rect.Dx() - 1),
		}); err != nil {
			return err
		}
		return d.sendData(d.buffer.Pix)
	})
}

// Write replaces the frame buffer with pixels and flushes it.
//
// The format is the controller page layout, as returned by Buffer: exactly
// width*ceil(height/8) bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, ErrHalted
	}
	if len(pixels) != len(d.buffer.Pix) {
		return 0, fmt.Errorf("ssd1306: invalid buffer size; expected %d bytes, got %d bytes", len(d.buffer.Pix), len(pixels))
	}
	copy(d.buffer.Pix, pixels)
	if err := d.Flush(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw implements display.Drawer.
//
// src is converted to on/off pixels with image1bit.BitModel, copied into the
// frame buffer over dst and the whole frame is flushed.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}
	draw.Src.Draw(d.buffer, dst, src, sp)
	return d.Flush()
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(level byte) error {
	if d.halted {
		return ErrHalted
	}
	return d.transaction(func() error {
		return d.sendCommands([]byte{_SETCONTRAST, level})
	})
}

// Invert inverts the display colors (lit pixels become dark and vice versa).
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return ErrHalted
	}
	mode := byte(_NORMALDISPLAY)
	if invert {
		mode = _INVERTDISPLAY
	}
	return d.transaction(func() error {
		return d.sendCommands([]byte{mode})
	})
}

// Halt powers off the display and releases the frame buffer.
// After calling Halt, every other operation returns ErrHalted.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	err := d.transaction(func() error {
		return d.sendCommands([]byte{_DISPLAYOFF})
	})
	d.halted = true
	d.buffer = nil
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1306.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

var _ display.Drawer = &Dev{}
