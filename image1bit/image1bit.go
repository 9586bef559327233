package image1bit

import (
	"image"
	"image/color"
)

// Bit is a monochrome pixel: On (lit) or Off.
type Bit bool

const (
	On  = Bit(true)
	Off = Bit(false)
)

// RGBA returns white for On and black for Off.
func (c Bit) RGBA() (r, g, b, a uint32) {
	if c {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// toBit converts any color.Color to Bit.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	// Same luma weights as color.GrayModel, thresholded at half intensity.
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// VerticalLSB is a 1-bit image stored in pages of 8 rows.
// Each byte holds 8 vertical pixels of one column, bit 0 being the topmost.
type VerticalLSB struct {
	Pix    []byte          // Pixel data, one page after the other
	Stride int             // Bytes per page (equals the image width)
	Rect   image.Rectangle // Image bounds
}

// NewVerticalLSB creates a new VerticalLSB image with the specified bounds.
// The height is rounded up to a whole number of pages.
func NewVerticalLSB(r image.Rectangle) *VerticalLSB {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &VerticalLSB{Rect: r}
	}
	return &VerticalLSB{
		Pix:    make([]byte, w*Pages(h)),
		Stride: w,
		Rect:   r,
	}
}

// Pages returns the number of 8-row pages needed to hold h rows.
func Pages(h int) int {
	return (h + 7) / 8
}

// ColorModel returns the color model of the image.
func (p *VerticalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (p *VerticalLSB) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *VerticalLSB) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the Bit of the pixel at (x, y). Pixels outside the bounds are Off.
func (p *VerticalLSB) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Off
	}
	offset, mask := p.PixOffset(x, y)
	return p.Pix[offset]&mask != 0
}

// Opaque reports that every pixel is fully opaque.
func (p *VerticalLSB) Opaque() bool {
	return true
}

// Set sets the color of the pixel at (x, y).
func (p *VerticalLSB) Set(x, y int, c color.Color) {
	p.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the Bit of the pixel at (x, y). Pixels outside the bounds are ignored.
func (p *VerticalLSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, mask := p.PixOffset(x, y)
	if b {
		p.Pix[offset] |= mask
	} else {
		p.Pix[offset] &^= mask
	}
}

// PixOffset returns the byte offset and bit mask of the pixel at (x, y).
// The caller is responsible for checking that (x, y) is within bounds.
func (p *VerticalLSB) PixOffset(x, y int) (offset int, mask byte) {
	x -= p.Rect.Min.X
	y -= p.Rect.Min.Y
	return x + (y/8)*p.Stride, 1 << uint(y&7)
}
