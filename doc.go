// Package ssd1306 controls a SSD1306 monochrome OLED display via SPI.
//
// The SSD1306 is a 1-bit controller driving up to 128×64 pixels.
// This driver keeps a frame buffer in memory, lets the caller set, clear or
// invert individual pixels, and transfers the whole buffer to the panel on
// Flush. It implements the display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - Monochrome, one bit per pixel
// - Typical resolutions 128×64 and 128×32
// - Adjustable contrast (0-255)
// - Display inversion
//
// # Hardware Connection
//
// Connect the SSD1306 display to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	D0/CLK      → SPI Clock (SCLK)
//	D1/MOSI     → SPI Data (MOSI)
//	DC          → GPIO (any available pin, low=command high=data)
//	CS          → SPI Chip Select, or a GPIO passed as Opts.CS
//	RES         → Optional: GPIO for hardware reset
//
// # Basic Usage
//
//	package main
//
//	import (
//		"github.com/flavioheleno/ssd1306"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//		spiPort, _ := spireg.Open("")
//		dev, _ := ssd1306.NewSPI(spiPort, gpioreg.ByName("GPIO25"), &ssd1306.Opts{
//			W:   128,
//			H:   64,
//			RST: gpioreg.ByName("GPIO24"),
//		})
//		defer dev.Halt()
//
//		dev.SetPixel(10, 20, ssd1306.PixelSet)
//		dev.Flush()
//	}
//
// # Frame Buffer Layout
//
// The buffer holds width*ceil(height/8) bytes. Rows are grouped in pages of 8;
// pixel (x, y) is bit y&7 of byte x+(y/8)*width. Two pixels of the same column
// and page share a byte:
//
//	(5, 0) → byte 5, bit 0
//	(5, 1) → byte 5, bit 1
//	(5, 8) → byte 5+width, bit 0
//
// The image1bit subpackage exposes the same layout as a draw.Image.
//
// # Pixel Operations
//
// SetPixel takes one of PixelSet, PixelClear or PixelInvert and only changes
// the in-memory buffer. Coordinates outside the display are rejected with
// ErrOutOfBounds and leave the buffer untouched. Nothing reaches the panel
// until Flush, Write or Draw is called; each of them sends the full frame.
//
// # Hardware Reset
//
// If Opts.RST is set, NewSPI pulses it (high 1ms, low 10ms, high 10ms) before
// programming the controller. Without it the driver relies on power-on reset.
//
// # Chip Select
//
// By default the SPI port toggles its own CS line on every transfer. If
// Opts.CS is set, the port is opened with spi.NoCS and the driver keeps that
// pin low for the whole of each command/data transaction.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
package ssd1306
