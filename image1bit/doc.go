// Package image1bit provides a 1-bit monochrome image format for the SSD1306 display controller.
//
// The SSD1306 stores pixels in pages: horizontal bands 8 pixels high. Each byte of a page
// holds one column of 8 vertically stacked pixels, least significant bit on top.
//
// Memory layout example for a 4x8 image (one page):
//
//	Column:  0     1     2     3
//	Bytes:   0x01  0x02  0x80  0x00
//	         (0x01 = pixel (0, 0) on)
//	         (0x02 = pixel (1, 1) on)
//	         (0x80 = pixel (2, 7) on)
//
// A pixel (x, y) lives in byte x + (y/8)*width, bit y&7.
//
// This package provides:
//
// - Bit: A color type representing an on or off pixel
// - BitModel: A color model for converting standard Go colors to Bit
// - VerticalLSB: An image.Image implementation matching the SSD1306 page layout
//
// Example usage:
//
//	// Create a 128x64 image
//	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
//
//	// Light a pixel
//	img.SetBit(10, 20, image1bit.On)
//
//	// Read it back
//	println(img.BitAt(10, 20)) // Output: true
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(image1bit.On), image.Point{}, draw.Src)
package image1bit
