// Package gpiocdevpin exposes a GPIO character device line as a periph.io
// gpio.PinOut, so it can be handed to the ssd1306 driver as its DC, RST or CS
// pin on boards where periph.io/x/host does not register the pins.
package gpiocdevpin

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Consumer is the label the kernel shows for lines requested by this package.
const Consumer = "ssd1306"

// line is the subset of *gpiocdev.Line used by Pin.
type line interface {
	SetValue(value int) error
	Close() error
}

// Pin is an output line of a GPIO chip.
type Pin struct {
	chip   string
	offset int
	l      line
}

// Request requests offset on chip (e.g. "gpiochip0") as an output, driven to initial.
func Request(chip string, offset int, initial gpio.Level) (*Pin, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(value(initial)),
		gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("gpiocdevpin: failed to request %s:%d: %w", chip, offset, err)
	}
	return &Pin{chip: chip, offset: offset, l: l}, nil
}

func value(l gpio.Level) int {
	if l == gpio.High {
		return 1
	}
	return 0
}

// String implements conn.Resource.
func (p *Pin) String() string {
	return p.Name()
}

// Halt implements conn.Resource. It releases the line.
func (p *Pin) Halt() error {
	if p.l == nil {
		return nil
	}
	err := p.l.Close()
	p.l = nil
	return err
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return fmt.Sprintf("%s:%d", p.chip, p.offset)
}

// Number implements pin.Pin.
func (p *Pin) Number() int {
	return p.offset
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return string(gpio.OUT)
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	if p.l == nil {
		return errors.New("gpiocdevpin: line released")
	}
	return p.l.SetValue(value(l))
}

// PWM implements gpio.PinOut. It is not supported.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("gpiocdevpin: PWM not supported")
}

var _ gpio.PinOut = &Pin{}
