package display

import (
	"fmt"

	"go.bug.st/serial"
)

// Command bytes for the common 0xFE-prefix serial LCD backpack protocol.
const (
	cmdPrefix = 0xFE
	cmdClear  = 0x01
	cmdLine1  = 0x80
	cmdLine2  = 0xC0
)

// SerialDisplay drives a 16x2 character LCD behind a serial backpack.
type SerialDisplay struct {
	port serial.Port
}

// NewSerialDisplay opens the backpack's serial port and clears the screen.
func NewSerialDisplay(portName string, baud int) (*SerialDisplay, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open display port %s: %w", portName, err)
	}
	d := &SerialDisplay{port: port}
	if err := d.Clear(); err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

// Show writes both lines. Lines are padded to the full width so no previous
// text bleeds through; no clear command is sent, avoiding visible flicker.
func (d *SerialDisplay) Show(line1, line2 string) error {
	msg := make([]byte, 0, 2*(2+Width))
	msg = append(msg, cmdPrefix, cmdLine1)
	msg = append(msg, pad(line1)...)
	msg = append(msg, cmdPrefix, cmdLine2)
	msg = append(msg, pad(line2)...)
	if _, err := d.port.Write(msg); err != nil {
		return fmt.Errorf("write display: %w", err)
	}
	return nil
}

// Clear blanks the screen.
func (d *SerialDisplay) Clear() error {
	if _, err := d.port.Write([]byte{cmdPrefix, cmdClear}); err != nil {
		return fmt.Errorf("clear display: %w", err)
	}
	return nil
}

// Close clears the screen and releases the port.
func (d *SerialDisplay) Close() error {
	d.Clear()
	if err := d.port.Close(); err != nil {
		return fmt.Errorf("close display port: %w", err)
	}
	return nil
}
