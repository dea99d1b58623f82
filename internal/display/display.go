// Package display drives the two-line local status surface. The surface is
// write-only: nothing confirms the text was shown.
package display

// Width is the character width of one line.
const Width = 16

// Display is a two-line text sink.
type Display interface {
	// Show writes both lines, truncating or padding each to Width.
	Show(line1, line2 string) error

	// Clear blanks the surface.
	Clear() error

	// Close releases the device.
	Close() error
}

// Nop discards all writes. Used when no display hardware is configured.
type Nop struct{}

func (Nop) Show(line1, line2 string) error { return nil }
func (Nop) Clear() error                   { return nil }
func (Nop) Close() error                   { return nil }

// pad truncates or space-pads a line to exactly Width characters, so stale
// characters from a previous write never remain visible.
func pad(s string) []byte {
	b := make([]byte, Width)
	for i := range b {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = ' '
		}
	}
	return b
}
