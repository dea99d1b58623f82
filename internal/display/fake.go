package display

// FakeDisplay records writes for test assertions.
type FakeDisplay struct {
	// Lines contains every Show call as [line1, line2] pairs.
	Lines [][2]string

	// Cleared counts Clear calls.
	Cleared int

	// ShowError, if set, is returned by Show.
	ShowError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDisplay creates a FakeDisplay for testing.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{}
}

// Show records both lines.
func (f *FakeDisplay) Show(line1, line2 string) error {
	if f.ShowError != nil {
		return f.ShowError
	}
	f.Lines = append(f.Lines, [2]string{line1, line2})
	return nil
}

// Clear records the clear.
func (f *FakeDisplay) Clear() error {
	f.Cleared++
	return nil
}

// Close marks the display as closed.
func (f *FakeDisplay) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent Show call, or empty lines if none.
func (f *FakeDisplay) Last() (string, string) {
	if len(f.Lines) == 0 {
		return "", ""
	}
	last := f.Lines[len(f.Lines)-1]
	return last[0], last[1]
}
