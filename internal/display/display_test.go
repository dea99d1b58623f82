package display

import (
	"errors"
	"testing"
)

func TestPadShortLine(t *testing.T) {
	got := pad("Radar Ready")
	if len(got) != Width {
		t.Fatalf("padded length: got %d, want %d", len(got), Width)
	}
	want := "Radar Ready     "
	if string(got) != want {
		t.Errorf("pad: got %q, want %q", got, want)
	}
}

func TestPadLongLineTruncates(t *testing.T) {
	got := pad("this line is much longer than the display")
	if len(got) != Width {
		t.Fatalf("padded length: got %d, want %d", len(got), Width)
	}
	if string(got) != "this line is muc" {
		t.Errorf("pad: got %q", got)
	}
}

func TestPadEmpty(t *testing.T) {
	got := pad("")
	if string(got) != "                " {
		t.Errorf("pad(\"\"): got %q", got)
	}
}

func TestFakeDisplayRecords(t *testing.T) {
	f := NewFakeDisplay()
	f.Show("Scanning  90deg", "42.5 cm")
	f.Show("Object Detected!", "12.0 cm @ 45deg")
	f.Clear()

	if len(f.Lines) != 2 {
		t.Fatalf("recorded %d writes, want 2", len(f.Lines))
	}
	l1, l2 := f.Last()
	if l1 != "Object Detected!" || l2 != "12.0 cm @ 45deg" {
		t.Errorf("Last: got (%q, %q)", l1, l2)
	}
	if f.Cleared != 1 {
		t.Errorf("Cleared: got %d, want 1", f.Cleared)
	}
}

func TestFakeDisplayShowError(t *testing.T) {
	f := NewFakeDisplay()
	f.ShowError = errors.New("broken")
	if err := f.Show("a", "b"); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Lines) != 0 {
		t.Error("failed write should not be recorded")
	}
}

func TestNopDiscards(t *testing.T) {
	var d Display = Nop{}
	if err := d.Show("a", "b"); err != nil {
		t.Errorf("Nop.Show: %v", err)
	}
	if err := d.Clear(); err != nil {
		t.Errorf("Nop.Clear: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Nop.Close: %v", err)
	}
}
