package hw

import (
	"testing"
	"time"
)

func TestButtonSetFirstUsesPriority(t *testing.T) {
	tests := []struct {
		set  ButtonSet
		want Button
		ok   bool
	}{
		{Buttons(E, C), C, true},
		{Buttons(A, E), A, true},
		{Buttons(D), D, true},
		{Buttons(E, D, C, B), B, true},
		{0, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.set.First()
		if ok != tt.ok || got != tt.want {
			t.Fatalf("%v.First() = %v, %v; want %v, %v", tt.set, got, ok, tt.want, tt.ok)
		}
	}
}

func TestButtonSetString(t *testing.T) {
	if got := Buttons(E, A).String(); got != "A+E" {
		t.Fatalf("String() = %q, want A+E", got)
	}
	if got := ButtonSet(0).String(); got != "none" {
		t.Fatalf("String() = %q, want none", got)
	}
	if !Buttons(Button(9)).Empty() {
		t.Fatal("out-of-range button should be ignored")
	}
}

func TestParseButton(t *testing.T) {
	for _, b := range AllButtons {
		got, ok := ParseButton(" " + b.String() + " ")
		if !ok || got != b {
			t.Fatalf("ParseButton(%q) = %v, %v", b.String(), got, ok)
		}
	}
	if _, ok := ParseButton("f"); ok {
		t.Fatal("ParseButton(f) should fail")
	}
}

func TestOffsetClock(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	zone := time.FixedZone("KST", 9*3600)
	c := NewOffsetClock(func() time.Time { return base }, zone)

	if got := c.Now(); !got.Equal(base) || got.Location() != zone {
		t.Fatalf("Now() = %v, want %v in KST", got, base)
	}

	synced := base.Add(90 * time.Second)
	c.Set(synced)
	if got := c.Now(); !got.Equal(synced) {
		t.Fatalf("Now() after Set = %v, want %v", got, synced)
	}
	if c.Offset() != 90*time.Second {
		t.Fatalf("Offset() = %v, want 90s", c.Offset())
	}
	if c.Now().Hour() != 9 {
		t.Fatalf("Now().Hour() = %d, want 9 in KST", c.Now().Hour())
	}
}
