package xpt

import (
	"testing"
	"time"
)

func TestTrimField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"ABC     ", "ABC"},
		{"  AGE", "AGE"},
		{" mid gap ", "mid gap"},
		{"NAME\x00\x00\x00", "NAME"},
		{"        ", ""},
		{"", ""},
		{"\x00\x00", ""},
	}
	for _, tt := range tests {
		if got := trimField([]byte(tt.in)); got != tt.want {
			t.Errorf("trimField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	got := parseTimestamp([]byte("16FEB11:14:42:08"))
	want := time.Date(2011, time.February, 16, 14, 42, 8, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseTimestamp = %v, want %v", got, want)
	}

	// The century pivot: two-digit years from 69 up belong to the 1900s.
	got = parseTimestamp([]byte("01JAN94:00:00:01"))
	if got.Year() != 1994 {
		t.Errorf("year = %d, want 1994", got.Year())
	}

	if got := parseTimestamp([]byte("not a datetime  ")); !got.IsZero() {
		t.Errorf("parseTimestamp on garbage = %v, want zero time", got)
	}
	if got := parseTimestamp([]byte("                ")); !got.IsZero() {
		t.Errorf("parseTimestamp on blanks = %v, want zero time", got)
	}
}

func TestParseHeaderCard(t *testing.T) {
	t.Parallel()

	raw := testCard("HEADER RECORD*******LIBRARY HEADER RECORD!!!!!!!000000000000000000000000000000")
	h, ok := parseHeaderCard(raw)
	if !ok {
		t.Fatal("expected a header card")
	}
	if h.sig != sigLibrary {
		t.Errorf("sig = %q, want %q", h.sig, sigLibrary)
	}
	for i := range 6 {
		n, err := h.numField(i)
		if err != nil {
			t.Fatalf("numField(%d): %v", i, err)
		}
		if n != 0 {
			t.Errorf("numField(%d) = %d, want 0", i, n)
		}
	}

	raw = testCard("HEADER RECORD*******MEMBER  HEADER RECORD!!!!!!!000000000000000001600000000140")
	h, ok = parseHeaderCard(raw)
	if !ok {
		t.Fatal("expected a header card")
	}
	if n, _ := h.numField(3); n != 160 {
		t.Errorf("numField(3) = %d, want 160", n)
	}
	if n, _ := h.numField(5); n != 140 {
		t.Errorf("numField(5) = %d, want 140", n)
	}

	if _, ok := parseHeaderCard(testCard("OBSERVATION DATA GOES HERE")); ok {
		t.Error("plain data card parsed as a header card")
	}
	if _, ok := parseHeaderCard(testCard("HEADER RECORD-------LIBRARY HEADER RECORD!!!!!!!")); ok {
		t.Error("corrupt stars marker parsed as a header card")
	}
}

func TestHeaderCardNumFieldGarbage(t *testing.T) {
	t.Parallel()

	h := headerCard{num: [6]string{"00001", "   42", "ABCDE", "     ", "-0003", "99999"}}
	if n, err := h.numField(0); err != nil || n != 1 {
		t.Errorf("numField(0) = %d, %v", n, err)
	}
	if n, err := h.numField(1); err != nil || n != 42 {
		t.Errorf("numField(1) = %d, %v", n, err)
	}
	if _, err := h.numField(2); err == nil {
		t.Error("expected error for non-numeric field")
	}
	if _, err := h.numField(3); err == nil {
		t.Error("expected error for blank field")
	}
	if n, err := h.numField(4); err != nil || n != -3 {
		t.Errorf("numField(4) = %d, %v", n, err)
	}
	if n, err := h.numField(5); err != nil || n != 99999 {
		t.Errorf("numField(5) = %d, %v", n, err)
	}
}
