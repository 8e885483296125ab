package timestamp

import (
	"errors"
	"testing"
	"time"
)

var (
	tokyo = time.FixedZone("JST", 9*60*60)
	start = time.Date(2024, 2, 9, 12, 0, 0, 0, time.UTC)
)

func TestExtract_Calendar(t *testing.T) {
	x := NewExtractor(Calendar, start, tokyo)

	got, payload, err := x.Extract([]byte("20240209153000.25 hello world"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := time.Date(2024, 2, 9, 15, 30, 0, 250_000_000, tokyo)
	if !got.Equal(want) {
		t.Errorf("instant = %v, want %v", got, want)
	}
	if string(payload) != "hello world" {
		t.Errorf("payload = %q, want %q", payload, "hello world")
	}
}

func TestExtract_CalendarUsesLocalZone(t *testing.T) {
	x := NewExtractor(Calendar, start, nil)
	got, err := x.Parse([]byte("20240101000000"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("instant = %v, want %v", got, want)
	}
}

func TestExtract_UnixEpoch(t *testing.T) {
	x := NewExtractor(UnixEpoch, start, nil)

	got, payload, err := x.Extract([]byte("1707480000.000000001 a b"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := time.Unix(1707480000, 1); !got.Equal(want) {
		t.Errorf("instant = %v, want %v", got, want)
	}
	if string(payload) != "a b" {
		t.Errorf("payload = %q, want %q", payload, "a b")
	}
}

func TestExtract_ProcessRelative(t *testing.T) {
	x := NewExtractor(ProcessRelative, start, nil)

	got, _, err := x.Extract([]byte("1.5 x"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := start.Add(1500 * time.Millisecond); !got.Equal(want) {
		t.Errorf("instant = %v, want %v", got, want)
	}
}

func TestExtract_NoSpace(t *testing.T) {
	x := NewExtractor(UnixEpoch, start, nil)

	_, payload, err := x.Extract([]byte("12"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(payload) != 0 {
		t.Errorf("payload = %q, want empty", payload)
	}
}

func TestExtract_OnlyFirstSpaceSplits(t *testing.T) {
	x := NewExtractor(UnixEpoch, start, nil)

	_, payload, err := x.Extract([]byte("12  two spaces "))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if string(payload) != " two spaces " {
		t.Errorf("payload = %q, want %q", payload, " two spaces ")
	}
}

func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		format Format
		field  string
	}{
		{Calendar, "2024020915300"},
		{Calendar, "202402091530000"},
		{Calendar, "20240230120000"},
		{Calendar, "20241301120000"},
		{Calendar, "2024020915300a"},
		{Calendar, "20240209153000."},
		{Calendar, "20240209153000.1234567890"},
		{Calendar, ""},
		{UnixEpoch, ""},
		{UnixEpoch, "-1"},
		{UnixEpoch, ".5"},
		{UnixEpoch, "1.2.3"},
		{UnixEpoch, "12x"},
		{UnixEpoch, "99999999999999999999"},
		{ProcessRelative, "1.0000000001"},
		{ProcessRelative, "+1"},
		{ProcessRelative, "9999999999999"},
	}
	for _, tt := range tests {
		x := NewExtractor(tt.format, start, tokyo)
		_, _, err := x.Extract([]byte(tt.field + " payload"))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: Extract(%q) error = %v, want ErrMalformed", tt.format, tt.field, err)
			continue
		}
		var te *Error
		if !errors.As(err, &te) || te.Field != tt.field || te.Format != tt.format {
			t.Errorf("%s: Extract(%q) error = %#v, want *Error with field and format", tt.format, tt.field, err)
		}
	}
}

func TestFormatTime_RoundTrip(t *testing.T) {
	// 15:30 UTC on the start day, after start.
	instant := time.Date(2024, 2, 10, 0, 30, 45, 123_456_789, tokyo)

	for _, f := range []Format{Calendar, UnixEpoch, ProcessRelative} {
		x := NewExtractor(f, start, tokyo)
		field, err := x.FormatTime(instant)
		if err != nil {
			t.Fatalf("%s: FormatTime() error = %v", f, err)
		}
		got, err := x.Parse([]byte(field))
		if err != nil {
			t.Fatalf("%s: Parse(%q) error = %v", f, field, err)
		}
		if !got.Equal(instant) {
			t.Errorf("%s: Parse(%q) = %v, want %v", f, field, got, instant)
		}
	}
}

func TestFormatTime_Unrepresentable(t *testing.T) {
	tests := []struct {
		format  Format
		instant time.Time
	}{
		{ProcessRelative, start.Add(-time.Nanosecond)},
		{UnixEpoch, time.Unix(-1, 0)},
		{Calendar, time.Date(10000, 1, 1, 0, 0, 0, 0, tokyo)},
	}
	for _, tt := range tests {
		x := NewExtractor(tt.format, start, tokyo)
		field, err := x.FormatTime(tt.instant)
		if !errors.Is(err, ErrUnrepresentable) {
			t.Errorf("%s: FormatTime(%v) = %q, %v; want ErrUnrepresentable", tt.format, tt.instant, field, err)
		}
	}
}

func TestCalendar_SecondPrecisionWithoutFraction(t *testing.T) {
	instant := time.Date(2024, 2, 9, 15, 30, 45, 0, tokyo)
	x := NewExtractor(Calendar, start, tokyo)

	got, err := x.Parse([]byte(instant.Format(calendarLayout)))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got.Equal(instant) {
		t.Errorf("Parse() = %v, want %v", got, instant)
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"calendar": Calendar, "c": Calendar,
		"epoch": UnixEpoch, "e": UnixEpoch,
		"relative": ProcessRelative, "z": ProcessRelative,
	} {
		got, err := ParseFormat(name)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseFormat("iso"); err == nil {
		t.Error("ParseFormat(iso) should fail")
	}
}
