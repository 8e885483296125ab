// Package timestamp splits records into a leading timestamp field and a
// payload, and decodes the field into an instant.
package timestamp

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Format selects how the leading timestamp field is encoded.
type Format int

const (
	// Calendar is YYYYMMDDhhmmss[.n] in local civil time.
	Calendar Format = iota
	// UnixEpoch is n[.n] seconds since the UNIX epoch.
	UnixEpoch
	// ProcessRelative is n[.n] seconds since the process started.
	ProcessRelative
)

func (f Format) String() string {
	switch f {
	case Calendar:
		return "calendar"
	case UnixEpoch:
		return "epoch"
	case ProcessRelative:
		return "relative"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a format name used in config files to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "calendar", "c":
		return Calendar, nil
	case "epoch", "e":
		return UnixEpoch, nil
	case "relative", "z":
		return ProcessRelative, nil
	default:
		return 0, fmt.Errorf("unknown timestamp format %q, must be one of: calendar, epoch, relative", s)
	}
}

const (
	calendarLayout = "20060102150405"
	maxFracDigits  = 9
)

// ErrMalformed is returned when a field does not match the active format.
var ErrMalformed = errors.New("malformed timestamp")

// Error reports a timestamp field that could not be decoded.
type Error struct {
	Field  string
	Format Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v %q (format %s)", e.Err, e.Field, e.Format)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extractor decodes timestamp fields for one format. It never decides
// admission.
type Extractor struct {
	format Format
	start  time.Time
	loc    *time.Location
}

// NewExtractor builds an Extractor. start is the process start instant used
// by ProcessRelative; loc is the zone for Calendar (nil means time.Local).
func NewExtractor(format Format, start time.Time, loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{format: format, start: start, loc: loc}
}

// Format returns the extractor's timestamp format.
func (x *Extractor) Format() Format {
	return x.format
}

// Split separates line at the first space. Without a space the whole line
// is the field and the payload is empty.
func Split(line []byte) (field, payload []byte) {
	i := bytes.IndexByte(line, ' ')
	if i < 0 {
		return line, nil
	}
	return line[:i], line[i+1:]
}

// Extract decodes the leading field of line and returns the payload with the
// field and its delimiter removed.
func (x *Extractor) Extract(line []byte) (time.Time, []byte, error) {
	field, payload := Split(line)
	t, err := x.Parse(field)
	if err != nil {
		return time.Time{}, nil, err
	}
	return t, payload, nil
}

// Parse decodes a bare timestamp field.
func (x *Extractor) Parse(field []byte) (time.Time, error) {
	var (
		t  time.Time
		ok bool
	)
	switch x.format {
	case Calendar:
		t, ok = x.parseCalendar(field)
	case UnixEpoch:
		var sec, nsec int64
		if sec, nsec, ok = parseSeconds(field); ok {
			t = time.Unix(sec, nsec)
		}
	case ProcessRelative:
		var sec, nsec int64
		if sec, nsec, ok = parseSeconds(field); ok {
			if sec > (math.MaxInt64-nsec)/int64(time.Second) {
				ok = false
			} else {
				t = x.start.Add(time.Duration(sec*int64(time.Second) + nsec))
			}
		}
	}
	if !ok {
		return time.Time{}, &Error{Field: string(field), Format: x.format, Err: ErrMalformed}
	}
	return t, nil
}

func (x *Extractor) parseCalendar(field []byte) (time.Time, bool) {
	whole, frac, ok := splitFraction(field)
	if !ok || len(whole) != len(calendarLayout) || !allDigits(whole) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(calendarLayout, string(whole), x.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.Add(time.Duration(fracNanos(frac))), true
}

// parseSeconds decodes digits[.digits] into whole seconds and nanoseconds.
func parseSeconds(field []byte) (int64, int64, bool) {
	whole, frac, ok := splitFraction(field)
	if !ok || len(whole) == 0 || !allDigits(whole) {
		return 0, 0, false
	}
	sec, err := strconv.ParseInt(string(whole), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return sec, fracNanos(frac), true
}

// splitFraction separates an optional ".n" suffix of 1..9 digits.
func splitFraction(field []byte) (whole, frac []byte, ok bool) {
	i := bytes.IndexByte(field, '.')
	if i < 0 {
		return field, nil, true
	}
	whole, frac = field[:i], field[i+1:]
	if len(frac) == 0 || len(frac) > maxFracDigits || !allDigits(frac) {
		return nil, nil, false
	}
	return whole, frac, true
}

func fracNanos(frac []byte) int64 {
	var n int64
	for i := 0; i < maxFracDigits; i++ {
		n *= 10
		if i < len(frac) {
			n += int64(frac[i] - '0')
		}
	}
	return n
}

func allDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ErrUnrepresentable is returned by FormatTime for an instant the format
// cannot encode: before the process start for ProcessRelative, before the
// UNIX epoch for UnixEpoch, or outside years 0000-9999 for Calendar.
var ErrUnrepresentable = errors.New("instant not representable")

// FormatTime renders t as a field in the extractor's format with a nine digit
// fraction. Parse(FormatTime(t)) returns t whenever FormatTime succeeds.
func (x *Extractor) FormatTime(t time.Time) (string, error) {
	switch x.format {
	case Calendar:
		t = t.In(x.loc)
		if y := t.Year(); y < 0 || y > 9999 {
			break
		}
		return t.Format(calendarLayout) + fmt.Sprintf(".%09d", t.Nanosecond()), nil
	case UnixEpoch:
		if t.Unix() < 0 {
			break
		}
		return fmt.Sprintf("%d.%09d", t.Unix(), t.Nanosecond()), nil
	case ProcessRelative:
		d := t.Sub(x.start)
		if d < 0 {
			break
		}
		return fmt.Sprintf("%d.%09d", d/time.Second, d%time.Second), nil
	default:
		return "", fmt.Errorf("unknown format %s", x.format)
	}
	return "", &Error{Field: t.String(), Format: x.format, Err: ErrUnrepresentable}
}
