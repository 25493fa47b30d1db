// Package barcode formats and parses per-order barcode serials.
package barcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	separator = ";"
	seqDigits = 5
)

var ErrMalformedSerial = errors.New("malformed barcode serial")

// Serial is the decoded form of "order_no;style;size;NNNNN".
type Serial struct {
	OrderNo  string
	Style    string
	Size     string
	Sequence int
}

func (s Serial) String() string {
	return FormatSerial(s.OrderNo, s.Style, s.Size, s.Sequence)
}

func FormatSerial(orderNo, style, size string, seq int) string {
	return fmt.Sprintf("%s%s%s%s%s%s%0*d", orderNo, separator, style, separator, size, separator, seqDigits, seq)
}

// ParseSerial splits a scanned serial. Scanners sometimes append whitespace,
// which is trimmed.
func ParseSerial(raw string) (Serial, error) {
	parts := strings.Split(strings.TrimSpace(raw), separator)
	if len(parts) != 4 {
		return Serial{}, fmt.Errorf("%w: %q", ErrMalformedSerial, raw)
	}
	seq, err := strconv.Atoi(parts[3])
	if err != nil || seq < 1 {
		return Serial{}, fmt.Errorf("%w: bad sequence in %q", ErrMalformedSerial, raw)
	}
	for _, p := range parts[:3] {
		if p == "" {
			return Serial{}, fmt.Errorf("%w: empty segment in %q", ErrMalformedSerial, raw)
		}
	}
	return Serial{OrderNo: parts[0], Style: parts[1], Size: parts[2], Sequence: seq}, nil
}

// ValidSegment reports whether v can be embedded in a serial.
func ValidSegment(v string) bool {
	return strings.TrimSpace(v) != "" && !strings.Contains(v, separator)
}
