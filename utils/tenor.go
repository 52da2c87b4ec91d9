package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tenor is a period such as 2D, 1W, 3M or 10Y.
type Tenor struct {
	N    int
	Unit byte // one of 'D', 'W', 'M', 'Y'
}

// ParseTenor parses strings like "1W", "3M", "10Y" (case-insensitive).
func ParseTenor(s string) (Tenor, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) < 2 {
		return Tenor{}, fmt.Errorf("ParseTenor: invalid tenor %q", s)
	}
	unit := s[len(s)-1]
	switch unit {
	case 'D', 'W', 'M', 'Y':
	default:
		return Tenor{}, fmt.Errorf("ParseTenor: invalid unit in %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Tenor{}, fmt.Errorf("ParseTenor: invalid count in %q", s)
	}
	if n < 0 {
		return Tenor{}, fmt.Errorf("ParseTenor: negative tenor %q", s)
	}
	return Tenor{N: n, Unit: unit}, nil
}

// MustParseTenor is ParseTenor for literals known to be valid.
func MustParseTenor(s string) Tenor {
	t, err := ParseTenor(s)
	if err != nil {
		panic(err)
	}
	return t
}

// AddTo returns t shifted forward by the tenor. Month and year tenors use EDATE semantics.
func (tn Tenor) AddTo(t time.Time) time.Time {
	switch tn.Unit {
	case 'D':
		return t.AddDate(0, 0, tn.N)
	case 'W':
		return t.AddDate(0, 0, 7*tn.N)
	case 'M':
		return AddMonth(t, tn.N)
	default:
		return AddMonth(t, 12*tn.N)
	}
}

// Months returns the tenor length in months, or 0 for day and week tenors.
func (tn Tenor) Months() int {
	switch tn.Unit {
	case 'M':
		return tn.N
	case 'Y':
		return 12 * tn.N
	default:
		return 0
	}
}

// Years approximates the tenor as a year fraction.
func (tn Tenor) Years() float64 {
	switch tn.Unit {
	case 'D':
		return float64(tn.N) / 365.0
	case 'W':
		return float64(tn.N) * 7.0 / 365.0
	case 'M':
		return float64(tn.N) / 12.0
	default:
		return float64(tn.N)
	}
}

func (tn Tenor) String() string {
	return strconv.Itoa(tn.N) + string(tn.Unit)
}
