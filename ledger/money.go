package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// MinorPerMajor is the number of minor units (cents) in a major unit.
const MinorPerMajor = 100

// ToMajor converts minor units to major units for plotting.
func ToMajor(minor int64) float64 {
	return float64(minor) / MinorPerMajor
}

// FormatMinor renders an amount in minor units with two decimals, e.g. -1234 as "-12.34",
// without going through floating point.
func FormatMinor(minor int64) string {
	sign, abs := "", uint64(minor)
	if minor < 0 {
		sign, abs = "-", uint64(-(minor+1))+1
	}
	return fmt.Sprintf("%s%d.%02d", sign, abs/MinorPerMajor, abs%MinorPerMajor)
}

// ParseMinor reads the leading integer of a typed minor-unit amount, so "12.7" is 12 and
// "150abc" is 150. Input without a leading integer, or out of range, counts as zero.
func ParseMinor(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
