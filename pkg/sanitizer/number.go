package sanitizer

import (
	"math"
	"strconv"
	"strings"
)

// ParsePercent strips trailing percent signs and parses the rest as a float.
// NaN and infinities are rejected.
func ParsePercent(value string) (float64, bool) {
	value = strings.TrimSpace(strings.TrimRight(value, "%"))
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ExtractComplaints returns the first run of digits enclosed by slashes,
// e.g. 3 for "Complaint/3/closed".
func ExtractComplaints(value string) (int64, bool) {
	m := reComplaintsCount.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
