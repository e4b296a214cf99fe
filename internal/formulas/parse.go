package formulas

import (
	"strconv"
	"strings"
)

// ParseDecimal parses a user-entered numeric string, accepting either a
// comma or a dot as the decimal separator. Empty or unparseable input is
// reported as ok=false ("field not set"), never as zero.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
