package keyword

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed column widths of card fields and curve points
const (
	wide       = 10
	curveWidth = 20
)

func i8(v int) string  { return fmt.Sprintf("%8d", v) }
func i10(v int) string { return fmt.Sprintf("%10d", v) }

// fixed formats v right justified in width columns, using the shortest form
// that round trips and falling back to fewer significant digits
func fixed(v float64, width int) string {
	if v == 0 {
		return fmt.Sprintf("%*s", width, "0.0")
	}
	s := fortranize(strconv.FormatFloat(v, 'g', -1, 64))
	for p := 8; len(s) > width && p >= 0; p-- {
		s = fortranize(strconv.FormatFloat(v, 'E', p, 64))
	}
	return fmt.Sprintf("%*s", width, s)
}

// fortranize upper-cases the exponent and adds a decimal point to integral
// mantissas
func fortranize(s string) string {
	s = strings.ToUpper(s)
	mantissa, exp, hasExp := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	if hasExp {
		return mantissa + "E" + exp
	}
	return mantissa
}

func r10(v float64) string { return fixed(v, wide) }

// field returns the trimmed text of line in columns [start, start+width)
func field(line string, start, width int) string {
	if start >= len(line) {
		return ""
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}

func intField(line string, start, width int) (int, error) {
	s := field(line, start, width)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func floatField(line string, start, width int) (float64, error) {
	s := field(line, start, width)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
