package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatPrice rounds v half away from zero to places decimals. Rounding goes
// through the shortest decimal form of v, so 2.675 prints as 2.68.
func FormatPrice(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	if places < 0 {
		places = 0
	}
	return decimal.NewFromFloat(v).StringFixed(int32(places))
}

// FormatSigned is FormatPrice with a leading "+" on positive values. Values
// that round to zero carry no sign.
func FormatSigned(v float64, places int) string {
	s := FormatPrice(v, places)
	if strings.HasPrefix(s, "-") || math.IsNaN(v) {
		return s
	}
	if d, err := decimal.NewFromString(s); err == nil && d.IsPositive() {
		return "+" + s
	}
	return s
}

// FormatRelative formats diff/reference as a signed percentage.
func FormatRelative(diff, reference float64) string {
	if reference == 0 {
		return "n/a"
	}
	return FormatSigned(100*diff/reference, 2) + "%"
}

// FormatElapsed rounds a duration for display.
func FormatElapsed(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	}
	return d.Round(time.Microsecond).String()
}
