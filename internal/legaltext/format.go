package legaltext

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const longDateLayout = "January 2, 2006"

var printer = message.NewPrinter(language.AmericanEnglish)

// Amount renders v with US digit grouping and at most three fraction digits,
// e.g. 100000 -> "100,000" and 1234.5 -> "1,234.5".
func Amount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// Dollars is Amount with a leading dollar sign. Negative values keep the sign
// after the symbol ("$-5,000").
func Dollars(v float64) string { return "$" + Amount(v) }

// Fixed renders v with exactly digits fraction digits and no grouping.
func Fixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// Number renders v in its shortest form ("50", "33.5").
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LongDate renders t as "June 15, 2015". The zero time renders as "[DATE]".
func LongDate(t time.Time) string {
	if t.IsZero() {
		return "[DATE]"
	}
	return t.Format(longDateLayout)
}

var romanTable = []struct {
	symbol string
	value  int
}{
	{"X", 10},
	{"IX", 9},
	{"V", 5},
	{"IV", 4},
	{"I", 1},
}

// Roman renders n with the symbols up to X. Values of zero or less render
// as the empty string.
func Roman(n int) string {
	var out []byte
	for _, r := range romanTable {
		for n >= r.value {
			out = append(out, r.symbol...)
			n -= r.value
		}
	}
	return string(out)
}
