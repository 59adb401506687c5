package gst

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatINR display-rounds an amount and groups digits the Indian way:
// 1234567.4 -> "12,34,567".
func FormatINR(x float64) string {
	n := DisplayRound(x)
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var grouped []byte
		for i, c := range []byte(head) {
			if i > 0 && (len(head)-i)%2 == 0 {
				grouped = append(grouped, ',')
			}
			grouped = append(grouped, c)
		}
		s = string(grouped) + "," + tail
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatRate prints a percentage with two decimals, e.g. 9 -> "9.00".
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(rate).StringFixed(2)
}
