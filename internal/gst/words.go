package gst

import (
	"math"
	"strings"
)

// MaxWordsAmount is the largest amount ToWords can render (99,99,99,999).
const MaxWordsAmount = 999999999

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// ToWords renders an amount in Indian-numbering words, e.g.
// 1234567 -> "Twelve Lakh Thirty Four Thousand Five Hundred and Sixty Seven Only".
// Fractions are rounded away. Zero renders as "Zero Only". Negative amounts and
// amounts above MaxWordsAmount return "".
func ToWords(amount float64) string {
	n := int64(math.Round(amount))
	if n < 0 || n > MaxWordsAmount {
		return ""
	}
	if n == 0 {
		return "Zero Only"
	}

	crore := n / 10000000
	lakh := n / 100000 % 100
	thousand := n / 1000 % 100
	hundred := n / 100 % 10
	rest := n % 100

	var parts []string
	if crore != 0 {
		parts = append(parts, under100(crore), "Crore")
	}
	if lakh != 0 {
		parts = append(parts, under100(lakh), "Lakh")
	}
	if thousand != 0 {
		parts = append(parts, under100(thousand), "Thousand")
	}
	if hundred != 0 {
		parts = append(parts, ones[hundred], "Hundred")
	}
	if rest != 0 {
		if len(parts) > 0 {
			parts = append(parts, "and")
		}
		parts = append(parts, under100(rest))
	}

	return strings.TrimSpace(strings.Join(parts, " ")) + " Only"
}

func under100(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
