package invoice

import (
	"fmt"
	"regexp"
	"strconv"
)

var digitRun = regexp.MustCompile(`\d+`)

// Numbering formats invoice numbers as a fixed prefix followed by a
// zero-padded counter, e.g. INDY0187.
type Numbering struct {
	Prefix string
	Start  int
	Width  int
}

// Format renders the number with counter value v.
func (n Numbering) Format(v int) string {
	return fmt.Sprintf("%s%0*d", n.Prefix, n.Width, v)
}

// NextAfter returns the number following lastID. The counter is the first
// run of digits in lastID; when lastID is empty or carries no digits the
// sequence starts at Start.
func (n Numbering) NextAfter(lastID string) (string, int) {
	next := n.Start
	if m := digitRun.FindString(lastID); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			next = v + 1
		}
	}
	return n.Format(next), next
}
