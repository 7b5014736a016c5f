package detail

import (
	"fmt"
	"math"
)

// StarBar fills round(avg) of five stars.
func StarBar(avg float64) [5]bool {
	var bar [5]bool
	filled := int(math.Round(avg))
	for i := 0; i < len(bar) && i < filled; i++ {
		bar[i] = true
	}
	return bar
}

// RatingLabel renders the modal label, e.g. "(3.5 / 5)".
func RatingLabel(avg float64) string {
	return fmt.Sprintf("(%.1f / 5)", avg)
}

// CardLabel renders the shorter card label, e.g. "(3.5)".
func CardLabel(avg float64) string {
	return fmt.Sprintf("(%.1f)", avg)
}
