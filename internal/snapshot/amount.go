package snapshot

import (
	"regexp"
	"strconv"
	"strings"
)

var amountRegex = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// parseAmountDisplay recovers a numeric amount from a display string like
// "$5,000" or "Up to $10,000 in prizes". Ranges resolve to the largest
// figure. Returns 0 when nothing numeric is found.
func parseAmountDisplay(display string) float64 {
	matches := amountRegex.FindAllString(display, -1)
	var max float64
	for _, m := range matches {
		clean := strings.ReplaceAll(m, ",", "")
		if val, err := strconv.ParseFloat(clean, 64); err == nil && val > max {
			max = val
		}
	}
	return max
}
