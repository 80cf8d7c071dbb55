package player

import (
	"fmt"
	"math"
	"strconv"
)

// FormatTime renders seconds as M:SS. Negative and non-finite values render as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatPercent renders a 0..1 volume as a whole percentage, e.g. "75%".
func FormatPercent(volume float64) string {
	return strconv.Itoa(int(math.Round(volume*100))) + "%"
}
