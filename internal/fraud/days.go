package fraud

import "time"

const day = 24 * time.Hour

// wholeDaysBetween returns to-from in whole days, rounded toward negative
// infinity, so 36 hours before is -2 and 36 hours after is 1
func wholeDaysBetween(from, to time.Time) int {
	d := to.UTC().Sub(from.UTC())
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}
