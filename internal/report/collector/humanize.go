package collector

import (
	"fmt"
	"time"
)

const humanizedDurationTemplateConstant = "%d%s"

type durationUnit struct {
	length time.Duration
	suffix string
}

// durationUnits runs from the largest unit down. Months are 30 days and years 365 days.
var durationUnits = []durationUnit{
	{length: 365 * 24 * time.Hour, suffix: "y"},
	{length: 30 * 24 * time.Hour, suffix: "mo"},
	{length: 7 * 24 * time.Hour, suffix: "w"},
	{length: 24 * time.Hour, suffix: "d"},
	{length: time.Hour, suffix: "h"},
	{length: time.Minute, suffix: "m"},
}

// HumanizeDuration renders elapsed as a whole count of its largest fitting unit, e.g. "3d" or "11mo".
// Durations below a minute are rendered in seconds; negative durations render as "0s".
func HumanizeDuration(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	for _, unit := range durationUnits {
		if elapsed >= unit.length {
			return fmt.Sprintf(humanizedDurationTemplateConstant, int64(elapsed/unit.length), unit.suffix)
		}
	}
	return fmt.Sprintf(humanizedDurationTemplateConstant, int64(elapsed/time.Second), "s")
}
