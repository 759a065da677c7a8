package fields

import "strings"

// TimeFormat selects how the commit time column is rendered.
type TimeFormat string

// Supported time formats.
const (
	TimeFormatRelative TimeFormat = "rel"
	TimeFormatHuman    TimeFormat = "human"
	TimeFormatDate     TimeFormat = "date"
	TimeFormatTime     TimeFormat = "time"
	TimeFormatDateTime TimeFormat = "datetime"
	TimeFormatNone     TimeFormat = "none"
)

// DefaultTimeFormat is used when no format is configured.
const DefaultTimeFormat = TimeFormatRelative

var knownTimeFormats = []TimeFormat{
	TimeFormatRelative,
	TimeFormatHuman,
	TimeFormatDate,
	TimeFormatTime,
	TimeFormatDateTime,
	TimeFormatNone,
}

// TimeFormatChoices lists the accepted time format names.
func TimeFormatChoices() []string {
	choices := make([]string, 0, len(knownTimeFormats))
	for _, knownFormat := range knownTimeFormats {
		choices = append(choices, string(knownFormat))
	}
	return choices
}

// ParseTimeFormat normalizes rawFormat. The boolean is false when the name is unknown,
// in which case TimeFormatNone is returned.
func ParseTimeFormat(rawFormat string) (TimeFormat, bool) {
	normalizedFormat := TimeFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	if len(normalizedFormat) == 0 {
		return DefaultTimeFormat, true
	}
	for _, knownFormat := range knownTimeFormats {
		if knownFormat == normalizedFormat {
			return knownFormat, true
		}
	}
	return TimeFormatNone, false
}

// IsRelative reports whether the format renders the age of the commit.
func (timeFormat TimeFormat) IsRelative() bool {
	return timeFormat == TimeFormatRelative || timeFormat == TimeFormatHuman
}

// Suppressed reports whether the time column is dropped entirely.
func (timeFormat TimeFormat) Suppressed() bool {
	return timeFormat == TimeFormatNone
}
