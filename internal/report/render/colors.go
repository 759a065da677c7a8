// Package render prints report records as aligned, optionally colorized text tables.
package render

import (
	"fmt"
	"sort"
	"strings"
)

// Color is a canonical color name from the closed set accepted by ParseColor.
type Color string

// ColorNone leaves text unchanged.
const ColorNone Color = "none"

const (
	controlSequenceIntroducerConstant = "\x1b["
	selectGraphicRenditionEndConstant = "m"
	resetSequenceConstant             = "\x1b[0m"
	unknownColorTemplateConstant      = "unknown color %q (expected one of %s)"
	colorListSeparatorConstant        = ", "
)

var colorCodes = map[Color]string{
	"black":          "30",
	"red":            "31",
	"green":          "32",
	"yellow":         "33",
	"blue":           "34",
	"magenta":        "35",
	"cyan":           "36",
	"white":          "37",
	"gray":           "90",
	"bright-black":   "90",
	"bright-red":     "91",
	"bright-green":   "92",
	"bright-yellow":  "93",
	"bright-blue":    "94",
	"bright-magenta": "95",
	"bright-cyan":    "96",
	"bright-white":   "97",
	"bold":           "1",
	"dim":            "2",
	ColorNone:        "",
}

// UnknownColorError reports a color name outside the supported set.
type UnknownColorError struct {
	Name string
}

// Error lists the accepted names.
func (unknownColorError UnknownColorError) Error() string {
	return fmt.Sprintf(unknownColorTemplateConstant, unknownColorError.Name, strings.Join(ColorNames(), colorListSeparatorConstant))
}

// ColorNames returns every accepted color name in lexical order.
func ColorNames() []string {
	names := make([]string, 0, len(colorCodes))
	for color := range colorCodes {
		names = append(names, string(color))
	}
	sort.Strings(names)
	return names
}

// ParseColor resolves a case-insensitive color name.
func ParseColor(rawName string) (Color, error) {
	candidate := Color(strings.ToLower(strings.TrimSpace(rawName)))
	if _, known := colorCodes[candidate]; !known {
		return "", UnknownColorError{Name: rawName}
	}
	return candidate, nil
}

// Wrap surrounds text with the color's escape sequence and a reset. Empty text and ColorNone are returned unchanged.
func (color Color) Wrap(text string) string {
	code := colorCodes[color]
	if len(code) == 0 || len(text) == 0 {
		return text
	}
	return controlSequenceIntroducerConstant + code + selectGraphicRenditionEndConstant + text + resetSequenceConstant
}
