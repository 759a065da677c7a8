package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	noColorEnvironmentVariableConstant = "NO_COLOR"
	unknownColorModeTemplateConstant   = "unsupported color mode %q (expected auto, always, or never)"
)

// ColorMode selects when ANSI color sequences are emitted.
type ColorMode string

// Supported color modes.
const (
	ColorModeAuto   ColorMode = "auto"
	ColorModeAlways ColorMode = "always"
	ColorModeNever  ColorMode = "never"
)

// ColorModeChoices lists the accepted color mode values in display order.
var ColorModeChoices = []string{string(ColorModeAuto), string(ColorModeAlways), string(ColorModeNever)}

// UnknownColorModeError reports a color mode outside of the supported set.
type UnknownColorModeError struct {
	Value string
}

func (failure UnknownColorModeError) Error() string {
	return fmt.Sprintf(unknownColorModeTemplateConstant, failure.Value)
}

// ParseColorMode normalizes a color mode. An empty value selects auto.
func ParseColorMode(value string) (ColorMode, error) {
	normalizedValue := ColorMode(strings.ToLower(strings.TrimSpace(value)))
	switch normalizedValue {
	case "":
		return ColorModeAuto, nil
	case ColorModeAuto, ColorModeAlways, ColorModeNever:
		return normalizedValue, nil
	default:
		return "", UnknownColorModeError{Value: value}
	}
}

// Enabled reports whether colors should be written to the provided writer.
func (mode ColorMode) Enabled(writer io.Writer) bool {
	switch mode {
	case ColorModeAlways:
		return true
	case ColorModeNever:
		return false
	default:
		if _, noColorRequested := os.LookupEnv(noColorEnvironmentVariableConstant); noColorRequested {
			return false
		}
		return IsTerminal(writer)
	}
}

// IsTerminal reports whether the writer is backed by an interactive terminal.
func IsTerminal(writer io.Writer) bool {
	descriptorWriter, hasDescriptor := writer.(interface{ Fd() uintptr })
	if !hasDescriptor {
		return false
	}
	descriptor := descriptorWriter.Fd()
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}
