// Package flags provides pflag values and usage helpers shared by multigit commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix        = "<"
	choicePlaceholderSuffix        = ">"
	choiceSeparatorLiteral         = "|"
	choiceUsageEmptyTemplate       = "`%s`"
	choiceUsageFullTemplate        = "`%s` %s"
	choiceValueTypeNameConstant    = "choice"
	choiceRejectedTemplateConstant = "invalid value %q (expected one of %s)"
	choiceListSeparatorConstant    = ", "
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ChoiceValue is a pflag.Value restricted to a closed set of case-insensitive choices.
// The stored value is always the lower-case canonical choice.
type ChoiceValue struct {
	target  *string
	choices []string
}

var _ pflag.Value = (*ChoiceValue)(nil)

// NewChoiceValue stores defaultChoice into target and returns a value accepting only choices.
func NewChoiceValue(target *string, defaultChoice string, choices []string) *ChoiceValue {
	normalizedChoices := make([]string, 0, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		normalizedChoices = append(normalizedChoices, normalizedChoice)
	}
	*target = defaultChoice
	return &ChoiceValue{target: target, choices: normalizedChoices}
}

// AddChoiceFlag registers a choice flag with highlighted usage text.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, shorthand string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || len(name) == 0 {
		return
	}
	choiceValue := NewChoiceValue(target, defaultChoice, choices)
	flagSet.VarP(choiceValue, name, shorthand, FormatChoiceUsage(defaultChoice, choices, description))
}

// String returns the current choice.
func (value *ChoiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

// Set validates and stores candidate.
func (value *ChoiceValue) Set(candidate string) error {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	for _, choice := range value.choices {
		if choice == normalizedCandidate {
			*value.target = choice
			return nil
		}
	}
	return fmt.Errorf(choiceRejectedTemplateConstant, candidate, strings.Join(value.choices, choiceListSeparatorConstant))
}

// Type names the value kind in help output.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeNameConstant
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	highlightedChoices := highlightDefaultChoice(defaultChoice, choices)
	return choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}

		displayValue := trimmedChoice
		if normalizedChoice == normalizedDefault && len(normalizedChoice) > 0 {
			displayValue = strings.ToUpper(trimmedChoice)
		}

		highlighted = append(highlighted, displayValue)
		seen[normalizedChoice] = struct{}{}
	}

	return highlighted
}
