package render

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

const (
	defaultBranchPatternConstant           = "*"
	branchRuleAssignmentConstant           = "="
	branchRuleListSeparatorConstant        = ","
	invalidBranchColorRuleTemplateConstant = "invalid branch color rule %q: %s"
	missingAssignmentReasonConstant        = "expected pattern=color"
)

// BranchColorRule pairs a branch glob with a color.
type BranchColorRule struct {
	Pattern string
	Color   Color
	matcher glob.Glob
}

// BranchColorRules holds explicit patterns in declaration order plus an optional "*" default.
type BranchColorRules struct {
	explicitRules []BranchColorRule
	defaultColor  Color
	hasDefault    bool
}

// InvalidBranchColorRuleError reports a malformed pattern=color entry.
type InvalidBranchColorRuleError struct {
	Rule   string
	Reason string
}

// Error describes the rejected rule.
func (ruleError InvalidBranchColorRuleError) Error() string {
	return fmt.Sprintf(invalidBranchColorRuleTemplateConstant, ruleError.Rule, ruleError.Reason)
}

// ParseBranchColorRules parses pattern=color entries. Each raw value may itself hold a comma-separated list.
// Like explicit patterns, the first "*" entry wins, so earlier sources take precedence.
func ParseBranchColorRules(rawRules []string) (BranchColorRules, error) {
	rules := BranchColorRules{}
	for _, rawRuleList := range rawRules {
		for _, rawRule := range strings.Split(rawRuleList, branchRuleListSeparatorConstant) {
			trimmedRule := strings.TrimSpace(rawRule)
			if len(trimmedRule) == 0 {
				continue
			}

			pattern, colorName, hasAssignment := strings.Cut(trimmedRule, branchRuleAssignmentConstant)
			pattern = strings.TrimSpace(pattern)
			if !hasAssignment || len(pattern) == 0 {
				return BranchColorRules{}, InvalidBranchColorRuleError{Rule: trimmedRule, Reason: missingAssignmentReasonConstant}
			}

			color, colorError := ParseColor(colorName)
			if colorError != nil {
				return BranchColorRules{}, InvalidBranchColorRuleError{Rule: trimmedRule, Reason: colorError.Error()}
			}

			if pattern == defaultBranchPatternConstant {
				if !rules.hasDefault {
					rules.defaultColor = color
					rules.hasDefault = true
				}
				continue
			}

			matcher, compileError := glob.Compile(pattern)
			if compileError != nil {
				return BranchColorRules{}, InvalidBranchColorRuleError{Rule: trimmedRule, Reason: compileError.Error()}
			}
			rules.explicitRules = append(rules.explicitRules, BranchColorRule{Pattern: pattern, Color: color, matcher: matcher})
		}
	}
	return rules, nil
}

// ColorFor returns the color of the first matching explicit rule, else the default.
// The boolean is false when no rule applies or branch is empty.
func (rules BranchColorRules) ColorFor(branch string) (Color, bool) {
	if len(branch) == 0 {
		return "", false
	}
	for _, rule := range rules.explicitRules {
		if rule.matcher.Match(branch) {
			return rule.Color, true
		}
	}
	if rules.hasDefault {
		return rules.defaultColor, true
	}
	return "", false
}
