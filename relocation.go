// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"fmt"
	"sort"
	"strings"

	"github.com/woozymasta/pathrules"
)

// Relocation is one configured prefix rewrite rule.
// Prefixes are accepted in dot-separated ("com.foo") or slash-separated
// ("com/foo") form. Include and exclude patterns use path glob syntax
// from github.com/woozymasta/pathrules and accept both spellings too.
type Relocation struct {
	// SourcePrefix is the name prefix to relocate.
	SourcePrefix string `json:"source_prefix" yaml:"source_prefix"`
	// TargetPrefix replaces SourcePrefix in relocated names.
	TargetPrefix string `json:"target_prefix" yaml:"target_prefix"`
	// Includes limits the rule to matching names when non-empty.
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`
	// Excludes exempts matching names from the rule.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// compiledRelocation is the matcher-backed runtime form of one rule.
type compiledRelocation struct {
	// source is the slash-form prefix without trailing separator.
	source string
	// target is the slash-form replacement prefix.
	target string
	// includes limits rule applicability when non-nil.
	includes *pathrules.Matcher
	// excludes exempts matching names when non-nil.
	excludes *pathrules.Matcher
}

// Remapper is the default NameMapper: longest-applicable-prefix substitution
// over the configured relocation rules, identity for everything else.
type Remapper struct {
	rules []compiledRelocation
}

// Remapper implements NameMapper.
var _ NameMapper = (*Remapper)(nil)

// NewRemapper compiles relocation rules into a Remapper.
// Rules with longer source prefixes take precedence regardless of input order.
func NewRemapper(rules []Relocation) (*Remapper, error) {
	compiled := make([]compiledRelocation, 0, len(rules))
	for i, rule := range rules {
		source, err := normalizeRulePrefix(rule.SourcePrefix)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		target, err := normalizeRulePrefix(rule.TargetPrefix)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		includes, err := newPatternMatcher(rule.Includes)
		if err != nil {
			return nil, fmt.Errorf("rule %d: compile includes: %w", i, err)
		}

		excludes, err := newPatternMatcher(rule.Excludes)
		if err != nil {
			return nil, fmt.Errorf("rule %d: compile excludes: %w", i, err)
		}

		compiled = append(compiled, compiledRelocation{
			source:   source,
			target:   target,
			includes: includes,
			excludes: excludes,
		})
	}

	// Longest source prefix wins; stable to keep configured order among equals.
	sort.SliceStable(compiled, func(i, j int) bool {
		return len(compiled[i].source) > len(compiled[j].source)
	})

	return &Remapper{rules: compiled}, nil
}

// Map returns the relocated form of a slash-separated name.
// Names outside every rule are returned unchanged.
func (r *Remapper) Map(name string) string {
	if r == nil || name == "" {
		return name
	}

	for i := range r.rules {
		rule := &r.rules[i]
		if !rule.applies(name) {
			continue
		}

		return rule.target + name[len(rule.source):]
	}

	return name
}

// applies reports whether the rule relocates name.
func (rule *compiledRelocation) applies(name string) bool {
	if !strings.HasPrefix(name, rule.source) {
		return false
	}

	if rule.excludes != nil && rule.excludes.Included(name, false) {
		return false
	}

	if rule.includes != nil && !rule.includes.Included(name, false) {
		return false
	}

	return true
}

// newPatternMatcher compiles raw patterns into a membership matcher.
// Returns nil for an empty pattern set so callers can skip the check.
func newPatternMatcher(patterns []string) (*pathrules.Matcher, error) {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, raw := range patterns {
		for _, pattern := range patternVariants(raw) {
			rules = append(rules, pathrules.Rule{
				Action:  pathrules.ActionInclude,
				Pattern: pattern,
			})
		}
	}

	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionExclude,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRelocation, err)
	}

	return matcher, nil
}
