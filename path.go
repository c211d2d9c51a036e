// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"fmt"
	"strings"
)

// externalToInternal converts a dot-separated external class name to
// slash-separated internal form.
func externalToInternal(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// internalToExternal converts a slash-separated internal class name to
// dot-separated external form.
func internalToExternal(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// normalizeRulePrefix converts a rule prefix to canonical slash-separated form.
// It trims spaces, accepts both "." and "/" separated prefixes, and removes
// leading and trailing separators.
func normalizeRulePrefix(raw string) (string, error) {
	prefix := strings.TrimSpace(raw)
	if strings.Contains(prefix, "/") {
		// Already slash-form; dots inside it belong to file or class names.
		prefix = strings.Trim(prefix, "/")
	} else {
		prefix = externalToInternal(strings.Trim(prefix, "."))
	}

	if prefix == "" {
		return "", fmt.Errorf("%w: empty source or target prefix %q", ErrInvalidRelocation, raw)
	}

	return prefix, nil
}

// patternVariants expands an include/exclude pattern into matcher patterns.
// Patterns are accepted in dot-separated class form and slash-separated path
// form; dot-form patterns are matched in both spellings because a literal dot
// can also belong to a file name (for example "*.kotlin_builtins").
func patternVariants(raw string) []string {
	pattern := strings.TrimPrefix(strings.TrimSpace(raw), "/")
	if pattern == "" {
		return nil
	}

	if strings.Contains(pattern, "/") || !strings.Contains(pattern, ".") {
		return []string{pattern}
	}

	return []string{pattern, externalToInternal(pattern)}
}
