// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"bytes"
	"strings"
)

// relocateServicePath relocates the provider interface name encoded in a
// service descriptor entry path. The dot-separated segment after the fixed
// directory prefix is mapped in internal (slash) form and converted back.
func relocateServicePath(name string, mapper NameMapper) string {
	providerInterface := strings.TrimPrefix(name, servicesPrefix)
	mapped := mapper.Map(externalToInternal(providerInterface))

	return servicesPrefix + internalToExternal(mapped)
}

// relocateServiceContent relocates implementation class names listed in a
// service descriptor body. One name per line; blank lines are kept blank so
// the output is structure-preserving, and the output always ends with a
// line terminator.
func relocateServiceContent(data []byte, mapper NameMapper) []byte {
	lines := strings.Split(string(data), "\n")

	// A trailing terminator yields one empty tail element, not a blank line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var buf bytes.Buffer
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line != "" {
			line = internalToExternal(mapper.Map(externalToInternal(line)))
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}
