// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"bytes"
	"fmt"
	"strings"
)

// manifestMaxLineBytes is the maximum manifest line length excluding the
// line terminator, per the JAR file specification.
const manifestMaxLineBytes = 72

// manifestAttribute is one manifest key-value pair in original order.
type manifestAttribute struct {
	// Key is the attribute name.
	Key string
	// Value is the attribute value with continuation lines already joined.
	Value string
}

// manifest is a parsed JAR manifest: one main section followed by zero or
// more named per-entry sections, all in original order.
type manifest struct {
	// main holds main section attributes.
	main []manifestAttribute
	// sections holds named per-entry sections.
	sections [][]manifestAttribute
}

// parseManifest parses manifest bytes. It accepts LF and CRLF line ends and
// joins continuation lines (lines starting with a single space).
func parseManifest(data []byte) (*manifest, error) {
	var (
		out     manifest
		current []manifestAttribute
		inMain  = true
	)

	flush := func() {
		if inMain {
			out.main = current
			inMain = false
		} else if len(current) > 0 {
			out.sections = append(out.sections, current)
		}

		current = nil
	}

	for _, line := range splitManifestLines(data) {
		if line == "" {
			flush()
			continue
		}

		if line[0] == ' ' {
			if len(current) == 0 {
				return nil, fmt.Errorf("%w: continuation line without attribute", ErrMalformedManifest)
			}

			current[len(current)-1].Value += line[1:]
			continue
		}

		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			// Tolerate a bare "Key:" with empty value, reject everything else.
			key, ok = strings.CutSuffix(line, ":")
			if !ok {
				return nil, fmt.Errorf("%w: line %q", ErrMalformedManifest, line)
			}
			value = ""
		}

		current = append(current, manifestAttribute{Key: key, Value: value})
	}
	flush()

	return &out, nil
}

// splitManifestLines splits manifest bytes into raw lines without terminators.
func splitManifestLines(data []byte) []string {
	raw := strings.Split(string(data), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, strings.TrimSuffix(line, "\r"))
	}

	// A trailing terminator yields one empty tail element, not an extra line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	return lines
}

// stripSectionDigests removes per-entry digest attributes from named sections.
// Main section attributes are never filtered: per-entry digests are invalidated
// by content rewriting, whole-archive attributes are not touched.
func (m *manifest) stripSectionDigests() {
	for i, section := range m.sections {
		kept := section[:0]
		for _, attr := range section {
			if strings.HasSuffix(attr.Key, digestAttributeSuffix) {
				continue
			}

			kept = append(kept, attr)
		}

		m.sections[i] = kept
	}
}

// encode serializes the manifest with CRLF terminators and 72-byte line
// wrapping, one blank line after every section.
func (m *manifest) encode() []byte {
	var buf bytes.Buffer
	writeManifestSection(&buf, m.main)
	for _, section := range m.sections {
		writeManifestSection(&buf, section)
	}

	return buf.Bytes()
}

// writeManifestSection writes one attribute section followed by a blank line.
func writeManifestSection(buf *bytes.Buffer, section []manifestAttribute) {
	for _, attr := range section {
		writeManifestLine(buf, attr.Key+": "+attr.Value)
	}

	buf.WriteString("\r\n")
}

// writeManifestLine writes one logical line, wrapping to continuation lines
// so no physical line exceeds the format limit.
func writeManifestLine(buf *bytes.Buffer, line string) {
	chunk := min(len(line), manifestMaxLineBytes)
	buf.WriteString(line[:chunk])
	buf.WriteString("\r\n")

	for rest := line[chunk:]; rest != ""; {
		chunk = min(len(rest), manifestMaxLineBytes-1)
		buf.WriteByte(' ')
		buf.WriteString(rest[:chunk])
		buf.WriteString("\r\n")
		rest = rest[chunk:]
	}
}

// transformManifest parses manifest bytes, strips per-entry digest attributes
// from named sections, and re-serializes the result.
func transformManifest(data []byte) ([]byte, error) {
	parsed, err := parseManifest(data)
	if err != nil {
		return nil, err
	}

	parsed.stripSectionDigests()

	return parsed.encode(), nil
}
