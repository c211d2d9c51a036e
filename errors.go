// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import "errors"

// Sentinel errors for relocation operations. Use errors.Is in callers.
var (
	// ErrNilReader means the archive source is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the archive destination is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrInvalidRelocation means one or more relocation rules are invalid.
	ErrInvalidRelocation = errors.New("invalid relocation rule")
	// ErrMalformedClass means a class file entry cannot be parsed.
	ErrMalformedClass = errors.New("malformed class file")
	// ErrMalformedManifest means the manifest entry cannot be parsed.
	ErrMalformedManifest = errors.New("malformed manifest")
	// ErrMalformedArchive means the input is not a readable ZIP archive.
	ErrMalformedArchive = errors.New("malformed archive")
)
