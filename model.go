// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import "time"

// Fixed archive paths and name conventions defined by the JAR format.
const (
	// manifestPath is the fixed manifest entry path.
	manifestPath = "META-INF/MANIFEST.MF"
	// indexListPath is the optional package index entry, stale after relocation.
	indexListPath = "META-INF/INDEX.LIST"
	// servicesPrefix is the service provider descriptor directory.
	servicesPrefix = "META-INF/services/"
	// metaInfPrefix is the archive metadata root.
	metaInfPrefix = "META-INF/"
	// signaturePrefix marks prefix-named signature block files (META-INF/SIG-*).
	signaturePrefix = "SIG-"
	// classSuffix marks compiled class entries.
	classSuffix = ".class"
	// kotlinBuiltinsSuffix marks Kotlin builtins metadata resolved by fixed path at runtime.
	kotlinBuiltinsSuffix = ".kotlin_builtins"
	// digestAttributeSuffix marks per-entry digest attributes in named manifest sections.
	digestAttributeSuffix = "-Digest"
)

// entryKind is the processing category of one archive entry.
type entryKind uint8

// Entry categories in classification priority order.
const (
	// kindSuppress entries are dropped from output (directories, index, signatures).
	kindSuppress entryKind = iota
	// kindClass entries are compiled class files rewritten structurally.
	kindClass
	// kindManifest is the archive manifest.
	kindManifest
	// kindService entries are provider descriptors under META-INF/services/.
	kindService
	// kindResource entries are copied with relocated path only.
	kindResource
)

// NameMapper relocates slash-separated fully qualified names.
// Map must be total and deterministic, and return the input unchanged
// for names outside the configured rules.
type NameMapper interface {
	// Map returns the relocated form of a '/'-delimited name.
	Map(name string) string
}

// ClassRewriter rewrites a compiled class so every internal name reference
// passes through mapName. Implementations must preserve all non-name-bearing
// structure of the class.
type ClassRewriter interface {
	// Rewrite returns the rewritten class bytes or an error for unparsable input.
	Rewrite(data []byte, mapName func(string) string) ([]byte, error)
}

// EntryProgress contains one completed entry write event from relocation flow.
type EntryProgress struct {
	// SourcePath is the entry path in the input archive.
	SourcePath string `json:"source_path" yaml:"source_path"`
	// OutputPath is the relocated entry path written to the output archive.
	OutputPath string `json:"output_path" yaml:"output_path"`
	// Size is the written content size in bytes.
	Size int64 `json:"size" yaml:"size"`
	// Rewritten reports whether entry content was transformed (class, manifest, service).
	Rewritten bool `json:"rewritten,omitempty" yaml:"rewritten,omitempty"`
}

// Options configures a relocation run.
type Options struct {
	// OnEntryDone is called after one entry is fully written to the output archive.
	OnEntryDone func(entry EntryProgress) `json:"-" yaml:"-"`
	// Mapper overrides the name mapper built from Rules when non-nil.
	Mapper NameMapper `json:"-" yaml:"-"`
	// Rewriter overrides the default constant-pool class rewriter when non-nil.
	Rewriter ClassRewriter `json:"-" yaml:"-"`
	// Rules define ordered prefix relocations compiled into the default mapper.
	Rules []Relocation `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Result contains relocation output statistics.
type Result struct {
	// WrittenEntries is the number of non-directory entries written to output.
	WrittenEntries int `json:"written_entries" yaml:"written_entries"`
	// Directories is the number of synthesized directory markers.
	Directories int `json:"directories,omitempty" yaml:"directories,omitempty"`
	// RewrittenClasses is the number of class entries passed through the rewriter.
	RewrittenClasses int `json:"rewritten_classes,omitempty" yaml:"rewritten_classes,omitempty"`
	// RewrittenServices is the number of relocated service descriptor entries.
	RewrittenServices int `json:"rewritten_services,omitempty" yaml:"rewritten_services,omitempty"`
	// SuppressedEntries is the number of dropped signature and package index entries.
	SuppressedEntries int `json:"suppressed_entries,omitempty" yaml:"suppressed_entries,omitempty"`
	// DuplicateEntries is the number of entries skipped because an earlier
	// entry already produced the same output path.
	DuplicateEntries int `json:"duplicate_entries,omitempty" yaml:"duplicate_entries,omitempty"`
	// Duration is end-to-end relocation duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}
