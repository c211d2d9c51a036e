// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

/*
Package jarshade relocates ("shades") fully qualified name prefixes inside
JAR archives: entry paths, compiled class structures, manifests, and service
provider descriptors are rewritten consistently so a bundled dependency no
longer collides with another copy of itself at runtime.

Processing is strictly sequential and deterministic: every input entry is
visited exactly once in archive order, classified, transformed, and written.
Parent directory markers are synthesized lazily (parents always precede
children), distinct sources relocating to one output path are resolved
first-seen-wins, and archive signatures plus the optional package index are
dropped because relocation invalidates them.

Special cases handled by the pipeline:
  - manifest named sections lose their per-entry *-Digest attributes;
  - service descriptors relocate both the interface name in the entry path
    and every implementation name in the body;
  - *.kotlin_builtins entries are additionally re-emitted at their original
    path, since consumers resolve that metadata by fixed location.

# Relocating

Relocate a JAR file with prefix rules (include/exclude patterns use
github.com/woozymasta/pathrules glob syntax):

	res, err := jarshade.RelocateFile(ctx, "out.jar", "in.jar", jarshade.Options{
	    Rules: []jarshade.Relocation{
	        {SourcePrefix: "com.foo", TargetPrefix: "shaded.com.foo"},
	        {
	            SourcePrefix: "org.bar",
	            TargetPrefix: "shaded.org.bar",
	            Excludes:     []string{"org/bar/api/**"},
	        },
	    },
	    OnEntryDone: func(entry jarshade.EntryProgress) {
	        // progress callback per written entry
	    },
	})
	_ = res.RewrittenClasses

Stream-level access works over any io.ReaderAt and io.Writer:

	res, err := jarshade.Relocate(ctx, &buf, bytes.NewReader(jar), int64(len(jar)), opts)

# Custom engines

The name mapper and the class rewriter are capability interfaces. Supply a
custom NameMapper to replace the prefix rule engine, or a custom
ClassRewriter to replace the constant-pool level class transformer:

	res, err := jarshade.Relocate(ctx, out, src, size, jarshade.Options{
	    Mapper:   myMapper,
	    Rewriter: myRewriter,
	})

On any error the run aborts; output written before the failure is not a
valid archive and must be discarded by the caller.
*/
package jarshade
