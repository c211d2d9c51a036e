// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// relocationTask carries the state of one relocation run. The written-path
// registry is scoped to the task so repeated or concurrent runs never share
// state; all mutation happens on one sequential control path.
type relocationTask struct {
	mapper      NameMapper
	rewriter    ClassRewriter
	out         *zip.Writer
	written     map[string]struct{}
	onEntryDone func(EntryProgress)
	result      *Result
}

// newRelocationTask prepares run state over an opened output writer.
func newRelocationTask(out *zip.Writer, mapper NameMapper, rewriter ClassRewriter, opts Options) *relocationTask {
	return &relocationTask{
		mapper:      mapper,
		rewriter:    rewriter,
		out:         out,
		written:     make(map[string]struct{}),
		onEntryDone: opts.OnEntryDone,
		result:      &Result{},
	}
}

// classifyEntry categorizes one entry in fixed priority order.
func classifyEntry(name string, isDirectory bool) entryKind {
	switch {
	case isDirectory:
		// Directories are always synthesized for relocated paths, never copied.
		return kindSuppress
	case name == indexListPath:
		// The package index is optional and stale after relocation.
		return kindSuppress
	case isSignaturePath(name):
		// Signatures are invalidated by any content rewrite.
		return kindSuppress
	case strings.HasSuffix(name, classSuffix):
		return kindClass
	case name == manifestPath:
		return kindManifest
	case strings.HasPrefix(name, servicesPrefix):
		return kindService
	default:
		return kindResource
	}
}

// isSignaturePath reports whether name is an archive signature file:
// META-INF/*.SF, META-INF/*.DSA, META-INF/*.RSA, or META-INF/SIG-*.
func isSignaturePath(name string) bool {
	rest, ok := strings.CutPrefix(name, metaInfPrefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return false
	}

	if strings.HasPrefix(rest, signaturePrefix) {
		return true
	}

	return strings.HasSuffix(rest, ".SF") ||
		strings.HasSuffix(rest, ".DSA") ||
		strings.HasSuffix(rest, ".RSA")
}

// processEntry classifies one input entry, relocates its name and content,
// and writes the resulting records. Any error is fatal for the whole run.
func (t *relocationTask) processEntry(f *zip.File) error {
	name := f.Name
	kind := classifyEntry(name, f.FileInfo().IsDir())
	if kind == kindSuppress {
		if !f.FileInfo().IsDir() {
			t.result.SuppressedEntries++
		}

		return nil
	}

	data, err := readEntryContent(f)
	if err != nil {
		return fmt.Errorf("read entry %s: %w", name, err)
	}

	switch kind {
	case kindClass:
		err = t.processClass(f, data)
	case kindManifest:
		err = t.processManifest(f, data)
	case kindService:
		err = t.processService(f, data)
	default:
		err = t.writeRecord(name, t.mapper.Map(name), f.Modified, data, false)
	}
	if err != nil {
		return err
	}

	// Kotlin builtins metadata is located by fixed path at runtime, so the
	// rewritten content is re-emitted at the original path as well.
	if strings.HasSuffix(name, kotlinBuiltinsSuffix) {
		return t.writeRecord(name, name, f.Modified, data, false)
	}

	return nil
}

// processClass rewrites class content through the configured rewriter and
// relocates the entry path with the suffix stripped for mapping.
func (t *relocationTask) processClass(f *zip.File, data []byte) error {
	rewritten, err := t.rewriter.Rewrite(data, t.mapper.Map)
	if err != nil {
		return fmt.Errorf("rewrite class %s: %w", f.Name, err)
	}

	// The mapper sees the same bare internal name the rewriter sees, so the
	// entry path and the class self-reference relocate identically.
	outName := t.mapper.Map(strings.TrimSuffix(f.Name, classSuffix)) + classSuffix
	if err := t.writeRecord(f.Name, outName, f.Modified, rewritten, true); err != nil {
		return err
	}

	t.result.RewrittenClasses++
	return nil
}

// processManifest strips per-entry digest attributes and keeps the original path.
func (t *relocationTask) processManifest(f *zip.File, data []byte) error {
	transformed, err := transformManifest(data)
	if err != nil {
		return fmt.Errorf("transform manifest %s: %w", f.Name, err)
	}

	return t.writeRecord(f.Name, f.Name, f.Modified, transformed, true)
}

// processService relocates the provider interface path and every
// implementation name listed in the descriptor body.
func (t *relocationTask) processService(f *zip.File, data []byte) error {
	outName := relocateServicePath(f.Name, t.mapper)
	content := relocateServiceContent(data, t.mapper)
	if err := t.writeRecord(f.Name, outName, f.Modified, content, true); err != nil {
		return err
	}

	t.result.RewrittenServices++
	return nil
}

// writeRecord synthesizes parent directories, applies first-seen-wins
// deduplication, and writes one output entry.
func (t *relocationTask) writeRecord(srcName, outName string, modified time.Time, data []byte, rewritten bool) error {
	if err := t.ensureParentDirs(outName); err != nil {
		return err
	}

	if _, dup := t.written[outName]; dup {
		// Distinct sources may relocate to one output path; first wins.
		t.result.DuplicateEntries++
		return nil
	}

	w, err := t.out.CreateHeader(&zip.FileHeader{
		Name:     outName,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", outName, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", outName, err)
	}

	t.written[outName] = struct{}{}
	t.result.WrittenEntries++

	if t.onEntryDone != nil {
		t.onEntryDone(EntryProgress{
			SourcePath: srcName,
			OutputPath: outName,
			Size:       int64(len(data)),
			Rewritten:  rewritten,
		})
	}

	return nil
}

// ensureParentDirs emits directory markers for every missing ancestor of
// name, parents before children. The walk is an iterative scan over path
// separators so deeply nested paths never grow the call stack.
func (t *relocationTask) ensureParentDirs(name string) error {
	for i := 0; i < len(name); i++ {
		if name[i] != '/' {
			continue
		}

		dir := name[:i]
		if _, ok := t.written[dir]; ok {
			continue
		}

		if err := t.writeDirectory(dir); err != nil {
			return err
		}
	}

	return nil
}

// writeDirectory emits one synthetic directory marker and records it.
func (t *relocationTask) writeDirectory(dir string) error {
	_, err := t.out.CreateHeader(&zip.FileHeader{
		Name:   dir + "/",
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	t.written[dir] = struct{}{}
	t.result.Directories++
	return nil
}

// readEntryContent reads one entry payload fully. Every transformer needs
// whole content, and the builtins special case re-emits it a second time.
func readEntryContent(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}

	data, readErr := io.ReadAll(rc)
	closeErr := rc.Close()
	if readErr != nil {
		return nil, readErr
	}
	if closeErr != nil {
		return nil, closeErr
	}

	return data, nil
}
