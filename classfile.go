// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// classMagic is the class file magic number.
const classMagic = 0xCAFEBABE

// classHeaderSize covers magic, minor/major version, and constant pool count.
const classHeaderSize = 10

// Constant pool entry tags.
const (
	cpUtf8               = 1
	cpInteger            = 3
	cpFloat              = 4
	cpLong               = 5
	cpDouble             = 6
	cpClass              = 7
	cpString             = 8
	cpFieldref           = 9
	cpMethodref          = 10
	cpInterfaceMethodref = 11
	cpNameAndType        = 12
	cpMethodHandle       = 15
	cpMethodType         = 16
	cpDynamic            = 17
	cpInvokeDynamic      = 18
	cpModule             = 19
	cpPackage            = 20
)

// utf8Role marks how a constant pool Utf8 entry is referenced.
// Only name-bearing roles are rewritten; unreferenced strings
// (including string literals) pass through untouched.
type utf8Role uint8

const (
	// roleClassName marks slash-form internal names (and array descriptors).
	roleClassName utf8Role = 1 << iota
	// roleDescriptor marks field/method type descriptors.
	roleDescriptor
	// roleSignature marks generic type signatures.
	roleSignature
)

// poolEntry is one parsed constant pool slot.
// The second slot of long/double constants keeps tag zero.
type poolEntry struct {
	// start and end bound the raw entry bytes including tag.
	start int
	end   int
	// value holds the raw Utf8 payload for cpUtf8 entries.
	value string
	// tag is the constant pool tag, zero for padding slots.
	tag byte
	// role accumulates how this Utf8 entry is referenced.
	role utf8Role
}

// classRewriter is the default ClassRewriter. It rewrites name-bearing
// constant pool Utf8 entries and copies the class body verbatim: every
// body reference is a pool index and stays valid across the rewrite.
type classRewriter struct{}

// classRewriter implements ClassRewriter.
var _ ClassRewriter = classRewriter{}

// NewClassRewriter returns the default constant-pool class rewriter.
func NewClassRewriter() ClassRewriter {
	return classRewriter{}
}

// Rewrite parses the class, relocates internal names, descriptors, and
// signatures through mapName, and re-emits the class bytes.
func (classRewriter) Rewrite(data []byte, mapName func(string) string) ([]byte, error) {
	c, err := parseClass(data)
	if err != nil {
		return nil, err
	}

	return c.rewrite(mapName)
}

// classFile holds a parsed constant pool plus body boundaries.
type classFile struct {
	data    []byte
	entries []poolEntry
	// poolEnd is the offset of the first byte after the constant pool.
	poolEnd int
	// count is the declared constant pool count (entries are 1..count-1).
	count int
}

// classParser is a bounds-checked big-endian cursor over class bytes.
type classParser struct {
	data []byte
	off  int
}

// u1 reads one byte.
func (p *classParser) u1() (byte, error) {
	if p.off+1 > len(p.data) {
		return 0, fmt.Errorf("%w: unexpected end of data", ErrMalformedClass)
	}

	v := p.data[p.off]
	p.off++
	return v, nil
}

// u2 reads a big-endian 16-bit value.
func (p *classParser) u2() (int, error) {
	if p.off+2 > len(p.data) {
		return 0, fmt.Errorf("%w: unexpected end of data", ErrMalformedClass)
	}

	v := int(binary.BigEndian.Uint16(p.data[p.off:]))
	p.off += 2
	return v, nil
}

// u4 reads a big-endian 32-bit value.
func (p *classParser) u4() (uint32, error) {
	if p.off+4 > len(p.data) {
		return 0, fmt.Errorf("%w: unexpected end of data", ErrMalformedClass)
	}

	v := binary.BigEndian.Uint32(p.data[p.off:])
	p.off += 4
	return v, nil
}

// skip advances the cursor by n bytes.
func (p *classParser) skip(n int) error {
	if n < 0 || p.off+n > len(p.data) {
		return fmt.Errorf("%w: unexpected end of data", ErrMalformedClass)
	}

	p.off += n
	return nil
}

// slice returns the next n bytes without copying.
func (p *classParser) slice(n int) ([]byte, error) {
	if n < 0 || p.off+n > len(p.data) {
		return nil, fmt.Errorf("%w: unexpected end of data", ErrMalformedClass)
	}

	out := p.data[p.off : p.off+n]
	p.off += n
	return out, nil
}

// parseClass parses the constant pool and marks every name-bearing Utf8 role
// found in the pool, member tables, and attribute structures.
func parseClass(data []byte) (*classFile, error) {
	if len(data) < classHeaderSize {
		return nil, fmt.Errorf("%w: short header", ErrMalformedClass)
	}
	if binary.BigEndian.Uint32(data) != classMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedClass)
	}

	c := &classFile{
		data:  data,
		count: int(binary.BigEndian.Uint16(data[8:])),
	}
	c.entries = make([]poolEntry, c.count)

	p := &classParser{data: data, off: classHeaderSize}
	if err := c.parsePool(p); err != nil {
		return nil, err
	}

	c.poolEnd = p.off
	if err := c.scanBody(p); err != nil {
		return nil, err
	}

	return c, nil
}

// parsePool parses constant pool entries and marks roles visible from pool
// cross-references (class names, name-and-type and method-type descriptors).
func (c *classFile) parsePool(p *classParser) error {
	type poolRef struct {
		index int
		role  utf8Role
	}

	var refs []poolRef
	for i := 1; i < c.count; i++ {
		start := p.off
		tag, err := p.u1()
		if err != nil {
			return err
		}

		entry := poolEntry{start: start, tag: tag}
		switch tag {
		case cpUtf8:
			length, err := p.u2()
			if err != nil {
				return err
			}

			payload, err := p.slice(length)
			if err != nil {
				return err
			}

			entry.value = string(payload)
		case cpInteger, cpFloat, cpFieldref, cpMethodref, cpInterfaceMethodref, cpInvokeDynamic, cpDynamic:
			if err := p.skip(4); err != nil {
				return err
			}
		case cpNameAndType:
			if err := p.skip(2); err != nil {
				return err
			}

			descriptor, err := p.u2()
			if err != nil {
				return err
			}

			refs = append(refs, poolRef{index: descriptor, role: roleDescriptor})
		case cpLong, cpDouble:
			if err := p.skip(8); err != nil {
				return err
			}
		case cpClass, cpPackage:
			name, err := p.u2()
			if err != nil {
				return err
			}

			refs = append(refs, poolRef{index: name, role: roleClassName})
		case cpMethodType:
			descriptor, err := p.u2()
			if err != nil {
				return err
			}

			refs = append(refs, poolRef{index: descriptor, role: roleDescriptor})
		case cpString, cpModule:
			// String literals and module names are never relocated.
			if err := p.skip(2); err != nil {
				return err
			}
		case cpMethodHandle:
			if err := p.skip(3); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown constant pool tag %d", ErrMalformedClass, tag)
		}

		entry.end = p.off
		c.entries[i] = entry
		if tag == cpLong || tag == cpDouble {
			// Eight-byte constants occupy two pool slots.
			i++
		}
	}

	for _, ref := range refs {
		if err := c.markUtf8(ref.index, ref.role); err != nil {
			return err
		}
	}

	return nil
}

// markUtf8 records a role for the Utf8 entry at the given pool index.
func (c *classFile) markUtf8(index int, role utf8Role) error {
	if index < 1 || index >= c.count || c.entries[index].tag != cpUtf8 {
		return fmt.Errorf("%w: constant #%d is not a utf8 entry", ErrMalformedClass, index)
	}

	c.entries[index].role |= role
	return nil
}

// utf8 returns the Utf8 value at a pool index, or "" when it is not one.
func (c *classFile) utf8(index int) string {
	if index < 1 || index >= c.count || c.entries[index].tag != cpUtf8 {
		return ""
	}

	return c.entries[index].value
}

// scanBody walks member tables and attributes after the constant pool to
// mark descriptor and signature roles not visible from the pool itself.
func (c *classFile) scanBody(p *classParser) error {
	// access_flags, this_class, super_class
	if err := p.skip(6); err != nil {
		return err
	}

	interfaces, err := p.u2()
	if err != nil {
		return err
	}
	if err := p.skip(2 * interfaces); err != nil {
		return err
	}

	// Field table, then method table: identical member layout.
	for range 2 {
		members, err := p.u2()
		if err != nil {
			return err
		}

		for range members {
			// access_flags, name_index
			if err := p.skip(4); err != nil {
				return err
			}

			descriptor, err := p.u2()
			if err != nil {
				return err
			}
			if err := c.markUtf8(descriptor, roleDescriptor); err != nil {
				return err
			}

			if err := c.scanAttributes(p); err != nil {
				return err
			}
		}
	}

	return c.scanAttributes(p)
}

// scanAttributes walks one attribute table and marks roles inside the
// attribute structures that carry type names.
func (c *classFile) scanAttributes(p *classParser) error {
	count, err := p.u2()
	if err != nil {
		return err
	}

	for range count {
		nameIndex, err := p.u2()
		if err != nil {
			return err
		}

		length, err := p.u4()
		if err != nil {
			return err
		}

		body, err := p.slice(int(length))
		if err != nil {
			return err
		}

		if err := c.scanAttribute(c.utf8(nameIndex), &classParser{data: body}); err != nil {
			return err
		}
	}

	return nil
}

// scanAttribute dispatches on attribute name. Unknown attributes are skipped;
// their pool references resolve to already-marked or non-name entries.
func (c *classFile) scanAttribute(name string, p *classParser) error {
	switch name {
	case "Signature":
		index, err := p.u2()
		if err != nil {
			return err
		}

		return c.markUtf8(index, roleSignature)
	case "Code":
		return c.scanCodeAttribute(p)
	case "LocalVariableTable":
		return c.scanLocalVariables(p, roleDescriptor)
	case "LocalVariableTypeTable":
		return c.scanLocalVariables(p, roleSignature)
	case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
		return c.scanAnnotationList(p)
	case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
		parameters, err := p.u1()
		if err != nil {
			return err
		}

		for range parameters {
			if err := c.scanAnnotationList(p); err != nil {
				return err
			}
		}

		return nil
	case "AnnotationDefault":
		return c.scanElementValue(p)
	default:
		return nil
	}
}

// scanCodeAttribute skips bytecode and exception table and walks the nested
// attribute table (local variable tables live there).
func (c *classFile) scanCodeAttribute(p *classParser) error {
	// max_stack, max_locals
	if err := p.skip(4); err != nil {
		return err
	}

	codeLength, err := p.u4()
	if err != nil {
		return err
	}
	if err := p.skip(int(codeLength)); err != nil {
		return err
	}

	exceptions, err := p.u2()
	if err != nil {
		return err
	}
	if err := p.skip(8 * exceptions); err != nil {
		return err
	}

	return c.scanAttributes(p)
}

// scanLocalVariables marks the descriptor or signature slot of each local
// variable record.
func (c *classFile) scanLocalVariables(p *classParser, role utf8Role) error {
	count, err := p.u2()
	if err != nil {
		return err
	}

	for range count {
		// start_pc, length, name_index
		if err := p.skip(6); err != nil {
			return err
		}

		index, err := p.u2()
		if err != nil {
			return err
		}
		if err := c.markUtf8(index, role); err != nil {
			return err
		}

		// variable slot index
		if err := p.skip(2); err != nil {
			return err
		}
	}

	return nil
}

// scanAnnotationList walks a u2-counted annotation sequence.
func (c *classFile) scanAnnotationList(p *classParser) error {
	count, err := p.u2()
	if err != nil {
		return err
	}

	for range count {
		if err := c.scanAnnotation(p); err != nil {
			return err
		}
	}

	return nil
}

// scanAnnotation marks the annotation type descriptor and walks element values.
func (c *classFile) scanAnnotation(p *classParser) error {
	typeIndex, err := p.u2()
	if err != nil {
		return err
	}
	if err := c.markUtf8(typeIndex, roleDescriptor); err != nil {
		return err
	}

	pairs, err := p.u2()
	if err != nil {
		return err
	}

	for range pairs {
		// element_name_index
		if err := p.skip(2); err != nil {
			return err
		}

		if err := c.scanElementValue(p); err != nil {
			return err
		}
	}

	return nil
}

// scanElementValue walks one annotation element value.
func (c *classFile) scanElementValue(p *classParser) error {
	tag, err := p.u1()
	if err != nil {
		return err
	}

	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		// Primitive and string constants carry no relocatable names.
		return p.skip(2)
	case 'e':
		typeName, err := p.u2()
		if err != nil {
			return err
		}
		if err := c.markUtf8(typeName, roleDescriptor); err != nil {
			return err
		}

		// const_name_index
		return p.skip(2)
	case 'c':
		index, err := p.u2()
		if err != nil {
			return err
		}

		return c.markUtf8(index, roleSignature)
	case '@':
		return c.scanAnnotation(p)
	case '[':
		count, err := p.u2()
		if err != nil {
			return err
		}

		for range count {
			if err := c.scanElementValue(p); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: unknown element value tag %q", ErrMalformedClass, tag)
	}
}

// rewrite re-emits the class with relocated pool strings and verbatim body.
func (c *classFile) rewrite(mapName func(string) string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(c.data) + 256)
	buf.Write(c.data[:classHeaderSize])

	var length [2]byte
	for i := 1; i < c.count; i++ {
		entry := &c.entries[i]
		if entry.tag == 0 {
			// Padding slot after a long/double constant.
			continue
		}

		if entry.tag != cpUtf8 || entry.role == 0 {
			buf.Write(c.data[entry.start:entry.end])
			continue
		}

		value := rewriteUtf8(entry.value, entry.role, mapName)
		if len(value) > 0xffff {
			return nil, fmt.Errorf("%w: relocated constant exceeds utf8 length limit", ErrMalformedClass)
		}

		buf.WriteByte(cpUtf8)
		binary.BigEndian.PutUint16(length[:], uint16(len(value)))
		buf.Write(length[:])
		buf.WriteString(value)
	}

	buf.Write(c.data[c.poolEnd:])
	return buf.Bytes(), nil
}

// rewriteUtf8 relocates one pool string according to its strongest role.
func rewriteUtf8(value string, role utf8Role, mapName func(string) string) string {
	if role&roleClassName != 0 {
		return mapInternalName(value, mapName)
	}

	return rewriteTypeString(value, mapName)
}

// mapInternalName maps a bare internal name; array types encode their element
// class in descriptor form.
func mapInternalName(name string, mapName func(string) string) string {
	if strings.HasPrefix(name, "[") {
		return rewriteTypeString(name, mapName)
	}

	return mapName(name)
}

// rewriteTypeString relocates every "L<name>;" (or generic "L<name><...")
// reference inside a descriptor or signature. Everything outside these
// tokens is copied unchanged.
func rewriteTypeString(s string, mapName func(string) string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); {
		if s[i] != 'L' {
			b.WriteByte(s[i])
			i++
			continue
		}

		j := i + 1
		for j < len(s) && s[j] != ';' && s[j] != '<' {
			j++
		}

		b.WriteByte('L')
		b.WriteString(mapName(s[i+1 : j]))
		i = j
	}

	return b.String()
}
