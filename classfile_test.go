// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// testClassBuilder assembles minimal valid class files for rewriter tests.
type testClassBuilder struct {
	pool [][]byte
	body bytes.Buffer
}

// u2 appends a big-endian 16-bit value.
func u2(buf *bytes.Buffer, v int) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	buf.Write(b[:])
}

// addUtf8 appends a Utf8 constant and returns its pool index.
func (b *testClassBuilder) addUtf8(s string) int {
	var e bytes.Buffer
	e.WriteByte(cpUtf8)
	u2(&e, len(s))
	e.WriteString(s)
	b.pool = append(b.pool, e.Bytes())
	return len(b.pool)
}

// addClass appends a Class constant referencing a Utf8 name index.
func (b *testClassBuilder) addClass(nameIndex int) int {
	var e bytes.Buffer
	e.WriteByte(cpClass)
	u2(&e, nameIndex)
	b.pool = append(b.pool, e.Bytes())
	return len(b.pool)
}

// addNameAndType appends a NameAndType constant.
func (b *testClassBuilder) addNameAndType(nameIndex, descriptorIndex int) int {
	var e bytes.Buffer
	e.WriteByte(cpNameAndType)
	u2(&e, nameIndex)
	u2(&e, descriptorIndex)
	b.pool = append(b.pool, e.Bytes())
	return len(b.pool)
}

// addLong appends a Long constant, which occupies two pool slots.
func (b *testClassBuilder) addLong(v uint64) int {
	var e bytes.Buffer
	e.WriteByte(cpLong)
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], v)
	e.Write(raw[:])
	b.pool = append(b.pool, e.Bytes(), nil)
	return len(b.pool) - 1
}

// build assembles the class bytes around the given this/super class indices.
// When body is empty a minimal member-free body with zero attributes is used.
func (b *testClassBuilder) build(thisClass, superClass int) []byte {
	var out bytes.Buffer
	var magic [4]byte
	binary.BigEndian.PutUint32(magic[:], classMagic)
	out.Write(magic[:])
	u2(&out, 0)  // minor
	u2(&out, 52) // major
	u2(&out, len(b.pool)+1)
	for _, entry := range b.pool {
		out.Write(entry)
	}

	if b.body.Len() > 0 {
		out.Write(b.body.Bytes())
		return out.Bytes()
	}

	u2(&out, 0x0021) // access flags
	u2(&out, thisClass)
	u2(&out, superClass)
	u2(&out, 0) // interfaces
	u2(&out, 0) // fields
	u2(&out, 0) // methods
	u2(&out, 0) // attributes
	return out.Bytes()
}

// buildTestClass returns a class named "com/foo/Bar" with a relocatable
// method descriptor and a generic class signature attribute.
func buildTestClass(t *testing.T) []byte {
	t.Helper()

	var b testClassBuilder
	thisName := b.addUtf8("com/foo/Bar")
	thisClass := b.addClass(thisName)
	superName := b.addUtf8("java/lang/Object")
	superClass := b.addClass(superName)
	descriptor := b.addUtf8("(JLcom/foo/Baz;)V")
	methodName := b.addUtf8("accept")
	b.addNameAndType(methodName, descriptor)
	b.addLong(42)
	signatureAttr := b.addUtf8("Signature")
	signature := b.addUtf8("Lcom/foo/Container<Ljava/lang/String;>;")

	u2(&b.body, 0x0021)
	u2(&b.body, thisClass)
	u2(&b.body, superClass)
	u2(&b.body, 0) // interfaces
	u2(&b.body, 0) // fields
	u2(&b.body, 0) // methods
	u2(&b.body, 1) // class attributes
	u2(&b.body, signatureAttr)
	b.body.Write([]byte{0, 0, 0, 2}) // attribute length
	u2(&b.body, signature)

	return b.build(thisClass, superClass)
}

func TestClassRewriterRelocatesPool(t *testing.T) {
	t.Parallel()

	r := mustRemapper(t, Relocation{SourcePrefix: "com/foo", TargetPrefix: "shaded/com/foo"})

	out, err := NewClassRewriter().Rewrite(buildTestClass(t), r.Map)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	parsed, err := parseClass(out)
	if err != nil {
		t.Fatalf("parse rewritten class: %v", err)
	}

	want := map[string]bool{
		"shaded/com/foo/Bar":                        false,
		"java/lang/Object":                          false,
		"(JLshaded/com/foo/Baz;)V":                  false,
		"Lshaded/com/foo/Container<Ljava/lang/String;>;": false,
	}
	for i := 1; i < parsed.count; i++ {
		if parsed.entries[i].tag != cpUtf8 {
			continue
		}
		if _, ok := want[parsed.entries[i].value]; ok {
			want[parsed.entries[i].value] = true
		}
		if parsed.entries[i].value == "com/foo/Bar" {
			t.Fatal("class self-reference not relocated")
		}
	}

	for value, found := range want {
		if !found {
			t.Fatalf("missing pool constant %q", value)
		}
	}
}

func TestClassRewriterIdentityKeepsBytes(t *testing.T) {
	t.Parallel()

	in := buildTestClass(t)
	out, err := NewClassRewriter().Rewrite(in, mustRemapper(t).Map)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	if !bytes.Equal(in, out) {
		t.Fatal("identity mapping changed class bytes")
	}
}

func TestClassRewriterMalformed(t *testing.T) {
	t.Parallel()

	valid := buildTestClass(t)
	badMagic := bytes.Clone(valid)
	badMagic[0] = 0xff

	testCases := []struct {
		name string
		in   []byte
	}{
		{name: "empty", in: nil},
		{name: "short", in: []byte{0xca, 0xfe}},
		{name: "bad magic", in: badMagic},
		{name: "truncated pool", in: valid[:16]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewClassRewriter().Rewrite(tc.in, func(s string) string { return s })
			if !errors.Is(err, ErrMalformedClass) {
				t.Fatalf("expected ErrMalformedClass, got %v", err)
			}
		})
	}
}

func TestRewriteTypeString(t *testing.T) {
	t.Parallel()

	mapName := func(name string) string {
		if name == "com/foo/Bar" || name == "com/foo/Baz" {
			return "shaded/" + name
		}
		return name
	}

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "primitive only", in: "(IJ)V", want: "(IJ)V"},
		{name: "object descriptor", in: "(Lcom/foo/Bar;)V", want: "(Lshaded/com/foo/Bar;)V"},
		{name: "array descriptor", in: "[[Lcom/foo/Bar;", want: "[[Lshaded/com/foo/Bar;"},
		{name: "mixed", in: "(JLcom/foo/Bar;I)Lcom/foo/Baz;", want: "(JLshaded/com/foo/Bar;I)Lshaded/com/foo/Baz;"},
		{name: "generic signature", in: "Lcom/foo/Bar<Lcom/foo/Baz;>;", want: "Lshaded/com/foo/Bar<Lshaded/com/foo/Baz;>;"},
		{name: "type variable untouched", in: "TT;", want: "TT;"},
		{name: "unrelated", in: "Ljava/util/List;", want: "Ljava/util/List;"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := rewriteTypeString(tc.in, mapName); got != tc.want {
				t.Fatalf("rewriteTypeString(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
