// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import "testing"

func TestRelocateServicePath(t *testing.T) {
	t.Parallel()

	r := mustRemapper(t, Relocation{SourcePrefix: "com/foo", TargetPrefix: "shaded/com/foo"})

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "relocated interface",
			in:   "META-INF/services/com.foo.Api",
			want: "META-INF/services/shaded.com.foo.Api",
		},
		{
			name: "unrelated interface",
			in:   "META-INF/services/org.other.Spi",
			want: "META-INF/services/org.other.Spi",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := relocateServicePath(tc.in, r); got != tc.want {
				t.Fatalf("relocateServicePath(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRelocateServiceContent(t *testing.T) {
	t.Parallel()

	r := mustRemapper(t, Relocation{SourcePrefix: "com/foo", TargetPrefix: "shaded/com/foo"})

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single implementation",
			in:   "com.foo.impl.Impl\n",
			want: "shaded.com.foo.impl.Impl\n",
		},
		{
			name: "missing trailing terminator added",
			in:   "com.foo.impl.Impl",
			want: "shaded.com.foo.impl.Impl\n",
		},
		{
			name: "blank lines preserved",
			in:   "com.foo.impl.A\n\ncom.foo.impl.B\n",
			want: "shaded.com.foo.impl.A\n\nshaded.com.foo.impl.B\n",
		},
		{
			name: "crlf input",
			in:   "com.foo.impl.Impl\r\norg.other.Impl\r\n",
			want: "shaded.com.foo.impl.Impl\norg.other.Impl\n",
		},
		{
			name: "empty body",
			in:   "",
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := string(relocateServiceContent([]byte(tc.in), r)); got != tc.want {
				t.Fatalf("relocateServiceContent(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
