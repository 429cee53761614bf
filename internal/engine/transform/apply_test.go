package transform

import "testing"

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		format  string
		flags   string
		source  string
		want    string
	}{
		{
			name:    "first match only",
			pattern: "o", format: "0", flags: "",
			source: "foo", want: "f0o",
		},
		{
			name:    "global",
			pattern: "o", format: "0", flags: "g",
			source: "foo", want: "f00",
		},
		{
			name:    "no match is identity",
			pattern: "xyz", format: "gone", flags: "g",
			source: "hello world", want: "hello world",
		},
		{
			name:    "case insensitive",
			pattern: "hello", format: "bye", flags: "i",
			source: "HELLO there", want: "bye there",
		},
		{
			name:    "multiline anchors",
			pattern: "^b", format: "B", flags: "mg",
			source: "a\nb\nba", want: "a\nB\nBa",
		},
		{
			name:    "backreference",
			pattern: `(\w+)@(\w+)`, format: "$2 at $1", flags: "",
			source: "user@host", want: "host at user",
		},
		{
			name:    "braced backreference",
			pattern: `(\d+)`, format: "${1}${1}", flags: "",
			source: "x42y", want: "x4242y",
		},
		{
			name:    "unmatched group is empty",
			pattern: `(a)(z)?`, format: "[$1$2]", flags: "",
			source: "abc", want: "[a]bc",
		},
		{
			name:    "out of range group is empty",
			pattern: "a", format: "$9", flags: "",
			source: "abc", want: "bc",
		},
		{
			name:    "uppercase next",
			pattern: `(\w+)`, format: `\u$1`, flags: "",
			source: "john", want: "John",
		},
		{
			name:    "lowercase next",
			pattern: `(\w+)`, format: `\l$1`, flags: "",
			source: "JOHN", want: "jOHN",
		},
		{
			name:    "uppercase span until E",
			pattern: `(\w+) (\w+)`, format: `\U$1\E $2`, flags: "",
			source: "make it", want: "MAKE it",
		},
		{
			name:    "lowercase span",
			pattern: `(\w+)`, format: `\L$1`, flags: "",
			source: "LOUD", want: "loud",
		},
		{
			name:    "escaped dollar and backslash",
			pattern: "x", format: `\$1\\`, flags: "",
			source: "x", want: `$1\`,
		},
		{
			name:    "newline and tab escapes",
			pattern: "-", format: `\n\t`, flags: "",
			source: "a-b", want: "a\n\tb",
		},
		{
			name:    "bad pattern degrades to identity",
			pattern: "(", format: "x", flags: "",
			source: "keep", want: "keep",
		},
		{
			name:    "strip prefix",
			pattern: `^\s*(.*)$`, format: "$1", flags: "",
			source: "   padded", want: "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.pattern, tt.format, tt.flags, tt.source)
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	// Same rule, same source, same result.
	first := Apply(`(\w+)`, `\u$1`, "g", "one two")
	second := Apply(`(\w+)`, `\u$1`, "g", "one two")
	if first != second {
		t.Errorf("Apply not idempotent: %q then %q", first, second)
	}
}

func TestCompile_Cache(t *testing.T) {
	re1, err := Compile("ab+", "i")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	re2, err := Compile("ab+", "i")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if re1 != re2 {
		t.Error("expected cached regexp on second compile")
	}

	if _, err := Compile("(", ""); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
