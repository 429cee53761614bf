package transform

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// compiled caches compiled patterns keyed by flags+pattern. Shared
// across sessions; read-mostly.
var (
	compiledMu sync.RWMutex
	compiled   = make(map[string]*regexp.Regexp)
)

// Compile builds the regexp for a pattern under the given flags.
// "i" enables case-insensitive matching, "m" multiline anchors. The
// "g" flag affects replacement, not compilation.
func Compile(pattern, flags string) (*regexp.Regexp, error) {
	var mode string
	if strings.Contains(flags, "i") {
		mode += "i"
	}
	if strings.Contains(flags, "m") {
		mode += "m"
	}
	expr := pattern
	if mode != "" {
		expr = "(?" + mode + ")" + pattern
	}

	compiledMu.RLock()
	re, ok := compiled[expr]
	compiledMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	compiledMu.Lock()
	compiled[expr] = re
	compiledMu.Unlock()
	return re, nil
}

// Apply runs one derivation: matches of pattern in source are replaced
// by the expanded format template. Without the "g" flag only the first
// match is replaced. No match (or an uncompilable pattern) yields the
// source unchanged.
func Apply(pattern, format, flags, source string) string {
	re, err := Compile(pattern, flags)
	if err != nil {
		return source
	}

	limit := 1
	if strings.Contains(flags, "g") {
		limit = -1
	}

	matches := re.FindAllStringSubmatchIndex(source, limit)
	if len(matches) == 0 {
		return source
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(source[last:m[0]])
		b.WriteString(expandFormat(format, source, m))
		last = m[1]
	}
	b.WriteString(source[last:])
	return b.String()
}

// caser tracks pending case-folding directives while expanding a
// format template.
type caser struct {
	next rune // 'u' or 'l' applies to the next rune only
	span rune // 'U' or 'L' applies until \E
}

func (c *caser) write(b *strings.Builder, s string) {
	for _, r := range s {
		switch {
		case c.next == 'u':
			b.WriteRune(unicode.ToUpper(r))
			c.next = 0
		case c.next == 'l':
			b.WriteRune(unicode.ToLower(r))
			c.next = 0
		case c.span == 'U':
			b.WriteRune(unicode.ToUpper(r))
		case c.span == 'L':
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
}

// expandFormat substitutes one match into the format template.
// match is a FindStringSubmatchIndex result over source.
func expandFormat(format, source string, match []int) string {
	var b strings.Builder
	var c caser

	i := 0
	for i < len(format) {
		r, size := utf8.DecodeRuneInString(format[i:])
		switch r {
		case '$':
			group, consumed := parseGroupRef(format[i+size:])
			if consumed == 0 {
				c.write(&b, string(r))
				i += size
				continue
			}
			c.write(&b, groupText(source, match, group))
			i += size + consumed
		case '\\':
			if i+size >= len(format) {
				c.write(&b, string(r))
				i += size
				continue
			}
			esc, escSize := utf8.DecodeRuneInString(format[i+size:])
			switch esc {
			case 'u', 'l':
				c.next = esc
			case 'U', 'L':
				c.span = esc
			case 'E':
				c.span = 0
				c.next = 0
			case 'n':
				c.write(&b, "\n")
			case 't':
				c.write(&b, "\t")
			case '\\', '$':
				c.write(&b, string(esc))
			default:
				c.write(&b, string(r))
				c.write(&b, string(esc))
			}
			i += size + escSize
		default:
			c.write(&b, string(r))
			i += size
		}
	}
	return b.String()
}

// parseGroupRef parses a group reference after a '$': either bare
// digits or {digits}. Returns the group number and bytes consumed,
// or consumed == 0 when the text is not a reference.
func parseGroupRef(s string) (group, consumed int) {
	if s == "" {
		return 0, 0
	}
	if s[0] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0
		}
		n, ok := atoi(s[1:end])
		if !ok {
			return 0, 0
		}
		return n, end + 1
	}
	j := 0
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == 0 {
		return 0, 0
	}
	n, _ := atoi(s[:j])
	return n, j
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

// groupText extracts a captured group from the match indexes.
// An absent or unmatched group yields empty text.
func groupText(source string, match []int, group int) string {
	if group < 0 || 2*group+1 >= len(match) {
		return ""
	}
	start, end := match[2*group], match[2*group+1]
	if start < 0 || end < 0 {
		return ""
	}
	return source[start:end]
}
