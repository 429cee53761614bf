package render

import (
	"strings"

	"github.com/dshills/snipstorm/internal/engine/fragment"
)

// Snippet renders the full body of a snippet.
//
// The result reflects the most recent derivation and resolution pass:
// propagation is eager, so no stale transformation result is ever
// observable here. Calling Snippet repeatedly without intervening edits
// yields identical text.
func Snippet(a *fragment.Arena, s *fragment.Snippet) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	writeSegments(&b, a, s.Body)
	return b.String()
}

// Segments renders an ordered segment sequence.
func Segments(a *fragment.Arena, segs []fragment.Segment) string {
	var b strings.Builder
	writeSegments(&b, a, segs)
	return b.String()
}

// Segment renders a single segment.
func Segment(a *fragment.Arena, seg fragment.Segment) string {
	var b strings.Builder
	writeSegment(&b, a, seg)
	return b.String()
}

// Field renders a field's active body. A choice with an out-of-range
// selection renders as empty text.
func Field(a *fragment.Arena, f *fragment.Field) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	writeSegments(&b, a, f.ActiveBody())
	return b.String()
}

func writeSegments(b *strings.Builder, a *fragment.Arena, segs []fragment.Segment) {
	for _, seg := range segs {
		writeSegment(b, a, seg)
	}
}

func writeSegment(b *strings.Builder, a *fragment.Arena, seg fragment.Segment) {
	switch seg.Kind {
	case fragment.SegText:
		b.WriteString(seg.Text)
	case fragment.SegField:
		if f := a.Field(seg.Ref); f != nil {
			writeSegments(b, a, f.ActiveBody())
		}
	case fragment.SegTransformation:
		if tr := a.Transformation(seg.Ref); tr != nil && tr.Derived {
			b.WriteString(tr.Result)
		}
	case fragment.SegVariable:
		if v := a.Variable(seg.Ref); v != nil {
			b.WriteString(v.Value)
		}
	case fragment.SegCode:
		if c := a.Code(seg.Ref); c != nil {
			b.WriteString(c.Output)
		}
	case fragment.SegSnippet:
		if nested := a.Snippet(seg.Ref); nested != nil {
			writeSegments(b, a, nested.Body)
		}
	}
}
