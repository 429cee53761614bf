package fragment

import "testing"

func TestField_ActiveBody(t *testing.T) {
	hi := []Segment{TextSegment("Hi")}
	hello := []Segment{TextSegment("Hello")}

	tests := []struct {
		name  string
		field *Field
		want  []Segment
	}{
		{"placeholder", NewPlaceholder(hi), hi},
		{"choice selected", NewChoice(1, [][]Segment{hi, hello}), hello},
		{"choice first", NewChoice(0, [][]Segment{hi, hello}), hi},
		{"choice out of range", NewChoice(5, [][]Segment{hi, hello}), nil},
		{"choice negative", NewChoice(-1, [][]Segment{hi, hello}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.field.ActiveBody()
			if len(got) != len(tt.want) {
				t.Fatalf("ActiveBody() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Text != tt.want[i].Text {
					t.Errorf("ActiveBody()[%d].Text = %q, want %q", i, got[i].Text, tt.want[i].Text)
				}
			}
		})
	}
}

func TestSnippet_TabByNum(t *testing.T) {
	s := &Snippet{Tabs: []Tab{{Num: 1}, {Num: 2}, {Num: 3}}}

	tab, ok := s.TabByNum(2)
	if !ok || tab.Num != 2 {
		t.Errorf("TabByNum(2) = %v, %v, want tab 2", tab, ok)
	}
	if _, ok := s.TabByNum(9); ok {
		t.Error("TabByNum(9) should not resolve")
	}
}

func TestSnippet_Dependents(t *testing.T) {
	a := NewArena()
	src := a.Alloc(NewPlaceholder(nil))
	tr1 := a.Alloc(&Transformation{})
	tr2 := a.Alloc(&Transformation{})

	s := &Snippet{}
	s.AddDependent(src, tr1)
	s.AddDependent(src, tr2)

	deps := s.Dependents(src)
	if len(deps) != 2 || deps[0] != tr1 || deps[1] != tr2 {
		t.Errorf("Dependents() = %v, want [tr1 tr2] in declaration order", deps)
	}
	if got := s.Dependents(tr1); got != nil {
		t.Errorf("Dependents(tr1) = %v, want nil", got)
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{SegText.String(), "text"},
		{SegSnippet.String(), "snippet"},
		{Placeholder.String(), "placeholder"},
		{Choice.String(), "choice"},
		{SourceDaemon.String(), "daemon"},
		{SourceClient.String(), "client"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
