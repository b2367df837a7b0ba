package snippet

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestAppendTextMerges(t *testing.T) {
	s := New().AppendText("/**").AppendText("\n * ").AppendText("")
	if got := s.Segments(); len(got) != 1 || got[0].Text != "/**\n * " {
		t.Fatalf("unexpected segments %#v", got)
	}
	s.AppendPlaceholder(1, "a").AppendText("x")
	if len(s.Segments()) != 3 {
		t.Fatalf("placeholder must break literal runs: %#v", s.Segments())
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		stops []int
		want  error
	}{
		{"sequential", []int{1, 2, 3}, nil},
		{"empty", nil, ErrNoStops},
		{"starts at two", []int{2, 3}, ErrStopNumbering},
		{"gap", []int{1, 3}, ErrStopNumbering},
		{"duplicate", []int{1, 1}, ErrStopNumbering},
		{"descending", []int{2, 1}, ErrStopNumbering},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New().AppendText("/**")
			for _, stop := range tc.stops {
				s.AppendPlaceholder(stop, "x")
			}
			err := s.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	s := New().
		AppendText("/**\n * ").
		AppendPlaceholder(1, "Costs $5 {or} more}").
		AppendText("\n * @var ").
		AppendPlaceholder(2, `Foo\Bar`).
		AppendText(" $x ").
		AppendPlaceholder(3, "").
		AppendText("\n */")

	wantSnippet := "/**\n * ${1:Costs \\$5 {or\\} more\\}}\n * @var ${2:Foo\\\\Bar} \\$x ${3}\n */"
	if got := s.String(); got != wantSnippet {
		t.Fatalf("String()\n got: %q\nwant: %q", got, wantSnippet)
	}
	wantText := "/**\n * Costs $5 {or} more}\n * @var Foo\\Bar $x \n */"
	if got := s.Text(); got != wantText {
		t.Fatalf("Text()\n got: %q\nwant: %q", got, wantText)
	}
}

func TestJSON(t *testing.T) {
	s := New().AppendText("/** ").AppendPlaceholder(1, "").AppendText(" */")
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"segments":[{"text":"/** "},{"stop":1,"default":""},{"text":" */"}]}`
	if string(data) != want {
		t.Fatalf("json = %s, want %s", data, want)
	}

	var back Snippet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Segments(), s.Segments()) {
		t.Fatalf("decoded %#v", back.Segments())
	}
	if err := json.Unmarshal([]byte(`{"segments":[{}]}`), &back); err == nil {
		t.Fatal("expected error for empty segment")
	}
}

func TestAllocator(t *testing.T) {
	a := NewAllocator(0)
	if a.Peek() != 1 {
		t.Fatalf("allocator must start at 1, got %d", a.Peek())
	}
	for want := 1; want <= 3; want++ {
		if got := a.Next(); got != want {
			t.Fatalf("Next() = %d, want %d", got, want)
		}
	}
	if !reflect.DeepEqual(a.Issued(), []int{1, 2, 3}) {
		t.Fatalf("Issued() = %v", a.Issued())
	}
	if NewAllocator(2).Next() != 2 {
		t.Fatal("allocator should honour the first stop")
	}
}
