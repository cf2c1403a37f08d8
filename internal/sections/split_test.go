package sections

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func entries(m Map) [][2]string {
	out := [][2]string{}
	m.Each(func(k, v string) {
		out = append(out, [2]string{k, v})
	})
	return out
}

func TestSplitScenario(t *testing.T) {
	m := Split("# Process Interface Information\nFoo bar.\n## Notes\nSome notes.")
	want := [][2]string{
		{"process_interface_information", "Foo bar."},
		{"notes", "Some notes."},
	}
	if got := entries(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSplitEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\r\n\t"} {
		if m := Split(in); m.Len() != 0 {
			t.Fatalf("Split(%q) len=%d", in, m.Len())
		}
	}
}

func TestSplitNoHeadings(t *testing.T) {
	m := Split("just some text\nwith lines\n  # indented is not a heading")
	if m.Len() != 0 {
		t.Fatalf("len=%d keys=%v", m.Len(), m.Keys())
	}
}

func TestSplitDropsPreamble(t *testing.T) {
	m := Split("intro text\n\n# Scope\nbody")
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"scope"}) {
		t.Fatalf("keys=%v", got)
	}
	if body, _ := m.Get("scope"); body != "body" {
		t.Fatalf("body=%q", body)
	}
}

func TestSplitCollisions(t *testing.T) {
	m := Split("# Notes\na\n# notes!!\nb\n## NOTES\nc")
	want := [][2]string{{"notes", "a"}, {"notes_2", "b"}, {"notes_3", "c"}}
	if got := entries(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSplitCollisionSkipsTakenSuffix(t *testing.T) {
	m := Split("# Notes 2\nx\n# Notes\ny\n# Notes\nz")
	want := []string{"notes_2", "notes", "notes_3"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSplitLineEndings(t *testing.T) {
	m := Split("# A\r\none\r\n# B\rtwo\r")
	want := [][2]string{{"a", "one"}, {"b", "two"}}
	if got := entries(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSplitHeadingLevels(t *testing.T) {
	text := "###### Six\nsix body\n####### Seven\nstill six\n#NoSpace\nns"
	m := Split(text)
	want := [][2]string{
		{"six", "six body\n####### Seven\nstill six"},
		{"nospace", "ns"},
	}
	if got := entries(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSplitEmptyHeading(t *testing.T) {
	m := Split("#\nfirst\n##   \nsecond")
	want := [][2]string{{"section", "first"}, {"section_2", "second"}}
	if got := entries(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSplitEmptyBodies(t *testing.T) {
	m := Split("# A\n# B\n\n\n# C")
	for _, k := range []string{"a", "b", "c"} {
		body, ok := m.Get(k)
		if !ok || body != "" {
			t.Fatalf("key %s body=%q ok=%v", k, body, ok)
		}
	}
}

func TestSplitRoundTrip(t *testing.T) {
	headings := []string{"Overview", "Inputs & Outputs", "Notes", "notes"}
	text := "# Overview\n  first paragraph\n\nsecond paragraph\n" +
		"## Inputs & Outputs\n- in\n- out\n" +
		"### Notes\nn1\n" +
		"# notes\nn2\n"
	first := Split(text)

	var b strings.Builder
	keys := first.Keys()
	for i, h := range headings {
		body, _ := first.Get(keys[i])
		b.WriteString("# " + h + "\n" + body + "\n")
	}
	second := Split(b.String())
	if !reflect.DeepEqual(entries(first), entries(second)) {
		t.Fatalf("round trip mismatch:\n%v\n%v", entries(first), entries(second))
	}
}

func TestMapJSONKeepsOrder(t *testing.T) {
	m := Split("# Zeta\nz\n# Alpha\na")
	blob, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != `{"zeta":"z","alpha":"a"}` {
		t.Fatalf("json=%s", blob)
	}
	empty, _ := json.Marshal(Map{})
	if string(empty) != `{}` {
		t.Fatalf("empty json=%s", empty)
	}
}

func TestMapKeysIsCopy(t *testing.T) {
	m := Split("# A\nx")
	keys := m.Keys()
	keys[0] = "mutated"
	if m.Keys()[0] != "a" {
		t.Fatal("Keys exposed internal slice")
	}
}

func TestMapBodies(t *testing.T) {
	m := Split("# A\n**x**\n# B\ny")
	plain := m.MapBodies(PlainText)
	want := [][2]string{{"a", "x"}, {"b", "y"}}
	if got := entries(plain); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
	if body, _ := m.Get("a"); body != "**x**" {
		t.Fatalf("original changed: %q", body)
	}
}
