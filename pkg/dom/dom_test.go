package dom

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTreeHelpers(t *testing.T) {
	root := New("svg", "width", "100", "height", "50")
	g := Append(root, "g", "class", "layer", "id", "base")
	a := Append(g, "path", "class", "region AAA")
	b := Append(g, "path", "class", "region BBB")

	if got := ByID(root, "base"); got != g {
		t.Errorf("ByID() = %v, want layer group", got)
	}
	if got := ByClass(root, "region"); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("ByClass(region) = %v", got)
	}
	if got := Parent(root, b); got != g {
		t.Errorf("Parent() = %v, want layer group", got)
	}

	Raise(g, a)
	if g.Children[len(g.Children)-1] != a {
		t.Error("Raise() did not move element to the end")
	}

	AddClass(a, "active")
	AddClass(a, "active")
	if got := Attr(a, "class"); got != "region AAA active" {
		t.Errorf("class = %q", got)
	}

	if !Remove(g, a) || Remove(g, a) {
		t.Error("Remove() should succeed once")
	}
	if len(g.Children) != 1 {
		t.Errorf("children = %d, want 1", len(g.Children))
	}
}

func TestJoin(t *testing.T) {
	parent := New("g")
	var entered, updated []string

	fns := JoinFuncs{
		Enter:  func(_ int, e *Element) { entered = append(entered, Attr(e, KeyAttr)) },
		Update: func(_ int, e *Element) { updated = append(updated, Attr(e, KeyAttr)) },
	}

	first := Join(parent, "circle", "bubble", []string{"a", "b"}, fns)
	if len(first) != 2 || len(entered) != 2 || len(updated) != 2 {
		t.Fatalf("first join: %d bound, entered %v, updated %v", len(first), entered, updated)
	}

	entered, updated = nil, nil
	second := Join(parent, "circle", "bubble", []string{"b", "c"}, fns)
	if second[0] != first[1] {
		t.Error("existing key should keep its element")
	}
	if strings.Join(entered, ",") != "c" || strings.Join(updated, ",") != "b,c" {
		t.Errorf("second join entered %v, updated %v", entered, updated)
	}
	if n := len(Children(parent, "circle", "bubble")); n != 2 {
		t.Errorf("after exit %d circles, want 2", n)
	}
}

func TestJoinDuplicateKeys(t *testing.T) {
	parent := New("g")
	var entered, updated []int
	bound := Join(parent, "circle", "bubble", []string{"a", "a", "b"}, JoinFuncs{
		Enter:  func(i int, _ *Element) { entered = append(entered, i) },
		Update: func(i int, _ *Element) { updated = append(updated, i) },
	})

	if n := len(Children(parent, "circle", "bubble")); n != 2 {
		t.Fatalf("%d circles for keys a,a,b, want 2", n)
	}
	if bound[0] != bound[1] || bound[0] == bound[2] {
		t.Error("duplicate keys should bind the same element")
	}
	if len(entered) != 2 || len(updated) != 3 {
		t.Errorf("entered %v, updated %v", entered, updated)
	}
}

func TestJoinKeepsExiting(t *testing.T) {
	parent := New("g")
	Join(parent, "circle", "bubble", []string{"a"}, JoinFuncs{})

	keep := JoinFuncs{Exit: func(e *Element) bool { return true }}
	Join(parent, "circle", "bubble", nil, keep)
	kids := Children(parent, "circle", "bubble")
	if len(kids) != 1 || !HasAttr(kids[0], ExitAttr) {
		t.Fatalf("exiting element not kept: %v", kids)
	}

	Join(parent, "circle", "bubble", nil, keep)
	if n := len(Children(parent, "circle", "bubble")); n != 0 {
		t.Errorf("exited element survived the next join: %d left", n)
	}
}

func TestJoinIgnoresOtherClasses(t *testing.T) {
	parent := New("g")
	Append(parent, "circle", "class", "marker")
	Join(parent, "circle", "bubble", []string{"a"}, JoinFuncs{})
	Join(parent, "circle", "bubble", nil, JoinFuncs{})
	if n := len(Children(parent, "circle", "marker")); n != 1 {
		t.Errorf("unrelated element removed: %d left", n)
	}
}

func TestAnimateSupersedes(t *testing.T) {
	c := New("circle")
	Animate(c, Transition{Attr: "r", From: "0", To: "10", Duration: 400 * time.Millisecond})
	Animate(c, Transition{Attr: "r", From: "10", To: "0", Duration: 400 * time.Millisecond, Delay: 100 * time.Millisecond})
	Animate(c, Transition{Attr: "opacity", From: "0", To: "1", Duration: time.Second})

	anims := Animations(c)
	if len(anims) != 2 {
		t.Fatalf("got %d animations, want 2", len(anims))
	}
	r := anims[0]
	if Attr(r, "from") != "10" || Attr(r, "begin") != "100ms" || Attr(r, "dur") != "400ms" {
		t.Errorf("radius animation = %v", r.Attributes)
	}

	StopAnimation(c, "")
	if len(Animations(c)) != 0 {
		t.Error("StopAnimation(\"\") left animations")
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	root := New("svg", "width", "200", "height", "100", "class", "datamap")
	g := Append(root, "g", "class", "datamaps-subunits")
	Append(g, "path", "class", "datamaps-subunit USA", "d", "M0,0L10,10Z", "data-info", `{"fillKey":"HIGH"}`)
	text := Append(root, "text", "x", "5", "y", "5")
	text.Content = "A & B"

	var buf bytes.Buffer
	if err := Write(&buf, root, WithStyle(".datamap path { stroke: #FFF; }"), WithScript("void 0;")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`<svg width="200" height="100"`, `class="datamap"`, "<style", "<script", "A &amp; B"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	parsed, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	paths := ByClass(parsed, "datamaps-subunit")
	if len(paths) != 1 {
		t.Fatalf("parsed %d subunit paths, want 1", len(paths))
	}
	if got := Attr(paths[0], "data-info"); got != `{"fillKey":"HIGH"}` {
		t.Errorf("data-info = %q", got)
	}
	if texts := ByName(parsed, "text"); len(texts) != 1 || texts[0].Content != "A & B" {
		t.Errorf("text content lost: %v", texts)
	}
}

func TestWriteDeterministic(t *testing.T) {
	build := func() *Element {
		root := New("svg", "width", "10", "height", "10")
		Append(root, "circle", "r", "1", "cx", "2", "cy", "3", "fill", "red", "stroke", "blue")
		return root
	}
	var a, b bytes.Buffer
	_ = Write(&a, build())
	_ = Write(&b, build())
	if a.String() != b.String() {
		t.Error("equal trees produced different output")
	}
	if !strings.Contains(a.String(), `<circle cx="2" cy="3" fill="red" r="1" stroke="blue"/>`) {
		t.Errorf("attributes not sorted:\n%s", a.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	if err := Write(failingWriter{}, New("svg")); err == nil {
		t.Error("Write() should report writer errors")
	}
}

func TestStyle(t *testing.T) {
	e := New("path")
	SetStyles(e, "fill", "#ABDDA4", "stroke", "#FDFDFD", "stroke-width", "1")
	if got := Attr(e, "style"); got != "fill: #ABDDA4; stroke: #FDFDFD; stroke-width: 1" {
		t.Errorf("style = %q", got)
	}

	SetStyle(e, "fill", "#FC8D59")
	if got := Style(e, "fill"); got != "#FC8D59" {
		t.Errorf("Style(fill) = %q", got)
	}
	if got := Attr(e, "style"); !strings.HasPrefix(got, "fill: #FC8D59;") {
		t.Errorf("updated declaration moved: %q", got)
	}

	SetStyle(e, "stroke", "")
	if Style(e, "stroke") != "" || strings.Contains(Attr(e, "style"), "stroke:") {
		t.Errorf("stroke not removed: %q", Attr(e, "style"))
	}

	SetStyle(e, "fill", "")
	SetStyle(e, "stroke-width", "")
	if HasAttr(e, "style") {
		t.Errorf("empty style attribute kept: %q", Attr(e, "style"))
	}

	// rgba values contain commas but no semicolons.
	SetStyle(e, "stroke", "rgba(250, 15, 160, 0.2)")
	if got := Style(e, "stroke"); got != "rgba(250, 15, 160, 0.2)" {
		t.Errorf("Style(stroke) = %q", got)
	}
}

func TestInsertBefore(t *testing.T) {
	root := New("svg")
	a := Append(root, "g", "id", "a")
	c := Append(root, "g", "id", "c")
	b := New("g", "id", "b")

	InsertBefore(root, b, c)
	InsertBefore(root, c, a)
	var ids []string
	for _, e := range root.Children {
		ids = append(ids, Attr(e, "id"))
	}
	if got := strings.Join(ids, ","); got != "c,a,b" {
		t.Errorf("order = %s, want c,a,b", got)
	}

	InsertBefore(root, New("g", "id", "d"), nil)
	if Attr(root.Children[3], "id") != "d" {
		t.Error("nil ref should append")
	}
}
