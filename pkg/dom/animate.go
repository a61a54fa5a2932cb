package dom

import (
	"strconv"
	"time"
)

// Transition describes a SMIL attribute animation.
type Transition struct {
	Attr     string
	From, To string
	Duration time.Duration
	Delay    time.Duration
}

// Animate appends an <animate> child to e that drives t.Attr from t.From to
// t.To and holds the final value. Earlier animations of the same attribute are
// dropped so the new transition supersedes them.
func Animate(e *Element, t Transition) *Element {
	StopAnimation(e, t.Attr)
	a := Append(e, "animate",
		"attributeName", t.Attr,
		"from", t.From,
		"to", t.To,
		"dur", ms(t.Duration),
		"fill", "freeze",
	)
	if t.Delay > 0 {
		SetAttr(a, "begin", ms(t.Delay))
	}
	return a
}

// StopAnimation removes the <animate> children of e driving attr. An empty attr
// removes all of them.
func StopAnimation(e *Element, attr string) {
	kept := e.Children[:0]
	for _, c := range e.Children {
		if c.Name == "animate" && (attr == "" || Attr(c, "attributeName") == attr) {
			continue
		}
		kept = append(kept, c)
	}
	e.Children = kept
}

// Animations returns the <animate> children of e.
func Animations(e *Element) []*Element {
	return Children(e, "animate", "")
}

func ms(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
