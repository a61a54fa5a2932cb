// Package dom is the SVG document model maps are rendered into.
//
// Elements are [svgparser.Element] values: a tag name, an attribute map and
// child elements. The same type is produced when a rendered document is parsed
// back with [Parse], so a map written to disk can be inspected with the helpers
// in this package.
//
// On top of the tree the package provides keyed data joins ([Join]) with
// enter/update/exit handlers, SMIL transitions ([Animate]) and a deterministic
// serializer ([Write]).
package dom

import (
	"slices"
	"strings"

	"github.com/JoshVarga/svgparser"
)

// Element is a node of an SVG document.
type Element = svgparser.Element

// New returns an element named name with attributes given as key/value pairs.
func New(name string, kv ...string) *Element {
	e := &Element{Name: name, Attributes: make(map[string]string, len(kv)/2)}
	SetAttrs(e, kv...)
	return e
}

// Append creates a child of parent and returns it.
func Append(parent *Element, name string, kv ...string) *Element {
	child := New(name, kv...)
	parent.Children = append(parent.Children, child)
	return child
}

// Insert creates a child of parent placed before its first child.
func Insert(parent *Element, name string, kv ...string) *Element {
	child := New(name, kv...)
	parent.Children = append([]*Element{child}, parent.Children...)
	return child
}

// Attr returns the attribute key of e, or "" when absent.
func Attr(e *Element, key string) string {
	if e == nil || e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}

// HasAttr reports whether e carries attribute key.
func HasAttr(e *Element, key string) bool {
	if e == nil || e.Attributes == nil {
		return false
	}
	_, ok := e.Attributes[key]
	return ok
}

// SetAttr sets attribute key of e.
func SetAttr(e *Element, key, value string) {
	if e.Attributes == nil {
		e.Attributes = map[string]string{}
	}
	e.Attributes[key] = value
}

// SetAttrs sets attributes given as key/value pairs. A trailing key without a
// value is ignored.
func SetAttrs(e *Element, kv ...string) {
	for i := 0; i+1 < len(kv); i += 2 {
		SetAttr(e, kv[i], kv[i+1])
	}
}

// DelAttr removes attribute key from e.
func DelAttr(e *Element, key string) {
	delete(e.Attributes, key)
}

// Classes returns the class list of e.
func Classes(e *Element) []string {
	return strings.Fields(Attr(e, "class"))
}

// HasClass reports whether class is in the class list of e.
func HasClass(e *Element, class string) bool {
	return slices.Contains(Classes(e), class)
}

// AddClass appends class to the class list of e unless present.
func AddClass(e *Element, class string) {
	if HasClass(e, class) {
		return
	}
	SetAttr(e, "class", strings.TrimSpace(Attr(e, "class")+" "+class))
}

// Walk visits e and its descendants depth first. Returning false from fn skips
// the children of the visited element.
func Walk(e *Element, fn func(*Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range e.Children {
		Walk(c, fn)
	}
}

// ByID returns the first descendant of root (root included) with the given id.
func ByID(root *Element, id string) *Element {
	var found *Element
	Walk(root, func(e *Element) bool {
		if found != nil {
			return false
		}
		if Attr(e, "id") == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// ByClass returns the descendants of root (root included) carrying class, in
// document order.
func ByClass(root *Element, class string) []*Element {
	var out []*Element
	Walk(root, func(e *Element) bool {
		if HasClass(e, class) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// ByName returns the descendants of root (root included) with tag name.
func ByName(root *Element, name string) []*Element {
	var out []*Element
	Walk(root, func(e *Element) bool {
		if e.Name == name {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Children returns the direct children of parent named name with class. Empty
// name or class match anything.
func Children(parent *Element, name, class string) []*Element {
	var out []*Element
	for _, c := range parent.Children {
		if (name == "" || c.Name == name) && (class == "" || HasClass(c, class)) {
			out = append(out, c)
		}
	}
	return out
}

// Parent returns the parent of child within root, or nil.
func Parent(root, child *Element) *Element {
	var found *Element
	Walk(root, func(e *Element) bool {
		if found != nil {
			return false
		}
		if slices.Contains(e.Children, child) {
			found = e
			return false
		}
		return true
	})
	return found
}

// Remove detaches child from parent. It reports whether child was found.
func Remove(parent, child *Element) bool {
	i := slices.Index(parent.Children, child)
	if i < 0 {
		return false
	}
	parent.Children = slices.Delete(parent.Children, i, i+1)
	return true
}

// Raise moves child to the end of its parent's children so it paints last.
func Raise(parent, child *Element) {
	if Remove(parent, child) {
		parent.Children = append(parent.Children, child)
	}
}

// Clear removes all children of e.
func Clear(e *Element) {
	e.Children = nil
}

// InsertBefore places child under parent right before ref, or at the end when
// ref is not a child of parent. A child already under parent is moved.
func InsertBefore(parent, child, ref *Element) {
	Remove(parent, child)
	i := slices.Index(parent.Children, ref)
	if ref == nil || i < 0 {
		parent.Children = append(parent.Children, child)
		return
	}
	parent.Children = slices.Insert(parent.Children, i, child)
}
