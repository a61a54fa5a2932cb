package dom

// KeyAttr stores the join key of an element bound by [Join].
const KeyAttr = "data-key"

// ExitAttr marks an element that left its join but is kept for an exit
// transition. It is removed by the next join on the same parent.
const ExitAttr = "data-exiting"

// JoinFuncs are the callbacks of a data join. Each is optional.
type JoinFuncs struct {
	// Enter is called for every key without a bound element, right after the
	// element is created and appended.
	Enter func(i int, e *Element)

	// Update is called for every key after Enter, on new and existing
	// elements alike.
	Update func(i int, e *Element)

	// Exit is called for every bound element whose key is gone. Returning
	// true keeps the element (marked with ExitAttr) so an exit transition can
	// play; returning false, or a nil Exit, removes it.
	Exit func(e *Element) bool
}

// Join binds keys to the children of parent named tag with class. Elements are
// matched by [KeyAttr]. The returned slice holds the bound element of each key,
// in key order. Duplicate keys bind to the same element.
func Join(parent *Element, tag, class string, keys []string, fns JoinFuncs) []*Element {
	bound := make(map[string]*Element)
	var stale []*Element
	for _, e := range Children(parent, tag, class) {
		if HasAttr(e, ExitAttr) {
			stale = append(stale, e)
			continue
		}
		bound[Attr(e, KeyAttr)] = e
	}
	for _, e := range stale {
		Remove(parent, e)
	}

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	for _, e := range Children(parent, tag, class) {
		if wanted[Attr(e, KeyAttr)] {
			continue
		}
		if fns.Exit != nil && fns.Exit(e) {
			SetAttr(e, ExitAttr, "true")
			continue
		}
		Remove(parent, e)
	}

	out := make([]*Element, len(keys))
	for i, k := range keys {
		e, ok := bound[k]
		if !ok {
			e = Append(parent, tag, KeyAttr, k)
			if class != "" {
				SetAttr(e, "class", class)
			}
			bound[k] = e
			if fns.Enter != nil {
				fns.Enter(i, e)
			}
		}
		if fns.Update != nil {
			fns.Update(i, e)
		}
		out[i] = e
	}
	return out
}
