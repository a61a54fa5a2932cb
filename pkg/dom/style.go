package dom

import "strings"

// Style returns the inline style property prop of e, or "".
func Style(e *Element, prop string) string {
	for _, d := range declarations(Attr(e, "style")) {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

// SetStyle sets the inline style property prop of e, keeping the position of
// an existing declaration. An empty value removes the property.
func SetStyle(e *Element, prop, value string) {
	decls := declarations(Attr(e, "style"))
	found := false
	out := decls[:0]
	for _, d := range decls {
		if d[0] == prop {
			found = true
			if value == "" {
				continue
			}
			d[1] = value
		}
		out = append(out, d)
	}
	if !found && value != "" {
		out = append(out, [2]string{prop, value})
	}
	writeStyle(e, out)
}

// SetStyles sets inline style properties given as key/value pairs.
func SetStyles(e *Element, kv ...string) {
	for i := 0; i+1 < len(kv); i += 2 {
		SetStyle(e, kv[i], kv[i+1])
	}
}

func declarations(style string) [][2]string {
	var out [][2]string
	for _, part := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop, val = strings.TrimSpace(prop), strings.TrimSpace(val)
		if prop != "" {
			out = append(out, [2]string{prop, val})
		}
	}
	return out
}

func writeStyle(e *Element, decls [][2]string) {
	if len(decls) == 0 {
		DelAttr(e, "style")
		return
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ": " + d[1]
	}
	SetAttr(e, "style", strings.Join(parts, "; "))
}
