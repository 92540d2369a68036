package replay

import (
	"fmt"
	"strings"
)

// Target describes an element for selector computation. Parent chains root
// the element in the document; Index is the element's position among
// same-tag siblings (0-based).
type Target struct {
	ID      string
	Tag     string
	Classes []string
	Index   int
	Parent  *Target
}

// SelectorFor computes a stable selector for the target. An element with an
// id is addressed directly; otherwise the selector is a path of
// tag.class:nth-of-type steps from the nearest id-bearing ancestor (or the
// root), so the same element resolves after re-render as long as structure
// is preserved.
func SelectorFor(t *Target) string {
	if t == nil {
		return ""
	}
	if t.ID != "" {
		return "#" + t.ID
	}

	var steps []string
	for cur := t; cur != nil; cur = cur.Parent {
		if cur.ID != "" {
			steps = append(steps, "#"+cur.ID)
			break
		}
		steps = append(steps, step(cur))
	}

	// Steps were collected leaf-first.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return strings.Join(steps, " > ")
}

func step(t *Target) string {
	var b strings.Builder
	b.WriteString(t.Tag)
	for _, class := range t.Classes {
		b.WriteByte('.')
		b.WriteString(class)
	}
	fmt.Fprintf(&b, ":nth-of-type(%d)", t.Index+1)
	return b.String()
}
