package render

import (
	"fmt"

	"github.com/glint-ui/glint/pkg/vdom"
)

// boundary supervises one suspense subtree. It records where the subtree's
// output began so that buffered output can be replaced by the fallback when
// a descendant fails.
type boundary struct {
	id       string
	fallback *vdom.VNode
	start    mark
	resolved bool
}

// boundaryManager mints boundary ids and tracks the stack of boundaries the
// walk is currently inside. The innermost open boundary receives descendant
// failures. Owned by a single render session.
type boundaryManager struct {
	counter uint32
	stack   []*boundary
}

func newBoundaryManager() *boundaryManager {
	return &boundaryManager{}
}

// enter opens a boundary around the current emitter position and pushes it
// as the innermost supervisor.
func (m *boundaryManager) enter(fallback *vdom.VNode, start mark) *boundary {
	m.counter++
	b := &boundary{
		id:       fmt.Sprintf("b%d", m.counter),
		fallback: fallback,
		start:    start,
	}
	m.stack = append(m.stack, b)
	return b
}

// exit pops the innermost boundary. The boundary is resolved permanently;
// it never supervises again.
func (m *boundaryManager) exit(b *boundary) {
	b.resolved = true
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i] == b {
			m.stack = append(m.stack[:i], m.stack[i+1:]...)
			return
		}
	}
}

// innermost returns the boundary that receives a failure right now, or nil
// when the walk is outside all boundaries.
func (m *boundaryManager) innermost() *boundary {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}
