package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	glinterr "github.com/glint-ui/glint/internal/errors"
	"github.com/glint-ui/glint/pkg/hydrate"
	"github.com/glint-ui/glint/pkg/vdom"
)

// sinkFailure marks an error returned by the caller's chunk sink. Sink
// failures abort the stream and are never contained by a boundary.
type sinkFailure struct {
	cause error
}

func (e *sinkFailure) Error() string {
	return fmt.Sprintf("render: sink failed: %v", e.cause)
}

func (e *sinkFailure) Unwrap() error {
	return e.cause
}

// containable reports whether a walk failure may be absorbed by a suspense
// boundary. Cancellation and sink failures always abort the whole stream.
func containable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var sf *sinkFailure
	return !errors.As(err, &sf)
}

// walk dispatches on node kind. The traversal is strictly sequential:
// node N+1 is not serialized until node N's (possibly blocking) render has
// fully completed and been queued, which is what guarantees that chunk
// sequence order equals document order.
func (s *session) walk(node *vdom.VNode) error {
	if node == nil {
		return nil
	}
	if err := s.ctx.Err(); err != nil {
		return err
	}

	if node.IsBoundary() && s.opts.EnableSuspense {
		return s.walkBoundary(node)
	}

	switch node.Kind {
	case vdom.KindElement:
		return s.walkElement(node)
	case vdom.KindText:
		return s.write(escapeHTML(node.Text))
	case vdom.KindRaw:
		return s.write(node.Text)
	case vdom.KindFragment:
		return s.walkChildren(node)
	case vdom.KindComponent:
		return s.walkComponent(node)
	default:
		return glinterr.New("G100", glinterr.CategoryRender,
			fmt.Sprintf("unknown node kind: %d", node.Kind))
	}
}

// walkChildren walks children in order under the same context.
func (s *session) walkChildren(node *vdom.VNode) error {
	for _, child := range node.Children {
		if err := s.walk(child); err != nil {
			return err
		}
	}
	return nil
}

// walkElement serializes the opening tag with escaped attributes, then the
// children, then the closing tag. This ordering holds even when a child
// suspends: document order is achieved by sequencing, not reordering.
func (s *session) walkElement(node *vdom.VNode) error {
	if err := s.write("<" + node.Tag); err != nil {
		return err
	}
	if err := s.writeAttrs(node); err != nil {
		return err
	}

	if isVoidElement(node.Tag) {
		return s.write(">")
	}

	if err := s.write(">"); err != nil {
		return err
	}
	if err := s.walkChildren(node); err != nil {
		return err
	}
	return s.write("</" + node.Tag + ">")
}

// walkComponent invokes the component function, waits for it to complete,
// and only then serializes its output. A component flagged as an island by
// the registry is wrapped in marker markup carrying the island id and
// component name.
func (s *session) walkComponent(node *vdom.VNode) error {
	output, err := s.invoke(node)
	if err != nil {
		return err
	}

	island := s.registry.RegisterIfInteractive(node)
	if island == nil {
		return s.walk(output)
	}

	if err := s.writeIslandOpen(island); err != nil {
		return err
	}
	if err := s.walk(output); err != nil {
		return err
	}
	return s.write("</div>")
}

// invoke runs the component's render function. Children are passed through
// under the "children" prop so container components can place them.
func (s *session) invoke(node *vdom.VNode) (*vdom.VNode, error) {
	if node.Render == nil {
		// A component without a render function groups its children.
		return &vdom.VNode{Kind: vdom.KindFragment, Children: node.Children}, nil
	}

	props := node.Props
	if len(node.Children) > 0 {
		props = make(vdom.Props, len(node.Props)+1)
		for k, v := range node.Props {
			props[k] = v
		}
		props["children"] = node.Children
	}

	output, err := node.Render(s.ctx, props)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		name := node.Name
		if name == "" {
			name = "(anonymous)"
		}
		return nil, glinterr.Wrap(err, "G101", glinterr.CategoryRender,
			fmt.Sprintf("component %s failed", name))
	}
	return output, nil
}

// walkBoundary supervises a subtree. On normal completion the streamed
// output stands and the fallback is discarded. On a contained failure the
// not-yet-flushed output for the subtree is rolled back and the fallback is
// emitted in its place, wrapped with the boundary id; the failure does not
// escape the boundary. Output that already left the buffer cannot be
// retracted: that case is reported through OnError as a flush-window
// warning and the fallback follows the flushed prefix.
func (s *session) walkBoundary(node *vdom.VNode) error {
	b := s.bounds.enter(node.Fallback, s.em.mark())
	prev := s.em.priority
	s.em.setPriority(PriorityNormal)

	err := s.walkChildren(node)

	s.em.setPriority(prev)
	s.bounds.exit(b)

	if err == nil {
		return nil
	}
	if !containable(err) {
		return err
	}

	if past := s.em.truncateTo(b.start); past {
		warn := glinterr.Wrap(err, "G110", glinterr.CategoryFlush,
			"boundary failed after partial output was flushed").WithBoundary(b.id)
		s.log.Warn("suspense fallback after flush high-water mark",
			"boundary", b.id, "err", err)
		s.warn(warn)
	} else {
		s.log.Debug("suspense boundary contained failure",
			"boundary", b.id, "err", err)
	}

	// Fallback output replaces the subtree. A failure inside the fallback
	// itself propagates to the next enclosing boundary.
	s.em.setPriority(PriorityLow)
	defer s.em.setPriority(prev)

	if err := s.write(fmt.Sprintf(`<div data-boundary=%q data-fallback="true">`, b.id)); err != nil {
		return err
	}
	if err := s.walk(b.fallback); err != nil {
		return err
	}
	return s.write("</div>")
}

// writeIslandOpen emits the island wrapper's opening tag. Props are carried
// as JSON so client-side code can rehydrate them; handler values are
// already filtered out by the registry.
func (s *session) writeIslandOpen(island *hydrate.Island) error {
	propsJSON, err := json.Marshal(island.Props)
	if err != nil {
		return glinterr.Wrap(err, "G102", glinterr.CategoryRender,
			fmt.Sprintf("island %s props not serializable", island.ID)).WithIsland(island.ID)
	}
	return s.write(fmt.Sprintf(
		`<div data-island="%s" data-component="%s" data-props="%s" class="glint-island">`,
		escapeAttr(island.ID), escapeAttr(island.Component), escapeAttr(string(propsJSON))))
}

// writeAttrs serializes attributes sorted by key for deterministic output.
// Handler props are never rendered; they surface as data-on-* markers so
// the activation layer can locate them.
func (s *session) writeAttrs(node *vdom.VNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		// Internal props never serialize.
		if strings.HasPrefix(key, "_") || key == "key" {
			continue
		}
		if strings.HasPrefix(key, "on") && isHandler(value) {
			continue
		}

		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		}

		if isBooleanAttr(key) {
			if on, ok := value.(bool); ok {
				if on {
					if err := s.write(" " + key); err != nil {
						return err
					}
				}
				continue
			}
		}

		str := attrToString(value)
		if str == "" {
			continue
		}
		if err := s.write(fmt.Sprintf(` %s="%s"`, key, escapeAttr(str))); err != nil {
			return err
		}
	}

	// Event markers for client-side binding.
	for _, key := range keys {
		if strings.HasPrefix(key, "on") && isHandler(node.Props[key]) {
			event := strings.ToLower(key[2:])
			if err := s.write(fmt.Sprintf(` data-on-%s="true"`, event)); err != nil {
				return err
			}
		}
	}

	return nil
}

// isHandler returns true if the value looks like an event handler.
func isHandler(value any) bool {
	if value == nil {
		return false
	}
	switch value.(type) {
	case func(), func(any):
		return true
	}
	return strings.HasPrefix(fmt.Sprintf("%T", value), "func")
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case vdom.ModuleRef:
		return string(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
