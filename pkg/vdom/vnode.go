package vdom

import (
	"context"
	"fmt"
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Component invocation
	KindRaw                    // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Props holds attributes, event handlers, and component inputs.
type Props map[string]any

// RenderFunc produces a component's output tree. The context carries the
// stream's cancellation and deadline; a component that performs asynchronous
// work (data fetching, etc.) blocks inside its RenderFunc and honors ctx.
// Returning an error fails the component; the nearest enclosing suspense
// boundary contains it.
type RenderFunc func(ctx context.Context, props Props) (*VNode, error)

// ModuleRef names a deferred client-side module. When a ModuleRef appears as
// a component prop value, it is collected as a hydration dependency: the
// island will not activate until the module has been resolved.
type ModuleRef string

// VNode is the virtual DOM node. Trees are immutable once handed to a render
// call and owned exclusively by that call.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes, event handlers, component inputs
	Children []*VNode // Child nodes
	Key      string   // Reconciliation key
	Text     string   // For KindText and KindRaw

	// Component fields (KindComponent only).
	Name        string     // Component name, surfaced in island markup
	Render      RenderFunc // Invoked during the walk to produce output
	Interactive bool       // Explicit island marker, independent of props
	Deps        []string   // Declared deferred-module dependencies

	// Fallback marks this node as a suspense boundary. When set, render
	// failures of asynchronous descendants are contained here and the
	// fallback tree is emitted in place of the subtree's output.
	Fallback *VNode
}

// IsInteractive reports whether this node carries interaction hooks and
// therefore needs client-side activation. Components may also opt in
// explicitly via the Interactive field.
func (v *VNode) IsInteractive() bool {
	if v == nil {
		return false
	}
	if v.Interactive {
		return true
	}
	for key, value := range v.Props {
		if strings.HasPrefix(key, "on") && isFunc(value) {
			return true
		}
	}
	return false
}

// isFunc reports whether the prop value is a callable handler rather than
// data that happens to live under an on* key.
func isFunc(value any) bool {
	if value == nil {
		return false
	}
	return strings.HasPrefix(fmt.Sprintf("%T", value), "func")
}

// IsBoundary reports whether this node supervises its subtree.
func (v *VNode) IsBoundary() bool {
	return v != nil && v.Fallback != nil
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}
