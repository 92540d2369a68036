package vdom

import (
	"fmt"
	"strings"
)

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{
		Kind: KindRaw,
		Text: html,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{
		Kind:     KindFragment,
		Children: make([]*VNode, 0, len(children)),
	}
	appendChildren(node, children)
	return node
}

// El creates an element node. Arguments can be nil (skipped), Attr, []Attr,
// *VNode, []*VNode, or string (wrapped as a text child).
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Allows conditional attributes and children.
			continue
		case Attr:
			if v.Key == "" {
				continue
			}
			if v.Key == "key" {
				if s, ok := v.Value.(string); ok {
					node.Key = s
				}
				continue
			}
			node.Props[v.Key] = v.Value
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					node.Props[a.Key] = a.Value
				}
			}
		default:
			appendChildren(node, []any{arg})
		}
	}

	return node
}

// Component creates a component node. The render function is invoked during
// the walk; props are passed through to it and inspected by the island
// registry for interaction hooks and deferred-module references.
func Component(name string, render RenderFunc, props Props, children ...*VNode) *VNode {
	return &VNode{
		Kind:     KindComponent,
		Name:     name,
		Render:   render,
		Props:    props,
		Children: children,
	}
}

// Suspense wraps children in a supervised boundary. If asynchronous work
// inside the subtree fails, the fallback tree is emitted in its place and
// the failure does not escape the boundary.
func Suspense(fallback *VNode, children ...*VNode) *VNode {
	return &VNode{
		Kind:     KindFragment,
		Fallback: fallback,
		Children: children,
	}
}

// appendChildren flattens nodes, slices, and strings into node.Children.
func appendChildren(node *VNode, children []any) {
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Common element constructors.

// Div creates a <div> element.
func Div(args ...any) *VNode { return El("div", args...) }

// Span creates a <span> element.
func Span(args ...any) *VNode { return El("span", args...) }

// P creates a <p> element.
func P(args ...any) *VNode { return El("p", args...) }

// H1 creates an <h1> element.
func H1(args ...any) *VNode { return El("h1", args...) }

// H2 creates an <h2> element.
func H2(args ...any) *VNode { return El("h2", args...) }

// Ul creates a <ul> element.
func Ul(args ...any) *VNode { return El("ul", args...) }

// Li creates a <li> element.
func Li(args ...any) *VNode { return El("li", args...) }

// A creates an <a> element.
func A(args ...any) *VNode { return El("a", args...) }

// Button creates a <button> element.
func Button(args ...any) *VNode { return El("button", args...) }

// Input creates an <input> element.
func Input(args ...any) *VNode { return El("input", args...) }

// Form creates a <form> element.
func Form(args ...any) *VNode { return El("form", args...) }

// Attribute helpers.

// ID sets the id attribute.
func ID(id string) Attr { return Attr{Key: "id", Value: id} }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr {
	return Attr{Key: "class", Value: strings.Join(classes, " ")}
}

// Data creates a data-* attribute.
// Example: Data("island", "i1") → data-island="i1"
func Data(key, value string) Attr { return Attr{Key: "data-" + key, Value: value} }

// Key sets the reconciliation key.
func Key(key string) Attr { return Attr{Key: "key", Value: key} }

// On attaches an event handler prop (e.g., On("click", fn)).
// Handlers are never serialized; they mark the element interactive.
func On(event string, handler any) Attr {
	return Attr{Key: "on" + event, Value: handler}
}
