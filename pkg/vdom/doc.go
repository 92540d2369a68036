// Package vdom defines the virtual node tree consumed by the streaming
// renderer.
//
// A tree is a tagged union of element, text, fragment, component, and raw
// nodes. Component nodes carry a RenderFunc invoked during the walk; the
// function may block on its context to perform asynchronous work. Nodes
// with a Fallback form suspense boundaries that contain descendant
// failures. Trees are immutable once handed to a render call and must not
// be shared across concurrent renders.
package vdom
