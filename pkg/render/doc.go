// Package render streams virtual node trees as ordered chunks of HTML.
//
// The walk is depth-first and strictly sequential: a component that blocks
// in its render function delays everything after it in document order, so
// chunk sequence order always equals document order without any reordering
// on the consumer side.
//
// Suspense boundaries supervise their subtrees. A failure inside a boundary
// rolls back the subtree's not-yet-flushed output and emits the boundary's
// fallback in its place; sibling subtrees outside the boundary are
// unaffected. Output that already left the buffer cannot be retracted -
// that case is reported as a warning through StreamOptions.OnError.
//
// Interactive components are registered as hydration islands during the
// walk and wrapped in marker markup (data-island, data-component,
// data-props) so client-side code can locate and activate them. The
// resulting island list is returned on Result for the hydrate package's
// scheduler.
//
// Basic usage:
//
//	result, err := render.Stream(ctx, tree, render.StreamOptions{
//	    OnChunk: func(c render.Chunk) error {
//	        _, err := w.Write([]byte(c.Payload))
//	        return err
//	    },
//	    EnableSuspense: true,
//	    ChunkSize:      4096,
//	})
//
// All text content is escaped exactly once. Raw nodes bypass escaping and
// must only carry trusted content.
package render
