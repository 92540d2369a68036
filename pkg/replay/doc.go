// Package replay buffers user-interaction events that arrive before their
// target islands activate and re-dispatches them afterwards.
//
// Recording starts as soon as the host document exists, independent of
// hydration progress. Each record captures the event type, a stable
// selector for the target element, and the data needed to reconstruct an
// equivalent event. Replay preserves original order across the whole
// buffer, suppresses recording while it runs, and clears the buffer only
// once every record has been dispatched.
package replay
