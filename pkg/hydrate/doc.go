// Package hydrate schedules client-side activation of rendered islands.
//
// The render walk registers interactive components as islands; the
// scheduler consumes them through a priority queue (descending priority,
// FIFO within equal priority) and a bounded set of worker slots. Each
// activation waits for the island's declared dependencies, then binds
// behavior to the already-rendered markup. Failures are contained per
// island: a broken dependency or activation marks that island Errored and
// never halts the others.
//
// Island state transitions are monotonic and owned by the scheduler:
//
//	Pending → Loading → Hydrated | Errored
//
// Status() is maintained incrementally and safe to poll.
package hydrate
