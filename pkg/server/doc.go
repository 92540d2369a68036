// Package server integrates the streaming renderer with net/http.
//
// Each page request streams chunk payloads to the response in sequence
// order, flushing as it goes, and creates a document session that owns the
// page's hydration scheduler and event replay buffer. The client attaches
// a websocket (identified by the X-Glint-Session header) to deliver
// interaction events as binary frames; events recorded before the islands
// finish activating are replayed back once the scheduler is idle.
//
// The server also exposes /metrics (Prometheus) and /healthz.
package server
