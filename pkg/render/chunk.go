package render

// Priority is a transport-layer scheduling hint attached to a chunk.
// It never affects chunk ordering: consumers reconstruct the document by
// Seq order alone.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// String returns the string representation of the Priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Chunk is one ordered unit of streamed output. Seq values are assigned in
// emission order and are strictly increasing within a stream; concatenating
// Payload values in Seq order reconstructs the document.
type Chunk struct {
	// Seq is the monotonic sequence id assigned by the emitter.
	Seq uint64

	// Payload is the serialized HTML for this chunk.
	Payload string

	// Final marks the last chunk of the stream.
	Final bool

	// Priority is a transport hint (e.g., HTTP/2 stream priority).
	Priority Priority
}

// SinkFunc receives emitted chunks in Seq order. A non-nil return aborts
// the stream.
type SinkFunc func(Chunk) error
