package render

import (
	"bytes"
	"errors"
)

// DefaultChunkSize is the flush threshold used when StreamOptions.ChunkSize
// is zero.
const DefaultChunkSize = 4096

// errEmitterClosed is returned on writes after the final chunk.
var errEmitterClosed = errors.New("render: emitter closed")

// mark is a position in the emitter's logical output stream, measured in
// bytes written since the stream began (flushed or not).
type mark struct {
	offset int64
}

// emitter buffers serialized output and flushes it as ordered chunks once
// the buffered size crosses the chunk threshold or the walk ends. It is
// owned exclusively by one render session and is not safe for concurrent
// use.
type emitter struct {
	sink      SinkFunc
	chunkSize int
	priority  Priority

	buf     bytes.Buffer
	seq     uint64
	flushed int64 // bytes already handed to the sink (high-water mark)
	written int64 // bytes accepted, flushed or buffered
	closed  bool
}

func newEmitter(sink SinkFunc, chunkSize int) *emitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &emitter{
		sink:      sink,
		chunkSize: chunkSize,
		priority:  PriorityHigh,
	}
}

// setPriority changes the transport hint attached to subsequently flushed
// chunks.
func (e *emitter) setPriority(p Priority) {
	e.priority = p
}

// writeString appends serialized output, flushing full chunks as the
// threshold is crossed.
func (e *emitter) writeString(s string) error {
	if e.closed {
		return errEmitterClosed
	}
	e.buf.WriteString(s)
	e.written += int64(len(s))

	for e.buf.Len() >= e.chunkSize {
		if err := e.emit(e.chunkSize, false); err != nil {
			return err
		}
	}
	return nil
}

// mark records the current position for a later truncate.
func (e *emitter) mark() mark {
	return mark{offset: e.written}
}

// truncateTo discards buffered output written after m. It returns
// pastHighWater=true when part of that output was already flushed to the
// sink; in that case only the still-buffered suffix is discarded and the
// flushed prefix stands.
func (e *emitter) truncateTo(m mark) (pastHighWater bool) {
	if e.written <= m.offset {
		return false
	}
	keep := m.offset - e.flushed
	if keep < 0 {
		// The mark itself was flushed past; all we can roll back is the
		// buffered tail.
		e.written = e.flushed
		e.buf.Reset()
		return true
	}
	e.written = m.offset
	e.buf.Truncate(int(keep))
	return false
}

// flush emits any buffered output as a (possibly short) chunk.
func (e *emitter) flush() error {
	if e.buf.Len() == 0 {
		return nil
	}
	return e.emit(e.buf.Len(), false)
}

// close flushes remaining output and emits the final chunk. The final
// chunk may carry an empty payload when the buffer is already drained.
func (e *emitter) close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.emit(e.buf.Len(), true)
}

// emit hands the first n buffered bytes to the sink as one chunk.
func (e *emitter) emit(n int, final bool) error {
	payload := string(e.buf.Next(n))
	e.flushed += int64(n)
	e.seq++

	err := e.sink(Chunk{
		Seq:      e.seq,
		Payload:  payload,
		Final:    final,
		Priority: e.priority,
	})
	if err != nil {
		return &sinkFailure{cause: err}
	}
	return nil
}
